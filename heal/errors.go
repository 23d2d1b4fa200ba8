package heal

import "fmt"

// ElementNotFoundError is returned when every permitted strategy was
// exhausted across the full attempt budget. Terminal: the calling test
// fails with it.
type ElementNotFoundError struct {
	Original    string
	MaxAttempts int
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("heal: element not found for selector %q after %d attempts", e.Original, e.MaxAttempts)
}
