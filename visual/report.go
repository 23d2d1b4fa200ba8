package visual

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Report is the JSON run report accumulated over a test suite.
type Report struct {
	Timestamp        time.Time `json:"timestamp"`
	TestSuite        string    `json:"testSuite"`
	TotalComparisons int       `json:"totalComparisons"`
	Passed           int       `json:"passed"`
	Failed           int       `json:"failed"`
	Results          []Result  `json:"results"`
	Configuration    Config    `json:"configuration"`
}

// Recorder collects comparison results for one suite run and writes
// the report file.
type Recorder struct {
	mu     sync.Mutex
	report Report
}

// NewRecorder starts an empty report for the suite.
func NewRecorder(suite string, cfg Config) *Recorder {
	return &Recorder{report: Report{
		Timestamp:     time.Now(),
		TestSuite:     suite,
		Configuration: cfg,
	}}
}

// Add appends a comparison result and updates the counters.
func (r *Recorder) Add(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Results = append(r.report.Results, res)
	r.report.TotalComparisons++
	if res.Passed {
		r.report.Passed++
	} else {
		r.report.Failed++
	}
}

// Report returns a copy of the accumulated report.
func (r *Recorder) Report() Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep := r.report
	rep.Results = append([]Result(nil), r.report.Results...)
	return rep
}

// Write serialises the report to path as indented JSON.
func (r *Recorder) Write(path string) error {
	rep := r.Report()
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("visual: marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("visual: report dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("visual: write report: %w", err)
	}
	return nil
}

// LoadReport reads a previously written report file.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("visual: read report: %w", err)
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("visual: parse report: %w", err)
	}
	return &rep, nil
}
