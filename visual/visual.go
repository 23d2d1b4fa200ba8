// Package visual decides pass/fail for pairs of same-dimension
// screenshots under a per-pixel threshold, persists diff artifacts and
// accumulates a JSON run report.
//
// Two thresholds are in play and deliberately independent: the
// per-pixel Threshold tunes how different a pixel must be to count as
// differing, while PixelCutoff is the absolute count of differing
// pixels a comparison may accumulate and still pass. Matched is
// stricter than Passed: it requires zero differing pixels.
package visual

import (
	"bytes"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config controls comparison behaviour and artifact placement.
type Config struct {
	BaselineDir string  `json:"baselineDir" yaml:"baselineDir"`
	ActualDir   string  `json:"actualDir" yaml:"actualDir"`
	DiffDir     string  `json:"diffDir" yaml:"diffDir"`
	Threshold   float64 `json:"threshold" yaml:"threshold"`     // per-pixel, 0.0-1.0
	PixelCutoff int     `json:"pixelCutoff" yaml:"pixelCutoff"` // 0 means Threshold*1000
}

// cutoff resolves the effective differing-pixel budget.
func (c Config) cutoff() int {
	if c.PixelCutoff > 0 {
		return c.PixelCutoff
	}
	return int(c.Threshold * 1000)
}

// Result is the outcome of one comparison.
type Result struct {
	Name            string    `json:"name"`
	Matched         bool      `json:"matched"` // zero differing pixels
	Passed          bool      `json:"passed"`  // within the pixel-count cutoff
	FirstRun        bool      `json:"firstRun,omitempty"`
	DifferingPixels int       `json:"differingPixelCount"`
	BaselinePath    string    `json:"baselinePath,omitempty"`
	ActualPath      string    `json:"actualPath,omitempty"`
	DiffPath        string    `json:"diffArtifactPath,omitempty"`
	ComparedAt      time.Time `json:"comparedAt"`
}

// DimensionMismatchError is returned when the two images cannot be
// compared pixel-for-pixel. Never silently resized or cropped.
type DimensionMismatchError struct {
	Name         string
	WantW, WantH int
	GotW, GotH   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("visual: %s: dimension mismatch: baseline %dx%d, actual %dx%d",
		e.Name, e.WantW, e.WantH, e.GotW, e.GotH)
}

// Comparator compares screenshots against stored baselines.
type Comparator struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Comparator. Directories are created lazily on first
// use.
func New(cfg Config, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparator{cfg: cfg, logger: logger}
}

// Compare compares actual PNG bytes against the stored baseline for
// name. A missing baseline is a first run: the actual image becomes
// the baseline and the comparison passes.
func (c *Comparator) Compare(name string, actual []byte) (Result, error) {
	res := Result{Name: name, ComparedAt: time.Now()}

	baselinePath := filepath.Join(c.cfg.BaselineDir, name+".png")
	actualPath := filepath.Join(c.cfg.ActualDir, name+".png")
	res.BaselinePath = baselinePath

	if err := writeFile(actualPath, actual); err != nil {
		return res, fmt.Errorf("visual: write actual: %w", err)
	}
	res.ActualPath = actualPath

	baseline, err := os.ReadFile(baselinePath)
	if os.IsNotExist(err) {
		if err := writeFile(baselinePath, actual); err != nil {
			return res, fmt.Errorf("visual: write baseline: %w", err)
		}
		c.logger.Info("visual: baseline created", "name", name, "path", baselinePath)
		res.Matched, res.Passed, res.FirstRun = true, true, true
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("visual: read baseline: %w", err)
	}

	baseImg, err := png.Decode(bytes.NewReader(baseline))
	if err != nil {
		return res, fmt.Errorf("visual: decode baseline %s: %w", name, err)
	}
	actImg, err := png.Decode(bytes.NewReader(actual))
	if err != nil {
		return res, fmt.Errorf("visual: decode actual %s: %w", name, err)
	}

	bb, ab := baseImg.Bounds(), actImg.Bounds()
	if bb.Dx() != ab.Dx() || bb.Dy() != ab.Dy() {
		return res, &DimensionMismatchError{
			Name:  name,
			WantW: bb.Dx(), WantH: bb.Dy(),
			GotW: ab.Dx(), GotH: ab.Dy(),
		}
	}

	count, diffImg := diff(baseImg, actImg, c.cfg.Threshold)
	res.DifferingPixels = count
	res.Matched = count == 0
	res.Passed = count <= c.cfg.cutoff()

	if count > 0 {
		diffPath := filepath.Join(c.cfg.DiffDir, name+".png")
		var buf bytes.Buffer
		if err := png.Encode(&buf, diffImg); err != nil {
			return res, fmt.Errorf("visual: encode diff: %w", err)
		}
		if err := writeFile(diffPath, buf.Bytes()); err != nil {
			return res, fmt.Errorf("visual: write diff: %w", err)
		}
		res.DiffPath = diffPath
		c.logger.Warn("visual: differences found",
			"name", name, "pixels", count, "passed", res.Passed, "diff", diffPath)
	}

	return res, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
