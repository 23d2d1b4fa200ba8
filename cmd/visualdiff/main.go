// Command visualdiff compares a PNG screenshot against a baseline
// offline, writes the diff artifact and prints the result as JSON. The
// exit code is 0 when the comparison passes, 1 otherwise.
//
// Usage:
//
//	visualdiff -baseline shots/base/login.png -actual shots/run/login.png
//	visualdiff -baseline a.png -actual b.png -threshold 0.05 -out diffout
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/selmend/visual"
)

func main() {
	baselinePath := flag.String("baseline", "", "baseline PNG file")
	actualPath := flag.String("actual", "", "actual PNG file to compare")
	threshold := flag.Float64("threshold", 0.1, "per-pixel difference threshold, 0.0-1.0")
	cutoff := flag.Int("cutoff", 0, "differing-pixel cutoff, 0 means threshold*1000")
	outDir := flag.String("out", "visualdiff-out", "directory for diff artifacts")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *baselinePath == "" || *actualPath == "" {
		fmt.Fprintln(os.Stderr, "usage: visualdiff -baseline <png> -actual <png>")
		os.Exit(2)
	}

	res, err := run(logger, *baselinePath, *actualPath, *threshold, *cutoff, *outDir)
	if err != nil {
		logger.Error("visualdiff: fatal", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(res)

	if !res.Passed {
		os.Exit(1)
	}
}

func run(logger *slog.Logger, baselinePath, actualPath string, threshold float64, cutoff int, outDir string) (visual.Result, error) {
	actual, err := os.ReadFile(actualPath)
	if err != nil {
		return visual.Result{}, fmt.Errorf("read actual: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(baselinePath), ".png")
	cmp := visual.New(visual.Config{
		BaselineDir: filepath.Dir(baselinePath),
		ActualDir:   filepath.Join(outDir, "actual"),
		DiffDir:     filepath.Join(outDir, "diff"),
		Threshold:   threshold,
		PixelCutoff: cutoff,
	}, logger)

	return cmp.Compare(name, actual)
}
