package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/selmend/heal"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "selmend.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
autoHealing:
  enabled: true
  sensitivity: high
  maxRetries: 5
  reportPath: out/heals.json
  historyDB: out/heals.db
visualTesting:
  enabled: true
  threshold: 0.2
  baselineDir: shots/base
dash:
  addr: ":9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.AutoHealing.Enabled || cfg.AutoHealing.Sensitivity != heal.SensitivityHigh || cfg.AutoHealing.MaxRetries != 5 {
		t.Fatalf("autoHealing = %+v", cfg.AutoHealing)
	}
	if cfg.VisualTesting.Threshold != 0.2 || cfg.VisualTesting.BaselineDir != "shots/base" {
		t.Fatalf("visualTesting = %+v", cfg.VisualTesting)
	}
	// Unset fields take defaults.
	if cfg.VisualTesting.DiffDir != "visual/diff" {
		t.Fatalf("diffDir default = %q", cfg.VisualTesting.DiffDir)
	}
	if cfg.Dash.Addr != ":9000" {
		t.Fatalf("dash addr = %q", cfg.Dash.Addr)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.AutoHealing.Sensitivity != heal.SensitivityMedium {
		t.Fatalf("default sensitivity = %q", cfg.AutoHealing.Sensitivity)
	}
	if cfg.AutoHealing.MaxRetries != 3 {
		t.Fatalf("default maxRetries = %d", cfg.AutoHealing.MaxRetries)
	}
	if cfg.VisualTesting.Threshold != 0.1 {
		t.Fatalf("default threshold = %v", cfg.VisualTesting.Threshold)
	}
	if cfg.AutoHealing.Enabled {
		t.Fatal("healing must be opt-in")
	}
}

func TestLoadRejectsBadSensitivity(t *testing.T) {
	path := writeConfig(t, "autoHealing:\n  sensitivity: extreme\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown sensitivity")
	}
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	path := writeConfig(t, "visualTesting:\n  threshold: 7\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for out-of-range threshold")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
