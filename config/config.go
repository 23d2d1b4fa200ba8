// Package config loads the framework configuration from YAML and
// applies defaults. Components never read configuration from global
// state; the loaded value is threaded into whichever constructor needs
// it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/selmend/heal"
)

// Config is the top-level configuration.
type Config struct {
	AutoHealing   AutoHealingConfig   `yaml:"autoHealing"`
	VisualTesting VisualTestingConfig `yaml:"visualTesting"`
	Dash          DashConfig          `yaml:"dash"`
}

// AutoHealingConfig controls the locator resolver.
type AutoHealingConfig struct {
	Enabled         bool             `yaml:"enabled"`
	Sensitivity     heal.Sensitivity `yaml:"sensitivity"` // low | medium | high
	MaxRetries      int              `yaml:"maxRetries"`
	ReportPath      string           `yaml:"reportPath"`      // healing log JSON
	SuggestionsPath string           `yaml:"suggestionsPath"` // selector-update suggestions
	HistoryDB       string           `yaml:"historyDB"`       // SQLite history, empty disables
	WebhookURL      string           `yaml:"webhookURL"`      // empty disables
}

// VisualTestingConfig controls screenshot comparison.
type VisualTestingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Threshold   float64 `yaml:"threshold"`   // per-pixel, 0.0-1.0
	PixelCutoff int     `yaml:"pixelCutoff"` // 0 means threshold*1000
	BaselineDir string  `yaml:"baselineDir"`
	DiffDir     string  `yaml:"diffDir"`
	ActualDir   string  `yaml:"actualDir"`
	ReportPath  string  `yaml:"reportPath"`
}

// DashConfig controls the dashboard feed server.
type DashConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a YAML configuration file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.AutoHealing.Sensitivity == "" {
		c.AutoHealing.Sensitivity = heal.SensitivityMedium
	}
	if c.AutoHealing.MaxRetries <= 0 {
		c.AutoHealing.MaxRetries = 3
	}
	if c.AutoHealing.ReportPath == "" {
		c.AutoHealing.ReportPath = "healing-log.json"
	}
	if c.AutoHealing.SuggestionsPath == "" {
		c.AutoHealing.SuggestionsPath = "healing-suggestions.txt"
	}
	if c.VisualTesting.Threshold <= 0 {
		c.VisualTesting.Threshold = 0.1
	}
	if c.VisualTesting.BaselineDir == "" {
		c.VisualTesting.BaselineDir = "visual/baseline"
	}
	if c.VisualTesting.DiffDir == "" {
		c.VisualTesting.DiffDir = "visual/diff"
	}
	if c.VisualTesting.ActualDir == "" {
		c.VisualTesting.ActualDir = "visual/actual"
	}
	if c.VisualTesting.ReportPath == "" {
		c.VisualTesting.ReportPath = "visual/visual-report.json"
	}
	if c.Dash.Addr == "" {
		c.Dash.Addr = ":8790"
	}
}

func (c *Config) validate() error {
	switch c.AutoHealing.Sensitivity {
	case heal.SensitivityLow, heal.SensitivityMedium, heal.SensitivityHigh:
	default:
		return fmt.Errorf("config: unknown sensitivity %q", c.AutoHealing.Sensitivity)
	}
	if c.VisualTesting.Threshold < 0 || c.VisualTesting.Threshold > 1 {
		return fmt.Errorf("config: visual threshold %v out of range 0-1", c.VisualTesting.Threshold)
	}
	return nil
}
