package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

const DefaultPath = "notifybarrier.yaml"

// Config is the harness file. Durations are written as Go duration strings
// ("250ms"). A nil duration is unset; an explicit zero is kept.
type Config struct {
	Scenario      string         `yaml:"scenario"`
	Stage         string         `yaml:"stage,omitempty"`
	DualNode      bool           `yaml:"dual_node"`
	GracePeriod   *time.Duration `yaml:"grace_period,omitempty"`
	WaitTimeout   *time.Duration `yaml:"wait_timeout,omitempty"`
	DeliveryDelay *time.Duration `yaml:"delivery_delay,omitempty"`
}

// Duration returns a pointer to d for Config fields.
func Duration(d time.Duration) *time.Duration {
	return &d
}

// ValueOf returns the duration d points to, or zero when unset.
func ValueOf(d *time.Duration) time.Duration {
	if d == nil {
		return 0
	}

	return *d
}

// Default is what `init` writes.
func Default() *Config {
	return &Config{
		Scenario:    "lifecycle",
		DualNode:    true,
		GracePeriod: Duration(100 * time.Millisecond),
		WaitTimeout: Duration(5 * time.Second),
	}
}

// Load reads the harness file from the working directory. A missing file
// yields the defaults.
func Load() (*Config, error) {
	cfg, err := LoadFrom(DefaultPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

func LoadFrom(path string) (*Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(bytes, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validation
	if cfg.Scenario == "" {
		return nil, fmt.Errorf("scenario cannot be empty")
	}

	durations := []struct {
		name  string
		value *time.Duration
	}{
		{"grace_period", cfg.GracePeriod},
		{"wait_timeout", cfg.WaitTimeout},
		{"delivery_delay", cfg.DeliveryDelay},
	}

	for _, d := range durations {
		if d.value != nil && *d.value < 0 {
			return nil, fmt.Errorf("invalid %s %s: must not be negative", d.name, *d.value)
		}
	}

	return &cfg, nil
}

func Save(cfg *Config) error {
	return SaveTo(cfg, DefaultPath)
}

func SaveTo(cfg *Config, path string) error {
	bytes, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, bytes, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
