package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)

	cfg := &Config{
		Scenario:      "jobs",
		Stage:         "swap-in",
		DualNode:      true,
		GracePeriod:   Duration(250 * time.Millisecond),
		WaitTimeout:   Duration(2 * time.Second),
		DeliveryDelay: Duration(time.Millisecond),
	}
	require.NoError(t, SaveTo(cfg, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "grace_period: 250ms")

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDurationFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
		grace   *time.Duration
		timeout time.Duration
	}{
		{"unset", "scenario: lifecycle\n", nil, 0},
		{"explicit zero", "scenario: lifecycle\ngrace_period: 0s\n", Duration(0), 0},
		{"set", "scenario: lifecycle\ngrace_period: 20ms\nwait_timeout: 1m\n", Duration(20 * time.Millisecond), time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultPath)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			cfg, err := LoadFrom(path)
			require.NoError(t, err)
			assert.Equal(t, tt.grace, cfg.GracePeriod)
			assert.Equal(t, tt.timeout, ValueOf(cfg.WaitTimeout))
		})
	}
}

func TestLoadFromRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing scenario", "dual_node: true\n"},
		{"bad duration", "scenario: lifecycle\ngrace_period: soon\n"},
		{"negative duration", "scenario: lifecycle\nwait_timeout: -1s\n"},
		{"not yaml", "scenario: [lifecycle\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultPath)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
