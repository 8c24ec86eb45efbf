package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/st3v3nmw/notifybarrier/internal/config"
)

func run(args ...string) error {
	return Command().Run(context.Background(), append([]string{"notifybarrier"}, args...))
}

func TestInitWritesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, run("init"))

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	assert.Error(t, run("init"), "init must not overwrite an existing file")
}

func TestRunStage(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"single stage", []string{"run", "--grace-period", "10ms", "lifecycle", "ready"}, false},
		{"dual node", []string{"run", "--dual-node", "--grace-period", "0s", "jobs", "success"}, false},
		{"whole group", []string{"run", "--grace-period", "10ms", "jobs"}, false},
		{"unknown group", []string{"run", "nope"}, true},
		{"unknown stage", []string{"run", "lifecycle", "nope"}, true},
		{"too many args", []string{"run", "a", "b", "c"}, true},
		{"failover on one node", []string{"run", "--dual-node=false", "failover", "peer-dead"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")

	require.NoError(t, config.SaveTo(&config.Config{
		Scenario:    "failover",
		Stage:       "active-capture",
		DualNode:    true,
		GracePeriod: config.Duration(10 * time.Millisecond),
	}, path))

	assert.NoError(t, run("run", "--config", path))

	require.NoError(t, os.WriteFile(path, []byte("scenario: failover\ngrace_period: later\n"), 0644))
	assert.Error(t, run("run", "--config", path))
}

func TestListAndInfo(t *testing.T) {
	assert.NoError(t, run("list"))
	assert.NoError(t, run("info", "rebuild"))
	assert.Error(t, run("info"))
	assert.Error(t, run("info", "nope"))
}

func TestSuiteConfig(t *testing.T) {
	sc := suiteConfig(&config.Config{
		Scenario:    "jobs",
		GracePeriod: config.Duration(0),
		WaitTimeout: config.Duration(3 * time.Second),
	})
	assert.Negative(t, sc.GracePeriod, "explicit zero disables the grace period")
	assert.Equal(t, 3*time.Second, sc.DefaultWaitTimeout)

	sc = suiteConfig(&config.Config{Scenario: "jobs"})
	assert.Zero(t, sc.GracePeriod, "unset keeps the harness default")
}
