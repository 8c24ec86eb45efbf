package attest

import "time"

// Config holds configuration options for the scenario harness.
type Config struct {
	// DualNode runs both storage processors and attaches the barrier to both.
	DualNode bool

	// DefaultWaitTimeout bounds each expectation unless Within overrides it.
	DefaultWaitTimeout time.Duration
	// GracePeriod is how long a satisfied wait stays armed to catch trailing
	// duplicates. A negative value disables it.
	GracePeriod time.Duration

	// DeliveryDelay is added before every callback to mimic transport latency.
	DeliveryDelay time.Duration
	// RestartDelay between stop and start during RestartNode.
	RestartDelay time.Duration

	// SettleTimeout bounds how long Settle waits for queued deliveries.
	SettleTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultWaitTimeout: 5 * time.Second,
		GracePeriod:        100 * time.Millisecond,
		RestartDelay:       50 * time.Millisecond,
		SettleTimeout:      2 * time.Second,
	}
}

// merge overlays the non-zero fields of config on the defaults.
func merge(config *Config) *Config {
	merged := DefaultConfig()
	if config == nil {
		return merged
	}

	merged.DualNode = config.DualNode

	if config.DefaultWaitTimeout != 0 {
		merged.DefaultWaitTimeout = config.DefaultWaitTimeout
	}

	if config.GracePeriod != 0 {
		merged.GracePeriod = config.GracePeriod
	}

	if config.DeliveryDelay != 0 {
		merged.DeliveryDelay = config.DeliveryDelay
	}

	if config.RestartDelay != 0 {
		merged.RestartDelay = config.RestartDelay
	}

	if config.SettleTimeout != 0 {
		merged.SettleTimeout = config.SettleTimeout
	}

	return merged
}
