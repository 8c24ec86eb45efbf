package barrier

import (
	"time"

	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

// minSemaphoreDepth lets a duplicate release race a consuming Disarm
// without blocking the dispatcher.
const minSemaphoreDepth = 2

// Config holds tuning for a Barrier.
type Config struct {
	// LocalNode is the node the test thread talks to; Wait always waits on
	// it first.
	LocalNode notify.NodeID

	// GracePeriod is slept after a successful wait so trailing duplicate
	// deliveries land while the wait is still armed. Zero disables it.
	GracePeriod time.Duration

	// SemaphoreDepth is the capacity of each node's release semaphore.
	SemaphoreDepth int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LocalNode:      notify.NodeA,
		GracePeriod:    time.Second,
		SemaphoreDepth: minSemaphoreDepth,
	}
}

func (c *Config) normalized() *Config {
	if c == nil {
		return DefaultConfig()
	}

	out := *c
	if !out.LocalNode.Valid() {
		out.LocalNode = notify.NodeA
	}

	if out.SemaphoreDepth < minSemaphoreDepth {
		out.SemaphoreDepth = minSemaphoreDepth
	}

	if out.GracePeriod < 0 {
		out.GracePeriod = 0
	}

	return &out
}
