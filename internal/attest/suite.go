package attest

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

var (
	green     = color.New(color.FgGreen).SprintFunc()
	red       = color.New(color.FgRed).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
	bold      = color.New(color.Bold).SprintFunc()
	checkMark = green("✓")
	crossMark = red("✗")
)

// Suite represents a scenario with setup and test functions that share one
// cluster and one barrier.
type Suite struct {
	setupFn func(*Do)
	tests   []TestFunc
	config  *Config
	logger  *zap.Logger
}

// TestFunc represents a single test case with name and function
type TestFunc struct {
	Name string
	Fn   func(*Do)
}

// New creates a new empty test suite
func New() *Suite {
	return &Suite{tests: make([]TestFunc, 0)}
}

// WithConfig sets the configuration for the test suite. Zero fields keep
// their defaults.
func (s *Suite) WithConfig(config *Config) *Suite {
	s.config = merge(config)
	return s
}

// WithLogger routes cluster and barrier logs to logger.
func (s *Suite) WithLogger(logger *zap.Logger) *Suite {
	s.logger = logger
	return s
}

// Setup adds a setup function that runs before all tests
func (s *Suite) Setup(fn func(*Do)) *Suite {
	s.setupFn = fn
	return s
}

// Test adds a test case to the suite
func (s *Suite) Test(name string, fn func(*Do)) *Suite {
	s.tests = append(s.tests, TestFunc{Name: name, Fn: fn})
	return s
}

// Len returns the number of test cases.
func (s *Suite) Len() int {
	return len(s.tests)
}

// Run executes the test suite and returns results
func (s *Suite) Run(ctx context.Context) bool {
	config := s.config
	if config == nil {
		config = DefaultConfig()
	}

	logger := s.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mode := "single-node"
	if config.DualNode {
		mode = "dual-node"
	}
	fmt.Printf("%s\n\n", yellow(mode))

	do, err := newDo(ctx, config, logger)
	if err != nil {
		fmt.Printf("%s %s\n", crossMark, "SETUP")
		fmt.Printf("\n%s\n", err)
		fmt.Printf("\n%s %s\n", bold("FAILED"), crossMark)

		return false
	}
	defer do.Done()

	// Run setup function if defined
	var failed bool
	if s.setupFn != nil {
		func() {
			defer func() {
				err := recover()
				if err != nil {
					failed = true

					fmt.Printf("%s %s\n", crossMark, "SETUP")
					fmt.Printf("\n%s\n", err)
				}
			}()

			s.setupFn(do)
		}()
	}

	// Run each test, stopping on first failure or cancellation
	for _, test := range s.tests {
		if failed {
			break
		}

		select {
		case <-ctx.Done():
			return false
		default:
		}

		start := time.Now()
		func() {
			defer func() {
				err := recover()
				if err != nil {
					failed = true

					// A test may panic between Arm and Wait.
					do.barrier.Disarm()

					fmt.Printf("%s %s\n", crossMark, test.Name)
					fmt.Printf("\n%s\n", err)
				}
			}()

			test.Fn(do)
		}()

		if !failed {
			fmt.Printf("%s %s %s\n", checkMark, test.Name, yellow(time.Since(start).Round(time.Millisecond)))
		}
	}

	if failed {
		fmt.Printf("\n%s %s\n", bold("FAILED"), crossMark)
	} else {
		fmt.Printf("\n%s %s\n", bold("PASSED"), checkMark)
	}

	return !failed
}
