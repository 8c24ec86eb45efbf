package attest

import (
	"context"
	"time"

	"github.com/st3v3nmw/notifybarrier/internal/barrier"
)

// Promise represents a deferred wait
type Promise[P any, A any] interface {
	// Trigger sets the action that should cause the notification
	Trigger(func()) P
	// Within sets a custom timeout for the wait
	Within(time.Duration) P
	// Returns creates an assertion on the delivered notification
	Returns() A
}

// Compile-time type check
var _ Promise[*Expectation, *NotificationAssert] = (*Expectation)(nil)

// Expectation represents a deferred Arm / trigger / Wait cycle.
type Expectation struct {
	ctx     context.Context
	config  *Config
	barrier *barrier.Barrier

	spec    barrier.Spec
	trigger func()
	timeout time.Duration
}

func (e *Expectation) Trigger(fn func()) *Expectation {
	e.trigger = fn
	return e
}

func (e *Expectation) Within(timeout time.Duration) *Expectation {
	if timeout <= 0 {
		panic("Within() needs a positive timeout")
	}

	e.timeout = timeout
	return e
}

// Returns asserts the wait is satisfied by a notification.
func (e *Expectation) Returns() *NotificationAssert {
	return &NotificationAssert{
		AssertBase: AssertBase{config: e.config},
		expect:     e,
	}
}

// TimesOut asserts the wait ends with barrier.ErrTimeout.
func (e *Expectation) TimesOut() *FailureAssert {
	return &FailureAssert{
		AssertBase: AssertBase{config: e.config},
		expect:     e,
		target:     barrier.ErrTimeout,
	}
}

// Fails asserts the arm or the wait ends with an error matching target.
func (e *Expectation) Fails(target error) *FailureAssert {
	return &FailureAssert{
		AssertBase: AssertBase{config: e.config},
		expect:     e,
		target:     target,
	}
}

// outcome is the result of running one expectation.
type outcome struct {
	payload barrier.Payload
	err     error
	elapsed time.Duration
}

// run arms, fires the trigger and waits. An Arm error is reported as the
// outcome without waiting.
func (e *Expectation) run() outcome {
	start := time.Now()

	if err := e.barrier.Arm(e.spec); err != nil {
		return outcome{err: err, elapsed: time.Since(start)}
	}

	if e.trigger != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.barrier.Disarm()
					panic(r)
				}
			}()

			e.trigger()
		}()
	}

	payload, err := e.barrier.Wait(e.ctx, e.timeout)

	return outcome{payload: payload, err: err, elapsed: time.Since(start)}
}
