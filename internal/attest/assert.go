package attest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

// Assert defines the interface for executing and validating test assertions.
type Assert interface {
	// Assert executes the expectation and validates the result.
	Assert(help string)
	// execute runs the expectation once and returns whether it meets expectations.
	execute() bool
	// check validates the result and panics with formatted error message on failure.
	check()
	// formatHelp formats help text with proper indentation for error messages.
	formatHelp() string
}

var _ Assert = (*NotificationAssert)(nil)
var _ Assert = (*FailureAssert)(nil)

// AssertBase provides common assertion functionality.
type AssertBase struct {
	help string

	config *Config
}

func (a *AssertBase) formatHelp() string {
	return "\n\n  " + strings.ReplaceAll(a.help, "\n", "\n  ")
}

// NotificationAssert validates the notification a satisfied wait returned.
type NotificationAssert struct {
	AssertBase

	expect *Expectation
	result outcome

	objectCheckers  []Checker[notify.ObjectID]
	nodeCheckers    []Checker[notify.NodeID]
	typeCheckers    []Checker[notify.Type]
	statusCheckers  []Checker[notify.JobStatus]
	errorCheckers   []Checker[notify.JobErrorCode]
	elapsedCheckers []Checker[time.Duration]
	jsonCheckers    []JSONFieldChecker
}

// ObjectID adds checkers for the notified object.
func (a *NotificationAssert) ObjectID(checkers ...Checker[notify.ObjectID]) *NotificationAssert {
	a.objectCheckers = append(a.objectCheckers, checkers...)
	return a
}

// Node adds checkers for the node whose capture was chosen.
func (a *NotificationAssert) Node(checkers ...Checker[notify.NodeID]) *NotificationAssert {
	a.nodeCheckers = append(a.nodeCheckers, checkers...)
	return a
}

// Type adds checkers for the notification type.
func (a *NotificationAssert) Type(checkers ...Checker[notify.Type]) *NotificationAssert {
	a.typeCheckers = append(a.typeCheckers, checkers...)
	return a
}

// JobStatus adds checkers for the job status. A notification without a job
// outcome fails them.
func (a *NotificationAssert) JobStatus(checkers ...Checker[notify.JobStatus]) *NotificationAssert {
	a.statusCheckers = append(a.statusCheckers, checkers...)
	return a
}

// JobError adds checkers for the job error code.
func (a *NotificationAssert) JobError(checkers ...Checker[notify.JobErrorCode]) *NotificationAssert {
	a.errorCheckers = append(a.errorCheckers, checkers...)
	return a
}

// Elapsed adds checkers for how long arm, trigger and wait took together.
func (a *NotificationAssert) Elapsed(checkers ...Checker[time.Duration]) *NotificationAssert {
	a.elapsedCheckers = append(a.elapsedCheckers, checkers...)
	return a
}

// JSON adds expected checkers for a field of the notification data at the
// given gjson path.
func (a *NotificationAssert) JSON(path string, checkers ...Checker[string]) *NotificationAssert {
	for _, checker := range checkers {
		a.jsonCheckers = append(a.jsonCheckers, JSONFieldChecker{
			Path:    path,
			Checker: checker,
		})
	}

	return a
}

func (a *NotificationAssert) Assert(help string) {
	a.help = help

	a.execute()
	a.check()
}

func (a *NotificationAssert) execute() bool {
	a.result = a.expect.run()
	if a.result.err != nil {
		return false
	}

	p := a.result.payload
	return checkAll(p.ObjectID, a.objectCheckers, nil) &&
		checkAll(p.Node, a.nodeCheckers, nil) &&
		checkAll(p.Type, a.typeCheckers, nil) &&
		a.checkJob(nil) &&
		checkAll(a.result.elapsed, a.elapsedCheckers, nil) &&
		checkAllJSON(string(p.Data), a.jsonCheckers, nil)
}

func (a *NotificationAssert) checkJob(onFail func(field, expected string, actual any)) bool {
	job := a.result.payload.Job
	if job == nil {
		if len(a.statusCheckers)+len(a.errorCheckers) > 0 {
			if onFail != nil {
				onFail("job outcome", "present", "none")
			}

			return false
		}

		return true
	}

	var failStatus func(Checker[notify.JobStatus], notify.JobStatus)
	var failError func(Checker[notify.JobErrorCode], notify.JobErrorCode)
	if onFail != nil {
		failStatus = func(m Checker[notify.JobStatus], actual notify.JobStatus) {
			onFail("job status", m.Expected(), actual)
		}
		failError = func(m Checker[notify.JobErrorCode], actual notify.JobErrorCode) {
			onFail("job error", m.Expected(), actual)
		}
	}

	return checkAll(job.Status, a.statusCheckers, failStatus) &&
		checkAll(job.ErrorCode, a.errorCheckers, failError)
}

func (a *NotificationAssert) check() {
	spec := a.expect.spec

	if err := a.result.err; err != nil {
		msg := fmt.Sprintf("wait for %s\n  Expected: notification delivered\n  Actual error: %v%s",
			spec, err, a.formatHelp())
		panic(msg)
	}

	p := a.result.payload
	fail := func(field, expected string, actual any) {
		msg := fmt.Sprintf("wait for %s\n  Expected %s: %s\n  Actual %s: %v%s",
			spec, field, expected, field, actual, a.formatHelp())
		panic(msg)
	}

	checkAll(p.ObjectID, a.objectCheckers, func(m Checker[notify.ObjectID], actual notify.ObjectID) {
		fail("object id", m.Expected(), actual)
	})

	checkAll(p.Node, a.nodeCheckers, func(m Checker[notify.NodeID], actual notify.NodeID) {
		fail("node", m.Expected(), actual)
	})

	checkAll(p.Type, a.typeCheckers, func(m Checker[notify.Type], actual notify.Type) {
		fail("type", m.Expected(), actual)
	})

	a.checkJob(fail)

	checkAll(a.result.elapsed, a.elapsedCheckers, func(m Checker[time.Duration], actual time.Duration) {
		fail("elapsed", m.Expected(), actual)
	})

	checkAllJSON(string(p.Data), a.jsonCheckers, func(m JSONFieldChecker, actual any) {
		fail(fmt.Sprintf("data field %q", m.Path), m.Checker.Expected(), actual)
	})
}

// FailureAssert validates that an expectation is not satisfied.
type FailureAssert struct {
	AssertBase

	expect *Expectation
	target error
	result outcome
}

func (a *FailureAssert) Assert(help string) {
	a.help = help

	a.execute()
	a.check()
}

func (a *FailureAssert) execute() bool {
	a.result = a.expect.run()
	return errors.Is(a.result.err, a.target)
}

func (a *FailureAssert) check() {
	spec := a.expect.spec

	if a.result.err == nil {
		msg := fmt.Sprintf("wait for %s\n  Expected error: %v\n  Actual: %s delivered by %s%s",
			spec, a.target, a.result.payload.Notification, a.result.payload.Node, a.formatHelp())
		panic(msg)
	}

	if !errors.Is(a.result.err, a.target) {
		msg := fmt.Sprintf("wait for %s\n  Expected error: %v\n  Actual error: %v%s",
			spec, a.target, a.result.err, a.formatHelp())
		panic(msg)
	}
}
