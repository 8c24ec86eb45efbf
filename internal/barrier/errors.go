package barrier

import "errors"

var (
	// ErrInvalidArgument reports a malformed wait specification.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyArmed reports an Arm while another wait is outstanding.
	ErrAlreadyArmed = errors.New("a notification wait is already armed")
	// ErrStaleMatchState reports an Arm while a previous match was never consumed.
	ErrStaleMatchState = errors.New("previous match was never consumed")
	// ErrNotArmed reports a Wait with nothing armed.
	ErrNotArmed = errors.New("no notification wait is armed")

	// ErrInvalidNotification reports an inbound notification with zero or
	// invalid identity fields.
	ErrInvalidNotification = errors.New("invalid notification")
	// ErrJobOutcomeMismatch reports a job-outcome notification for the armed
	// object whose status or error code differs from the expected one.
	ErrJobOutcomeMismatch = errors.New("job outcome mismatch")
	// ErrDuplicateMatch reports an extra matching notification for a type
	// that is delivered exactly once.
	ErrDuplicateMatch = errors.New("duplicate matching notification")
	// ErrCrossNodeMismatch reports that the two nodes captured disagreeing
	// notifications.
	ErrCrossNodeMismatch = errors.New("nodes disagree on matching notification")

	// ErrTimeout reports that the wait budget ran out.
	ErrTimeout = errors.New("timed out waiting for notification")

	ErrAlreadySetUp = errors.New("barrier already set up")
	ErrClosed       = errors.New("barrier closed")
)

// IsFatal reports whether err means the system under test broke an
// invariant. Timeouts and cancellation are not fatal; the caller may retry.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidNotification) ||
		errors.Is(err, ErrJobOutcomeMismatch) ||
		errors.Is(err, ErrDuplicateMatch) ||
		errors.Is(err, ErrCrossNodeMismatch)
}
