package barrier

import (
	"fmt"

	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

// Spec describes the one notification a Barrier waits for.
type Spec struct {
	ObjectID   notify.ObjectID
	ObjectType notify.ObjectType
	Type       notify.Type

	// Only compared when Type is notify.TypeJobOutcome.
	JobStatus    notify.JobStatus
	JobErrorCode notify.JobErrorCode
}

// ForObject builds a Spec for a non-job notification about one object.
func ForObject(id notify.ObjectID, objectType notify.ObjectType, typ notify.Type) Spec {
	return Spec{ObjectID: id, ObjectType: objectType, Type: typ}
}

// ForJob builds a Spec for the outcome of a job acting on one object.
func ForJob(id notify.ObjectID, objectType notify.ObjectType, status notify.JobStatus, code notify.JobErrorCode) Spec {
	return Spec{
		ObjectID:     id,
		ObjectType:   objectType,
		Type:         notify.TypeJobOutcome,
		JobStatus:    status,
		JobErrorCode: code,
	}
}

// Validate checks the invariants a Spec must hold before it can be armed.
func (s Spec) Validate() error {
	if !s.ObjectID.Usable() {
		return fmt.Errorf("%w: object id 0x%x", ErrInvalidArgument, uint32(s.ObjectID))
	}

	if !s.ObjectType.Single() {
		return fmt.Errorf("%w: object type %s is not exactly one supported type", ErrInvalidArgument, s.ObjectType)
	}

	if !s.Type.Single() {
		return fmt.Errorf("%w: notification type %s is not exactly one supported type", ErrInvalidArgument, s.Type)
	}

	return nil
}

// allowsExtra reports whether the notification type is known to be
// delivered more than once per state change.
func (s Spec) allowsExtra() bool {
	return s.Type == notify.TypeDataReconstruction || s.Type == notify.TypeConfigurationChanged
}

func (s Spec) matches(n notify.Notification) bool {
	return n.ObjectID == s.ObjectID && n.ObjectType == s.ObjectType && n.Type == s.Type
}

func (s Spec) checkJob(n notify.Notification) error {
	if n.Job == nil {
		return fmt.Errorf("%w: %s carries no job outcome", ErrJobOutcomeMismatch, n)
	}

	if n.Job.Status != s.JobStatus || n.Job.ErrorCode != s.JobErrorCode {
		return fmt.Errorf("%w: job %d for object 0x%x finished %s/%s, expected %s/%s",
			ErrJobOutcomeMismatch, n.Job.Number, uint32(n.ObjectID),
			n.Job.Status, n.Job.ErrorCode, s.JobStatus, s.JobErrorCode)
	}

	return nil
}

func (s Spec) String() string {
	str := fmt.Sprintf("obj=0x%x type=%s notif=%s", uint32(s.ObjectID), s.ObjectType, s.Type)
	if s.Type == notify.TypeJobOutcome {
		str += fmt.Sprintf(" status=%s err=%s", s.JobStatus, s.JobErrorCode)
	}

	return str
}

// validateNotification checks an inbound notification's identity fields.
// Notifications about no particular object carry notify.ObjectTypeAll and
// are exempt.
func validateNotification(n notify.Notification) error {
	if n.ObjectType == notify.ObjectTypeAll {
		return nil
	}

	switch {
	case n.ObjectType == 0:
		return fmt.Errorf("%w: zero object type (%s)", ErrInvalidNotification, n)
	case n.Type == 0:
		return fmt.Errorf("%w: zero notification type (%s)", ErrInvalidNotification, n)
	case !n.ObjectID.Usable():
		return fmt.Errorf("%w: object id 0x%x (%s)", ErrInvalidNotification, uint32(n.ObjectID), n)
	}

	return nil
}
