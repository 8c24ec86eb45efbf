package sep

import (
	. "github.com/st3v3nmw/notifybarrier/internal/attest"
	"github.com/st3v3nmw/notifybarrier/internal/barrier"
	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

// completes arms a wait for a job on id finishing with status and code and
// completes one.
func completes(do *Do, id notify.ObjectID, objectType notify.ObjectType, status notify.JobStatus, code notify.JobErrorCode) *Expectation {
	return do.Expect(barrier.ForJob(id, objectType, status, code)).
		Trigger(func() { do.CompleteJob(id, objectType, status, code) })
}

func JobSuccess() *Suite {
	return New().
		// 1
		Test("LUN Bind Job", func(do *Do) {
			completes(do, lun, notify.ObjectTypeLUN, notify.JobStatusOK, notify.JobErrorNone).
				Returns().
				ObjectID(Is(lun)).
				Type(Is(notify.TypeJobOutcome)).
				JobStatus(Is(notify.JobStatusOK)).
				JobError(Is(notify.JobErrorNone)).
				Assert("Binding a LUN should finish with status OK and no error.")
		}).

		// 2
		Test("Job Numbers Advance", func(do *Do) {
			completes(do, raidGroup, notify.ObjectTypeRaidGroup, notify.JobStatusOK, notify.JobErrorNone).
				Returns().
				JSON("job.number", Not(Is("0")), Matches(`^\d+$`)).
				JSON("job.error", Is("NO_ERROR")).
				Assert("Each job outcome should carry its job number.")
		})
}

func JobErrors() *Suite {
	return New().
		// 1
		Test("No Spares", func(do *Do) {
			completes(do, vd, notify.ObjectTypeVirtualDrive, notify.JobStatusGenericFailure, notify.JobErrorNoSparesAvailable).
				Returns().
				JobStatus(Is(notify.JobStatusGenericFailure)).
				JobError(Is(notify.JobErrorNoSparesAvailable)).
				Assert("A swap without spares should fail with NO_SPARES_AVAILABLE.")
		}).

		// 2
		Test("Broken Raid Group", func(do *Do) {
			completes(do, vd, notify.ObjectTypeVirtualDrive, notify.JobStatusGenericFailure, notify.JobErrorRaidGroupBroken).
				Returns().
				JobError(OneOf(notify.JobErrorRaidGroupBroken, notify.JobErrorSwapValidationFail)).
				Assert("A swap into a broken raid group should be refused.")
		})
}

func JobMismatch() *Suite {
	return New().
		// 1
		Test("Failure When Success Expected", func(do *Do) {
			do.Expect(barrier.ForJob(vd, notify.ObjectTypeVirtualDrive, notify.JobStatusOK, notify.JobErrorNone)).
				Trigger(func() {
					do.CompleteJob(vd, notify.ObjectTypeVirtualDrive, notify.JobStatusGenericFailure, notify.JobErrorNoSuitableSpare)
				}).
				Fails(barrier.ErrJobOutcomeMismatch).
				Assert("A job finishing differently than expected must fail the wait at once.")
		}).

		// 2
		Test("Outcome Without Job", func(do *Do) {
			do.Expect(barrier.ForJob(vd, notify.ObjectTypeVirtualDrive, notify.JobStatusOK, notify.JobErrorNone)).
				Trigger(func() {
					do.Inject(notify.NodeA, do.Cluster().Notification(vd, notify.ObjectTypeVirtualDrive, notify.TypeJobOutcome))
				}).
				Fails(barrier.ErrJobOutcomeMismatch).
				Assert("A job notification without an outcome cannot be checked.")
		})
}
