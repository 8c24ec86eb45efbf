package sep

import (
	"time"

	. "github.com/st3v3nmw/notifybarrier/internal/attest"
	"github.com/st3v3nmw/notifybarrier/internal/barrier"
	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

func SwapIn() *Suite {
	return New().
		// 1
		Test("Drive Removed", func(do *Do) {
			waitFor(do, drive, notify.ObjectTypePhysicalDrive, notify.TypeLifecycleDestroy).
				Returns().
				ObjectID(Is(drive)).
				JSON("object_type", Is("PHYSICAL_DRIVE")).
				Assert("Pulling a drive destroys its physical drive object.")

			waitFor(do, pvd, notify.ObjectTypeProvisionedDrive, notify.TypeLifecycleFail).
				Returns().
				Type(Is(notify.TypeLifecycleFail)).
				Assert("The provisioned drive above it fails.")
		}).

		// 2
		Test("Spare Swapped In", func(do *Do) {
			completes(do, vd, notify.ObjectTypeVirtualDrive, notify.JobStatusOK, notify.JobErrorNone).
				Returns().
				JobStatus(Is(notify.JobStatusOK)).
				Assert("The swap-in job should succeed when a spare is available.")

			waitFor(do, vd, notify.ObjectTypeVirtualDrive, notify.TypeSwapInfo).
				Returns().
				ObjectID(Is(vd)).
				Assert("The virtual drive reports which spare was swapped in.")

			waitFor(do, sparePVD, notify.ObjectTypeProvisionedDrive, notify.TypeZeroing).
				Returns().
				ObjectID(Is(sparePVD)).
				Assert("The spare is zeroed before it takes data.")
		})
}

func RebuildProgress() *Suite {
	return New().
		// 1
		Test("Rebuild Checkpoints", func(do *Do) {
			do.Expect(barrier.ForObject(raidGroup, notify.ObjectTypeRaidGroup, notify.TypeDataReconstruction)).
				Trigger(func() {
					for range 4 {
						do.Lifecycle(raidGroup, notify.ObjectTypeRaidGroup, notify.TypeDataReconstruction)
					}
				}).
				Returns().
				Type(Is(notify.TypeDataReconstruction)).
				Assert("Rebuild progress is reported at every checkpoint.")

			// Late checkpoints from the last cycle must not satisfy the next one.
			do.Settle()
		}).

		// 2
		Test("Raid Group Ready After Rebuild", func(do *Do) {
			waitFor(do, raidGroup, notify.ObjectTypeRaidGroup, notify.TypeLifecycleReady).
				Returns().
				ObjectID(Is(raidGroup)).
				Assert("The raid group returns to READY once rebuild completes.")
		}).

		// 3
		Test("LUN Keeps Serving", func(do *Do) {
			do.Expect(barrier.ForObject(lun, notify.ObjectTypeLUN, notify.TypeLifecycleFail)).
				Trigger(func() {
					do.Lifecycle(raidGroup, notify.ObjectTypeRaidGroup, notify.TypeDataReconstruction)
				}).
				Within(300 * time.Millisecond).
				TimesOut().
				Assert("The LUN must not fail while its raid group rebuilds.")
		})
}
