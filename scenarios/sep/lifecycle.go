package sep

import (
	"time"

	. "github.com/st3v3nmw/notifybarrier/internal/attest"
	"github.com/st3v3nmw/notifybarrier/internal/barrier"
	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

func Ready() *Suite {
	return New().
		// 1
		Test("LUN Ready", func(do *Do) {
			waitFor(do, lun, notify.ObjectTypeLUN, notify.TypeLifecycleReady).
				Returns().
				ObjectID(Is(lun)).
				Type(Is(notify.TypeLifecycleReady)).
				Elapsed(Below(time.Second)).
				Assert("The LUN should report READY once it is bound.\n" +
					"Every live node emits the transition and relays it to its peer.")
		}).

		// 2
		Test("Bottom Up Bring Up", func(do *Do) {
			steps := []struct {
				id         notify.ObjectID
				objectType notify.ObjectType
			}{
				{pvd, notify.ObjectTypeProvisionedDrive},
				{vd, notify.ObjectTypeVirtualDrive},
				{raidGroup, notify.ObjectTypeRaidGroup},
				{lun, notify.ObjectTypeLUN},
			}

			for _, step := range steps {
				waitFor(do, step.id, step.objectType, notify.TypeLifecycleReady).
					Returns().
					ObjectID(Is(step.id)).
					JSON("object_type", Is(step.objectType.String())).
					Assert("Each layer should report READY before the layer above it.")
			}
		}).

		// 3
		Test("Other Objects Ignored", func(do *Do) {
			do.Expect(barrier.ForObject(lun, notify.ObjectTypeLUN, notify.TypeLifecycleActivate)).
				Trigger(func() {
					do.Lifecycle(raidGroup, notify.ObjectTypeRaidGroup, notify.TypeLifecycleActivate)
					do.Lifecycle(lun, notify.ObjectTypeLUN, notify.TypeLifecycleHibernate)
					do.Lifecycle(lun, notify.ObjectTypeLUN, notify.TypeLifecycleActivate)
				}).
				Returns().
				ObjectID(Is(lun)).
				Type(Is(notify.TypeLifecycleActivate)).
				Assert("Notifications about other objects or states must not satisfy the wait.")
		})
}

func FailAndRecover() *Suite {
	return New().
		// 1
		Test("Raid Group Fails", func(do *Do) {
			waitFor(do, raidGroup, notify.ObjectTypeRaidGroup, notify.TypeLifecycleFail).
				Returns().
				Type(Is(notify.TypeLifecycleFail)).
				Assert("The raid group should report FAIL when it loses too many drives.")
		}).

		// 2
		Test("Raid Group Recovers", func(do *Do) {
			waitFor(do, raidGroup, notify.ObjectTypeRaidGroup, notify.TypeLifecycleReady).
				Returns().
				Type(Is(notify.TypeLifecycleReady)).
				Assert("The raid group should report READY once its drives return.")
		}).

		// 3
		Test("No Spurious Transition", func(do *Do) {
			do.Expect(barrier.ForObject(raidGroup, notify.ObjectTypeRaidGroup, notify.TypeLifecycleFail)).
				Within(300 * time.Millisecond).
				TimesOut().
				Assert("A healthy raid group must not report FAIL.")
		})
}

func Repeats() *Suite {
	return New().
		// 1
		Test("Configuration Changes Repeat", func(do *Do) {
			do.Expect(barrier.ForObject(raidGroup, notify.ObjectTypeRaidGroup, notify.TypeConfigurationChanged)).
				Trigger(func() {
					for range 3 {
						do.Lifecycle(raidGroup, notify.ObjectTypeRaidGroup, notify.TypeConfigurationChanged)
					}
				}).
				Returns().
				Type(Is(notify.TypeConfigurationChanged)).
				Assert("Configuration changes may be reported several times per change.")
		}).

		// 2
		Test("Repeated READY Is A Duplicate", func(do *Do) {
			n := do.Cluster().Notification(lun, notify.ObjectTypeLUN, notify.TypeLifecycleReady)

			do.Expect(barrier.ForObject(lun, notify.ObjectTypeLUN, notify.TypeLifecycleReady)).
				Trigger(func() {
					do.Lifecycle(lun, notify.ObjectTypeLUN, notify.TypeLifecycleReady)
					do.Inject(notify.NodeA, n)
				}).
				Fails(barrier.ErrDuplicateMatch).
				Assert("A lifecycle transition is reported once per node.\n" +
					"An extra copy points at a notification leak.")
		}).

		// 3
		Test("Malformed Notification", func(do *Do) {
			do.Expect(barrier.ForObject(lun, notify.ObjectTypeLUN, notify.TypeLifecycleReady)).
				Trigger(func() {
					do.Inject(notify.NodeA, notify.Notification{
						ObjectID:   notify.ObjectIDInvalid,
						ObjectType: notify.ObjectTypeLUN,
						Type:       notify.TypeLifecycleReady,
					})
				}).
				Fails(barrier.ErrInvalidNotification).
				Assert("A notification naming the invalid object id must be rejected.")
		}).

		// 4
		Test("Broadcasts Ignored", func(do *Do) {
			do.Expect(barrier.ForObject(lun, notify.ObjectTypeLUN, notify.TypeLifecycleReady)).
				Trigger(func() {
					do.Inject(notify.NodeA, notify.Notification{
						ObjectType: notify.ObjectTypeAll,
						Type:       notify.TypeObjectDataChanged,
					})
					do.Lifecycle(lun, notify.ObjectTypeLUN, notify.TypeLifecycleReady)
				}).
				Returns().
				ObjectID(Is(lun)).
				Assert("Broadcasts to every object type should not disturb the wait.")
		})
}
