package sep

import (
	"time"

	. "github.com/st3v3nmw/notifybarrier/internal/attest"
	"github.com/st3v3nmw/notifybarrier/internal/barrier"
	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

func PeerDead() *Suite {
	return New().
		Setup(requireDualNode).

		// 1
		Test("Peer Must Confirm", func(do *Do) {
			n := do.Cluster().Notification(lun, notify.ObjectTypeLUN, notify.TypeLifecycleReady)

			do.Expect(barrier.ForObject(lun, notify.ObjectTypeLUN, notify.TypeLifecycleReady)).
				Trigger(func() {
					do.Inject(notify.NodeA, n)
					do.Inject(notify.NodeA, n)
				}).
				Within(300 * time.Millisecond).
				TimesOut().
				Assert("While the peer is alive it must confirm the notification too.")
		}).

		// 2
		Test("Local Node Suffices Once Peer Dies", func(do *Do) {
			do.StopNode(notify.NodeB)

			waitFor(do, lun, notify.ObjectTypeLUN, notify.TypeLifecycleHibernate).
				Returns().
				Node(Is(notify.NodeA)).
				Assert("With the peer dead only the local node's copy is expected.")
		}).

		// 3
		Test("Peer Returns", func(do *Do) {
			do.StartNode(notify.NodeB)

			if live := do.Cluster().Live(); len(live) != notify.MaxNodes {
				panic("SPB should be running again")
			}

			if !do.Barrier().PeerAlive(notify.NodeA) {
				panic("The barrier should see the peer alive again")
			}
		}).

		// 4
		Test("Both Nodes Again", func(do *Do) {
			waitFor(do, lun, notify.ObjectTypeLUN, notify.TypeLifecycleReady).
				Returns().
				ObjectID(Is(lun)).
				Assert("Once the peer is back both nodes confirm again.")
		}).

		// 5
		Test("Peer Dies Mid-Wait", func(do *Do) {
			n := do.Cluster().Notification(vd, notify.ObjectTypeVirtualDrive, notify.TypeLifecycleReady)

			do.Expect(barrier.ForObject(vd, notify.ObjectTypeVirtualDrive, notify.TypeLifecycleReady)).
				Trigger(func() {
					do.Inject(notify.NodeA, n)
					do.StopNode(notify.NodeB)
				}).
				Within(time.Second).
				Returns().
				Node(Is(notify.NodeA)).
				Assert("A copy counted before the peer died should satisfy the wait once only one is needed.")
		})
}

func ActiveCapture() *Suite {
	return New().
		Setup(requireDualNode).

		// 1
		Test("Active Node Chosen", func(do *Do) {
			waitFor(do, raidGroup, notify.ObjectTypeRaidGroup, notify.TypeLifecycleReady).
				Returns().
				Node(Is(notify.NodeA)).
				Assert("The active node's capture should be returned.")
		}).

		// 2
		Test("After Failover", func(do *Do) {
			active := do.Failover()
			if active != notify.NodeB {
				panic("SPB should be active after failover")
			}

			waitFor(do, raidGroup, notify.ObjectTypeRaidGroup, notify.TypeLifecycleHibernate).
				Returns().
				Node(Is(notify.NodeB)).
				Assert("After failover the new active node's capture should be returned.")
		}).

		// 3
		Test("Active Dies", func(do *Do) {
			do.StopNode(notify.NodeB)

			waitFor(do, raidGroup, notify.ObjectTypeRaidGroup, notify.TypeLifecycleReady).
				Returns().
				Node(Is(notify.NodeA)).
				JSON("active", Is("true")).
				Assert("The survivor takes over and its capture is returned.")
		})
}

func Disagreement() *Suite {
	return New().
		Setup(requireDualNode).

		// 1
		Test("Class Mismatch", func(do *Do) {
			a := do.Cluster().Notification(lun, notify.ObjectTypeLUN, notify.TypeLifecycleReady)
			b := a
			b.ClassID = notify.ClassIDStriper

			do.Expect(barrier.ForObject(lun, notify.ObjectTypeLUN, notify.TypeLifecycleReady)).
				Trigger(func() {
					do.Inject(notify.NodeA, a)
					do.Inject(notify.NodeA, a)
					do.Inject(notify.NodeB, b)
					do.Inject(notify.NodeB, b)
				}).
				Fails(barrier.ErrCrossNodeMismatch).
				Assert("Both nodes describe the same object and must agree on its class.")
		}).

		// 2
		Test("Package Mismatch", func(do *Do) {
			a := do.Cluster().Notification(lun, notify.ObjectTypeLUN, notify.TypeLifecycleReady)
			b := a
			b.SourcePackage = notify.PackageESP

			do.Expect(barrier.ForObject(lun, notify.ObjectTypeLUN, notify.TypeLifecycleReady)).
				Trigger(func() {
					do.Inject(notify.NodeA, a)
					do.Inject(notify.NodeA, a)
					do.Inject(notify.NodeB, b)
					do.Inject(notify.NodeB, b)
				}).
				Fails(barrier.ErrCrossNodeMismatch).
				Assert("Both nodes must agree on the package that sent the notification.")
		})
}
