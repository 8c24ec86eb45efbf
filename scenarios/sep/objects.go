package sep

import (
	. "github.com/st3v3nmw/notifybarrier/internal/attest"
	"github.com/st3v3nmw/notifybarrier/internal/barrier"
	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

// Object ids of the simulated configuration: one raid group bound over
// four drives, a LUN on top, and a spare.
const (
	raidGroup notify.ObjectID = 0x10c
	lun       notify.ObjectID = 0x10d
	vd        notify.ObjectID = 0x108
	pvd       notify.ObjectID = 0x104
	sparePVD  notify.ObjectID = 0x105
	drive     notify.ObjectID = 0x20
)

// waitFor arms a wait for object's state and triggers it on every live node.
func waitFor(do *Do, id notify.ObjectID, objectType notify.ObjectType, state notify.Type) *Expectation {
	return do.Expect(barrier.ForObject(id, objectType, state)).
		Trigger(func() { do.Lifecycle(id, objectType, state) })
}

// requireDualNode fails setup when the suite runs on one node.
func requireDualNode(do *Do) {
	if !do.Cluster().DualNode() {
		panic("These stages need both storage processors.\nRun them with --dual-node.")
	}
}
