package barrier

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

// Dispatch matches one notification from node against the armed Spec. It is
// the notify.Callback the barrier registers with every channel and may run
// concurrently with Arm, Wait and Disarm.
//
// Notifications from a node that is down, or arriving while nothing is
// armed, are dropped without error. Invalid notifications, job outcome
// mismatches and unexpected duplicates are returned and also latched so the
// pending Wait fails with the same error.
func (b *Barrier) Dispatch(node notify.NodeID, n notify.Notification) error {
	if !b.NodeUp(node) {
		b.observe(node, outcomeNodeDown)
		b.logger.Debug("Dropped notification from down node",
			zap.Stringer("node", node), zap.Stringer("notification", n))

		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.spec.ObjectID == 0 {
		b.observe(node, outcomeUnarmed)
		return nil
	}

	if err := validateNotification(n); err != nil {
		return b.failLocked(node, outcomeInvalid, err)
	}

	if err := b.spec.Validate(); err != nil {
		return b.failLocked(node, outcomeInvalid, fmt.Errorf("armed spec corrupted: %w", err))
	}

	if !b.spec.matches(n) {
		b.observe(node, outcomeNonMatching)
		return nil
	}

	if n.Type == notify.TypeJobOutcome {
		if err := b.spec.checkJob(n); err != nil {
			return b.failLocked(node, outcomeJobMismatch, err)
		}
	}

	st := &b.nodes[node]
	if st.found && !st.allowExtra {
		return b.failLocked(node, outcomeDuplicate,
			fmt.Errorf("%w: %s already matched on %s", ErrDuplicateMatch, b.spec, node))
	}

	st.foundCount++
	st.payload = n.Clone()

	required := b.requiredLocked(node)
	if st.foundCount < required {
		b.observe(node, outcomeCounted)
		b.logger.Debug("Counted matching notification",
			zap.Stringer("node", node),
			zap.Uint("count", st.foundCount),
			zap.Uint("required", required))

		return nil
	}

	b.satisfyLocked(node)

	return nil
}

// MarkPeerDead records that the nodes lost each other. A node that already
// counted enough matches for the lowered requirement is satisfied at once.
func (b *Barrier) MarkPeerDead(dualNode bool) {
	b.Liveness.MarkPeerDead(dualNode)
	b.recount()
}

// MarkPeerAlive records that the nodes see each other again. Nodes already
// satisfied stay satisfied.
func (b *Barrier) MarkPeerAlive(dualNode bool) {
	b.Liveness.MarkPeerAlive(dualNode)
	b.recount()
}

// recount re-applies the required multiplicity to matches counted before a
// liveness change.
func (b *Barrier) recount() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.spec.ObjectID == 0 {
		return
	}

	for i := range b.nodes {
		node := notify.NodeID(i)
		st := &b.nodes[node]
		if st.found || st.foundCount == 0 || st.foundCount < b.requiredLocked(node) {
			continue
		}

		b.satisfyLocked(node)
	}
}

func (b *Barrier) satisfyLocked(node notify.NodeID) {
	st := &b.nodes[node]
	st.found = true
	st.release()

	b.observe(node, outcomeSatisfied)
	b.logger.Info("Notification matched",
		zap.Stringer("node", node),
		zap.Stringer("spec", b.spec),
		zap.Uint("count", st.foundCount))
}

// requiredLocked is how many matching notifications node must see: each
// node hears its own and, while the peer is alive, the peer's copy.
func (b *Barrier) requiredLocked(node notify.NodeID) uint {
	if b.dualNode && b.PeerAlive(node) {
		return 2
	}

	return 1
}

// failLocked latches the first fault of the current wait and wakes the
// waiter. Per-node match state is left untouched.
func (b *Barrier) failLocked(node notify.NodeID, outcome string, err error) error {
	err = fmt.Errorf("%s: %w", node, err)

	b.observe(node, outcome)
	b.logger.Error("Notification violates expectations",
		zap.Stringer("node", node),
		zap.Stringer("spec", b.spec),
		zap.Error(err))

	if b.fault == nil {
		b.fault = err
		select {
		case b.faultCh <- struct{}{}:
		default:
		}
	}

	return err
}

func (b *Barrier) observe(node notify.NodeID, outcome string) {
	dispatchTotal.WithLabelValues(node.String(), outcome).Inc()
}
