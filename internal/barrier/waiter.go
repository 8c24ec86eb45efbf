package barrier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

// Payload is the notification a successful Wait confirmed.
type Payload struct {
	notify.Notification

	// Node is the node whose capture was chosen.
	Node notify.NodeID
}

// Arm registers spec as the one notification to wait for. Arm must be
// followed by Wait or Disarm before the next Arm.
func (b *Barrier) Arm(spec Spec) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	if b.spec.ObjectID != 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyArmed, b.spec)
	}

	for i := range b.nodes {
		if b.nodes[i].found {
			return fmt.Errorf("%w on %s", ErrStaleMatchState, notify.NodeID(i))
		}
	}

	if err := spec.Validate(); err != nil {
		return err
	}

	allowExtra := spec.allowsExtra()
	for i := range b.nodes {
		b.nodes[i].reset(allowExtra)
	}

	b.clearFaultLocked()
	b.spec = spec

	b.logger.Info("Armed", zap.Stringer("spec", spec), zap.Bool("allow_extra", allowExtra))

	return nil
}

// Disarm forgets the armed spec and every per-node match. It is safe to
// call at any time, including when nothing is armed.
func (b *Barrier) Disarm() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.spec.ObjectID != 0 {
		b.logger.Debug("Disarmed", zap.Stringer("spec", b.spec))
	}

	for i := range b.nodes {
		b.nodes[i].reset(false)
	}

	b.clearFaultLocked()
	b.spec = Spec{}
}

// Armed reports whether a spec is currently armed.
func (b *Barrier) Armed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.spec.ObjectID != 0
}

// Wait blocks until the armed notification is confirmed by the local node
// and, when both nodes are up and see each other, by the peer, all within
// timeout. The barrier is always disarmed when Wait returns.
func (b *Barrier) Wait(ctx context.Context, timeout time.Duration) (Payload, error) {
	defer b.Disarm()

	start := time.Now()

	b.mu.Lock()
	if b.spec.ObjectID == 0 {
		b.mu.Unlock()
		return Payload{}, ErrNotArmed
	}

	spec := b.spec
	dualNode := b.dualNode
	local := b.config.LocalNode
	peer := local.Peer()
	localSem := b.nodes[local].sem
	peerSem := b.nodes[peer].sem
	b.mu.Unlock()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	if err := b.acquire(ctx, deadline.C, localSem); err != nil {
		return Payload{}, b.waitFailed(spec, local, timeout, start, err)
	}

	bothNodes := dualNode && b.PeerAlive(local)
	if bothNodes {
		if err := b.acquire(ctx, deadline.C, peerSem); err != nil {
			return Payload{}, b.waitFailed(spec, peer, timeout, start, err)
		}
	}

	payload, err := b.reconcile(local, bothNodes)
	if err != nil {
		return Payload{}, b.waitFailed(spec, local, timeout, start, err)
	}

	b.logger.Info("Wait satisfied",
		zap.Stringer("spec", spec),
		zap.Stringer("node", payload.Node),
		zap.Duration("elapsed", time.Since(start)))

	if err := b.grace(ctx); err != nil {
		return Payload{}, b.waitFailed(spec, local, timeout, start, err)
	}

	waitTotal.WithLabelValues(resultOK).Inc()
	waitDuration.WithLabelValues(resultOK).Observe(time.Since(start).Seconds())

	return payload, nil
}

// acquire takes one release from sem unless a fault, the deadline or ctx
// comes first.
func (b *Barrier) acquire(ctx context.Context, deadline <-chan time.Time, sem <-chan struct{}) error {
	select {
	case <-sem:
	case <-b.faultCh:
		return b.latchedFault()
	case <-deadline:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}

	// A fault may have been latched alongside the release.
	return b.latchedFault()
}

// grace keeps the wait armed for the configured period so trailing
// duplicates are checked instead of leaking into the next wait.
func (b *Barrier) grace(ctx context.Context) error {
	if b.config.GracePeriod <= 0 {
		return nil
	}

	timer := time.NewTimer(b.config.GracePeriod)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-b.faultCh:
		return b.latchedFault()
	case <-ctx.Done():
		return nil
	}
}

func (b *Barrier) latchedFault() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.fault
}

// reconcile picks the canonical payload after the wait was satisfied. When
// both nodes captured a notification they must agree on its header.
func (b *Barrier) reconcile(local notify.NodeID, bothNodes bool) (Payload, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	localState := &b.nodes[local]
	if !localState.found {
		return Payload{}, fmt.Errorf("%w: match on %s vanished before reconciliation", ErrStaleMatchState, local)
	}

	chosen := Payload{Notification: localState.payload.Clone(), Node: local}

	peer := local.Peer()
	peerState := &b.nodes[peer]
	if !bothNodes || !peerState.found {
		return chosen, nil
	}

	if err := crossCheck(localState.payload, peerState.payload); err != nil {
		return Payload{}, err
	}

	if b.Active() == peer {
		chosen = Payload{Notification: peerState.payload.Clone(), Node: peer}
	}

	return chosen, nil
}

func crossCheck(a, b notify.Notification) error {
	switch {
	case a.Type != b.Type:
		return fmt.Errorf("%w: notification type %s vs %s", ErrCrossNodeMismatch, a.Type, b.Type)
	case a.SourcePackage != b.SourcePackage:
		return fmt.Errorf("%w: source package %s vs %s", ErrCrossNodeMismatch, a.SourcePackage, b.SourcePackage)
	case a.ClassID != b.ClassID:
		return fmt.Errorf("%w: class id %d vs %d", ErrCrossNodeMismatch, a.ClassID, b.ClassID)
	case a.ObjectType != b.ObjectType:
		return fmt.Errorf("%w: object type %s vs %s", ErrCrossNodeMismatch, a.ObjectType, b.ObjectType)
	}

	return nil
}

func (b *Barrier) waitFailed(spec Spec, node notify.NodeID, timeout time.Duration, start time.Time, err error) error {
	elapsed := time.Since(start)

	var result string
	switch {
	case errors.Is(err, ErrTimeout):
		result = resultTimeout
		err = fmt.Errorf("%w after %s: %s never confirmed on %s", ErrTimeout, timeout, spec, node)
		b.logger.Warn("Wait timed out", zap.Stringer("spec", spec), zap.Stringer("node", node), zap.Duration("timeout", timeout))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result = resultCancelled
		err = fmt.Errorf("wait for %s: %w", spec, err)
	default:
		result = resultFault
		b.logger.Error("Wait failed", zap.Stringer("spec", spec), zap.Error(err))
	}

	waitTotal.WithLabelValues(result).Inc()
	waitDuration.WithLabelValues(result).Observe(elapsed.Seconds())

	return err
}

func (b *Barrier) clearFaultLocked() {
	b.fault = nil
	select {
	case <-b.faultCh:
	default:
	}
}
