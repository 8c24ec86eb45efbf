package barrier

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

type registration struct {
	channel notify.Channel
	handle  notify.Handle
}

// Barrier lets one test thread wait for a single notification from a one-
// or two-node cluster. Notifications arrive through Dispatch, which each
// node's channel calls on its own goroutine; the test thread drives
// Arm, Wait and Disarm.
type Barrier struct {
	*Liveness

	config *Config
	logger *zap.Logger

	mu       sync.Mutex
	spec     Spec
	nodes    [notify.MaxNodes]matchState
	fault    error
	faultCh  chan struct{}
	dualNode bool
	attached bool
	closed   bool
	regs     []registration
}

// New creates a single-node barrier. Call Setup to attach it to channels.
func New(config *Config, logger *zap.Logger) *Barrier {
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Barrier{
		Liveness: NewLiveness(),
		config:   config.normalized(),
		logger:   logger.Named("barrier"),
		faultCh:  make(chan struct{}, 1),
	}

	for i := range b.nodes {
		b.nodes[i] = newMatchState(b.config.SemaphoreDepth)
	}

	b.SetActive(b.config.LocalNode)

	return b
}

// Setup registers Dispatch with the local node's channel and, when dualNode
// is set, with the peer's. Liveness is seeded from the channels.
func (b *Barrier) Setup(dualNode bool, channels ...notify.Channel) error {
	local := b.config.LocalNode

	byNode := make(map[notify.NodeID]notify.Channel, len(channels))
	for _, ch := range channels {
		if ch == nil {
			continue
		}

		byNode[ch.Node()] = ch
	}

	wanted := []notify.NodeID{local}
	if dualNode {
		wanted = append(wanted, local.Peer())
	}

	for _, node := range wanted {
		if _, ok := byNode[node]; !ok {
			return fmt.Errorf("%w: no notification channel for %s", ErrInvalidArgument, node)
		}
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}

	if b.attached {
		b.mu.Unlock()
		return ErrAlreadySetUp
	}

	b.attached = true
	b.dualNode = dualNode

	for _, node := range []notify.NodeID{notify.NodeA, notify.NodeB} {
		ch, ok := byNode[node]
		up := ok && ch.IsUp()
		if !dualNode && node != local {
			up = false
		}

		b.setUp(node, up)
	}

	peerUp := dualNode && byNode[local.Peer()].IsUp() && byNode[local].IsUp()
	if peerUp {
		b.Liveness.MarkPeerAlive(dualNode)
	} else {
		b.Liveness.MarkPeerDead(true)
	}
	b.mu.Unlock()

	// Callbacks may start as soon as Register returns and take b.mu.
	regs := make([]registration, 0, len(wanted))
	for _, node := range wanted {
		ch := byNode[node]

		handle, err := ch.Register(notify.TypeAll, notify.ObjectTypeAll, b.Dispatch)
		if err != nil {
			for _, r := range regs {
				_ = r.channel.Unregister(r.handle)
			}

			b.mu.Lock()
			b.attached = false
			b.dualNode = false
			b.mu.Unlock()

			return fmt.Errorf("register with %s: %w", node, err)
		}

		regs = append(regs, registration{channel: ch, handle: handle})
	}

	b.mu.Lock()
	b.regs = regs
	b.mu.Unlock()

	b.logger.Info("Barrier set up",
		zap.Bool("dual_node", dualNode),
		zap.Stringer("local", local),
		zap.Bool("peer_alive", peerUp))

	return nil
}

// Teardown unregisters from every channel Setup registered with and
// disarms. The barrier cannot be armed again afterwards.
func (b *Barrier) Teardown() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}

	b.closed = true
	regs := b.regs
	b.regs = nil
	b.mu.Unlock()

	// Unregister waits for in-flight callbacks, which take b.mu.
	var errs []error
	for _, r := range regs {
		if err := r.channel.Unregister(r.handle); err != nil {
			errs = append(errs, fmt.Errorf("unregister from %s: %w", r.channel.Node(), err))
		}
	}

	b.Disarm()
	b.logger.Info("Barrier torn down")

	return errors.Join(errs...)
}

// DualNode reports whether Setup attached the barrier to both nodes.
func (b *Barrier) DualNode() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.dualNode
}

// State returns a snapshot of the armed spec and per-node match state.
func (b *Barrier) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := State{
		Armed: b.spec.ObjectID != 0,
		Spec:  b.spec,
		Fault: b.fault,
	}

	for i, n := range b.nodes {
		s.Nodes[i] = NodeState{
			Found:      n.found,
			FoundCount: n.foundCount,
			AllowExtra: n.allowExtra,
		}
	}

	return s
}
