package barrier

import (
	"sync"

	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

// Liveness records which nodes participate in the test and whether each
// node currently considers its peer alive. Test orchestration flips these
// flags around simulated node failures; the barrier only reads them.
type Liveness struct {
	mu        sync.RWMutex
	up        [notify.MaxNodes]bool
	peerAlive [notify.MaxNodes]bool
	active    notify.NodeID
}

// NewLiveness returns a tracker with every node up, no live peer and
// NodeA active.
func NewLiveness() *Liveness {
	l := &Liveness{active: notify.NodeA}
	for i := range l.up {
		l.up[i] = true
	}

	return l
}

// MarkPeerDead records that the nodes lost each other. It is a no-op
// outside dual-node mode.
func (l *Liveness) MarkPeerDead(dualNode bool) {
	l.setPeerAlive(dualNode, false)
}

// MarkPeerAlive records that the nodes see each other again. It is a no-op
// outside dual-node mode.
func (l *Liveness) MarkPeerAlive(dualNode bool) {
	l.setPeerAlive(dualNode, true)
}

func (l *Liveness) setPeerAlive(dualNode, alive bool) {
	if !dualNode {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.peerAlive {
		l.peerAlive[i] = alive
	}
}

// MarkNodeUp records that node is running and its notifications count.
func (l *Liveness) MarkNodeUp(node notify.NodeID) {
	l.setUp(node, true)
}

// MarkNodeDown records that node is deliberately stopped; anything it
// still delivers is discarded.
func (l *Liveness) MarkNodeDown(node notify.NodeID) {
	l.setUp(node, false)
}

func (l *Liveness) setUp(node notify.NodeID, up bool) {
	if !node.Valid() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.up[node] = up
}

// SetActive records which node currently holds the active role.
func (l *Liveness) SetActive(node notify.NodeID) {
	if !node.Valid() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.active = node
}

// NodeUp reports whether node is running.
func (l *Liveness) NodeUp(node notify.NodeID) bool {
	if !node.Valid() {
		return false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.up[node]
}

// PeerAlive reports whether node currently sees its peer.
func (l *Liveness) PeerAlive(node notify.NodeID) bool {
	if !node.Valid() {
		return false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.peerAlive[node]
}

// Active returns the node holding the active role.
func (l *Liveness) Active() notify.NodeID {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.active
}
