package barrier

import "github.com/st3v3nmw/notifybarrier/internal/notify"

// matchState tracks qualifying notifications seen from one node during the
// current wait. sem is released each time the node's threshold is met.
// payload is the latest counted match.
type matchState struct {
	found      bool
	foundCount uint
	allowExtra bool
	payload    notify.Notification

	sem chan struct{}
}

func newMatchState(depth int) matchState {
	return matchState{sem: make(chan struct{}, depth)}
}

// reset clears the counters and drains any stale release.
func (m *matchState) reset(allowExtra bool) {
	m.found = false
	m.foundCount = 0
	m.allowExtra = allowExtra
	m.payload = notify.Notification{}

	for {
		select {
		case <-m.sem:
		default:
			return
		}
	}
}

// release never blocks; a full semaphore already wakes the waiter.
func (m *matchState) release() {
	select {
	case m.sem <- struct{}{}:
	default:
	}
}

// NodeState is a read-only view of one node's match state.
type NodeState struct {
	Found      bool
	FoundCount uint
	AllowExtra bool
}

// State is a read-only view of a Barrier.
type State struct {
	Armed bool
	Spec  Spec
	Nodes [notify.MaxNodes]NodeState
	Fault error
}
