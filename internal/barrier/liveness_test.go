package barrier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

func TestLivenessDefaults(t *testing.T) {
	l := NewLiveness()

	assert.True(t, l.NodeUp(notify.NodeA))
	assert.True(t, l.NodeUp(notify.NodeB))
	assert.False(t, l.PeerAlive(notify.NodeA))
	assert.False(t, l.PeerAlive(notify.NodeB))
	assert.Equal(t, notify.NodeA, l.Active())
	assert.False(t, l.NodeUp(notify.NodeID(7)))
}

func TestLivenessPeerFlagsOnlyInDualNodeMode(t *testing.T) {
	l := NewLiveness()

	l.MarkPeerAlive(false)
	assert.False(t, l.PeerAlive(notify.NodeA), "single-node mode must not touch peer flags")

	l.MarkPeerAlive(true)
	assert.True(t, l.PeerAlive(notify.NodeA))
	assert.True(t, l.PeerAlive(notify.NodeB))

	l.MarkPeerDead(false)
	assert.True(t, l.PeerAlive(notify.NodeA))

	l.MarkPeerDead(true)
	assert.False(t, l.PeerAlive(notify.NodeA))
	assert.False(t, l.PeerAlive(notify.NodeB))
}

func TestLivenessNodeUpDown(t *testing.T) {
	l := NewLiveness()

	l.MarkNodeDown(notify.NodeB)
	assert.True(t, l.NodeUp(notify.NodeA))
	assert.False(t, l.NodeUp(notify.NodeB))

	l.MarkNodeUp(notify.NodeB)
	assert.True(t, l.NodeUp(notify.NodeB))

	l.SetActive(notify.NodeB)
	assert.Equal(t, notify.NodeB, l.Active())

	l.SetActive(notify.NodeID(-1))
	assert.Equal(t, notify.NodeB, l.Active())
}
