package notify

import "errors"

// Callback receives one notification from the node it was registered with.
// A returned error is reported by the channel but does not stop delivery.
type Callback func(node NodeID, n Notification) error

// Handle identifies a registration with a Channel.
type Handle string

// Channel is a node's event-notification service.
type Channel interface {
	// Node reports which node this channel delivers for.
	Node() NodeID
	// Register subscribes cb to notifications whose type is in types and
	// whose object type is in objects.
	Register(types Type, objects ObjectType, cb Callback) (Handle, error)
	// Unregister removes a registration. No callback for h runs after it
	// returns.
	Unregister(h Handle) error
	// IsUp reports whether the node currently participates in the test.
	IsUp() bool
}

var (
	ErrClosed          = errors.New("notification channel closed")
	ErrUnknownHandle   = errors.New("unknown registration handle")
	ErrNilCallback     = errors.New("callback is nil")
	ErrEmptySubscribed = errors.New("empty subscription mask")
)
