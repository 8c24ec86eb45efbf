package notify

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/st3v3nmw/notifybarrier/pkg/threadsafe"
)

const defaultQueueDepth = 256

var _ Channel = (*Service)(nil)

type registration struct {
	handle  Handle
	types   Type
	objects ObjectType
	cb      Callback

	// mu orders enqueues against stop so nothing is queued after the drain.
	mu      sync.RWMutex
	stopped bool

	queue chan Notification
	done  chan struct{}
	wg    sync.WaitGroup
}

func (r *registration) wants(n Notification) bool {
	if r.types != TypeAll && n.Type&r.types == 0 {
		return false
	}

	if r.objects == ObjectTypeAll || n.ObjectType == ObjectTypeAll {
		return true
	}

	return n.ObjectType&r.objects != 0
}

// Service is an in-process notification channel for one simulated node.
// Each registration is served by its own delivery goroutine, so callbacks run
// asynchronously to Publish but in publish order.
type Service struct {
	node   NodeID
	logger *zap.Logger

	regs    *threadsafe.Map[Handle, *registration]
	pending atomic.Int64
	up      atomic.Bool
	closed  atomic.Bool

	// delay is applied before each callback to mimic transport latency.
	delay time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithDeliveryDelay delays every callback by d.
func WithDeliveryDelay(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.delay = d
	}
}

// NewService creates a running, up service for node.
func NewService(node NodeID, logger *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		node:   node,
		logger: logger.Named("notify").With(zap.Stringer("node", node)),
		regs:   threadsafe.NewMap[Handle, *registration](),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.up.Store(true)

	return s
}

func (s *Service) Node() NodeID {
	return s.node
}

func (s *Service) IsUp() bool {
	return s.up.Load()
}

// SetUp marks the node up or down. A down node publishes nothing.
func (s *Service) SetUp(up bool) {
	s.up.Store(up)
	s.logger.Debug("Node liveness changed", zap.Bool("up", up))
}

func (s *Service) Register(types Type, objects ObjectType, cb Callback) (Handle, error) {
	if s.closed.Load() {
		return "", ErrClosed
	}

	if cb == nil {
		return "", ErrNilCallback
	}

	if types == 0 || objects == 0 {
		return "", ErrEmptySubscribed
	}

	r := &registration{
		handle:  Handle(uuid.NewString()),
		types:   types,
		objects: objects,
		cb:      cb,
		queue:   make(chan Notification, defaultQueueDepth),
		done:    make(chan struct{}),
	}

	r.wg.Add(1)
	go s.deliver(r)

	s.regs.Set(r.handle, r)

	// Close may have taken its snapshot before Set.
	if s.closed.Load() {
		if taken, ok := s.regs.Take(r.handle); ok {
			s.stop(taken)
		}

		return "", ErrClosed
	}

	s.logger.Debug("Registered callback",
		zap.String("handle", string(r.handle)),
		zap.Stringer("types", types),
		zap.Stringer("objects", objects))

	return r.handle, nil
}

func (s *Service) Unregister(h Handle) error {
	r, ok := s.regs.Take(h)
	if !ok {
		return fmt.Errorf("unregister %s: %w", h, ErrUnknownHandle)
	}

	s.stop(r)
	s.logger.Debug("Unregistered callback", zap.String("handle", string(h)))

	return nil
}

// Publish queues n for every matching registration and reports how many
// registrations it was queued for. Nothing is delivered while the node is down.
func (s *Service) Publish(n Notification) int {
	if s.closed.Load() || !s.up.Load() {
		s.logger.Debug("Dropped notification from down node", zap.Stringer("notification", n))
		return 0
	}

	queued := 0
	for _, r := range s.regs.Values() {
		if !r.wants(n) {
			continue
		}

		r.mu.RLock()
		if !r.stopped {
			s.pending.Add(1)
			r.queue <- n.Clone()
			queued++
		}
		r.mu.RUnlock()
	}

	return queued
}

// Flush blocks until every queued notification has been handed to its
// callback, or ctx ends.
func (s *Service) Flush(ctx context.Context) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for s.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return nil
}

// Close unregisters everything and rejects further registrations.
func (s *Service) Close() {
	if s.closed.Swap(true) {
		return
	}

	var handles []Handle
	s.regs.Range(func(h Handle, _ *registration) bool {
		handles = append(handles, h)
		return true
	})

	for _, h := range handles {
		if r, ok := s.regs.Take(h); ok {
			s.stop(r)
		}
	}
}

func (s *Service) stop(r *registration) {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	close(r.done)
	r.wg.Wait()

	// Whatever is still queued will never be delivered.
	for {
		select {
		case <-r.queue:
			s.pending.Add(-1)
		default:
			return
		}
	}
}

func (s *Service) deliver(r *registration) {
	defer r.wg.Done()

	for {
		select {
		case <-r.done:
			return
		case n := <-r.queue:
			if s.delay > 0 {
				time.Sleep(s.delay)
			}

			if err := r.cb(s.node, n); err != nil {
				s.logger.Warn("Callback rejected notification",
					zap.String("handle", string(r.handle)),
					zap.Stringer("notification", n),
					zap.Error(err))
			}
			s.pending.Add(-1)
		}
	}
}
