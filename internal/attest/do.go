package attest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/st3v3nmw/notifybarrier/internal/barrier"
	"github.com/st3v3nmw/notifybarrier/internal/cluster"
	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

// Do provides the test harness and acts as the test runner
type Do struct {
	cluster *cluster.Cluster
	barrier *barrier.Barrier
	config  *Config
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// newDo builds a cluster and attaches a barrier to it the way a storage test
// does before its first wait.
func newDo(ctx context.Context, config *Config, logger *zap.Logger) (*Do, error) {
	doCtx, cancel := context.WithCancel(ctx)

	c := cluster.New(config.DualNode, logger, notify.WithDeliveryDelay(config.DeliveryDelay))

	grace := config.GracePeriod
	if grace < 0 {
		grace = 0
	}

	b := barrier.New(&barrier.Config{LocalNode: notify.NodeA, GracePeriod: grace}, logger)
	if err := b.Setup(config.DualNode, c.Channels()...); err != nil {
		cancel()
		c.Close()

		return nil, fmt.Errorf("failed to set up notifications: %w", err)
	}

	return &Do{
		cluster: c,
		barrier: b,
		config:  config,
		logger:  logger,
		ctx:     doCtx,
		cancel:  cancel,
	}, nil
}

// Cluster returns the simulated cluster.
func (do *Do) Cluster() *cluster.Cluster {
	return do.cluster
}

// Barrier returns the barrier attached to the cluster.
func (do *Do) Barrier() *barrier.Barrier {
	return do.barrier
}

// Context is cancelled when the suite finishes or Cancel is called.
func (do *Do) Context() context.Context {
	return do.ctx
}

// Cancel aborts pending waits.
func (do *Do) Cancel() {
	do.cancel()
}

// Done tears the barrier down and stops the cluster
func (do *Do) Done() {
	do.cancel()

	if err := do.barrier.Teardown(); err != nil {
		do.logger.Warn("Barrier teardown failed", zap.Error(err))
	}

	do.cluster.Close()
}

// Lifecycle moves object id to state on every live node.
func (do *Do) Lifecycle(id notify.ObjectID, objectType notify.ObjectType, state notify.Type) {
	if err := do.cluster.Lifecycle(do.ctx, id, objectType, state); err != nil {
		panic(fmt.Sprintf("failed to emit %s for object 0x%x: %v", state, uint32(id), err))
	}
}

// CompleteJob finishes a job acting on object id on every live node.
func (do *Do) CompleteJob(id notify.ObjectID, objectType notify.ObjectType, status notify.JobStatus, code notify.JobErrorCode) uint64 {
	number, err := do.cluster.CompleteJob(do.ctx, id, objectType, status, code)
	if err != nil {
		panic(fmt.Sprintf("failed to complete job for object 0x%x: %v", uint32(id), err))
	}

	return number
}

// Inject delivers n to node's channel only.
func (do *Do) Inject(node notify.NodeID, n notify.Notification) {
	if do.cluster.Inject(node, n) == 0 {
		panic(fmt.Sprintf("nothing on %s accepted %s", node, n))
	}
}

// StopNode takes node down and tells the barrier its peer is gone.
func (do *Do) StopNode(node notify.NodeID) {
	if err := do.cluster.StopNode(node); err != nil {
		panic(err.Error())
	}

	do.barrier.MarkNodeDown(node)
	do.barrier.MarkPeerDead(do.config.DualNode)
	do.barrier.SetActive(do.cluster.Active())
}

// StartNode brings node back and, once both nodes run, tells the barrier the
// peer is alive again.
func (do *Do) StartNode(node notify.NodeID) {
	if err := do.cluster.StartNode(node); err != nil {
		panic(err.Error())
	}

	do.barrier.MarkNodeUp(node)
	if len(do.cluster.Live()) == notify.MaxNodes {
		do.barrier.MarkPeerAlive(do.config.DualNode)
	}

	do.barrier.SetActive(do.cluster.Active())
}

// RestartNode stops node and starts it again after the restart delay.
func (do *Do) RestartNode(node notify.NodeID) {
	do.StopNode(node)

	select {
	case <-do.ctx.Done():
		return
	case <-time.After(do.config.RestartDelay):
	}

	do.StartNode(node)
}

// Failover hands the active role to the peer.
func (do *Do) Failover() notify.NodeID {
	active, err := do.cluster.Failover()
	if err != nil {
		panic(err.Error())
	}

	do.barrier.SetActive(active)

	return active
}

// Settle waits until every published notification has been delivered.
func (do *Do) Settle() {
	ctx, cancel := context.WithTimeout(do.ctx, do.config.SettleTimeout)
	defer cancel()

	err := do.cluster.Flush(ctx)
	if err != nil && !errors.Is(do.ctx.Err(), context.Canceled) {
		panic(fmt.Sprintf("notifications still queued after %s", do.config.SettleTimeout))
	}
}

// Concurrently runs multiple functions in parallel and waits for completion
func (do *Do) Concurrently(fns ...func()) {
	var wg sync.WaitGroup
	var panicErr any
	var panicMu sync.Mutex

	for _, fn := range fns {
		wg.Add(1)
		go func(f func()) {
			defer wg.Done()
			defer func() {
				err := recover()
				if err != nil {
					panicMu.Lock()
					if panicErr == nil {
						panicErr = err
					}
					panicMu.Unlock()
				}
			}()

			f()
		}(fn)
	}

	wg.Wait()

	if panicErr != nil {
		panic(panicErr)
	}
}

// Expect creates a deferred wait for the notification described by spec.
func (do *Do) Expect(spec barrier.Spec) *Expectation {
	return &Expectation{
		ctx:     do.ctx,
		config:  do.config,
		barrier: do.barrier,
		spec:    spec,
		timeout: do.config.DefaultWaitTimeout,
	}
}
