package cluster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

var (
	ErrNoLiveNodes = errors.New("no live nodes")
	ErrUnknownNode = errors.New("unknown node")
	ErrNodeDown    = errors.New("node is down")
	ErrNodeUp      = errors.New("node is already up")
	ErrSingleNode  = errors.New("operation needs a dual-node cluster")
)

// Cluster simulates an active/passive pair of storage processors. Every
// node hosts every object, so a state change is observed on each live node
// and relayed to its peer over the interconnect.
type Cluster struct {
	logger   *zap.Logger
	dualNode bool

	mu     sync.Mutex
	nodes  [notify.MaxNodes]*notify.Service
	active notify.NodeID

	jobs atomic.Uint64
}

// New creates a cluster. A single-node cluster only runs NodeA.
func New(dualNode bool, logger *zap.Logger, opts ...notify.ServiceOption) *Cluster {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Cluster{
		logger:   logger.Named("cluster"),
		dualNode: dualNode,
		active:   notify.NodeA,
	}

	for _, node := range []notify.NodeID{notify.NodeA, notify.NodeB} {
		c.nodes[node] = notify.NewService(node, logger, opts...)
	}

	if !dualNode {
		c.nodes[notify.NodeB].SetUp(false)
	}

	return c
}

func (c *Cluster) DualNode() bool {
	return c.dualNode
}

// Channel returns the notification channel of node.
func (c *Cluster) Channel(node notify.NodeID) *notify.Service {
	if !node.Valid() {
		return nil
	}

	return c.nodes[node]
}

// Channels returns the channels a barrier should attach to.
func (c *Cluster) Channels() []notify.Channel {
	if !c.dualNode {
		return []notify.Channel{c.nodes[notify.NodeA]}
	}

	return []notify.Channel{c.nodes[notify.NodeA], c.nodes[notify.NodeB]}
}

func (c *Cluster) Active() notify.NodeID {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.active
}

// Live returns the nodes that are currently up.
func (c *Cluster) Live() []notify.NodeID {
	var live []notify.NodeID
	for _, node := range []notify.NodeID{notify.NodeA, notify.NodeB} {
		if c.nodes[node].IsUp() {
			live = append(live, node)
		}
	}

	return live
}

// Emit reports one state change. Each live node publishes its own copy and
// relays it to the peer, so every live channel receives one copy per live
// node.
func (c *Cluster) Emit(ctx context.Context, n notify.Notification) error {
	live := c.Live()
	if len(live) == 0 {
		return ErrNoLiveNodes
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, node := range live {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			stamped, err := c.stamp(node, n)
			if err != nil {
				return err
			}

			c.EmitFrom(node, stamped)
			return nil
		})
	}

	return g.Wait()
}

// EmitFrom publishes n on node's own channel and relays it to the peer when
// both are up. It returns how many registrations the copies were queued for.
func (c *Cluster) EmitFrom(node notify.NodeID, n notify.Notification) int {
	if !node.Valid() || !c.nodes[node].IsUp() {
		return 0
	}

	queued := c.nodes[node].Publish(n)

	peer := node.Peer()
	if c.dualNode && c.nodes[peer].IsUp() {
		queued += c.nodes[peer].Publish(n)
	}

	c.logger.Debug("Emitted notification",
		zap.Stringer("node", node),
		zap.Stringer("notification", n),
		zap.Int("queued", queued))

	return queued
}

// Inject publishes n on node's channel only, bypassing the relay. Scenarios
// use it to produce deliveries a healthy cluster never would.
func (c *Cluster) Inject(node notify.NodeID, n notify.Notification) int {
	if !node.Valid() {
		return 0
	}

	return c.nodes[node].Publish(n)
}

// Lifecycle reports that object id moved to state.
func (c *Cluster) Lifecycle(ctx context.Context, id notify.ObjectID, objectType notify.ObjectType, state notify.Type) error {
	return c.Emit(ctx, c.Notification(id, objectType, state))
}

// CompleteJob reports the outcome of a job acting on object id and returns
// the job number.
func (c *Cluster) CompleteJob(ctx context.Context, id notify.ObjectID, objectType notify.ObjectType, status notify.JobStatus, code notify.JobErrorCode) (uint64, error) {
	number := c.jobs.Add(1)

	n := c.Notification(id, objectType, notify.TypeJobOutcome)
	n.Job = &notify.JobOutcome{Number: number, Status: status, ErrorCode: code}

	if err := c.Emit(ctx, n); err != nil {
		return 0, fmt.Errorf("job %d: %w", number, err)
	}

	return number, nil
}

// Notification builds the header a node would put on a notification about
// object id.
func (c *Cluster) Notification(id notify.ObjectID, objectType notify.ObjectType, typ notify.Type) notify.Notification {
	return notify.Notification{
		ObjectID:      id,
		ObjectType:    objectType,
		Type:          typ,
		SourcePackage: packageOf(objectType),
		ClassID:       classOf(objectType),
	}
}

// StopNode takes node down. Its channel stops publishing and the survivor
// becomes active.
func (c *Cluster) StopNode(node notify.NodeID) error {
	if !node.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownNode, node)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	svc := c.nodes[node]
	if !svc.IsUp() {
		return fmt.Errorf("stop %s: %w", node, ErrNodeDown)
	}

	svc.SetUp(false)

	peer := node.Peer()
	if c.active == node && c.nodes[peer].IsUp() {
		c.active = peer
	}

	c.logger.Info("Node stopped", zap.Stringer("node", node), zap.Stringer("active", c.active))

	return nil
}

// StartNode brings node back up as the passive node.
func (c *Cluster) StartNode(node notify.NodeID) error {
	if !node.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownNode, node)
	}

	if !c.dualNode && node != notify.NodeA {
		return fmt.Errorf("start %s: %w", node, ErrSingleNode)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	svc := c.nodes[node]
	if svc.IsUp() {
		return fmt.Errorf("start %s: %w", node, ErrNodeUp)
	}

	svc.SetUp(true)

	if !c.nodes[node.Peer()].IsUp() {
		c.active = node
	}

	c.logger.Info("Node started", zap.Stringer("node", node), zap.Stringer("active", c.active))

	return nil
}

// Failover swaps the active role and returns the new active node.
func (c *Cluster) Failover() (notify.NodeID, error) {
	if !c.dualNode {
		return notify.NodeA, ErrSingleNode
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.active.Peer()
	if !c.nodes[next].IsUp() {
		return c.active, fmt.Errorf("failover to %s: %w", next, ErrNodeDown)
	}

	c.active = next
	c.logger.Info("Failed over", zap.Stringer("active", next))

	return next, nil
}

// Flush waits until every published notification has been delivered.
func (c *Cluster) Flush(ctx context.Context) error {
	for _, svc := range c.nodes {
		if err := svc.Flush(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (c *Cluster) Close() {
	for _, svc := range c.nodes {
		svc.Close()
	}
}

type nodeView struct {
	Node       string   `json:"node"`
	Active     bool     `json:"active"`
	ObjectID   uint32   `json:"object_id"`
	ObjectType string   `json:"object_type"`
	Type       string   `json:"type"`
	Job        *jobView `json:"job,omitempty"`
}

type jobView struct {
	Number uint64 `json:"number"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

// stamp fills Data with node's view of the change.
func (c *Cluster) stamp(node notify.NodeID, n notify.Notification) (notify.Notification, error) {
	view := nodeView{
		Node:       node.String(),
		Active:     c.Active() == node,
		ObjectID:   uint32(n.ObjectID),
		ObjectType: n.ObjectType.String(),
		Type:       n.Type.String(),
	}

	if n.Job != nil {
		view.Job = &jobView{
			Number: n.Job.Number,
			Status: n.Job.Status.String(),
			Error:  n.Job.ErrorCode.String(),
		}
	}

	data, err := json.Marshal(view)
	if err != nil {
		return notify.Notification{}, fmt.Errorf("encode %s view: %w", node, err)
	}

	out := n.Clone()
	out.Data = data

	return out, nil
}

func packageOf(t notify.ObjectType) notify.Package {
	switch t {
	case notify.ObjectTypeBoard, notify.ObjectTypePort, notify.ObjectTypeEnclosure,
		notify.ObjectTypePhysicalDrive, notify.ObjectTypeLogicalDrive:
		return notify.PackagePhysical
	case notify.ObjectTypeEnvironmentMgmt:
		return notify.PackageESP
	default:
		return notify.PackageSEP
	}
}

func classOf(t notify.ObjectType) notify.ClassID {
	switch t {
	case notify.ObjectTypeProvisionedDrive:
		return notify.ClassIDProvisionDrive
	case notify.ObjectTypeVirtualDrive:
		return notify.ClassIDVirtualDrive
	case notify.ObjectTypeRaidGroup:
		return notify.ClassIDParity
	case notify.ObjectTypeLUN:
		return notify.ClassIDLUN
	case notify.ObjectTypeExtentPool:
		return notify.ClassIDExtentPool
	default:
		return notify.ClassIDInvalid
	}
}
