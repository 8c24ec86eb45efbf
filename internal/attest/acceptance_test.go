package attest_test

import (
	"context"
	"testing"
	"time"

	"github.com/st3v3nmw/notifybarrier/internal/attest"
	"github.com/st3v3nmw/notifybarrier/internal/barrier"
	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

var lunReady = barrier.ForObject(5, notify.ObjectTypeLUN, notify.TypeLifecycleReady)

func TestExpectations(t *testing.T) {
	tests := []struct {
		name       string
		config     *attest.Config
		testFunc   func(*attest.Do)
		cancel     func(*attest.Do)
		shouldPass bool
	}{
		{
			name: "Single Node OK",
			testFunc: func(do *attest.Do) {
				do.Expect(lunReady).
					Trigger(func() { do.Lifecycle(5, notify.ObjectTypeLUN, notify.TypeLifecycleReady) }).
					Returns().
					ObjectID(attest.Is[notify.ObjectID](5)).
					Type(attest.Is(notify.TypeLifecycleReady)).
					Node(attest.Is(notify.NodeA)).
					Elapsed(attest.Below(time.Second)).
					Assert("LUN should report READY on the only node")
			},
			shouldPass: true,
		},
		{
			name:   "Dual Node OK",
			config: &attest.Config{DualNode: true},
			testFunc: func(do *attest.Do) {
				do.Expect(lunReady).
					Trigger(func() { do.Lifecycle(5, notify.ObjectTypeLUN, notify.TypeLifecycleReady) }).
					Returns().
					ObjectID(attest.Is[notify.ObjectID](5)).
					JSON("object_id", attest.Is("5")).
					JSON("type", attest.Is("LIFECYCLE_STATE_READY")).
					Assert("Both nodes should report READY")
			},
			shouldPass: true,
		},
		{
			name: "No Trigger Times Out",
			testFunc: func(do *attest.Do) {
				do.Expect(lunReady).
					Within(100 * time.Millisecond).
					TimesOut().
					Assert("Nothing was emitted so the wait should time out")
			},
			shouldPass: true,
		},
		{
			name: "Expected Notification Never Arrives",
			testFunc: func(do *attest.Do) {
				do.Expect(lunReady).
					Within(100 * time.Millisecond).
					Returns().
					Assert("Should fail when nothing is emitted")
			},
			shouldPass: false,
		},
		{
			name: "Wrong Object",
			testFunc: func(do *attest.Do) {
				do.Expect(lunReady).
					Trigger(func() { do.Lifecycle(5, notify.ObjectTypeLUN, notify.TypeLifecycleReady) }).
					Returns().
					ObjectID(attest.Is[notify.ObjectID](6)).
					Assert("Should fail when the object id checker does not match")
			},
			shouldPass: false,
		},
		{
			name:   "Peer Dead",
			config: &attest.Config{DualNode: true},
			testFunc: func(do *attest.Do) {
				do.StopNode(notify.NodeB)

				do.Expect(lunReady).
					Trigger(func() { do.Lifecycle(5, notify.ObjectTypeLUN, notify.TypeLifecycleReady) }).
					Returns().
					Node(attest.Is(notify.NodeA)).
					Assert("Only the local node should be required once the peer is dead")
			},
			shouldPass: true,
		},
		{
			name:   "Peer Alive One Sided",
			config: &attest.Config{DualNode: true},
			testFunc: func(do *attest.Do) {
				n := do.Cluster().Notification(5, notify.ObjectTypeLUN, notify.TypeLifecycleReady)

				do.Expect(lunReady).
					Trigger(func() {
						do.Inject(notify.NodeA, n)
						do.Inject(notify.NodeA, n)
					}).
					Within(200 * time.Millisecond).
					TimesOut().
					Assert("The peer never confirmed so the wait should time out")
			},
			shouldPass: true,
		},
		{
			name: "Duplicate Fails",
			testFunc: func(do *attest.Do) {
				do.Expect(lunReady).
					Trigger(func() {
						do.Lifecycle(5, notify.ObjectTypeLUN, notify.TypeLifecycleReady)
						do.Lifecycle(5, notify.ObjectTypeLUN, notify.TypeLifecycleReady)
					}).
					Fails(barrier.ErrDuplicateMatch).
					Assert("A second READY should be reported as a duplicate")
			},
			shouldPass: true,
		},
		{
			name: "Tolerated Repeats",
			testFunc: func(do *attest.Do) {
				do.Expect(barrier.ForObject(0x100, notify.ObjectTypeRaidGroup, notify.TypeDataReconstruction)).
					Trigger(func() {
						for range 3 {
							do.Lifecycle(0x100, notify.ObjectTypeRaidGroup, notify.TypeDataReconstruction)
						}
					}).
					Returns().
					Type(attest.Is(notify.TypeDataReconstruction)).
					Assert("Rebuild progress may be reported more than once")
			},
			shouldPass: true,
		},
		{
			name:   "Job Outcome OK",
			config: &attest.Config{DualNode: true},
			testFunc: func(do *attest.Do) {
				do.Expect(barrier.ForJob(0x42, notify.ObjectTypeVirtualDrive, notify.JobStatusOK, notify.JobErrorNone)).
					Trigger(func() {
						do.CompleteJob(0x42, notify.ObjectTypeVirtualDrive, notify.JobStatusOK, notify.JobErrorNone)
					}).
					Returns().
					JobStatus(attest.Is(notify.JobStatusOK)).
					JobError(attest.Is(notify.JobErrorNone)).
					JSON("job.status", attest.Is("OK")).
					JSON("job.number", attest.Matches(`^\d+$`)).
					Assert("The swap job should complete cleanly")
			},
			shouldPass: true,
		},
		{
			name: "Job Outcome Mismatch Detected",
			testFunc: func(do *attest.Do) {
				do.Expect(barrier.ForJob(0x42, notify.ObjectTypeVirtualDrive, notify.JobStatusOK, notify.JobErrorNone)).
					Trigger(func() {
						do.CompleteJob(0x42, notify.ObjectTypeVirtualDrive, notify.JobStatusGenericFailure, notify.JobErrorNoSparesAvailable)
					}).
					Fails(barrier.ErrJobOutcomeMismatch).
					Assert("A failed job should not satisfy a wait for success")
			},
			shouldPass: true,
		},
		{
			name: "Job Outcome Mismatch",
			testFunc: func(do *attest.Do) {
				do.Expect(barrier.ForJob(0x42, notify.ObjectTypeVirtualDrive, notify.JobStatusOK, notify.JobErrorNone)).
					Trigger(func() {
						do.CompleteJob(0x42, notify.ObjectTypeVirtualDrive, notify.JobStatusGenericFailure, notify.JobErrorNoSparesAvailable)
					}).
					Returns().
					Assert("Should fail when the job outcome differs")
			},
			shouldPass: false,
		},
		{
			name:   "Cross Node Mismatch",
			config: &attest.Config{DualNode: true},
			testFunc: func(do *attest.Do) {
				a := do.Cluster().Notification(5, notify.ObjectTypeLUN, notify.TypeLifecycleReady)
				b := a
				b.ClassID = notify.ClassIDMirror

				do.Expect(lunReady).
					Trigger(func() {
						do.Inject(notify.NodeA, a)
						do.Inject(notify.NodeA, a)
						do.Inject(notify.NodeB, b)
						do.Inject(notify.NodeB, b)
					}).
					Fails(barrier.ErrCrossNodeMismatch).
					Assert("Nodes disagreeing on the class should fail the wait")
			},
			shouldPass: true,
		},
		{
			name: "Invalid Spec",
			testFunc: func(do *attest.Do) {
				do.Expect(barrier.ForObject(0, notify.ObjectTypeLUN, notify.TypeLifecycleReady)).
					Fails(barrier.ErrInvalidArgument).
					Assert("Object id 0 cannot be armed")
			},
			shouldPass: true,
		},
		{
			name:   "Failover Chooses Active Capture",
			config: &attest.Config{DualNode: true},
			testFunc: func(do *attest.Do) {
				do.Failover()

				do.Expect(lunReady).
					Trigger(func() { do.Lifecycle(5, notify.ObjectTypeLUN, notify.TypeLifecycleReady) }).
					Returns().
					Node(attest.Is(notify.NodeB)).
					Assert("The active node's capture should be returned")
			},
			shouldPass: true,
		},
		{
			name:   "Restarted Peer Counts Again",
			config: &attest.Config{DualNode: true},
			testFunc: func(do *attest.Do) {
				do.RestartNode(notify.NodeB)

				n := do.Cluster().Notification(5, notify.ObjectTypeLUN, notify.TypeLifecycleReady)
				do.Expect(lunReady).
					Trigger(func() {
						do.Inject(notify.NodeA, n)
						do.Inject(notify.NodeA, n)
					}).
					Within(200 * time.Millisecond).
					TimesOut().
					Assert("Once the peer is back it must confirm too")
			},
			shouldPass: true,
		},
		{
			name: "Concurrent Triggers",
			testFunc: func(do *attest.Do) {
				do.Expect(lunReady).
					Trigger(func() {
						do.Concurrently(
							func() { do.Lifecycle(6, notify.ObjectTypeLUN, notify.TypeLifecycleReady) },
							func() { do.Lifecycle(5, notify.ObjectTypeLUN, notify.TypeLifecycleReady) },
							func() { do.Lifecycle(5, notify.ObjectTypeRaidGroup, notify.TypeLifecycleReady) },
						)
					}).
					Returns().
					ObjectID(attest.Is[notify.ObjectID](5)).
					Assert("Only the armed object should satisfy the wait")
			},
			shouldPass: true,
		},
		{
			name: "Trigger Panics",
			testFunc: func(do *attest.Do) {
				do.Expect(lunReady).
					Trigger(func() { panic("trigger failed") }).
					Returns().
					Assert("Should fail when the trigger panics")
			},
			shouldPass: false,
		},
		{
			name: "Cancellation",
			testFunc: func(do *attest.Do) {
				do.Expect(lunReady).
					Within(5 * time.Second).
					Returns().
					Assert("Should fail when the wait is cancelled")
			},
			cancel: func(do *attest.Do) {
				go func() {
					time.Sleep(100 * time.Millisecond)
					do.Cancel()
				}()
			},
			shouldPass: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			success := attest.New().
				WithConfig(tt.config).
				Setup(func(do *attest.Do) {
					if tt.cancel != nil {
						tt.cancel(do)
					}
				}).
				Test(tt.name, func(do *attest.Do) {
					tt.testFunc(do)
				}).
				Run(context.Background())

			if success != tt.shouldPass {
				if tt.shouldPass {
					t.Errorf("%s test should pass but failed", tt.name)
				} else {
					t.Errorf("%s test should fail but passed", tt.name)
				}
			}
		})
	}
}

func TestStopsOnFirstFailure(t *testing.T) {
	var ran []string

	success := attest.New().
		Test("first", func(do *attest.Do) {
			ran = append(ran, "first")
			panic("boom")
		}).
		Test("second", func(do *attest.Do) {
			ran = append(ran, "second")
		}).
		Run(context.Background())

	if success {
		t.Error("suite should fail")
	}

	if len(ran) != 1 || ran[0] != "first" {
		t.Errorf("expected only the first test to run, got %v", ran)
	}
}

func TestBarrierReusableAcrossTests(t *testing.T) {
	suite := attest.New().WithConfig(&attest.Config{DualNode: true})
	for i := range 3 {
		id := notify.ObjectID(10 + i)
		suite = suite.Test("wait", func(do *attest.Do) {
			do.Expect(barrier.ForObject(id, notify.ObjectTypeLUN, notify.TypeLifecycleReady)).
				Trigger(func() { do.Lifecycle(id, notify.ObjectTypeLUN, notify.TypeLifecycleReady) }).
				Returns().
				ObjectID(attest.Is(id)).
				Assert("Each wait should start from a clean barrier")
		})
	}

	if !suite.Run(context.Background()) {
		t.Error("consecutive waits should all pass")
	}
}
