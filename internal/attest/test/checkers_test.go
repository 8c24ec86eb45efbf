package attest_test

import (
	"context"
	"testing"
	"time"

	. "github.com/st3v3nmw/notifybarrier/internal/attest"
	"github.com/st3v3nmw/notifybarrier/internal/barrier"
	"github.com/st3v3nmw/notifybarrier/internal/notify"
)

func TestCheckers(t *testing.T) {
	lun := barrier.ForObject(7, notify.ObjectTypeLUN, notify.TypeLifecycleReady)
	emit := func(do *Do) func() {
		return func() { do.Lifecycle(7, notify.ObjectTypeLUN, notify.TypeLifecycleReady) }
	}

	tests := []struct {
		name       string
		config     *Config
		testFunc   func(*Do)
		shouldPass bool
	}{
		{
			name: "OneOf node",
			testFunc: func(do *Do) {
				do.Expect(lun).Trigger(emit(do)).Returns().
					Node(OneOf(notify.NodeA, notify.NodeB)).
					Assert("Either node may be chosen")
			},
			shouldPass: true,
		},
		{
			name: "Not type",
			testFunc: func(do *Do) {
				do.Expect(lun).Trigger(emit(do)).Returns().
					Type(Not[notify.Type](Is(notify.TypeLifecycleFail))).
					Assert("READY is not FAIL")
			},
			shouldPass: true,
		},
		{
			name: "Not fails when inner passes",
			testFunc: func(do *Do) {
				do.Expect(lun).Trigger(emit(do)).Returns().
					Type(Not[notify.Type](Is(notify.TypeLifecycleReady))).
					Assert("Should fail when the negated checker passes")
			},
			shouldPass: false,
		},
		{
			name: "JSON Contains and Matches",
			testFunc: func(do *Do) {
				do.Expect(lun).Trigger(emit(do)).Returns().
					JSON("node", Matches(`^SP[AB]$`)).
					JSON("object_type", Contains("LUN"), Not(Contains("RAID"))).
					Assert("Data should describe the LUN")
			},
			shouldPass: true,
		},
		{
			name: "JSON IsNull",
			testFunc: func(do *Do) {
				do.Expect(lun).Trigger(emit(do)).Returns().
					JSON("job", IsNull[string]()).
					Assert("Lifecycle notifications carry no job")
			},
			shouldPass: true,
		},
		{
			name: "JSON IsNull fails on present field",
			testFunc: func(do *Do) {
				do.Expect(lun).Trigger(emit(do)).Returns().
					JSON("node", IsNull[string]()).
					Assert("Should fail when the field is present")
			},
			shouldPass: false,
		},
		{
			name: "Job checkers need a job",
			testFunc: func(do *Do) {
				do.Expect(lun).Trigger(emit(do)).Returns().
					JobStatus(Is(notify.JobStatusOK)).
					Assert("Should fail when the notification has no job outcome")
			},
			shouldPass: false,
		},
		{
			name:   "Elapsed bounds",
			config: &Config{DeliveryDelay: 50 * time.Millisecond},
			testFunc: func(do *Do) {
				do.Expect(lun).Trigger(emit(do)).Returns().
					Elapsed(AtLeast(50*time.Millisecond), Below(2*time.Second)).
					Assert("Delivery delay should be observed")
			},
			shouldPass: true,
		},
		{
			name: "Multiple checkers fail when one fails",
			testFunc: func(do *Do) {
				do.Expect(lun).Trigger(emit(do)).Returns().
					ObjectID(Is[notify.ObjectID](7), Is[notify.ObjectID](8)).
					Assert("Should fail when one of the checkers fails")
			},
			shouldPass: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			success := New().WithConfig(tt.config).
				Test(tt.name, func(do *Do) {
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

func TestWithinNeedsPositiveTimeout(t *testing.T) {
	success := New().
		Test("zero within", func(do *Do) {
			do.Expect(barrier.ForObject(7, notify.ObjectTypeLUN, notify.TypeLifecycleReady)).Within(0)
		}).
		Run(context.Background())

	if success {
		t.Error("Within(0) should fail the test")
	}
}
