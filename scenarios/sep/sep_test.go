package sep

import (
	"context"
	"testing"

	"github.com/st3v3nmw/notifybarrier/internal/attest"
	"github.com/st3v3nmw/notifybarrier/internal/registry"
)

func TestScenarios(t *testing.T) {
	for _, key := range []string{"lifecycle", "jobs", "failover", "rebuild"} {
		group, err := registry.GetGroup(key)
		if err != nil {
			t.Fatalf("group %s not registered: %v", key, err)
		}

		for _, dualNode := range []bool{false, true} {
			if key == "failover" && !dualNode {
				continue
			}

			for _, stageKey := range group.StageOrder {
				stage := group.Stages[stageKey]
				name := key + "/" + stageKey
				if dualNode {
					name += "/dual"
				}

				t.Run(name, func(t *testing.T) {
					ok := stage.Fn().
						WithConfig(&attest.Config{DualNode: dualNode}).
						Run(context.Background())
					if !ok {
						t.Errorf("%s should pass", name)
					}
				})
			}
		}
	}
}

func TestFailoverNeedsDualNode(t *testing.T) {
	group, err := registry.GetGroup("failover")
	if err != nil {
		t.Fatal(err)
	}

	stage, err := group.GetStage("peer-dead")
	if err != nil {
		t.Fatal(err)
	}

	if stage.Fn().Run(context.Background()) {
		t.Error("failover stages should refuse a single-node cluster")
	}
}
