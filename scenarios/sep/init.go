package sep

import "github.com/st3v3nmw/notifybarrier/internal/registry"

func init() {
	lifecycle := &registry.Group{
		Name: "Object Lifecycle",
		Summary: `Objects of the storage extent package move through lifecycle states and every
node reports each transition. These stages wait for single transitions and check that
repeated or malformed deliveries are caught.`,
	}

	lifecycle.AddStage("ready", "Objects Reach READY", Ready)
	lifecycle.AddStage("fail-and-recover", "FAIL Then READY Again", FailAndRecover)
	lifecycle.AddStage("repeats", "Tolerated And Unexpected Repeats", Repeats)

	registry.RegisterGroup("lifecycle", lifecycle)

	jobs := &registry.Group{
		Name: "Job Outcomes",
		Summary: `Configuration jobs finish with a status and an error code. A wait for a job names
the outcome it expects; any other outcome fails the wait.`,
	}

	jobs.AddStage("success", "Jobs Completing Cleanly", JobSuccess)
	jobs.AddStage("errors", "Expected Job Errors", JobErrors)
	jobs.AddStage("mismatch", "Unexpected Job Outcomes", JobMismatch)

	registry.RegisterGroup("jobs", jobs)

	failover := &registry.Group{
		Name: "Failover",
		Summary: `Both storage processors run. Waits need confirmation from the peer while it is
alive, fall back to the local node when it dies, and prefer the active node's capture.`,
	}

	failover.AddStage("peer-dead", "Peer Death And Return", PeerDead)
	failover.AddStage("active-capture", "Active Node Capture", ActiveCapture)
	failover.AddStage("disagreement", "Nodes Must Agree", Disagreement)

	registry.RegisterGroup("failover", failover)

	rebuild := &registry.Group{
		Name: "Drive Swap And Rebuild",
		Summary: `A drive fails, a hot spare is swapped in and the raid group rebuilds onto it.
Swap jobs, swap info and rebuild progress are waited for in order.`,
	}

	rebuild.AddStage("swap-in", "Hot Spare Swap", SwapIn)
	rebuild.AddStage("progress", "Rebuild Progress", RebuildProgress)

	registry.RegisterGroup("rebuild", rebuild)
}
