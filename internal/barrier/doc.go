// Package barrier lets a test thread block until one specific asynchronous
// notification has been delivered by a one- or two-node storage cluster.
//
// # Cycle
//
// Each wait is one Arm / Wait / Disarm cycle:
//
//	UNARMED -> ARMED (Arm) -> MATCHING (Dispatch counts) -> SATISFIED (semaphore released) -> UNARMED (Disarm)
//	ARMED/MATCHING -> TIMED_OUT -> UNARMED
//
// Wait always disarms before returning, so the barrier is reusable for the
// next Arm whether the wait succeeded, timed out or failed.
//
// # Multiplicity
//
// In dual-node mode with the peer alive every node hears each state change
// twice (its own copy and the peer's), so a node is satisfied after two
// matching notifications; otherwise after one. DATA_RECONSTRUCTION and
// CONFIGURATION_CHANGED may be delivered more often than that and extras
// are tolerated; for every other type an extra match is ErrDuplicateMatch.
//
// # Concurrency
//
// Spec, per-node match state and the latched fault share one mutex.
// Dispatch runs entirely under it; Wait only blocks on per-node semaphores
// outside it. A match racing Disarm is either counted before Disarm or
// dropped because nothing is armed any more.
package barrier
