// Package metrics implements the per-phase counters and latency
// histograms of SPEC_FULL.md §11.7-§12 item 4: one metric per
// coordinator phase transition, not only a final outcome.
package metrics

import "time"

// Sink is the contract every coordinator depends on. NoopSink is the
// zero-value default when monitoring_metrics_enabled=false
// (SPEC_FULL.md §12 item 5).
type Sink interface {
	// IncPhase records one phase transition of the lifecycle or
	// reconciliation state machine (readiness, health, plan, apply)
	// with its outcome ("pass"/"fail"). Lock attempts are counted by
	// IncLockAttempt instead.
	IncPhase(phase, outcome string)

	// IncChangeRequest counts one ChangeRequest the applier completed
	// without error, labeled by its action (CREATE/UPDATE/DELETE/IGNORE).
	// Plans that fail to apply or are skipped under what_if are not
	// counted.
	IncChangeRequest(action string)

	// IncLockAttempt counts one lock acquire attempt outcome.
	IncLockAttempt(success bool)

	// IncLifecycleOutcome counts one completed lifecycle invocation
	// (handled/abandoned/unmatched).
	IncLifecycleOutcome(result string)

	// IncReconciliationSweep counts one bulk or manual reconciliation
	// run.
	IncReconciliationSweep(mode string)

	// ObservePlanDuration records planner latency.
	ObservePlanDuration(d time.Duration)

	// ObserveApplyDuration records applier latency.
	ObserveApplyDuration(d time.Duration)
}
