package metrics

import "time"

// NoopSink discards every observation. It is the Sink used when
// monitoring_metrics_enabled=false (SPEC_FULL.md §12 item 5), mirroring
// a development/log-only metrics backend.
type NoopSink struct{}

func (NoopSink) IncPhase(string, string)            {}
func (NoopSink) IncChangeRequest(string)            {}
func (NoopSink) IncLockAttempt(bool)                {}
func (NoopSink) IncLifecycleOutcome(string)         {}
func (NoopSink) IncReconciliationSweep(string)      {}
func (NoopSink) ObservePlanDuration(time.Duration)  {}
func (NoopSink) ObserveApplyDuration(time.Duration) {}

var _ Sink = NoopSink{}
