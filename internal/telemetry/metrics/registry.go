package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink is the Sink backing SPEC_FULL.md §11.7: counters and
// histograms registered against a private *prometheus.Registry (not the
// global default registry, so multiple instances can coexist in
// tests), namespaced per monitoring_metrics_namespace.
type PrometheusSink struct {
	registry *prometheus.Registry

	phaseTotal            *prometheus.CounterVec
	changeRequestsTotal   *prometheus.CounterVec
	lockAttemptsTotal     *prometheus.CounterVec
	lifecycleOutcomeTotal *prometheus.CounterVec
	reconciliationTotal   *prometheus.CounterVec
	planDuration          prometheus.Histogram
	applyDuration         prometheus.Histogram
}

// NewPrometheusSink builds and registers every metric under namespace
// (the teacher's `<namespace>_<category>_<name>` taxonomy).
func NewPrometheusSink(namespace string) *PrometheusSink {
	registry := prometheus.NewRegistry()

	s := &PrometheusSink{
		registry: registry,
		phaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "coordinator",
			Name:      "phase_total",
			Help:      "Coordinator phase transitions by phase and outcome.",
		}, []string{"phase", "outcome"}),
		changeRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dns",
			Name:      "change_requests_total",
			Help:      "ChangeRequests applied without error, by action.",
		}, []string{"action"}),
		lockAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lock",
			Name:      "attempts_total",
			Help:      "Lock acquire attempts by outcome.",
		}, []string{"outcome"}),
		lifecycleOutcomeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "outcomes_total",
			Help:      "Completed lifecycle invocations by result.",
		}, []string{"result"}),
		reconciliationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciliation",
			Name:      "sweeps_total",
			Help:      "Reconciliation sweeps run, by mode (manual/bulk).",
		}, []string{"mode"}),
		planDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dns",
			Name:      "plan_duration_seconds",
			Help:      "Planner latency.",
		}),
		applyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dns",
			Name:      "apply_duration_seconds",
			Help:      "Applier latency.",
		}),
	}

	registry.MustRegister(
		s.phaseTotal, s.changeRequestsTotal, s.lockAttemptsTotal,
		s.lifecycleOutcomeTotal, s.reconciliationTotal, s.planDuration, s.applyDuration,
	)
	return s
}

// Registry exposes the underlying registry for the /metrics HTTP
// handler entrypoints wire up.
func (s *PrometheusSink) Registry() *prometheus.Registry { return s.registry }

func (s *PrometheusSink) IncPhase(phase, outcome string) {
	s.phaseTotal.WithLabelValues(phase, outcome).Inc()
}

func (s *PrometheusSink) IncChangeRequest(action string) {
	s.changeRequestsTotal.WithLabelValues(action).Inc()
}

func (s *PrometheusSink) IncLockAttempt(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	s.lockAttemptsTotal.WithLabelValues(outcome).Inc()
}

func (s *PrometheusSink) IncLifecycleOutcome(result string) {
	s.lifecycleOutcomeTotal.WithLabelValues(result).Inc()
}

func (s *PrometheusSink) IncReconciliationSweep(mode string) {
	s.reconciliationTotal.WithLabelValues(mode).Inc()
}

func (s *PrometheusSink) ObservePlanDuration(d time.Duration) {
	s.planDuration.Observe(d.Seconds())
}

func (s *PrometheusSink) ObserveApplyDuration(d time.Duration) {
	s.applyDuration.Observe(d.Seconds())
}

var _ Sink = (*PrometheusSink)(nil)
