// Package lifecycle implements the per-event state machine of spec.md
// §4.9: readiness -> health -> lock -> plan -> apply -> ack.
package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/nprokhorov/sgdns-discovery/internal/compute"
	"github.com/nprokhorov/sgdns-discovery/internal/dns"
	"github.com/nprokhorov/sgdns-discovery/internal/domain"
	"github.com/nprokhorov/sgdns-discovery/internal/health"
	"github.com/nprokhorov/sgdns-discovery/internal/readiness"
	"github.com/nprokhorov/sgdns-discovery/internal/telemetry/metrics"
)

// ConfigSource supplies the cached ScalingGroupConfig list.
type ConfigSource interface {
	Configs(ctx context.Context) ([]domain.ScalingGroupConfig, error)
}

// Locker is the bounded-attempt acquirer the coordinator uses per
// record (lock.BoundedAcquirer satisfies this).
type Locker interface {
	AcquireBounded(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

// Coordinator orchestrates one LifecycleEvent end to end.
type Coordinator struct {
	configs  ConfigSource
	resolver dns.Resolver
	prober   *readiness.Prober
	checker  *health.Checker
	locker   Locker
	planner  *dns.Planner
	applier  *dns.Applier
	acker    compute.LifecycleAcker
	logger   *slog.Logger
	metrics  metrics.Sink
}

func New(
	configs ConfigSource,
	resolver dns.Resolver,
	prober *readiness.Prober,
	checker *health.Checker,
	locker Locker,
	planner *dns.Planner,
	applier *dns.Applier,
	acker compute.LifecycleAcker,
	logger *slog.Logger,
	sink metrics.Sink,
) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = metrics.NoopSink{}
	}
	return &Coordinator{
		configs: configs, resolver: resolver, prober: prober, checker: checker, locker: locker,
		planner: planner, applier: applier, acker: acker, logger: logger, metrics: sink,
	}
}

// Outcome is the result of handling one LifecycleEvent, matching the
// `{statusCode, body, handled}` response shape of spec.md §6.
type Outcome struct {
	Handled bool
	Acked   string // compute.AckContinue or compute.AckAbandon, empty if nothing to ack
}

// Handle implements spec.md §4.9's full state machine for one event.
func (c *Coordinator) Handle(ctx context.Context, event domain.LifecycleEvent) (Outcome, error) {
	if err := event.Validate(); err != nil {
		c.logger.Warn("lifecycle event failed validation", "error", err, "transition", event.Transition)
		return Outcome{Handled: false}, nil
	}

	allConfigs, err := c.configs.Configs(ctx)
	if err != nil {
		return Outcome{}, err
	}

	var matching []domain.ScalingGroupConfig
	for _, cfg := range allConfigs {
		if cfg.SgName == event.SgName {
			matching = append(matching, cfg)
		}
	}
	if len(matching) == 0 {
		c.logger.Info("lifecycle event matches no configured scaling group", "sg_name", event.SgName)
		c.ack(ctx, event, compute.AckContinue)
		c.metrics.IncLifecycleOutcome("unmatched")
		return Outcome{Handled: false, Acked: compute.AckContinue}, nil
	}

	readinessPassed := make(map[string]bool)
	allSucceeded := true

	for _, cfg := range matching {
		if !c.runOne(ctx, cfg, event, readinessPassed) {
			allSucceeded = false
			c.ack(ctx, event, compute.AckAbandon)
			c.metrics.IncLifecycleOutcome("abandoned")
			return Outcome{Handled: false, Acked: compute.AckAbandon}, nil
		}
	}

	if allSucceeded {
		c.ack(ctx, event, compute.AckContinue)
		c.metrics.IncLifecycleOutcome("handled")
		return Outcome{Handled: true, Acked: compute.AckContinue}, nil
	}
	return Outcome{Handled: false}, nil
}

// runOne drives one config's sub-state-machine:
// VALIDATED -> (READY|ABANDONED) -> (HEALTHY|ABANDONED) -> LOCK_HELD -> APPLIED.
// Returns true iff it reached APPLIED (or IGNORE) without abandoning.
func (c *Coordinator) runOne(ctx context.Context, cfg domain.ScalingGroupConfig, event domain.LifecycleEvent, readinessPassed map[string]bool) bool {
	log := c.logger.With("sg_name", cfg.SgName, "lock_key", cfg.LockKey(), "transition", event.Transition)

	if cfg.Readiness != nil && cfg.Readiness.Enabled {
		identity := cfg.Readiness.Identity()
		if !readinessPassed[identity] {
			ready := c.prober.IsReady(ctx, event.InstanceID, *cfg.Readiness, event.Transition == domain.TransitionLaunching)
			if !ready {
				log.Warn("lifecycle: instance not ready, abandoning")
				c.metrics.IncPhase("readiness", "fail")
				return false
			}
			c.metrics.IncPhase("readiness", "pass")
			readinessPassed[identity] = true
		}
	}

	if cfg.Health != nil && cfg.Health.Enabled {
		destination := c.healthDestination(ctx, cfg, event)
		result, err := c.checker.Check(ctx, destination, *cfg.Health)
		if err != nil {
			log.Error("lifecycle: health check configuration error", "error", err)
			c.metrics.IncPhase("health", "fail")
			return false
		}
		if !result.Healthy() {
			log.Warn("lifecycle: instance unhealthy, abandoning")
			c.metrics.IncPhase("health", "fail")
			return false
		}
		c.metrics.IncPhase("health", "pass")
	}

	acquired, err := c.locker.AcquireBounded(ctx, cfg.LockKey())
	if err != nil {
		log.Error("lifecycle: lock acquire error", "error", err)
		c.metrics.IncLockAttempt(false)
		return false
	}
	if !acquired {
		log.Warn("lifecycle: lock contention exhausted attempts, abandoning")
		c.metrics.IncLockAttempt(false)
		return false
	}
	c.metrics.IncLockAttempt(true)
	defer func() {
		if err := c.locker.Release(ctx, cfg.LockKey()); err != nil {
			log.Error("lifecycle: lock release failed", "error", err)
		}
	}()

	planStart := time.Now()
	change, err := c.planner.Plan(ctx, cfg, event)
	c.metrics.ObservePlanDuration(time.Since(planStart))
	if err != nil {
		log.Error("lifecycle: planning failed", "error", err)
		c.metrics.IncPhase("plan", "fail")
		return false
	}
	c.metrics.IncPhase("plan", "pass")

	applyStart := time.Now()
	err = c.applier.Apply(ctx, cfg, change)
	c.metrics.ObserveApplyDuration(time.Since(applyStart))
	if err != nil {
		log.Error("lifecycle: apply failed", "error", err, "action", change.Action)
		c.metrics.IncPhase("apply", "fail")
		return false
	}
	c.metrics.IncPhase("apply", "pass")
	c.metrics.IncChangeRequest(string(change.Action))
	log.Info("lifecycle: record converged", "action", change.Action, "values", change.Values)
	return true
}

// healthDestination resolves the contributing value to health-check
// (spec.md §4.9c "a resolved endpoint"), falling back to the raw
// instance id when resolution fails or yields no value (e.g. the
// instance lacks the configured tag).
func (c *Coordinator) healthDestination(ctx context.Context, cfg domain.ScalingGroupConfig, event domain.LifecycleEvent) string {
	values, err := c.resolver.Resolve(ctx, cfg, event)
	if err != nil || len(values) == 0 {
		return event.InstanceID
	}
	return values[0].Value
}

func (c *Coordinator) ack(ctx context.Context, event domain.LifecycleEvent, result string) {
	if event.HookName == "" {
		return
	}
	if err := c.acker.CompleteLifecycleAction(ctx, event.SgName, event.HookName, event.InstanceID, event.ActionToken, result); err != nil {
		c.logger.Error("lifecycle: ack failed", "error", err, "result", result, "sg_name", event.SgName)
	}
}
