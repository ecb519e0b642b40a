// Package reconcile implements the bulk and manual reconciliation
// sweeps of spec.md §4.10: group configs by scaling group, lock every
// record a group owns up front, plan and apply each, then release.
package reconcile

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

// Locker is the bounded-attempt acquirer a worker uses per record.
type Locker interface {
	AcquireBounded(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

// Outcome is one SG group's result, collected by the coordinator after
// every worker in a chunk has returned (spec.md §4.10 "IPC channel").
type Outcome struct {
	SgName  string
	Planned []domain.ChangeRequest
	Err     error
}

// Worker processes every ScalingGroupConfig for one SG sequentially,
// under that SG's record locks, held for the worker's whole run
// (spec.md §4.10 steps 1-5). It plans through a readiness- and
// health-filtering resolver so a sweep never republishes the IP of an
// instance that has since gone not-ready or unhealthy (spec.md §4.10
// steps 3-4).
type Worker struct {
	membership compute.ScalingGroupMembership
	planner    *dns.Planner
	applier    *dns.Applier
	locker     Locker
	logger     *slog.Logger
	metrics    metrics.Sink
}

// NewWorker builds a Worker whose planner resolves through a
// filteringResolver wrapping resolver with prober and checker, so
// every reconciled value has already passed both gates before the
// planner diffs it against the live record.
func NewWorker(membership compute.ScalingGroupMembership, resolver dns.Resolver, providers dns.Providers, prober *readiness.Prober, checker *health.Checker, applier *dns.Applier, locker Locker, logger *slog.Logger, sink metrics.Sink) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = metrics.NoopSink{}
	}
	filtered := newFilteringResolver(resolver, prober, checker, logger)
	planner := dns.NewPlanner(filtered, providers)
	return &Worker{membership: membership, planner: planner, applier: applier, locker: locker, logger: logger, metrics: sink}
}

// Run reconciles every config in sgConfigs, all of which must share
// sgName; whatIf skips the apply step, logging the computed plan
// instead (spec.md §4.10 step 4).
func (w *Worker) Run(ctx context.Context, sgName string, sgConfigs []domain.ScalingGroupConfig, whatIf bool) Outcome {
	for _, cfg := range sgConfigs {
		if cfg.SgName != sgName {
			return Outcome{SgName: sgName, Err: domain.NewBusinessError("config sg_name " + cfg.SgName + " does not match worker group " + sgName)}
		}
	}

	lockKeys := make([]string, len(sgConfigs))
	for i, cfg := range sgConfigs {
		lockKeys[i] = cfg.LockKey()
	}

	acquiredUpTo, err := w.acquireAll(ctx, lockKeys)
	if err != nil {
		w.releaseAll(ctx, lockKeys[:acquiredUpTo])
		return Outcome{SgName: sgName, Err: err}
	}
	defer w.releaseAll(ctx, lockKeys)

	event := domain.LifecycleEvent{Transition: domain.TransitionReconciling, SgName: sgName}

	var planned []domain.ChangeRequest
	for _, cfg := range sgConfigs {
		planStart := time.Now()
		change, err := w.planner.Plan(ctx, cfg, event)
		w.metrics.ObservePlanDuration(time.Since(planStart))
		if err != nil {
			w.logger.Error("reconcile: planning failed", "sg_name", sgName, "lock_key", cfg.LockKey(), "error", err)
			w.metrics.IncPhase("plan", "fail")
			return Outcome{SgName: sgName, Planned: planned, Err: err}
		}
		w.metrics.IncPhase("plan", "pass")
		planned = append(planned, change)

		if whatIf {
			w.logger.Info("reconcile: what_if plan", "sg_name", sgName, "lock_key", cfg.LockKey(), "action", change.Action, "values", change.Values)
			continue
		}
		applyStart := time.Now()
		err = w.applier.Apply(ctx, cfg, change)
		w.metrics.ObserveApplyDuration(time.Since(applyStart))
		if err != nil {
			w.logger.Error("reconcile: apply failed", "sg_name", sgName, "lock_key", cfg.LockKey(), "error", err)
			w.metrics.IncPhase("apply", "fail")
			return Outcome{SgName: sgName, Planned: planned, Err: err}
		}
		w.metrics.IncPhase("apply", "pass")
		w.metrics.IncChangeRequest(string(change.Action))
	}
	return Outcome{SgName: sgName, Planned: planned}
}

func (w *Worker) acquireAll(ctx context.Context, lockKeys []string) (int, error) {
	for i, key := range lockKeys {
		ok, err := w.locker.AcquireBounded(ctx, key)
		if err != nil {
			w.metrics.IncLockAttempt(false)
			return i, domain.NewProviderError("lock", "acquire", key, err)
		}
		if !ok {
			w.metrics.IncLockAttempt(false)
			return i, domain.NewLockContention(key)
		}
		w.metrics.IncLockAttempt(true)
	}
	return len(lockKeys), nil
}

func (w *Worker) releaseAll(ctx context.Context, lockKeys []string) {
	for _, key := range lockKeys {
		if err := w.locker.Release(ctx, key); err != nil {
			w.logger.Error("reconcile: lock release failed", "lock_key", key, "error", err)
		}
	}
}
