package reconcile

import (
	"context"
	"log/slog"

	"github.com/nprokhorov/sgdns-discovery/internal/dns"
	"github.com/nprokhorov/sgdns-discovery/internal/domain"
	"github.com/nprokhorov/sgdns-discovery/internal/health"
	"github.com/nprokhorov/sgdns-discovery/internal/readiness"
)

// filteringResolver wraps the metadata resolver with the readiness and
// health gates a reconciliation sweep must apply before a value is
// eligible for DNS (spec.md §4.10 steps 3-4): an instance missing its
// readiness tag never contributes a value, and a value whose
// destination fails its health check is dropped even if the instance
// itself is ready. Both checks run one-shot, never polling, since a
// sweep should report drift rather than block on it.
type filteringResolver struct {
	resolver dns.Resolver
	prober   *readiness.Prober
	checker  *health.Checker
	logger   *slog.Logger
}

func newFilteringResolver(resolver dns.Resolver, prober *readiness.Prober, checker *health.Checker, logger *slog.Logger) *filteringResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &filteringResolver{resolver: resolver, prober: prober, checker: checker, logger: logger}
}

func (r *filteringResolver) Resolve(ctx context.Context, cfg domain.ScalingGroupConfig, event domain.LifecycleEvent) ([]domain.MetadataValue, error) {
	values, err := r.resolver.Resolve(ctx, cfg, event)
	if err != nil {
		return nil, err
	}

	out := make([]domain.MetadataValue, 0, len(values))
	for _, v := range values {
		if cfg.Readiness != nil && cfg.Readiness.Enabled {
			if !r.prober.IsReady(ctx, v.InstanceID, *cfg.Readiness, false) {
				r.logger.Info("reconcile: dropping not-ready instance", "sg_name", cfg.SgName, "instance_id", v.InstanceID)
				continue
			}
		}
		if cfg.Health != nil && cfg.Health.Enabled {
			result, err := r.checker.Check(ctx, v.Value, *cfg.Health)
			if err != nil {
				r.logger.Error("reconcile: health check configuration error", "sg_name", cfg.SgName, "instance_id", v.InstanceID, "error", err)
				continue
			}
			if !result.Healthy() {
				r.logger.Info("reconcile: dropping unhealthy value", "sg_name", cfg.SgName, "instance_id", v.InstanceID, "value", v.Value)
				continue
			}
		}
		out = append(out, v)
	}
	return out, nil
}
