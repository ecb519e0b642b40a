// Package readiness implements the tag-poll readiness gate of
// spec.md §4.4.
package readiness

import (
	"context"
	"log/slog"
	"time"

	"github.com/nprokhorov/sgdns-discovery/internal/compute"
	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

// defaultInterval/defaultTimeout back-fill a ReadinessConfig that
// enables polling without specifying timing. They are fixed values,
// equal to the ec2_readiness_interval_seconds /
// ec2_readiness_timeout_seconds defaults in internal/config; the Prober
// does not read EnvConfig, so setting those variables does not change
// them.
const (
	defaultInterval = 5 * time.Second
	defaultTimeout  = 60 * time.Second
)

// Prober is the contract of spec.md §4.4: is_ready(instance_id, cfg, wait).
type Prober struct {
	directory compute.InstanceDirectory
	logger    *slog.Logger
	sleep     func(time.Duration)
	now       func() time.Time
}

func New(directory compute.InstanceDirectory, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{directory: directory, logger: logger, sleep: time.Sleep, now: time.Now}
}

// IsReady implements spec.md §4.4.
func (p *Prober) IsReady(ctx context.Context, instanceID string, cfg domain.ReadinessConfig, wait bool) bool {
	if !cfg.Enabled {
		return true
	}

	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	deadline := p.now().Add(timeout)
	for {
		inst, err := p.directory.Describe(ctx, instanceID)
		if err != nil {
			p.logger.Error("readiness probe: describe instance failed", "instance_id", instanceID, "error", err)
			return false
		}
		if inst == nil {
			return false
		}
		if inst.Tags[cfg.TagKey] == cfg.TagValue {
			return true
		}
		if !wait || p.now().After(deadline) {
			if wait {
				p.logger.Info("readiness probe: timed out waiting for tag match",
					"instance_id", instanceID, "tag_key", cfg.TagKey, "tag_value", cfg.TagValue, "timeout", timeout)
			}
			return false
		}
		select {
		case <-ctx.Done():
			return false
		default:
		}
		p.sleep(interval)
	}
}
