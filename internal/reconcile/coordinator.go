package reconcile

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nprokhorov/sgdns-discovery/internal/domain"
	"github.com/nprokhorov/sgdns-discovery/internal/telemetry/metrics"
)

// ConfigSource supplies the cached ScalingGroupConfig list.
type ConfigSource interface {
	Configs(ctx context.Context) ([]domain.ScalingGroupConfig, error)
}

// ManualSelector identifies a single record for manual reconciliation
// (spec.md §4.10 "Manual" / §6 Trigger 2).
type ManualSelector struct {
	SgName     string
	ZoneID     string
	RecordName string
	RecordType string
}

// ErrRecordNotConfigured is returned by Manual when no config matches
// the selector; entrypoints map it to statusCode 400.
type ErrRecordNotConfigured struct{ Selector ManualSelector }

func (e *ErrRecordNotConfigured) Error() string {
	return "no configured record matches " + e.Selector.SgName + "/" + e.Selector.ZoneID + "/" + e.Selector.RecordName + "/" + e.Selector.RecordType
}

// Coordinator dispatches manual and bulk reconciliation runs.
type Coordinator struct {
	configs        ConfigSource
	newWorker      func() *Worker
	maxConcurrency int
	logger         *slog.Logger
	metrics        metrics.Sink
}

func New(configs ConfigSource, newWorker func() *Worker, maxConcurrency int, logger *slog.Logger, sink metrics.Sink) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = metrics.NoopSink{}
	}
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Coordinator{configs: configs, newWorker: newWorker, maxConcurrency: maxConcurrency, logger: logger, metrics: sink}
}

// Manual reconciles exactly the one record identified by sel, running
// its worker synchronously (spec.md §4.10 "Manual").
func (c *Coordinator) Manual(ctx context.Context, sel ManualSelector, whatIf bool) (Outcome, error) {
	c.metrics.IncReconciliationSweep("manual")
	configs, err := c.configs.Configs(ctx)
	if err != nil {
		return Outcome{}, err
	}

	var match *domain.ScalingGroupConfig
	for i := range configs {
		cfg := configs[i]
		if cfg.SgName == sel.SgName && cfg.Dns.ZoneID == sel.ZoneID &&
			cfg.Dns.RecordName == sel.RecordName && cfg.Dns.RecordType == sel.RecordType {
			match = &configs[i]
			break
		}
	}
	if match == nil {
		return Outcome{}, &ErrRecordNotConfigured{Selector: sel}
	}

	outcome := c.newWorker().Run(ctx, match.SgName, []domain.ScalingGroupConfig{*match}, whatIf)
	return outcome, nil
}

// Bulk reconciles every configured record, grouped by SG, fanned out in
// chunks of size min(len(groups), max_concurrency) (spec.md §4.10
// "Bulk", SPEC_FULL.md §13 item 2: chunks are awaited sequentially,
// which can serialize workers when groups exceed max_concurrency —
// kept as specified and reported via OverConservative).
type BulkResult struct {
	Outcomes         []Outcome
	OverConservative bool
}

func (c *Coordinator) Bulk(ctx context.Context, whatIf bool) (BulkResult, error) {
	c.metrics.IncReconciliationSweep("bulk")
	configs, err := c.configs.Configs(ctx)
	if err != nil {
		return BulkResult{}, err
	}

	groups := groupBySgName(configs)
	concurrency := len(groups)
	if concurrency > c.maxConcurrency {
		concurrency = c.maxConcurrency
	}
	if concurrency < 1 {
		return BulkResult{}, nil
	}

	overConservative := len(groups) > c.maxConcurrency
	if overConservative {
		c.logger.Warn("reconcile: bulk chunking is over-conservative",
			"groups", len(groups), "max_concurrency", c.maxConcurrency)
	}

	names := sgNames(groups)
	var outcomes []Outcome
	for start := 0; start < len(names); start += concurrency {
		end := start + concurrency
		if end > len(names) {
			end = len(names)
		}
		outcomes = append(outcomes, c.runChunk(ctx, names[start:end], groups, whatIf)...)
	}

	return BulkResult{Outcomes: outcomes, OverConservative: overConservative}, nil
}

func (c *Coordinator) runChunk(ctx context.Context, names []string, groups map[string][]domain.ScalingGroupConfig, whatIf bool) []Outcome {
	results := make([]Outcome, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, sgName string) {
			defer wg.Done()
			results[i] = c.newWorker().Run(ctx, sgName, groups[sgName], whatIf)
		}(i, name)
	}
	wg.Wait()

	for _, outcome := range results {
		if outcome.Err != nil {
			c.logger.Error("reconcile: sg worker failed", "sg_name", outcome.SgName, "error", outcome.Err)
		}
	}
	return results
}

func groupBySgName(configs []domain.ScalingGroupConfig) map[string][]domain.ScalingGroupConfig {
	groups := make(map[string][]domain.ScalingGroupConfig)
	for _, cfg := range configs {
		groups[cfg.SgName] = append(groups[cfg.SgName], cfg)
	}
	return groups
}

func sgNames(groups map[string][]domain.ScalingGroupConfig) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	return names
}
