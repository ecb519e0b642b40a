package dns

import (
	"context"
	"strings"

	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

// Resolver is the metadata resolver's contract as the planner consumes
// it, kept narrow so planner tests can supply a fake without pulling in
// the compute package.
type Resolver interface {
	Resolve(ctx context.Context, cfg domain.ScalingGroupConfig, event domain.LifecycleEvent) ([]domain.MetadataValue, error)
}

// Providers looks up a Provider by name (e.g. "route53", "cloudflare").
type Providers interface {
	Provider(name string) (Provider, error)
}

// Planner is the contract of spec.md §4.7: plan(sg_cfg, event) -> ChangeRequest.
type Planner struct {
	resolver  Resolver
	providers Providers
}

func NewPlanner(resolver Resolver, providers Providers) *Planner {
	return &Planner{resolver: resolver, providers: providers}
}

// Plan implements spec.md §4.7.
func (p *Planner) Plan(ctx context.Context, cfg domain.ScalingGroupConfig, event domain.LifecycleEvent) (domain.ChangeRequest, error) {
	recordType := strings.ToUpper(cfg.Dns.RecordType)

	provider, err := p.providers.Provider(cfg.Dns.Provider)
	if err != nil {
		return domain.ChangeRequest{}, err
	}

	apex, err := provider.ZoneApex(ctx, cfg.Dns.ZoneID)
	if err != nil {
		return domain.ChangeRequest{}, domain.NewProviderError(cfg.Dns.Provider, "zone_apex", cfg.Dns.ZoneID, err)
	}
	recordName := NormalizeFQDN(cfg.Dns.RecordName, apex)

	current, err := provider.ReadRecord(ctx, cfg.Dns.ZoneID, recordName, recordType)
	if err != nil {
		return domain.ChangeRequest{}, domain.NewProviderError(cfg.Dns.Provider, "read_record", recordName, err)
	}

	metadataValues, err := p.resolver.Resolve(ctx, cfg, event)
	if err != nil {
		return domain.ChangeRequest{}, err
	}
	desired := valuesOf(metadataValues)

	currentValues := current.Values
	if cfg.Dns.Managed {
		currentValues = setMinus(currentValues, []string{cfg.Dns.MockValue})
	}

	change := domain.ChangeRequest{
		RecordName: recordName,
		RecordType: recordType,
		TTL:        cfg.Dns.RecordTTL,
		Weight:     cfg.Dns.Weight,
		Priority:   cfg.Dns.Priority,
	}

	switch event.Transition {
	case domain.TransitionLaunching:
		p.planLaunching(&change, cfg, current, currentValues, desired)
	case domain.TransitionDraining:
		p.planDraining(&change, cfg, current, currentValues, desired)
	case domain.TransitionReconciling:
		p.planReconciling(&change, cfg, current, currentValues, desired)
	default:
		change.Action = domain.ActionIgnore
	}

	if change.Action != domain.ActionIgnore {
		change.Values = dedupSorted(change.Values)
		if cfg.Dns.Mode == domain.ModeSingle && len(change.Values) > 1 {
			change.Values = change.Values[:1]
		}
	}

	if err := change.Validate(); err != nil {
		return domain.ChangeRequest{}, domain.NewConfigError("dns_plan", err.Error(), err)
	}
	return change, nil
}

func (p *Planner) planLaunching(change *domain.ChangeRequest, cfg domain.ScalingGroupConfig, current Record, currentValues, desired []string) {
	if subsetOf(desired, currentValues) {
		change.Action = domain.ActionIgnore
		return
	}
	if cfg.Dns.Mode == domain.ModeSingle {
		// First desired value wins; never fold in stale current values
		// under SINGLE (spec.md §9 fixes the source's union-then-trim bug).
		change.Values = firstNonEmpty(desired)
	} else {
		change.Values = dedupSorted(append(append([]string{}, currentValues...), desired...))
	}
	if current.Exists {
		change.Action = domain.ActionUpdate
	} else {
		change.Action = domain.ActionCreate
	}
}

func (p *Planner) planDraining(change *domain.ChangeRequest, cfg domain.ScalingGroupConfig, current Record, currentValues, desired []string) {
	if !current.Exists || len(currentValues) == 0 {
		change.Action = domain.ActionIgnore
		return
	}
	next := setMinus(currentValues, desired)
	switch {
	case len(next) == 0 && cfg.Dns.Managed:
		change.Action = domain.ActionUpdate
		change.Values = []string{cfg.Dns.MockValue}
	case len(next) == 0:
		change.Action = domain.ActionDelete
		change.Values = currentValues
	default:
		change.Action = domain.ActionUpdate
		change.Values = next
	}
}

func (p *Planner) planReconciling(change *domain.ChangeRequest, cfg domain.ScalingGroupConfig, current Record, currentValues, desired []string) {
	finalDesired := desired
	compareAgainst := currentValues
	if cfg.Dns.Managed && len(finalDesired) == 0 {
		finalDesired = []string{cfg.Dns.MockValue}
		// currentValues has mock_value stripped out above; compare
		// against the record's raw values here so a record already
		// holding exactly mock_value reports IGNORE, not UPDATE.
		compareAgainst = current.Values
	}
	if sameSet(dedupSorted(compareAgainst), dedupSorted(finalDesired)) {
		change.Action = domain.ActionIgnore
		return
	}
	if current.Exists {
		change.Action = domain.ActionUpdate
	} else {
		change.Action = domain.ActionCreate
	}
	change.Values = finalDesired
}

func valuesOf(mvs []domain.MetadataValue) []string {
	out := make([]string, 0, len(mvs))
	for _, mv := range mvs {
		out = append(out, mv.Value)
	}
	return out
}

func firstNonEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return []string{values[0]}
}
