package dns

import (
	"context"
	"fmt"

	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

// Registry is a name -> Provider lookup, shared between the planner
// (ReadRecord/ZoneApex) and the applier (ApplyChange).
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers map[string]Provider) *Registry {
	return &Registry{providers: providers}
}

func (r *Registry) Provider(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, domain.NewConfigError("dns_provider", fmt.Sprintf("no provider registered for %q", name), nil)
	}
	return p, nil
}

// Applier is the contract of spec.md §4.8: apply(sg_cfg, change) -> void.
type Applier struct {
	providers Providers
}

func NewApplier(providers Providers) *Applier {
	return &Applier{providers: providers}
}

// Apply is a no-op for ActionIgnore; otherwise it dispatches to the
// configured provider.
func (a *Applier) Apply(ctx context.Context, cfg domain.ScalingGroupConfig, change domain.ChangeRequest) error {
	if change.Action == domain.ActionIgnore {
		return nil
	}
	provider, err := a.providers.Provider(cfg.Dns.Provider)
	if err != nil {
		return err
	}
	if err := provider.ApplyChange(ctx, cfg.Dns.ZoneID, change); err != nil {
		return domain.NewProviderError(cfg.Dns.Provider, "apply_change", change.RecordName, err)
	}
	return nil
}
