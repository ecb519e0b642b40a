// Package metadata implements the {SG config, lifecycle event} ->
// []MetadataValue mapping of spec.md §4.6.
package metadata

import (
	"context"
	"sort"
	"strings"

	"github.com/nprokhorov/sgdns-discovery/internal/compute"
	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

// Resolver is the contract of spec.md §4.6: resolve(sg_cfg, event).
type Resolver struct {
	directory  compute.InstanceDirectory
	membership compute.ScalingGroupMembership
}

func New(directory compute.InstanceDirectory, membership compute.ScalingGroupMembership) *Resolver {
	return &Resolver{directory: directory, membership: membership}
}

// Resolve implements spec.md §4.6, including its deterministic
// ordering (launch_ts ascending, then instance_id).
func (r *Resolver) Resolve(ctx context.Context, cfg domain.ScalingGroupConfig, event domain.LifecycleEvent) ([]domain.MetadataValue, error) {
	instances, err := r.contributingInstances(ctx, cfg, event)
	if err != nil {
		return nil, err
	}

	kind, arg, ok := parseValueSource(cfg.Dns.ValueSource)
	if !ok {
		return nil, nil // unknown kinds return an empty result, not an error (spec.md §9)
	}

	var values []domain.MetadataValue
	for _, inst := range instances {
		v, present := valueFor(inst, kind, arg)
		if !present {
			continue
		}
		values = append(values, domain.MetadataValue{
			InstanceID: inst.InstanceID,
			LaunchTS:   inst.LaunchTimestamp,
			Value:      v,
			Source:     cfg.Dns.ValueSource,
		})
	}

	sort.SliceStable(values, func(i, j int) bool {
		if values[i].LaunchTS != values[j].LaunchTS {
			return values[i].LaunchTS < values[j].LaunchTS
		}
		return values[i].InstanceID < values[j].InstanceID
	})
	return values, nil
}

func (r *Resolver) contributingInstances(ctx context.Context, cfg domain.ScalingGroupConfig, event domain.LifecycleEvent) ([]compute.Instance, error) {
	switch event.Transition {
	case domain.TransitionLaunching, domain.TransitionDraining:
		inst, err := r.directory.Describe(ctx, event.InstanceID)
		if err != nil {
			return nil, domain.NewProviderError("metadata", "describe_instance", event.InstanceID, err)
		}
		if inst == nil {
			return nil, nil
		}
		return []compute.Instance{*inst}, nil

	case domain.TransitionReconciling:
		members, err := r.membership.Members(ctx, cfg.SgName)
		if err != nil {
			return nil, domain.NewProviderError("metadata", "list_members", cfg.SgName, err)
		}
		valid := make(map[string]bool)
		for _, s := range cfg.EffectiveValidStates() {
			valid[s] = true
		}
		out := make([]compute.Instance, 0, len(members))
		for _, m := range members {
			if !valid[m.LifecycleState] {
				continue
			}
			// ASG membership carries lifecycle state but not
			// addresses/tags/launch time; backfill from the instance
			// directory.
			full, err := r.directory.Describe(ctx, m.InstanceID)
			if err != nil {
				return nil, domain.NewProviderError("metadata", "describe_instance", m.InstanceID, err)
			}
			if full == nil {
				continue
			}
			full.LifecycleState = m.LifecycleState
			out = append(out, *full)
		}
		return out, nil

	default:
		return nil, nil
	}
}

// parseValueSource parses "kind:arg" totally (spec.md §9): unknown
// kinds are reported via ok=false, never an error.
func parseValueSource(source string) (kind, arg string, ok bool) {
	parts := strings.SplitN(source, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	kind, arg = parts[0], parts[1]
	switch kind {
	case "ip":
		if arg != "public" && arg != "private" {
			return "", "", false
		}
		return kind, arg, true
	case "tag":
		if arg == "" {
			return "", "", false
		}
		return kind, arg, true
	default:
		return "", "", false
	}
}

func valueFor(inst compute.Instance, kind, arg string) (string, bool) {
	switch kind {
	case "ip":
		var v string
		if arg == "public" {
			v = inst.PublicIP
		} else {
			v = inst.PrivateIP
		}
		return v, v != ""
	case "tag":
		v, present := inst.Tags[arg]
		return v, present
	default:
		return "", false
	}
}
