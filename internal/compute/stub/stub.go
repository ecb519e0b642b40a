// Package stub is an in-memory compute.InstanceDirectory and
// compute.ScalingGroupMembership used by the metadata, readiness,
// lifecycle and reconcile test suites.
package stub

import (
	"context"
	"sync"

	"github.com/nprokhorov/sgdns-discovery/internal/compute"
)

// Directory is a map-backed InstanceDirectory + ScalingGroupMembership
// + LifecycleAcker.
type Directory struct {
	mu        sync.Mutex
	instances map[string]compute.Instance
	members   map[string][]string // sg_name -> instance ids
	acked     []AckCall
}

type AckCall struct {
	SgName, HookName, InstanceID, ActionToken, Result string
}

func New() *Directory {
	return &Directory{
		instances: make(map[string]compute.Instance),
		members:   make(map[string][]string),
	}
}

// Put registers or replaces an instance and its SG membership.
func (d *Directory) Put(sgName string, inst compute.Instance) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.instances[inst.InstanceID] = inst
	for _, id := range d.members[sgName] {
		if id == inst.InstanceID {
			return
		}
	}
	d.members[sgName] = append(d.members[sgName], inst.InstanceID)
}

// SetTags updates an existing instance's tags in place (used to
// simulate readiness polling converging over time).
func (d *Directory) SetTags(instanceID string, tags map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	inst := d.instances[instanceID]
	inst.Tags = tags
	d.instances[instanceID] = inst
}

func (d *Directory) Describe(_ context.Context, instanceID string) (*compute.Instance, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	inst, ok := d.instances[instanceID]
	if !ok {
		return nil, nil
	}
	cp := inst
	return &cp, nil
}

func (d *Directory) Members(_ context.Context, sgName string) ([]compute.Instance, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := d.members[sgName]
	out := make([]compute.Instance, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.instances[id])
	}
	return out, nil
}

func (d *Directory) CompleteLifecycleAction(_ context.Context, sgName, hookName, instanceID, actionToken, result string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acked = append(d.acked, AckCall{sgName, hookName, instanceID, actionToken, result})
	return nil
}

func (d *Directory) Acks() []AckCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]AckCall, len(d.acked))
	copy(out, d.acked)
	return out
}
