// Package compute defines the instance- and scaling-group-facing
// collaborator interfaces the readiness prober, health checker,
// metadata resolver, and reconciliation coordinator depend on
// (spec.md §1 "compute/instance API", "scaling-group API"), plus the
// aws-sdk-go-backed adapters and an in-memory stub for tests.
package compute

import "context"

// Instance is the subset of instance state this service needs:
// identity, launch time, addresses, tags, and lifecycle state.
type Instance struct {
	InstanceID       string
	LaunchTimestamp  int64
	PrivateIP        string
	PublicIP         string
	Tags             map[string]string
	LifecycleState   string
}

// InstanceDirectory resolves individual instances by id and looks up
// their tags, backing the readiness prober (spec.md §4.4) and the
// metadata resolver's ip:/tag: value sources (spec.md §4.6).
type InstanceDirectory interface {
	// Describe returns the instance, or (nil, nil) if it does not
	// exist (spec.md §4.4 "if the instance does not exist, false").
	Describe(ctx context.Context, instanceID string) (*Instance, error)
}

// ScalingGroupMembership enumerates the live members of a scaling
// group, backing the metadata resolver's RECONCILING instance set
// (spec.md §4.6) and the reconciliation coordinator.
type ScalingGroupMembership interface {
	// Members returns every instance currently in sgName.
	Members(ctx context.Context, sgName string) ([]Instance, error)
}

// LifecycleAcker completes an ASG lifecycle hook action, the concrete
// mechanism behind spec.md §6's "ack CONTINUE"/"ack ABANDON" language
// (SPEC_FULL.md §12.2).
type LifecycleAcker interface {
	CompleteLifecycleAction(ctx context.Context, sgName, hookName, instanceID, actionToken, result string) error
}

const (
	AckContinue = "CONTINUE"
	AckAbandon  = "ABANDON"
)
