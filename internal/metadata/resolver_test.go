package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nprokhorov/sgdns-discovery/internal/compute"
	"github.com/nprokhorov/sgdns-discovery/internal/compute/stub"
	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

func cfgWithSource(source string) domain.ScalingGroupConfig {
	return domain.ScalingGroupConfig{
		SgName: "sg-a",
		Dns:    domain.DnsRecordConfig{ValueSource: source},
	}
}

func TestResolver_LaunchingUsesEventInstance(t *testing.T) {
	dir := stub.New()
	dir.Put("sg-a", compute.Instance{InstanceID: "i-1", PrivateIP: "10.0.0.1", LaunchTimestamp: 1})
	r := New(dir, dir)

	event := domain.LifecycleEvent{Transition: domain.TransitionLaunching, SgName: "sg-a", InstanceID: "i-1"}
	values, err := r.Resolve(context.Background(), cfgWithSource("ip:private"), event)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "10.0.0.1", values[0].Value)
	assert.Equal(t, "i-1", values[0].InstanceID)
}

func TestResolver_DrainingMissingInstanceIsEmpty(t *testing.T) {
	dir := stub.New()
	r := New(dir, dir)

	event := domain.LifecycleEvent{Transition: domain.TransitionDraining, SgName: "sg-a", InstanceID: "i-gone"}
	values, err := r.Resolve(context.Background(), cfgWithSource("ip:public"), event)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestResolver_ReconcilingFiltersByValidStatesAndOrdersDeterministically(t *testing.T) {
	dir := stub.New()
	dir.Put("sg-a", compute.Instance{InstanceID: "i-2", PrivateIP: "10.0.0.2", LaunchTimestamp: 20, LifecycleState: "InService"})
	dir.Put("sg-a", compute.Instance{InstanceID: "i-1", PrivateIP: "10.0.0.1", LaunchTimestamp: 10, LifecycleState: "InService"})
	dir.Put("sg-a", compute.Instance{InstanceID: "i-3", PrivateIP: "10.0.0.3", LaunchTimestamp: 5, LifecycleState: "Terminating"})
	r := New(dir, dir)

	cfg := cfgWithSource("ip:private")
	event := domain.LifecycleEvent{Transition: domain.TransitionReconciling, SgName: "sg-a"}
	values, err := r.Resolve(context.Background(), cfg, event)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "i-1", values[0].InstanceID)
	assert.Equal(t, "i-2", values[1].InstanceID)
}

func TestResolver_ReconcilingSameLaunchTimestampOrdersByInstanceID(t *testing.T) {
	dir := stub.New()
	dir.Put("sg-a", compute.Instance{InstanceID: "i-b", PrivateIP: "10.0.0.2", LaunchTimestamp: 10, LifecycleState: "InService"})
	dir.Put("sg-a", compute.Instance{InstanceID: "i-a", PrivateIP: "10.0.0.1", LaunchTimestamp: 10, LifecycleState: "InService"})
	r := New(dir, dir)

	event := domain.LifecycleEvent{Transition: domain.TransitionReconciling, SgName: "sg-a"}
	values, err := r.Resolve(context.Background(), cfgWithSource("ip:private"), event)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "i-a", values[0].InstanceID)
	assert.Equal(t, "i-b", values[1].InstanceID)
}

func TestResolver_UnrelatedTransitionIsEmpty(t *testing.T) {
	dir := stub.New()
	r := New(dir, dir)
	event := domain.LifecycleEvent{Transition: domain.TransitionUnrelated, SgName: "sg-a"}
	values, err := r.Resolve(context.Background(), cfgWithSource("ip:private"), event)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestResolver_UnknownValueSourceKindIsEmptyNotError(t *testing.T) {
	dir := stub.New()
	dir.Put("sg-a", compute.Instance{InstanceID: "i-1", PrivateIP: "10.0.0.1"})
	r := New(dir, dir)

	event := domain.LifecycleEvent{Transition: domain.TransitionLaunching, SgName: "sg-a", InstanceID: "i-1"}
	values, err := r.Resolve(context.Background(), cfgWithSource("weird:thing"), event)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestResolver_TagValueSource(t *testing.T) {
	dir := stub.New()
	dir.Put("sg-a", compute.Instance{InstanceID: "i-1", Tags: map[string]string{"role": "primary"}})
	r := New(dir, dir)

	event := domain.LifecycleEvent{Transition: domain.TransitionLaunching, SgName: "sg-a", InstanceID: "i-1"}
	values, err := r.Resolve(context.Background(), cfgWithSource("tag:role"), event)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "primary", values[0].Value)
}

func TestResolver_MissingTagExcludesInstance(t *testing.T) {
	dir := stub.New()
	dir.Put("sg-a", compute.Instance{InstanceID: "i-1", Tags: map[string]string{}})
	r := New(dir, dir)

	event := domain.LifecycleEvent{Transition: domain.TransitionLaunching, SgName: "sg-a", InstanceID: "i-1"}
	values, err := r.Resolve(context.Background(), cfgWithSource("tag:role"), event)
	require.NoError(t, err)
	assert.Empty(t, values)
}
