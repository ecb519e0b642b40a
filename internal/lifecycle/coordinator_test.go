package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nprokhorov/sgdns-discovery/internal/compute"
	"github.com/nprokhorov/sgdns-discovery/internal/compute/stub"
	"github.com/nprokhorov/sgdns-discovery/internal/dns"
	"github.com/nprokhorov/sgdns-discovery/internal/domain"
	"github.com/nprokhorov/sgdns-discovery/internal/health"
	"github.com/nprokhorov/sgdns-discovery/internal/lock"
	"github.com/nprokhorov/sgdns-discovery/internal/metadata"
	"github.com/nprokhorov/sgdns-discovery/internal/readiness"
	"github.com/nprokhorov/sgdns-discovery/internal/repository"
)

type staticConfigs struct {
	configs []domain.ScalingGroupConfig
}

func (s staticConfigs) Configs(context.Context) ([]domain.ScalingGroupConfig, error) {
	return s.configs, nil
}

type fakeProvider struct {
	apex   string
	record dns.Record
}

func (f *fakeProvider) ZoneApex(context.Context, string) (string, error) { return f.apex, nil }
func (f *fakeProvider) ReadRecord(context.Context, string, string, string) (dns.Record, error) {
	return f.record, nil
}
func (f *fakeProvider) ApplyChange(context.Context, string, domain.ChangeRequest) error { return nil }

// countingDirectory counts Describe calls so a test can observe how
// often the readiness prober polled.
type countingDirectory struct {
	*stub.Directory
	describes int
}

func (c *countingDirectory) Describe(ctx context.Context, instanceID string) (*compute.Instance, error) {
	c.describes++
	return c.Directory.Describe(ctx, instanceID)
}

func newCoordinator(t *testing.T, dir *stub.Directory, configs []domain.ScalingGroupConfig, provider *fakeProvider) *Coordinator {
	t.Helper()
	resolver := metadata.New(dir, dir)
	reg := dns.NewRegistry(map[string]dns.Provider{"route53": provider})
	planner := dns.NewPlanner(resolver, reg)
	applier := dns.NewApplier(reg)
	repo := repository.NewMemory()
	acquirer := lock.NewBoundedAcquirer(lock.New(repo))
	prober := readiness.New(dir, nil)
	checker := health.New()
	return New(staticConfigs{configs: configs}, resolver, prober, checker, acquirer, planner, applier, dir, nil, nil)
}

func testConfig() domain.ScalingGroupConfig {
	return domain.ScalingGroupConfig{
		SgName: "sg-a",
		Dns: domain.DnsRecordConfig{
			Provider:    "route53",
			ZoneID:      "Z1",
			RecordName:  "api",
			RecordType:  "A",
			RecordTTL:   60,
			Mode:        domain.ModeMultivalue,
			ValueSource: "ip:private",
		},
	}
}

func TestCoordinator_UnknownSgNameAcksContinueAndUnhandled(t *testing.T) {
	dir := stub.New()
	c := newCoordinator(t, dir, nil, &fakeProvider{apex: "example.com"})

	event := domain.LifecycleEvent{Transition: domain.TransitionLaunching, SgName: "sg-missing", InstanceID: "i-1", HookName: "h"}
	outcome, err := c.Handle(context.Background(), event)
	require.NoError(t, err)
	assert.False(t, outcome.Handled)
	assert.Equal(t, compute.AckContinue, outcome.Acked)
}

func TestCoordinator_InvalidEventNeverAcks(t *testing.T) {
	dir := stub.New()
	c := newCoordinator(t, dir, nil, &fakeProvider{apex: "example.com"})

	event := domain.LifecycleEvent{Transition: domain.TransitionLaunching} // missing instance_id/sg_name/hook_name
	outcome, err := c.Handle(context.Background(), event)
	require.NoError(t, err)
	assert.False(t, outcome.Handled)
	assert.Empty(t, outcome.Acked)
	assert.Empty(t, dir.Acks())
}

func TestCoordinator_HappyPathLaunchingAcksContinue(t *testing.T) {
	dir := stub.New()
	dir.Put("sg-a", compute.Instance{InstanceID: "i-1", PrivateIP: "10.0.0.1"})
	cfg := testConfig()
	provider := &fakeProvider{apex: "example.com", record: dns.Record{Exists: false}}
	c := newCoordinator(t, dir, []domain.ScalingGroupConfig{cfg}, provider)

	event := domain.LifecycleEvent{Transition: domain.TransitionLaunching, SgName: "sg-a", InstanceID: "i-1", HookName: "h", ActionToken: "tok"}
	outcome, err := c.Handle(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, outcome.Handled)
	assert.Equal(t, compute.AckContinue, outcome.Acked)

	acks := dir.Acks()
	require.Len(t, acks, 1)
	assert.Equal(t, compute.AckContinue, acks[0].Result)
}

func TestCoordinator_ReadinessFailureAbandons(t *testing.T) {
	dir := stub.New()
	dir.Put("sg-a", compute.Instance{InstanceID: "i-1", PrivateIP: "10.0.0.1", Tags: map[string]string{}})
	cfg := testConfig()
	cfg.Readiness = &domain.ReadinessConfig{Enabled: true, TagKey: "ready", TagValue: "true"}
	provider := &fakeProvider{apex: "example.com", record: dns.Record{Exists: false}}
	c := newCoordinator(t, dir, []domain.ScalingGroupConfig{cfg}, provider)

	event := domain.LifecycleEvent{Transition: domain.TransitionLaunching, SgName: "sg-a", InstanceID: "i-1", HookName: "h"}
	outcome, err := c.Handle(context.Background(), event)
	require.NoError(t, err)
	assert.False(t, outcome.Handled)
	assert.Equal(t, compute.AckAbandon, outcome.Acked)
}

func TestCoordinator_ReadinessIsMemoizedAcrossConfigsForSameEvent(t *testing.T) {
	dir := stub.New()
	dir.Put("sg-a", compute.Instance{InstanceID: "i-1", PrivateIP: "10.0.0.1", Tags: map[string]string{"ready": "true"}})
	readinessCfg := &domain.ReadinessConfig{Enabled: true, TagKey: "ready", TagValue: "true"}

	cfg1 := testConfig()
	cfg1.Dns.RecordName = "api"
	cfg1.Readiness = readinessCfg
	cfg2 := testConfig()
	cfg2.Dns.RecordName = "api2"
	cfg2.Readiness = readinessCfg

	provider := &fakeProvider{apex: "example.com", record: dns.Record{Exists: false}}
	c := newCoordinator(t, dir, []domain.ScalingGroupConfig{cfg1, cfg2}, provider)
	probed := &countingDirectory{Directory: dir}
	c.prober = readiness.New(probed, nil)

	event := domain.LifecycleEvent{Transition: domain.TransitionLaunching, SgName: "sg-a", InstanceID: "i-1", HookName: "h"}
	outcome, err := c.Handle(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, outcome.Handled)
	assert.Equal(t, 1, probed.describes, "cfg2 shares cfg1's readiness settings, so only one readiness probe runs")
}
