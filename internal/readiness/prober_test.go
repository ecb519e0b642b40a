package readiness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nprokhorov/sgdns-discovery/internal/compute"
	"github.com/nprokhorov/sgdns-discovery/internal/compute/stub"
	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

func TestProber_DisabledAlwaysReady(t *testing.T) {
	p := New(stub.New(), nil)
	ready := p.IsReady(context.Background(), "i-missing", domain.ReadinessConfig{Enabled: false}, false)
	assert.True(t, ready)
}

func TestProber_MissingInstanceNotReady(t *testing.T) {
	p := New(stub.New(), nil)
	ready := p.IsReady(context.Background(), "i-1", domain.ReadinessConfig{Enabled: true, TagKey: "k", TagValue: "v"}, false)
	assert.False(t, ready)
}

func TestProber_ExactTagMatch(t *testing.T) {
	dir := stub.New()
	dir.Put("sg-a", compute.Instance{InstanceID: "i-1", Tags: map[string]string{"ready": "true"}})
	p := New(dir, nil)

	ready := p.IsReady(context.Background(), "i-1", domain.ReadinessConfig{Enabled: true, TagKey: "ready", TagValue: "true"}, false)
	assert.True(t, ready)

	ready = p.IsReady(context.Background(), "i-1", domain.ReadinessConfig{Enabled: true, TagKey: "ready", TagValue: "false"}, false)
	assert.False(t, ready)
}

func TestProber_WaitPollsUntilMatchOrTimeout(t *testing.T) {
	dir := stub.New()
	dir.Put("sg-a", compute.Instance{InstanceID: "i-1", Tags: map[string]string{}})
	p := New(dir, nil)

	var elapsed time.Duration
	p.sleep = func(d time.Duration) {
		elapsed += d
		if elapsed >= 2*time.Second {
			dir.SetTags("i-1", map[string]string{"ready": "true"})
		}
	}

	ready := p.IsReady(context.Background(), "i-1", domain.ReadinessConfig{
		Enabled: true, TagKey: "ready", TagValue: "true", IntervalSeconds: 1, TimeoutSeconds: 10,
	}, true)
	assert.True(t, ready)
}

func TestProber_WaitTimesOutWithoutMatch(t *testing.T) {
	dir := stub.New()
	dir.Put("sg-a", compute.Instance{InstanceID: "i-1", Tags: map[string]string{}})
	p := New(dir, nil)

	start := time.Unix(0, 0)
	cur := start
	p.now = func() time.Time { return cur }
	p.sleep = func(d time.Duration) { cur = cur.Add(d) }

	ready := p.IsReady(context.Background(), "i-1", domain.ReadinessConfig{
		Enabled: true, TagKey: "ready", TagValue: "true", IntervalSeconds: 1, TimeoutSeconds: 3,
	}, true)
	assert.False(t, ready)
}
