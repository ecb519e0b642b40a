// Package bootstrap wires the component graph shared by
// cmd/lifecycle-handler and cmd/reconciler from one EnvConfig: the
// adapter selection (cloud_provider/db_provider/monitoring_*) both
// binaries need is identical, only the coordinator they drive differs.
package bootstrap

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/autoscaling"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	awsec2 "github.com/aws/aws-sdk-go/service/ec2"
	awsroute53 "github.com/aws/aws-sdk-go/service/route53"
	cf "github.com/cloudflare/cloudflare-go"
	"github.com/redis/go-redis/v9"

	"github.com/nprokhorov/sgdns-discovery/internal/compute"
	"github.com/nprokhorov/sgdns-discovery/internal/compute/asg"
	computeec2 "github.com/nprokhorov/sgdns-discovery/internal/compute/ec2"
	"github.com/nprokhorov/sgdns-discovery/internal/config"
	"github.com/nprokhorov/sgdns-discovery/internal/dns"
	"github.com/nprokhorov/sgdns-discovery/internal/dns/providers/cloudflare"
	"github.com/nprokhorov/sgdns-discovery/internal/dns/providers/route53"
	"github.com/nprokhorov/sgdns-discovery/internal/health"
	"github.com/nprokhorov/sgdns-discovery/internal/lock"
	"github.com/nprokhorov/sgdns-discovery/internal/metadata"
	"github.com/nprokhorov/sgdns-discovery/internal/readiness"
	"github.com/nprokhorov/sgdns-discovery/internal/repository"
	"github.com/nprokhorov/sgdns-discovery/internal/telemetry/alarms"
	"github.com/nprokhorov/sgdns-discovery/internal/telemetry/metrics"
)

// Graph holds every adapter-backed component the two entrypoints share.
type Graph struct {
	Env         config.EnvConfig
	Repo        repository.Repository
	ConfigStore *config.Resolver
	Resolver    dns.Resolver
	DNSRegistry *dns.Registry
	Planner     *dns.Planner
	Applier     *dns.Applier
	Locker      *lock.BoundedAcquirer
	Prober      *readiness.Prober
	Checker     *health.Checker
	Membership  compute.ScalingGroupMembership
	Acker       compute.LifecycleAcker
	Metrics     metrics.Sink
	Alarms      *alarms.Provisioner
}

// Build constructs every adapter named by env, selecting the cloud
// provider, KV backend, and DNS provider set per spec.md §4.1/§6.
func Build(env config.EnvConfig, logger *slog.Logger) (*Graph, error) {
	repo, err := buildRepository(env)
	if err != nil {
		return nil, err
	}

	var sess *session.Session
	var directory compute.InstanceDirectory
	var membership compute.ScalingGroupMembership
	var acker compute.LifecycleAcker
	var cwClient *cloudwatch.CloudWatch

	switch env.CloudProvider {
	case "aws", "":
		sess, err = session.NewSession()
		if err != nil {
			return nil, fmt.Errorf("bootstrap: aws session: %w", err)
		}
		directory = computeec2.New(awsec2.New(sess))
		group := asg.New(autoscaling.New(sess))
		membership = group
		acker = group
		cwClient = cloudwatch.New(sess)
	default:
		return nil, fmt.Errorf("bootstrap: unsupported cloud_provider %q", env.CloudProvider)
	}

	dnsRegistry, err := buildDNSRegistry(sess)
	if err != nil {
		return nil, err
	}

	resolver := metadata.New(directory, membership)
	planner := dns.NewPlanner(resolver, dnsRegistry)
	applier := dns.NewApplier(dnsRegistry)
	locker := lock.NewBoundedAcquirer(lock.New(repo))
	prober := readiness.New(directory, logger)
	checker := health.New()

	sink := buildMetrics(env)

	var alarmProvisioner *alarms.Provisioner
	if env.MonitoringAlarmsEnabled && cwClient != nil {
		alarmProvisioner = alarms.New(cwClient)
	}

	return &Graph{
		Env:         env,
		Repo:        repo,
		ConfigStore: config.NewResolver(repo, env.DBConfigItemKey),
		Resolver:    resolver,
		DNSRegistry: dnsRegistry,
		Planner:     planner,
		Applier:     applier,
		Locker:      locker,
		Prober:      prober,
		Checker:     checker,
		Membership:  membership,
		Acker:       acker,
		Metrics:     sink,
		Alarms:      alarmProvisioner,
	}, nil
}

func buildRepository(env config.EnvConfig) (repository.Repository, error) {
	switch env.DBProvider {
	case "dynamodb", "":
		sess, err := session.NewSession()
		if err != nil {
			return nil, fmt.Errorf("bootstrap: aws session for dynamodb: %w", err)
		}
		return repository.NewDynamoDB(dynamodb.New(sess), env.DBTableName), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: env.DBTableName})
		return repository.NewRedis(client), nil
	default:
		return nil, fmt.Errorf("bootstrap: unsupported db_provider %q", env.DBProvider)
	}
}

// buildDNSRegistry registers route53 unconditionally (it shares the
// AWS session every deployment already has) and cloudflare only when
// an API token is present, since scaling groups configured for one
// provider never need the other's client.
func buildDNSRegistry(sess *session.Session) (*dns.Registry, error) {
	providers := map[string]dns.Provider{
		"route53": route53.New(awsroute53.New(sess)),
	}

	if token := os.Getenv("CLOUDFLARE_API_TOKEN"); token != "" {
		client, err := cf.NewWithAPIToken(token)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: cloudflare client: %w", err)
		}
		providers["cloudflare"] = cloudflare.New(client)
	}

	return dns.NewRegistry(providers), nil
}

func buildMetrics(env config.EnvConfig) metrics.Sink {
	if !env.MonitoringMetricsEnabled {
		return metrics.NoopSink{}
	}
	switch env.MonitoringMetricsProvider {
	case "prometheus", "":
		return metrics.NewPrometheusSink(env.MonitoringMetricsNamespace)
	default:
		return metrics.NoopSink{}
	}
}
