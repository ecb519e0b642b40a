// Package config implements the environment-derived tunables and the
// KV-backed desired-state document loader of spec.md §4.1 and §6.
package config

import (
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// EnvConfig holds the process environment tunables of spec.md §6.
// Each field's mapstructure key is bound explicitly, so it is read from
// an environment variable of exactly that name or its upper-cased form.
type EnvConfig struct {
	CloudProvider string `mapstructure:"cloud_provider"`

	DBProvider      string `mapstructure:"db_provider"`
	DBTableName     string `mapstructure:"db_table_name"`
	DBConfigItemKey string `mapstructure:"db_config_item_key_id"`

	EC2ReadinessEnabled         bool   `mapstructure:"ec2_readiness_enabled"`
	EC2ReadinessIntervalSeconds int    `mapstructure:"ec2_readiness_interval_seconds"`
	EC2ReadinessTimeoutSeconds  int    `mapstructure:"ec2_readiness_timeout_seconds"`
	EC2ReadinessTagKey          string `mapstructure:"ec2_readiness_tag_key"`
	EC2ReadinessTagValue        string `mapstructure:"ec2_readiness_tag_value"`

	ReconciliationWhatIf              bool `mapstructure:"reconciliation_what_if"`
	ReconciliationMaxConcurrency      int  `mapstructure:"reconciliation_max_concurrency"`
	ReconciliationBulkIntervalSeconds int  `mapstructure:"reconciliation_bulk_interval_seconds"`

	MonitoringMetricsEnabled                bool   `mapstructure:"monitoring_metrics_enabled"`
	MonitoringMetricsProvider               string `mapstructure:"monitoring_metrics_provider"`
	MonitoringMetricsNamespace              string `mapstructure:"monitoring_metrics_namespace"`
	MonitoringAlarmsEnabled                 bool   `mapstructure:"monitoring_alarms_enabled"`
	MonitoringAlarmsNotificationDestination string `mapstructure:"monitoring_alarms_notification_destination"`

	LogLevel      string `mapstructure:"log-level"`
	LogIdentifier string `mapstructure:"log-identifier"`
}

// LoadEnv binds and unmarshals EnvConfig from the process environment,
// falling back to the defaults below for anything unset.
func LoadEnv() (EnvConfig, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// AutomaticEnv alone only looks up upper-cased names, and Unmarshal
	// only sees keys viper already knows; bind every field explicitly.
	t := reflect.TypeOf(EnvConfig{})
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("mapstructure")
		if err := v.BindEnv(key, key, strings.ToUpper(key)); err != nil {
			return EnvConfig{}, err
		}
	}

	setEnvDefaults(v)

	var cfg EnvConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

func setEnvDefaults(v *viper.Viper) {
	v.SetDefault("cloud_provider", "aws")
	v.SetDefault("db_provider", "dynamodb")
	v.SetDefault("ec2_readiness_enabled", false)
	v.SetDefault("ec2_readiness_interval_seconds", 5)
	v.SetDefault("ec2_readiness_timeout_seconds", 60)
	v.SetDefault("reconciliation_what_if", false)
	v.SetDefault("reconciliation_max_concurrency", 4)
	v.SetDefault("reconciliation_bulk_interval_seconds", 300)
	v.SetDefault("monitoring_metrics_enabled", false)
	v.SetDefault("monitoring_metrics_provider", "noop")
	v.SetDefault("monitoring_metrics_namespace", "sgdns-discovery")
	v.SetDefault("monitoring_alarms_enabled", false)
	v.SetDefault("log-level", "info")
}
