// Package domain holds the core value types shared across the
// discovery engine: scaling-group configuration, lifecycle events,
// metadata values, and the DNS change requests the planner emits.
package domain

import "fmt"

// ProceedMode is decoded and validated as one of ALL, SELF or MAJORITY.
// lifecycle.Coordinator does not consult it: every matching
// ScalingGroupConfig must succeed for a lifecycle event to be handled,
// whatever the mode.
type ProceedMode string

const (
	ProceedAll      ProceedMode = "ALL"
	ProceedSelf     ProceedMode = "SELF"
	ProceedMajority ProceedMode = "MAJORITY"
)

// RecordMode controls whether a DNS record holds one value or many.
type RecordMode string

const (
	ModeSingle     RecordMode = "SINGLE"
	ModeMultivalue RecordMode = "MULTIVALUE"
)

// multivalueRecordTypes are the only record types legal with
// mode=MULTIVALUE (spec invariant 5).
var multivalueRecordTypes = map[string]bool{
	"A": true, "AAAA": true, "MX": true, "TXT": true, "PTR": true,
	"SRV": true, "SPF": true, "NAPTR": true, "CAA": true,
}

// SupportsMultivalue reports whether recordType may carry more than
// one value.
func SupportsMultivalue(recordType string) bool {
	return multivalueRecordTypes[recordType]
}

// ReadinessConfig configures the tag-poll readiness gate of an SG.
type ReadinessConfig struct {
	Enabled         bool   `json:"enabled" validate:"-"`
	TagKey          string `json:"tag_key" validate:"required_if=Enabled true"`
	TagValue        string `json:"tag_value" validate:"required_if=Enabled true"`
	IntervalSeconds int    `json:"interval_seconds" validate:"omitempty,min=1"`
	TimeoutSeconds  int    `json:"timeout_seconds" validate:"omitempty,min=1"`
}

// Identity returns a stable key for memoizing readiness checks across
// ScalingGroupConfig entries that share the same tag/timing settings
// (see SPEC_FULL.md §12.1).
func (r ReadinessConfig) Identity() string {
	return fmt.Sprintf("%t:%s=%s:i=%d:t=%d", r.Enabled, r.TagKey, r.TagValue, r.IntervalSeconds, r.TimeoutSeconds)
}

// HealthCheckConfig configures the liveness probe of an SG.
type HealthCheckConfig struct {
	Enabled        bool   `json:"enabled"`
	Protocol       string `json:"protocol" validate:"omitempty,oneof=tcp http https"`
	Port           int    `json:"port" validate:"omitempty,min=1,max=65535"`
	Path           string `json:"path"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"omitempty,min=1"`
}

// DnsRecordConfig describes the DNS record a ScalingGroupConfig keeps
// in sync.
type DnsRecordConfig struct {
	Provider   string `json:"provider" validate:"required,oneof=route53 cloudflare"`
	ZoneID     string `json:"zone_id" validate:"required"`
	RecordName string `json:"record_name" validate:"required"`
	RecordType string `json:"record_type" validate:"required"`
	RecordTTL  int    `json:"record_ttl" validate:"required,min=1,max=604800"`
	Mode       RecordMode `json:"mode" validate:"required,oneof=SINGLE MULTIVALUE"`

	// ValueSource is "kind:arg", e.g. "ip:private" or "tag:environment".
	ValueSource string `json:"value_source" validate:"required"`

	Managed   bool   `json:"managed"`
	MockValue string `json:"mock_value" validate:"required_if=Managed true"`
	Weight    int    `json:"weight"`
	Priority  int    `json:"priority"`
}

// ScalingGroupConfig is one entry of the desired-state document loaded
// from the KV store (spec.md §3).
type ScalingGroupConfig struct {
	SgName      string            `json:"sg_name" validate:"required"`
	ValidStates []string          `json:"valid_states"`
	Dns         DnsRecordConfig   `json:"dns" validate:"required"`
	Health      *HealthCheckConfig    `json:"health,omitempty"`
	Readiness   *ReadinessConfig      `json:"readiness,omitempty"`
	ProceedMode ProceedMode       `json:"proceed_mode" validate:"omitempty,oneof=ALL SELF MAJORITY"`
}

// DefaultValidStates is used when ScalingGroupConfig.ValidStates is
// empty (spec.md §4.6 table).
var DefaultValidStates = []string{"InService"}

// EffectiveValidStates returns ValidStates, defaulting to
// DefaultValidStates when unset.
func (c ScalingGroupConfig) EffectiveValidStates() []string {
	if len(c.ValidStates) == 0 {
		return DefaultValidStates
	}
	return c.ValidStates
}

// LockKey is the canonical serialization domain identifier for this
// config's record (Glossary: lock_key).
func (c ScalingGroupConfig) LockKey() string {
	return fmt.Sprintf("%s-%s-%s-%s", c.SgName, c.Dns.ZoneID, c.Dns.RecordName, c.Dns.RecordType)
}

// Transition is the kind of lifecycle event being processed.
type Transition string

const (
	TransitionLaunching   Transition = "LAUNCHING"
	TransitionDraining    Transition = "DRAINING"
	TransitionReconciling Transition = "RECONCILING"
	TransitionUnrelated   Transition = "UNRELATED"
)

// LifecycleEvent is one invocation's trigger payload (spec.md §3).
type LifecycleEvent struct {
	Transition     Transition
	SgName         string
	InstanceID     string
	HookName       string
	ActionToken    string
}

// Validate enforces invariant 1 of spec.md §3.
func (e LifecycleEvent) Validate() error {
	switch e.Transition {
	case TransitionLaunching, TransitionDraining:
		if e.InstanceID == "" || e.SgName == "" || e.HookName == "" {
			return fmt.Errorf("%s event requires instance_id, sg_name and hook_name", e.Transition)
		}
	case TransitionReconciling:
		if e.SgName == "" {
			return fmt.Errorf("RECONCILING event requires sg_name")
		}
	}
	return nil
}

// MetadataValue is one instance's contribution to a record's value
// set (spec.md §3).
type MetadataValue struct {
	InstanceID string
	LaunchTS   int64
	Value      string
	Source     string
}

// Action is the kind of change a ChangeRequest describes.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionIgnore Action = "IGNORE"
)

// ChangeRequest is the planner's output: an instruction for the DNS
// applier (spec.md §3, §4.7).
type ChangeRequest struct {
	Action     Action
	RecordName string
	RecordType string
	TTL        int
	Values     []string
	Weight     int
	Priority   int
}

// Validate enforces the ChangeRequest construction rule of spec.md
// §4.7: non-IGNORE actions require a non-empty record_name and
// record_type.
func (c ChangeRequest) Validate() error {
	if c.Action == ActionIgnore {
		return nil
	}
	if c.RecordName == "" || c.RecordType == "" {
		return fmt.Errorf("%s change requires record_name and record_type", c.Action)
	}
	return nil
}
