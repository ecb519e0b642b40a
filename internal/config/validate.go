package config

import (
	"github.com/go-playground/validator/v10"

	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

var validate = validator.New()

// Validate checks one ScalingGroupConfig entry against the struct tags
// in internal/domain, plus the record-type rule for mode=MULTIVALUE
// (spec invariant 5). It is exported so
// sgdnsctl's offline "config validate" command can reuse it without a
// KV round-trip.
func Validate(cfg domain.ScalingGroupConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	if cfg.Dns.Mode == domain.ModeMultivalue && !domain.SupportsMultivalue(cfg.Dns.RecordType) {
		return &multivalueError{recordType: cfg.Dns.RecordType}
	}
	return nil
}

type multivalueError struct{ recordType string }

func (e *multivalueError) Error() string {
	return "record type " + e.recordType + " does not support mode=MULTIVALUE"
}
