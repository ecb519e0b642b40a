package dns

import (
	"context"

	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

// Record is the subset of a DNS record the planner needs to diff
// against the desired value set.
type Record struct {
	Exists bool
	Values []string
	TTL    int
}

// Provider is the contract a zone API adapter (route53, cloudflare)
// must satisfy. Implementations own their own client and
// authentication; the planner and applier never see provider-specific
// types.
type Provider interface {
	// ZoneApex returns the fully qualified apex name of zoneID (e.g.
	// "example.com."), used to normalize record names before any read
	// or write.
	ZoneApex(ctx context.Context, zoneID string) (string, error)
	ReadRecord(ctx context.Context, zoneID, name, recordType string) (Record, error)
	ApplyChange(ctx context.Context, zoneID string, change domain.ChangeRequest) error
}
