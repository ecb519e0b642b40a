// Package cloudflare adapts github.com/cloudflare/cloudflare-go to the
// dns.Provider contract.
package cloudflare

import (
	"context"
	"fmt"

	cf "github.com/cloudflare/cloudflare-go"

	"github.com/nprokhorov/sgdns-discovery/internal/dns"
	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

// Provider wraps a *cloudflare.API client. zoneID here is the
// Cloudflare zone ID, matching dns.Provider's zoneID parameter.
type Provider struct {
	client *cf.API
}

func New(client *cf.API) *Provider {
	return &Provider{client: client}
}

func (p *Provider) ZoneApex(ctx context.Context, zoneID string) (string, error) {
	zone, err := p.client.ZoneDetails(ctx, zoneID)
	if err != nil {
		return "", err
	}
	return zone.Name, nil
}

func (p *Provider) ReadRecord(ctx context.Context, zoneID, name, recordType string) (dns.Record, error) {
	records, _, err := p.client.ListDNSRecords(ctx, cf.ZoneIdentifier(zoneID), cf.ListDNSRecordsParams{
		Type: recordType,
		Name: name,
	})
	if err != nil {
		return dns.Record{}, err
	}
	if len(records) == 0 {
		return dns.Record{Exists: false}, nil
	}

	values := make([]string, 0, len(records))
	ttl := 0
	for _, rec := range records {
		values = append(values, rec.Content)
		ttl = rec.TTL
	}
	return dns.Record{Exists: true, Values: values, TTL: ttl}, nil
}

func (p *Provider) ApplyChange(ctx context.Context, zoneID string, change domain.ChangeRequest) error {
	rc := cf.ZoneIdentifier(zoneID)

	existing, _, err := p.client.ListDNSRecords(ctx, rc, cf.ListDNSRecordsParams{
		Type: change.RecordType,
		Name: change.RecordName,
	})
	if err != nil {
		return err
	}

	switch change.Action {
	case domain.ActionDelete:
		for _, rec := range existing {
			if err := p.client.DeleteDNSRecord(ctx, rc, rec.ID); err != nil {
				return err
			}
		}
		return nil

	case domain.ActionCreate, domain.ActionUpdate:
		existingByContent := make(map[string]string, len(existing))
		for _, rec := range existing {
			existingByContent[rec.Content] = rec.ID
		}
		for _, v := range change.Values {
			if _, ok := existingByContent[v]; ok {
				delete(existingByContent, v)
				continue
			}
			_, err := p.client.CreateDNSRecord(ctx, rc, cf.CreateDNSRecordParams{
				Type:    change.RecordType,
				Name:    change.RecordName,
				Content: v,
				TTL:     change.TTL,
			})
			if err != nil {
				return err
			}
		}
		// Anything left in existingByContent is stale for MULTIVALUE
		// records where the desired set shrank.
		for _, id := range existingByContent {
			if err := p.client.DeleteDNSRecord(ctx, rc, id); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("cloudflare: unsupported change action %q", change.Action)
	}
}
