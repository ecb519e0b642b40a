// Package route53 adapts github.com/aws/aws-sdk-go's Route 53 client to
// the dns.Provider contract.
package route53

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/route53"

	"github.com/nprokhorov/sgdns-discovery/internal/dns"
	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

// Provider wraps *route53.Route53 to satisfy dns.Provider.
type Provider struct {
	client *route53.Route53
}

func New(client *route53.Route53) *Provider {
	return &Provider{client: client}
}

func (p *Provider) ZoneApex(ctx context.Context, zoneID string) (string, error) {
	out, err := p.client.GetHostedZoneWithContext(ctx, &route53.GetHostedZoneInput{
		Id: aws.String(zoneID),
	})
	if err != nil {
		return "", err
	}
	return aws.StringValue(out.HostedZone.Name), nil
}

func (p *Provider) ReadRecord(ctx context.Context, zoneID, name, recordType string) (dns.Record, error) {
	out, err := p.client.ListResourceRecordSetsWithContext(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(zoneID),
		StartRecordName: aws.String(name),
		StartRecordType: aws.String(recordType),
		MaxItems:        aws.String("1"),
	})
	if err != nil {
		return dns.Record{}, err
	}
	for _, rr := range out.ResourceRecordSets {
		if !strings.EqualFold(strings.TrimSuffix(aws.StringValue(rr.Name), "."), strings.TrimSuffix(name, ".")) {
			continue
		}
		if aws.StringValue(rr.Type) != recordType {
			continue
		}
		values := make([]string, 0, len(rr.ResourceRecords))
		for _, v := range rr.ResourceRecords {
			values = append(values, aws.StringValue(v.Value))
		}
		return dns.Record{Exists: true, Values: values, TTL: int(aws.Int64Value(rr.TTL))}, nil
	}
	return dns.Record{Exists: false}, nil
}

func (p *Provider) ApplyChange(ctx context.Context, zoneID string, change domain.ChangeRequest) error {
	action, recordSet, err := toChangeBatch(change)
	if err != nil {
		return err
	}
	_, err = p.client.ChangeResourceRecordSetsWithContext(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch: &route53.ChangeBatch{
			Changes: []*route53.Change{
				{Action: aws.String(action), ResourceRecordSet: recordSet},
			},
		},
	})
	return err
}

func toChangeBatch(change domain.ChangeRequest) (string, *route53.ResourceRecordSet, error) {
	rrs := &route53.ResourceRecordSet{
		Name: aws.String(change.RecordName),
		Type: aws.String(change.RecordType),
		TTL:  aws.Int64(int64(change.TTL)),
	}
	for _, v := range change.Values {
		rrs.ResourceRecords = append(rrs.ResourceRecords, &route53.ResourceRecord{Value: aws.String(v)})
	}

	switch change.Action {
	case domain.ActionCreate, domain.ActionUpdate:
		return route53.ChangeActionUpsert, rrs, nil
	case domain.ActionDelete:
		return route53.ChangeActionDelete, rrs, nil
	default:
		return "", nil, fmt.Errorf("route53: unsupported change action %q", change.Action)
	}
}
