// Package ec2 implements compute.InstanceDirectory over
// github.com/aws/aws-sdk-go's EC2 client, grounded on the retrieved
// aws-node-termination-handler mock infrastructure's use of
// ec2.DescribeInstances for ASG-lifecycle instance lookups.
package ec2

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"

	"github.com/nprokhorov/sgdns-discovery/internal/compute"
	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

// Directory is a compute.InstanceDirectory backed by EC2.
type Directory struct {
	client *ec2.EC2
}

func New(client *ec2.EC2) *Directory {
	return &Directory{client: client}
}

func (d *Directory) Describe(ctx context.Context, instanceID string) (*compute.Instance, error) {
	out, err := d.client.DescribeInstancesWithContext(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []*string{aws.String(instanceID)},
	})
	if err != nil {
		return nil, domain.NewProviderError("ec2", "describe_instances", instanceID, err)
	}
	for _, res := range out.Reservations {
		for _, inst := range res.Instances {
			if aws.StringValue(inst.InstanceId) == instanceID {
				return toInstance(inst), nil
			}
		}
	}
	return nil, nil
}

func toInstance(inst *ec2.Instance) *compute.Instance {
	tags := make(map[string]string, len(inst.Tags))
	for _, t := range inst.Tags {
		tags[aws.StringValue(t.Key)] = aws.StringValue(t.Value)
	}
	out := &compute.Instance{
		InstanceID: aws.StringValue(inst.InstanceId),
		PrivateIP:  aws.StringValue(inst.PrivateIpAddress),
		PublicIP:   aws.StringValue(inst.PublicIpAddress),
		Tags:       tags,
	}
	if inst.LaunchTime != nil {
		out.LaunchTimestamp = inst.LaunchTime.Unix()
	}
	return out
}
