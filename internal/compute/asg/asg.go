// Package asg implements compute.ScalingGroupMembership and
// compute.LifecycleAcker over github.com/aws/aws-sdk-go's Auto
// Scaling client, grounded on the retrieved aws-node-termination-
// handler's autoscaling.CompleteLifecycleActionInput usage.
package asg

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/autoscaling"

	"github.com/nprokhorov/sgdns-discovery/internal/compute"
	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

// Group is a compute.ScalingGroupMembership + compute.LifecycleAcker
// backed by Auto Scaling.
type Group struct {
	client *autoscaling.AutoScaling
}

func New(client *autoscaling.AutoScaling) *Group {
	return &Group{client: client}
}

func (g *Group) Members(ctx context.Context, sgName string) ([]compute.Instance, error) {
	out, err := g.client.DescribeAutoScalingGroupsWithContext(ctx, &autoscaling.DescribeAutoScalingGroupsInput{
		AutoScalingGroupNames: []*string{aws.String(sgName)},
	})
	if err != nil {
		return nil, domain.NewProviderError("autoscaling", "describe_auto_scaling_groups", sgName, err)
	}
	var instances []compute.Instance
	for _, group := range out.AutoScalingGroups {
		for _, inst := range group.Instances {
			instances = append(instances, compute.Instance{
				InstanceID:     aws.StringValue(inst.InstanceId),
				LifecycleState: aws.StringValue(inst.LifecycleState),
			})
		}
	}
	return instances, nil
}

func (g *Group) CompleteLifecycleAction(ctx context.Context, sgName, hookName, instanceID, actionToken, result string) error {
	_, err := g.client.CompleteLifecycleActionWithContext(ctx, &autoscaling.CompleteLifecycleActionInput{
		AutoScalingGroupName:  aws.String(sgName),
		LifecycleHookName:     aws.String(hookName),
		InstanceId:            aws.String(instanceID),
		LifecycleActionToken:  aws.String(actionToken),
		LifecycleActionResult: aws.String(result),
	})
	if err != nil {
		return domain.NewProviderError("autoscaling", "complete_lifecycle_action", sgName, err)
	}
	return nil
}
