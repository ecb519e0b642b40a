// Package alarms provisions the single CloudWatch alarm SPEC_FULL.md
// §11.7 describes: a metric alarm on the abandoned-lifecycle
// counter. Alarm policy beyond this one mechanical alarm is a
// non-goal; it exists so an abandoned-record backlog pages someone.
package alarms

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"

	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

const alarmNameSuffix = "-lifecycle-abandoned"

// Provisioner creates or updates the abandoned-lifecycle alarm
// against a metrics namespace, notifying destination (an SNS topic
// ARN) when triggered.
type Provisioner struct {
	client *cloudwatch.CloudWatch
}

func New(client *cloudwatch.CloudWatch) *Provisioner {
	return &Provisioner{client: client}
}

// Ensure provisions (or re-provisions, PutMetricAlarm is idempotent)
// the alarm watching the `lifecycle_outcomes_total{result="abandoned"}`
// counter under namespace, notifying destination when the 5-minute sum
// exceeds zero in each of 3 consecutive periods.
func (p *Provisioner) Ensure(ctx context.Context, namespace, destination string) error {
	alarmName := namespace + alarmNameSuffix
	_, err := p.client.PutMetricAlarmWithContext(ctx, &cloudwatch.PutMetricAlarmInput{
		AlarmName:          aws.String(alarmName),
		AlarmDescription:   aws.String("lifecycle events abandoned by " + namespace),
		Namespace:          aws.String(namespace),
		MetricName:         aws.String("lifecycle_outcomes_total"),
		Dimensions:         []*cloudwatch.Dimension{{Name: aws.String("result"), Value: aws.String("abandoned")}},
		Statistic:          aws.String(cloudwatch.StatisticSum),
		Period:             aws.Int64(300),
		EvaluationPeriods:  aws.Int64(3),
		Threshold:          aws.Float64(0),
		ComparisonOperator: aws.String(cloudwatch.ComparisonOperatorGreaterThanThreshold),
		AlarmActions:       []*string{aws.String(destination)},
	})
	if err != nil {
		return domain.NewProviderError("cloudwatch", "put_metric_alarm", alarmName, err)
	}
	return nil
}

// Delete removes the alarm Ensure created under namespace.
func (p *Provisioner) Delete(ctx context.Context, namespace string) error {
	alarmName := namespace + alarmNameSuffix
	_, err := p.client.DeleteAlarmsWithContext(ctx, &cloudwatch.DeleteAlarmsInput{
		AlarmNames: []*string{aws.String(alarmName)},
	})
	if err != nil {
		return domain.NewProviderError("cloudwatch", "delete_alarms", alarmName, err)
	}
	return nil
}
