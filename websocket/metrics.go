// Package websocket - websocket/metrics.go
// file: websocket/metrics.go

package websocket

import (
	"context"
	"time"

	"catfish-cull/logger"
	"catfish-cull/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
)

// metricsTimeout bounds a single PutMetricData call.
const metricsTimeout = 5 * time.Second

// Metrics receives display gauges. Displays call it from their own metrics
// goroutine; the hub calls it from connection handlers.
type Metrics interface {
	PublishBucketSizes(display string, counts models.Counts)
	PublishPollFailure(display string)
	PublishKioskConnections(display string, count int)
}

// NoopMetrics drops everything. Used when METRICS_ENABLED is off.
type NoopMetrics struct{}

func (NoopMetrics) PublishBucketSizes(string, models.Counts) {}
func (NoopMetrics) PublishPollFailure(string)                {}
func (NoopMetrics) PublishKioskConnections(string, int)      {}

// CloudWatchMetrics pushes gauges to CloudWatch under one namespace.
type CloudWatchMetrics struct {
	client    cloudwatchiface.CloudWatchAPI
	namespace string
}

// NewCloudWatchMetrics builds a client from the default AWS credential chain.
func NewCloudWatchMetrics(namespace string) (*CloudWatchMetrics, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	return &CloudWatchMetrics{client: cloudwatch.New(sess), namespace: namespace}, nil
}

// PublishBucketSizes pushes the three bucket sizes and the roster total.
func (m *CloudWatchMetrics) PublishBucketSizes(display string, counts models.Counts) {
	m.putMetric(display,
		datum("TeamsTotal", float64(counts.Total), cloudwatch.StandardUnitCount),
		datum("TeamsCheckedIn", float64(counts.CheckedIn), cloudwatch.StandardUnitCount),
		datum("TeamsWaiting", float64(counts.Waiting), cloudwatch.StandardUnitCount),
		datum("TeamsIncomplete", float64(counts.Incomplete), cloudwatch.StandardUnitCount),
	)
}

// PublishPollFailure counts one failed roster poll.
func (m *CloudWatchMetrics) PublishPollFailure(display string) {
	m.putMetric(display, datum("RosterPollFailures", 1, cloudwatch.StandardUnitCount))
}

// PublishKioskConnections pushes the number of connected screens.
func (m *CloudWatchMetrics) PublishKioskConnections(display string, count int) {
	m.putMetric(display, datum("KioskConnections", float64(count), cloudwatch.StandardUnitCount))
}

// -----------------------------------------------------------
// internal helpers to package up CloudWatch calls
// -----------------------------------------------------------

func datum(name string, value float64, unit string) *cloudwatch.MetricDatum {
	return &cloudwatch.MetricDatum{
		MetricName: aws.String(name),
		Timestamp:  aws.Time(time.Now()),
		Value:      aws.Float64(value),
		Unit:       aws.String(unit),
	}
}

func (m *CloudWatchMetrics) putMetric(display string, data ...*cloudwatch.MetricDatum) {
	for _, d := range data {
		d.Dimensions = []*cloudwatch.Dimension{{
			Name:  aws.String("Display"),
			Value: aws.String(display),
		}}
	}
	ctx, cancel := context.WithTimeout(context.Background(), metricsTimeout)
	defer cancel()
	_, err := m.client.PutMetricDataWithContext(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		logger.Error.Printf("[putMetric] CloudWatch metric failed (%s): %v", aws.StringValue(data[0].MetricName), err)
	}
}
