// file: websocket/metrics_test.go
package websocket

import (
	"errors"
	"testing"

	"catfish-cull/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCloudWatch struct {
	cloudwatchiface.CloudWatchAPI
	mock.Mock
}

func (m *mockCloudWatch) PutMetricDataWithContext(ctx aws.Context, in *cloudwatch.PutMetricDataInput, _ ...request.Option) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(in)
	return &cloudwatch.PutMetricDataOutput{}, args.Error(0)
}

func TestCloudWatchMetrics_BucketSizes(t *testing.T) {
	cw := new(mockCloudWatch)
	var got *cloudwatch.PutMetricDataInput
	cw.On("PutMetricDataWithContext", mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(0).(*cloudwatch.PutMetricDataInput)
	}).Return(nil).Once()

	m := &CloudWatchMetrics{client: cw, namespace: "CatfishCull"}
	m.PublishBucketSizes("main", models.Counts{Total: 10, CheckedIn: 4, Waiting: 5, Incomplete: 1})

	require.NotNil(t, got)
	assert.Equal(t, "CatfishCull", aws.StringValue(got.Namespace))
	require.Len(t, got.MetricData, 4)
	assert.Equal(t, "TeamsCheckedIn", aws.StringValue(got.MetricData[1].MetricName))
	assert.Equal(t, 4.0, aws.Float64Value(got.MetricData[1].Value))
	assert.Equal(t, "main", aws.StringValue(got.MetricData[1].Dimensions[0].Value))
	cw.AssertExpectations(t)
}

func TestCloudWatchMetrics_ErrorIsLoggedNotRaised(t *testing.T) {
	cw := new(mockCloudWatch)
	cw.On("PutMetricDataWithContext", mock.Anything).Return(errors.New("throttled")).Once()

	m := &CloudWatchMetrics{client: cw, namespace: "CatfishCull"}
	assert.NotPanics(t, func() { m.PublishPollFailure("main") })
	cw.AssertExpectations(t)
}

// mockMetrics records calls made by displays and the hub.
type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) PublishBucketSizes(display string, counts models.Counts) {
	m.Called(display, counts)
}

func (m *mockMetrics) PublishPollFailure(display string) {
	m.Called(display)
}

func (m *mockMetrics) PublishKioskConnections(display string, count int) {
	m.Called(display, count)
}
