package aws

import (
	"context"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Counter names published by the API.
const (
	MetricOrdersCreated = "OrdersCreated"
	MetricOrdersDeleted = "OrdersDeleted"
	MetricStaleOrders   = "StaleOrders"
	MetricEmailsSent    = "EmailsSent"
	MetricEmailFailures = "EmailFailures"
)

// MetricsRecorder records a named counter.
type MetricsRecorder interface {
	Count(ctx context.Context, name string, value float64)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) Count(context.Context, string, float64) {}

// publishTimeout bounds a single PutMetricData call.
const publishTimeout = 5 * time.Second

// CloudWatchMetrics publishes counters to a CloudWatch namespace off the caller's path.
// Publishing failures are logged and never returned to the caller.
type CloudWatchMetrics struct {
	client    CloudWatchAPI
	namespace string
	logger    *zap.Logger
	nowFunc   func() time.Time
	inflight  sync.WaitGroup
}

func NewCloudWatchMetrics(client CloudWatchAPI, namespace string, logger *zap.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

// Count stamps the datum now and publishes it in the background. The request context
// only contributes its values; its cancellation does not abort the publish.
func (m *CloudWatchMetrics) Count(ctx context.Context, name string, value float64) {
	ts := m.nowFunc()
	ctx = context.WithoutCancel(ctx)
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		m.put(ctx, name, value, ts)
	}()
}

// Wait blocks until every publish started by Count has finished.
func (m *CloudWatchMetrics) Wait() { m.inflight.Wait() }

func (m *CloudWatchMetrics) put(ctx context.Context, name string, value float64, ts time.Time) {
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{{
			MetricName: sdkaws.String(name),
			Value:      sdkaws.Float64(value),
			Unit:       cwtypes.StandardUnitCount,
			Timestamp:  sdkaws.Time(ts),
		}},
	})
	if err != nil {
		m.logger.Warn("put metric data failed", zap.String("metric", name), zap.Error(err))
	}
}
