package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"valuation-service/internal/constants"
	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/pkg/ml/boosting"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	key string
	msg amqp.Publishing
	err error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	p.key = routingKey
	p.msg = msg
	return p.err
}

type recordingLogger struct {
	fields port.Fields
	infos  []string
}

func (l *recordingLogger) Info(msg string, f port.Fields)             { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Warn(msg string, f port.Fields)             {}
func (l *recordingLogger) Error(msg string, err error, f port.Fields) {}
func (l *recordingLogger) Debug(msg string, f port.Fields)            { l.fields = f }
func (l *recordingLogger) WithFields(f port.Fields) port.LoggerPort   { return l }

func TestNewModelTrainedPublisherValidates(t *testing.T) {
	_, err := NewModelTrainedPublisher(nil, constants.RoutingKeyModelTrained)
	assert.Error(t, err)
	_, err = NewModelTrainedPublisher(&recordingPublisher{}, "")
	assert.Error(t, err)
}

func TestReportModelTrained(t *testing.T) {
	pub := &recordingPublisher{}
	a, err := NewModelTrainedPublisher(pub, constants.RoutingKeyModelTrained)
	require.NoError(t, err)

	model := &domain.TrainedModel{
		ID:        uuid.New(),
		TrainedAt: time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
		Target:    "price",
		Params:    boosting.DefaultParams(),
	}
	report := &domain.EvaluationReport{RMSE: 10, MAPE: 0.4, MAE: 5, Samples: 3}

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-1")
	require.NoError(t, a.ReportModelTrained(ctx, model, report))

	assert.Equal(t, constants.RoutingKeyModelTrained, pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "trace-1", pub.msg.Headers["x-trace-id"])
	assert.Equal(t, constants.EventTypeModelTrained, pub.msg.Headers["x-event-type"])

	var got ModelTrainedEventDTO
	require.NoError(t, json.Unmarshal(pub.msg.Body, &got))
	assert.Equal(t, model.ID, got.ModelID)
	assert.Equal(t, "absolute_error", got.Hyperparameters.Loss)
	require.NotNil(t, got.Metrics)
	assert.Equal(t, 3, got.Metrics.Samples)
}

func TestReportModelTrainedPropagatesFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("channel closed")}
	a, err := NewModelTrainedPublisher(pub, constants.RoutingKeyModelTrained)
	require.NoError(t, err)

	err = a.ReportModelTrained(context.Background(), &domain.TrainedModel{ID: uuid.New()}, nil)
	assert.ErrorContains(t, err, "channel closed")
}

func TestPkgLoggerBridgePairsKeys(t *testing.T) {
	l := &recordingLogger{}
	NewPkgLoggerBridge(l).Debug("declaring", "name", "valuation_events", 42, "skipped", "dangling")
	assert.Equal(t, port.Fields{"name": "valuation_events"}, l.fields)
}
