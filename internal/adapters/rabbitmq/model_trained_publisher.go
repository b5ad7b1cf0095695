package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"valuation-service/internal/constants"
	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is satisfied by *rabbitmq_producer.Publisher.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

type HyperparametersDTO struct {
	LearningRate    float64 `json:"learning_rate"`
	NEstimators     int     `json:"n_estimators"`
	MaxDepth        int     `json:"max_depth"`
	Loss            string  `json:"loss"`
	MinSamplesSplit int     `json:"min_samples_split"`
	MinSamplesLeaf  int     `json:"min_samples_leaf"`
}

type MetricsDTO struct {
	RMSE    float64 `json:"rmse"`
	MAPE    float64 `json:"mape"`
	MAE     float64 `json:"mae"`
	Samples int     `json:"samples"`
}

// ModelTrainedEventDTO is the body published on model.trained.
type ModelTrainedEventDTO struct {
	ModelID         uuid.UUID          `json:"model_id"`
	TrainedAt       time.Time          `json:"trained_at"`
	Target          string             `json:"target"`
	Features        []string           `json:"features"`
	Metrics         *MetricsDTO        `json:"metrics,omitempty"`
	Hyperparameters HyperparametersDTO `json:"hyperparameters"`
}

type ModelTrainedPublisher struct {
	producer   Publisher
	routingKey string
	timeout    time.Duration
}

func NewModelTrainedPublisher(producer Publisher, routingKey string) (*ModelTrainedPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &ModelTrainedPublisher{
		producer:   producer,
		routingKey: routingKey,
		timeout:    10 * time.Second,
	}, nil
}

func toEventDTO(model *domain.TrainedModel, report *domain.EvaluationReport) ModelTrainedEventDTO {
	dto := ModelTrainedEventDTO{
		ModelID:   model.ID,
		TrainedAt: model.TrainedAt.UTC(),
		Target:    model.Target,
		Hyperparameters: HyperparametersDTO{
			LearningRate:    model.Params.LearningRate,
			NEstimators:     model.Params.NEstimators,
			MaxDepth:        model.Params.MaxDepth,
			Loss:            string(model.Params.Loss),
			MinSamplesSplit: model.Params.MinSamplesSplit,
			MinSamplesLeaf:  model.Params.MinSamplesLeaf,
		},
	}
	if model.Pipeline != nil && model.Pipeline.Transformer != nil {
		dto.Features = model.Pipeline.Transformer.FeatureNames()
	}
	if report != nil {
		dto.Metrics = &MetricsDTO{RMSE: report.RMSE, MAPE: report.MAPE, MAE: report.MAE, Samples: report.Samples}
	}
	return dto
}

func (a *ModelTrainedPublisher) ReportModelTrained(ctx context.Context, model *domain.TrainedModel, report *domain.EvaluationReport) error {
	if model == nil {
		return fmt.Errorf("rabbitmq adapter: model cannot be nil")
	}

	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "ModelTrainedPublisher",
		"routing_key": a.routingKey,
		"model_id":    model.ID.String(),
	})

	body, err := json.Marshal(toEventDTO(model, report))
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal model trained event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		MessageId:    uuid.NewString(),
		Headers: amqp.Table{
			"x-event-type":    constants.EventTypeModelTrained,
			"x-event-version": constants.EventVersionModelTrained,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	adapterLogger.Info("Publishing model trained event", nil)
	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish model trained event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish model trained event for %s: %w", model.ID, err)
	}
	adapterLogger.Info("Model trained event published", nil)
	return nil
}
