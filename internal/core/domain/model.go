package domain

import (
	"time"

	"valuation-service/pkg/ml/boosting"
	"valuation-service/pkg/ml/pipeline"

	"github.com/google/uuid"
)

// TrainedModel is the fitted pipeline plus the metadata persisted with it.
// It is read-only once built.
type TrainedModel struct {
	ID        uuid.UUID
	TrainedAt time.Time
	Target    string
	Params    boosting.Params
	Pipeline  *pipeline.Pipeline
}

// EvaluationReport holds the scores of a model on held-out data.
type EvaluationReport struct {
	RMSE    float64
	MAPE    float64
	MAE     float64
	Samples int
}
