package port

import (
	"context"
	"valuation-service/internal/core/domain"
)

// TrainingReporterPort announces a freshly trained model.
type TrainingReporterPort interface {
	ReportModelTrained(ctx context.Context, model *domain.TrainedModel, report *domain.EvaluationReport) error
}
