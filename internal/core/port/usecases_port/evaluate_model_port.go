package usecases_port

import (
	"context"
	"valuation-service/internal/core/domain"
)

type EvaluateModelUseCasePort interface {
	Execute(ctx context.Context, model *domain.TrainedModel, test *domain.Dataset) (*domain.EvaluationReport, error)
}
