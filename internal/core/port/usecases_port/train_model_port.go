package usecases_port

import (
	"context"
	"valuation-service/internal/core/domain"
)

type TrainModelUseCasePort interface {
	Execute(ctx context.Context, train *domain.Dataset, target string) (*domain.TrainedModel, error)
}
