package usecases_port

import (
	"context"
	"valuation-service/internal/core/domain"
)

type PredictPriceUseCasePort interface {
	Execute(ctx context.Context, record domain.PropertyRecord) (float64, error)
}
