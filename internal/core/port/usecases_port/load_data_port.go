package usecases_port

import (
	"context"
	"valuation-service/internal/core/domain"
)

// LoadDataRequest names where the train and test tables come from.
type LoadDataRequest struct {
	TrainPath  string
	TestPath   string
	TrainQuery string
	TestQuery  string
}

type LoadDataUseCasePort interface {
	Execute(ctx context.Context, req LoadDataRequest) (train, test *domain.Dataset, err error)
}
