package port

import (
	"context"
	"valuation-service/internal/core/domain"
)

// DatasetConnectorPort is the capability interface of a database backend
// that training data can be pulled from.
type DatasetConnectorPort interface {
	Connect(ctx context.Context) error
	Execute(ctx context.Context, query string, args ...any) error
	Fetch(ctx context.Context, query string, args ...any) (*domain.Dataset, error)
	Close() error
}
