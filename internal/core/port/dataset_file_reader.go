package port

import (
	"context"
	"valuation-service/internal/core/domain"
)

// DatasetFileReaderPort reads a table from a file path.
type DatasetFileReaderPort interface {
	ReadFile(ctx context.Context, path string) (*domain.Dataset, error)
}
