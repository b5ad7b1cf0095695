package port

import (
	"context"
	"valuation-service/internal/core/domain"
)

// ArtifactStorePort persists and restores the trained pipeline.
type ArtifactStorePort interface {
	Save(ctx context.Context, model *domain.TrainedModel) error
	// Load returns domain.ErrArtifactNotFound when nothing was saved yet.
	Load(ctx context.Context) (*domain.TrainedModel, error)
	Location() string
}
