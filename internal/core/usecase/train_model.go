package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/pkg/ml/boosting"
	"valuation-service/pkg/ml/encoding"
	"valuation-service/pkg/ml/pipeline"

	"github.com/google/uuid"
)

// TrainingSettings are the hyperparameters of one training run.
type TrainingSettings struct {
	Params    boosting.Params
	Remainder string
	Encoder   encoding.Options
}

type TrainModelUseCase struct {
	store    port.ArtifactStorePort
	settings TrainingSettings
	now      func() time.Time
}

// NewTrainModelUseCase skips persistence when store is nil.
func NewTrainModelUseCase(store port.ArtifactStorePort, settings TrainingSettings) *TrainModelUseCase {
	return &TrainModelUseCase{store: store, settings: settings, now: time.Now}
}

func (uc *TrainModelUseCase) Execute(ctx context.Context, train *domain.Dataset, target string) (*domain.TrainedModel, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "TrainModel",
		"target":   target,
	})

	if err := uc.settings.Params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	remainder, err := pipeline.ParseRemainder(uc.settings.Remainder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	if train == nil || train.Len() == 0 {
		return nil, fmt.Errorf("%w: training data is empty", domain.ErrValidation)
	}

	p := pipeline.New(domain.CategoricalColumns, remainder, uc.settings.Encoder, uc.settings.Params)
	if missing := p.Transformer.MissingColumns(train); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing categorical columns in the training data: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}

	y, err := train.Float(target)
	if err != nil {
		return nil, err
	}

	ucLogger.Info("Fitting valuation pipeline", port.Fields{
		"rows":          train.Len(),
		"n_estimators":  uc.settings.Params.NEstimators,
		"learning_rate": uc.settings.Params.LearningRate,
		"max_depth":     uc.settings.Params.MaxDepth,
		"loss":          string(uc.settings.Params.Loss),
		"remainder":     string(remainder),
	})
	exclude := append(domain.NonFeatureColumns(train.Header), target)
	started := time.Now()
	if err := p.Fit(train, y, exclude...); err != nil {
		ucLogger.Error("Pipeline fit failed", err, nil)
		return nil, classifyPipelineError(err)
	}

	model := &domain.TrainedModel{
		ID:        uuid.New(),
		TrainedAt: uc.now().UTC(),
		Target:    target,
		Params:    uc.settings.Params,
		Pipeline:  p,
	}
	ucLogger.Info("Pipeline fitted", port.Fields{
		"model_id": model.ID.String(),
		"features": strings.Join(p.Transformer.FeatureNames(), ","),
		"took_ms":  time.Since(started).Milliseconds(),
	})

	if uc.store != nil {
		if err := uc.store.Save(ctx, model); err != nil {
			ucLogger.Error("Failed to persist model artifact", err, port.Fields{"location": uc.store.Location()})
		} else {
			ucLogger.Info("Model artifact saved", port.Fields{"location": uc.store.Location()})
		}
	}
	return model, nil
}

// classifyPipelineError maps data problems to ErrValidation and everything
// else to ErrModel.
func classifyPipelineError(err error) error {
	switch {
	case errors.Is(err, pipeline.ErrMissingColumns), errors.Is(err, pipeline.ErrInvalidValue):
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	case errors.Is(err, boosting.ErrInvalidParams):
		return fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrModel, err)
}
