package usecase

import (
	"context"
	"fmt"
	"math"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
)

type PredictPriceUseCase struct {
	model *domain.TrainedModel
}

// NewPredictPriceUseCase wraps a loaded model. The model is shared between
// requests and never written to.
func NewPredictPriceUseCase(model *domain.TrainedModel) (*PredictPriceUseCase, error) {
	if model == nil || model.Pipeline == nil {
		return nil, fmt.Errorf("%w: prediction requires a trained model", domain.ErrConfiguration)
	}
	return &PredictPriceUseCase{model: model}, nil
}

func (uc *PredictPriceUseCase) ModelID() string { return uc.model.ID.String() }

func (uc *PredictPriceUseCase) Execute(ctx context.Context, record domain.PropertyRecord) (float64, error) {
	identity, _ := contextkeys.IdentityFromContext(ctx)
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "PredictPrice",
		"model_id":    uc.model.ID.String(),
		"identity":    identity,
		"fingerprint": propertyFingerprint(record),
	})

	estimate, err := uc.model.Pipeline.PredictRow(record.Row())
	if err != nil {
		ucLogger.Error("Prediction failed", err, nil)
		return 0, fmt.Errorf("%w: %v", domain.ErrModel, err)
	}
	if math.IsNaN(estimate) || math.IsInf(estimate, 0) {
		ucLogger.Error("Prediction is not finite", nil, port.Fields{"estimate": fmt.Sprint(estimate)})
		return 0, fmt.Errorf("%w: non-finite prediction %v", domain.ErrModel, estimate)
	}

	ucLogger.Info("Prediction served", port.Fields{"estimated_price": estimate})
	return estimate, nil
}
