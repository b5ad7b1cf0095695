package usecase

import (
	"context"
	"fmt"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/pkg/ml/metrics"
)

type EvaluateModelUseCase struct{}

func NewEvaluateModelUseCase() *EvaluateModelUseCase {
	return &EvaluateModelUseCase{}
}

// Execute scores model on test. Neither argument is modified.
func (uc *EvaluateModelUseCase) Execute(ctx context.Context, model *domain.TrainedModel, test *domain.Dataset) (*domain.EvaluationReport, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "EvaluateModel"})

	if model == nil || model.Pipeline == nil {
		return nil, fmt.Errorf("%w: no trained model to evaluate", domain.ErrModel)
	}
	if test == nil || test.Len() == 0 {
		return nil, fmt.Errorf("%w: test data is empty", domain.ErrValidation)
	}

	truth, err := test.Float(model.Target)
	if err != nil {
		return nil, err
	}
	pred, err := model.Pipeline.Predict(test)
	if err != nil {
		return nil, classifyPipelineError(err)
	}

	r, err := metrics.Evaluate(truth, pred)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	report := &domain.EvaluationReport{RMSE: r.RMSE, MAPE: r.MAPE, MAE: r.MAE, Samples: r.Samples}

	ucLogger.Info("Model evaluated", port.Fields{
		"model_id": model.ID.String(),
		"rmse":     report.RMSE,
		"mape":     report.MAPE,
		"mae":      report.MAE,
		"samples":  report.Samples,
	})
	return report, nil
}
