// Package pipeline chains the column transform and the boosted regressor
// into one fit/predict unit.
package pipeline

import (
	"fmt"

	"valuation-service/pkg/ml/boosting"
	"valuation-service/pkg/ml/encoding"
)

// Pipeline is a fitted transform followed by a regression model. All state
// is exported so the whole value can be gob-encoded as an artifact.
type Pipeline struct {
	Transformer *ColumnTransformer
	Model       *boosting.Regressor
}

func New(categorical []string, remainder Remainder, enc encoding.Options, params boosting.Params) *Pipeline {
	return &Pipeline{
		Transformer: NewColumnTransformer(categorical, remainder, enc),
		Model:       boosting.NewRegressor(params),
	}
}

// Fit fits the transformer on t, then the regressor on the transformed matrix.
func (p *Pipeline) Fit(t Table, y []float64, exclude ...string) error {
	if err := p.Model.Params.Validate(); err != nil {
		return err
	}
	if err := p.Transformer.Fit(t, y, exclude...); err != nil {
		return fmt.Errorf("fit transformer: %w", err)
	}
	X, err := p.Transformer.Transform(t)
	if err != nil {
		return fmt.Errorf("transform training data: %w", err)
	}
	if err := p.Model.Fit(X, y); err != nil {
		return fmt.Errorf("fit regressor: %w", err)
	}
	return nil
}

// Predict scores every row of t.
func (p *Pipeline) Predict(t Table) ([]float64, error) {
	X, err := p.Transformer.Transform(t)
	if err != nil {
		return nil, err
	}
	return p.Model.Predict(X)
}

// PredictRow scores a single record.
func (p *Pipeline) PredictRow(r Row) (float64, error) {
	out, err := p.Predict(r)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}
