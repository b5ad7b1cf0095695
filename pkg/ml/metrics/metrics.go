// Package metrics holds the regression error measures used to score a
// fitted pipeline against held-out targets.
package metrics

import (
	"errors"
	"fmt"
	"math"
)

// ErrLengthMismatch is returned when predictions and targets differ in size or are empty.
var ErrLengthMismatch = errors.New("metrics: predictions and targets must be non-empty and of equal length")

// epsilon keeps MAPE finite when a target is zero.
var epsilon = math.Nextafter(1, 2) - 1

// Report is the set of scores computed for one evaluation run.
type Report struct {
	RMSE    float64
	MAPE    float64
	MAE     float64
	Samples int
}

func (r Report) String() string {
	return fmt.Sprintf("RMSE: %.4f MAPE: %.4f MAE: %.4f (n=%d)", r.RMSE, r.MAPE, r.MAE, r.Samples)
}

func check(yTrue, yPred []float64) error {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return fmt.Errorf("%w: got %d targets and %d predictions", ErrLengthMismatch, len(yTrue), len(yPred))
	}
	return nil
}

func MSE(yTrue, yPred []float64) (float64, error) {
	if err := check(yTrue, yPred); err != nil {
		return 0, err
	}
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / float64(len(yTrue)), nil
}

func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

func MAE(yTrue, yPred []float64) (float64, error) {
	if err := check(yTrue, yPred); err != nil {
		return 0, err
	}
	s := 0.0
	for i := range yTrue {
		s += math.Abs(yPred[i] - yTrue[i])
	}
	return s / float64(len(yTrue)), nil
}

// MAPE is the mean of |pred-true| / max(|true|, eps), returned as a fraction.
// The denominator is always the observed target, never the prediction.
func MAPE(yTrue, yPred []float64) (float64, error) {
	if err := check(yTrue, yPred); err != nil {
		return 0, err
	}
	s := 0.0
	for i := range yTrue {
		s += math.Abs(yPred[i]-yTrue[i]) / math.Max(math.Abs(yTrue[i]), epsilon)
	}
	return s / float64(len(yTrue)), nil
}

// Evaluate computes RMSE, MAPE and MAE for one evaluation run.
func Evaluate(yTrue, yPred []float64) (Report, error) {
	if err := check(yTrue, yPred); err != nil {
		return Report{}, err
	}
	rmse, _ := RMSE(yTrue, yPred)
	mape, _ := MAPE(yTrue, yPred)
	mae, _ := MAE(yTrue, yPred)
	return Report{RMSE: rmse, MAPE: mape, MAE: mae, Samples: len(yTrue)}, nil
}
