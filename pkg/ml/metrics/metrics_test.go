package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	truth := []float64{100, 200, 300, 400}
	pred := []float64{110, 190, 300, 360}

	r, err := Evaluate(truth, pred)
	require.NoError(t, err)

	// errors: 10, -10, 0, -40
	assert.InDelta(t, 15.0, r.MAE, 1e-9)
	assert.InDelta(t, math.Sqrt((100+100+0+1600)/4.0), r.RMSE, 1e-9)
	assert.InDelta(t, (0.1+0.05+0+0.1)/4, r.MAPE, 1e-9)
	assert.Equal(t, 4, r.Samples)
}

func TestEvaluatePerfectPrediction(t *testing.T) {
	y := []float64{1, 2, 3}
	r, err := Evaluate(y, y)
	require.NoError(t, err)
	assert.Zero(t, r.RMSE)
	assert.Zero(t, r.MAE)
	assert.Zero(t, r.MAPE)
}

func TestMAPEZeroTargetStaysFinite(t *testing.T) {
	v, err := MAPE([]float64{0}, []float64{1})
	require.NoError(t, err)
	assert.False(t, math.IsInf(v, 0))
	assert.False(t, math.IsNaN(v))
}

func TestMAPEDividesByTarget(t *testing.T) {
	under, err := MAPE([]float64{100}, []float64{50})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, under, 1e-12)

	over, err := MAPE([]float64{50}, []float64{100})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, over, 1e-12)
}

func TestEvaluateRejectsMismatchedInput(t *testing.T) {
	_, err := Evaluate([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Evaluate(nil, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
