package encoding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetEncoderSmoothing(t *testing.T) {
	enc := NewTargetEncoder(Options{MinSamplesLeaf: 1, Smoothing: 1})

	columns := map[string][]string{
		"type": {"house", "house", "house", "flat", "flat", "studio"},
	}
	y := []float64{300, 320, 310, 100, 120, 50}
	require.NoError(t, enc.Fit(columns, y))

	prior := (300.0 + 320 + 310 + 100 + 120 + 50) / 6
	assert.InDelta(t, prior, enc.Prior, 1e-9)

	w := 1 / (1 + math.Exp(-(3.0-1)/1))
	house, err := enc.Encode("type", "house")
	require.NoError(t, err)
	assert.InDelta(t, prior*(1-w)+310*w, house, 1e-9)

	// seen once -> prior
	studio, err := enc.Encode("type", "studio")
	require.NoError(t, err)
	assert.InDelta(t, prior, studio, 1e-9)
}

func TestTargetEncoderUnknownAndMissingUsePrior(t *testing.T) {
	enc := NewTargetEncoder(DefaultOptions())
	require.NoError(t, enc.Fit(map[string][]string{"sector": {"A", "A", "B", ""}}, []float64{1, 3, 5, 7}))

	v, err := enc.Encode("sector", "Z")
	require.NoError(t, err)
	assert.Equal(t, enc.Prior, v)

	v, err = enc.Encode("sector", "NaN")
	require.NoError(t, err)
	assert.Equal(t, enc.Prior, v)

	assert.Equal(t, map[string]int{"sector": 2}, enc.Columns())
}

func TestTargetEncoderErrors(t *testing.T) {
	enc := NewTargetEncoder(DefaultOptions())

	_, err := enc.Encode("type", "house")
	assert.ErrorIs(t, err, ErrNotFitted)

	assert.ErrorIs(t, enc.Fit(map[string][]string{"type": {"a"}}, nil), ErrEmptyInput)
	assert.ErrorIs(t, enc.Fit(map[string][]string{"type": {"a"}}, []float64{1, 2}), ErrShapeMismatch)

	require.NoError(t, enc.Fit(map[string][]string{"type": {"a", "b"}}, []float64{1, 2}))
	_, err = enc.Encode("sector", "a")
	assert.Error(t, err)
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", " ", "NaN", "nan", "NA", "null", "None"} {
		assert.True(t, IsMissing(v), v)
	}
	assert.False(t, IsMissing("0"))
	assert.False(t, IsMissing("house"))
}
