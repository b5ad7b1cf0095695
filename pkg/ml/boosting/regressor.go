// Package boosting implements a gradient-boosted ensemble of regression trees.
package boosting

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidParams = errors.New("boosting: invalid hyperparameters")
	ErrInvalidInput  = errors.New("boosting: invalid training input")
	ErrNotFitted     = errors.New("boosting: regressor is not fitted")
)

// Params are the hyperparameters of the ensemble.
type Params struct {
	LearningRate    float64
	NEstimators     int
	MaxDepth        int
	Loss            Loss
	MinSamplesSplit int
	MinSamplesLeaf  int
}

// DefaultParams are the settings the valuation model ships with.
func DefaultParams() Params {
	return Params{
		LearningRate:    0.01,
		NEstimators:     300,
		MaxDepth:        5,
		Loss:            LossAbsoluteError,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
}

func (p Params) Validate() error {
	switch {
	case p.LearningRate <= 0 || math.IsNaN(p.LearningRate) || math.IsInf(p.LearningRate, 0):
		return fmt.Errorf("%w: learning rate must be positive, got %v", ErrInvalidParams, p.LearningRate)
	case p.NEstimators < 1:
		return fmt.Errorf("%w: n_estimators must be >= 1, got %d", ErrInvalidParams, p.NEstimators)
	case p.MaxDepth < 1:
		return fmt.Errorf("%w: max_depth must be >= 1, got %d", ErrInvalidParams, p.MaxDepth)
	case !p.Loss.valid():
		return fmt.Errorf("%w: unsupported loss %q", ErrInvalidParams, p.Loss)
	case p.MinSamplesSplit < 2:
		return fmt.Errorf("%w: min_samples_split must be >= 2, got %d", ErrInvalidParams, p.MinSamplesSplit)
	case p.MinSamplesLeaf < 1:
		return fmt.Errorf("%w: min_samples_leaf must be >= 1, got %d", ErrInvalidParams, p.MinSamplesLeaf)
	}
	return nil
}

// Regressor is a fitted (or fittable) boosted tree ensemble.
type Regressor struct {
	Params    Params
	Init      float64
	Trees     []Tree
	NFeatures int
}

func NewRegressor(params Params) *Regressor {
	return &Regressor{Params: params}
}

// Fit trains the ensemble. X is n x p and must not contain NaN.
func (m *Regressor) Fit(X [][]float64, y []float64) error {
	if err := m.Params.Validate(); err != nil {
		return err
	}
	if err := validateInput(X, y); err != nil {
		return err
	}

	n := len(X)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	sorted := presort(X, all)

	loss := m.Params.Loss
	init := loss.initEstimate(y)
	raw := make([]float64, n)
	for i := range raw {
		raw[i] = init
	}
	g := make([]float64, n)

	trees := make([]Tree, 0, m.Params.NEstimators)
	for stage := 0; stage < m.Params.NEstimators; stage++ {
		loss.negativeGradient(y, raw, g)

		b := &treeBuilder{
			X:               X,
			g:               g,
			maxDepth:        m.Params.MaxDepth,
			minSamplesSplit: m.Params.MinSamplesSplit,
			minSamplesLeaf:  m.Params.MinSamplesLeaf,
		}
		tree, leafRows := b.build(sorted)
		loss.updateLeaves(tree, leafRows, y, raw)

		for leaf, rows := range leafRows {
			step := m.Params.LearningRate * tree.Nodes[leaf].Value
			for _, r := range rows {
				raw[r] += step
			}
		}
		trees = append(trees, *tree)
	}

	m.Init = init
	m.Trees = trees
	m.NFeatures = len(X[0])
	return nil
}

func validateInput(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("%w: empty X", ErrInvalidInput)
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: X has %d rows, y has %d", ErrInvalidInput, len(X), len(y))
	}
	p := len(X[0])
	if p == 0 {
		return fmt.Errorf("%w: no features", ErrInvalidInput)
	}
	for i, row := range X {
		if len(row) != p {
			return fmt.Errorf("%w: row %d has %d features, expected %d", ErrInvalidInput, i, len(row), p)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite value at row %d feature %d", ErrInvalidInput, i, j)
			}
		}
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return fmt.Errorf("%w: non-finite target at row %d", ErrInvalidInput, i)
		}
	}
	return nil
}

// PredictOne scores a single feature vector.
func (m *Regressor) PredictOne(x []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, ErrNotFitted
	}
	if len(x) != m.NFeatures {
		return 0, fmt.Errorf("%w: expected %d features, got %d", ErrInvalidInput, m.NFeatures, len(x))
	}
	out := m.Init
	for i := range m.Trees {
		out += m.Params.LearningRate * m.Trees[i].Predict(x)
	}
	return out, nil
}

// Predict scores every row of X.
func (m *Regressor) Predict(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, x := range X {
		v, err := m.PredictOne(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
