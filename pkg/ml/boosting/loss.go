package boosting

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Loss names the objective minimised by the ensemble.
type Loss string

const (
	LossAbsoluteError Loss = "absolute_error"
	LossSquaredError  Loss = "squared_error"
)

func (l Loss) valid() bool {
	return l == LossAbsoluteError || l == LossSquaredError
}

// initEstimate is the constant prediction the ensemble starts from.
func (l Loss) initEstimate(y []float64) float64 {
	if l == LossAbsoluteError {
		return median(y)
	}
	return stat.Mean(y, nil)
}

// negativeGradient fills g with the pseudo-residuals for the current raw predictions.
func (l Loss) negativeGradient(y, raw, g []float64) {
	for i := range y {
		r := y[i] - raw[i]
		if l == LossAbsoluteError {
			if r > 0 {
				g[i] = 1
			} else {
				g[i] = -1
			}
			continue
		}
		g[i] = r
	}
}

// updateLeaves replaces leaf values with the loss-optimal step. Squared error
// keeps the mean of the residuals the tree was fit on.
func (l Loss) updateLeaves(t *Tree, leafRows map[int][]int, y, raw []float64) {
	if l != LossAbsoluteError {
		return
	}
	buf := make([]float64, 0)
	for leaf, rows := range leafRows {
		buf = buf[:0]
		for _, r := range rows {
			buf = append(buf, y[r]-raw[r])
		}
		t.Nodes[leaf].Value = median(buf)
	}
}

// median returns the lower median; x is not modified.
func median(x []float64) float64 {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
