// Package encoding maps categorical values to numbers a regression model can split on.
package encoding

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrNotFitted     = errors.New("encoding: encoder is not fitted")
	ErrEmptyInput    = errors.New("encoding: empty input")
	ErrShapeMismatch = errors.New("encoding: column and target lengths differ")
)

// Options controls how strongly small categories are pulled toward the prior.
type Options struct {
	MinSamplesLeaf int
	Smoothing      float64
}

// DefaultOptions mirrors the usual target-encoder defaults.
func DefaultOptions() Options {
	return Options{MinSamplesLeaf: 20, Smoothing: 10}
}

// TargetEncoder replaces every category with a smoothed mean of the target
// observed for that category. Unknown and missing values get the prior.
type TargetEncoder struct {
	Options Options

	// Prior is the global target mean.
	Prior float64
	// Mapping is column -> category -> encoded value.
	Mapping map[string]map[string]float64
	Fitted  bool
}

func NewTargetEncoder(opts Options) *TargetEncoder {
	if opts.Smoothing <= 0 {
		opts.Smoothing = DefaultOptions().Smoothing
	}
	if opts.MinSamplesLeaf < 0 {
		opts.MinSamplesLeaf = 0
	}
	return &TargetEncoder{Options: opts}
}

type categoryStats struct {
	count int
	sum   float64
}

// IsMissing reports whether a raw cell counts as an absent value.
func IsMissing(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "nan", "na", "n/a", "null", "none":
		return true
	}
	return false
}

// Fit learns the per-category encodings for each named column.
// columns maps column name to its raw values, all aligned with y.
func (e *TargetEncoder) Fit(columns map[string][]string, y []float64) error {
	if len(y) == 0 {
		return ErrEmptyInput
	}

	prior := 0.0
	for _, v := range y {
		prior += v
	}
	prior /= float64(len(y))

	mapping := make(map[string]map[string]float64, len(columns))
	for name, values := range columns {
		if len(values) != len(y) {
			return fmt.Errorf("%w: column %q has %d values, target has %d", ErrShapeMismatch, name, len(values), len(y))
		}

		stats := make(map[string]*categoryStats)
		for i, v := range values {
			if IsMissing(v) {
				continue
			}
			s, ok := stats[v]
			if !ok {
				s = &categoryStats{}
				stats[v] = s
			}
			s.count++
			s.sum += y[i]
		}

		encoded := make(map[string]float64, len(stats))
		for category, s := range stats {
			encoded[category] = e.smooth(prior, s)
		}
		mapping[name] = encoded
	}

	e.Prior = prior
	e.Mapping = mapping
	e.Fitted = true
	return nil
}

// a category seen once carries no information beyond the prior
func (e *TargetEncoder) smooth(prior float64, s *categoryStats) float64 {
	if s.count <= 1 {
		return prior
	}
	mean := s.sum / float64(s.count)
	weight := 1 / (1 + math.Exp(-(float64(s.count)-float64(e.Options.MinSamplesLeaf))/e.Options.Smoothing))
	return prior*(1-weight) + mean*weight
}

// Encode returns the encoding of one value of column.
func (e *TargetEncoder) Encode(column, value string) (float64, error) {
	if !e.Fitted {
		return 0, ErrNotFitted
	}
	encoded, ok := e.Mapping[column]
	if !ok {
		return 0, fmt.Errorf("encoding: column %q was not part of the fit", column)
	}
	if IsMissing(value) {
		return e.Prior, nil
	}
	if v, ok := encoded[value]; ok {
		return v, nil
	}
	return e.Prior, nil
}

// Columns returns the number of categories learned per column.
func (e *TargetEncoder) Columns() map[string]int {
	out := make(map[string]int, len(e.Mapping))
	for name, m := range e.Mapping {
		out[name] = len(m)
	}
	return out
}
