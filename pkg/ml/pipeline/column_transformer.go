package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"valuation-service/pkg/ml/encoding"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrMissingColumns = errors.New("pipeline: missing columns")
	ErrInvalidValue   = errors.New("pipeline: invalid value")
	ErrNotFitted      = errors.New("pipeline: not fitted")
)

// Remainder decides what happens to columns no transformer claims.
type Remainder string

const (
	RemainderDrop        Remainder = "drop"
	RemainderPassthrough Remainder = "passthrough"
)

func ParseRemainder(s string) (Remainder, error) {
	switch r := Remainder(strings.ToLower(strings.TrimSpace(s))); r {
	case RemainderDrop, RemainderPassthrough:
		return r, nil
	}
	return "", fmt.Errorf("pipeline: unknown remainder policy %q", s)
}

// Table is the column-addressable input consumed by the transformer.
type Table interface {
	Columns() []string
	Len() int
	Value(row int, column string) (string, bool)
}

// Row is a single named record.
type Row map[string]string

func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func (r Row) Len() int { return 1 }

func (r Row) Value(row int, column string) (string, bool) {
	if row != 0 {
		return "", false
	}
	v, ok := r[column]
	return v, ok
}

// ColumnTransformer target-encodes the categorical columns and passes or
// drops the rest. Output order: categorical columns, then passthrough columns.
// Missing passthrough cells are imputed with the training median.
type ColumnTransformer struct {
	Categorical []string
	Remainder   Remainder
	Encoder     *encoding.TargetEncoder
	Passthrough []string
	Medians     map[string]float64
	Fitted      bool
}

func NewColumnTransformer(categorical []string, remainder Remainder, opts encoding.Options) *ColumnTransformer {
	return &ColumnTransformer{
		Categorical: append([]string(nil), categorical...),
		Remainder:   remainder,
		Encoder:     encoding.NewTargetEncoder(opts),
	}
}

// MissingColumns returns the categorical columns absent from t, sorted.
func (ct *ColumnTransformer) MissingColumns(t Table) []string {
	present := make(map[string]struct{})
	for _, c := range t.Columns() {
		present[c] = struct{}{}
	}
	var missing []string
	for _, c := range ct.Categorical {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)
	return missing
}

// Fit learns encodings from t and y. Columns listed in exclude are never features.
func (ct *ColumnTransformer) Fit(t Table, y []float64, exclude ...string) error {
	if missing := ct.MissingColumns(t); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	if t.Len() != len(y) {
		return fmt.Errorf("%w: table has %d rows, target has %d", ErrInvalidValue, t.Len(), len(y))
	}

	skip := make(map[string]struct{}, len(exclude)+len(ct.Categorical))
	for _, c := range exclude {
		skip[c] = struct{}{}
	}
	for _, c := range ct.Categorical {
		skip[c] = struct{}{}
	}

	ct.Passthrough = nil
	ct.Medians = make(map[string]float64)
	if ct.Remainder == RemainderPassthrough {
		for _, c := range t.Columns() {
			if _, ok := skip[c]; ok {
				continue
			}
			m, err := columnMedian(t, c)
			if err != nil {
				return err
			}
			ct.Passthrough = append(ct.Passthrough, c)
			ct.Medians[c] = m
		}
	}

	columns := make(map[string][]string, len(ct.Categorical))
	for _, c := range ct.Categorical {
		values := make([]string, t.Len())
		for i := range values {
			values[i], _ = t.Value(i, c)
		}
		columns[c] = values
	}
	if err := ct.Encoder.Fit(columns, y); err != nil {
		return err
	}

	ct.Fitted = true
	return nil
}

// FeatureNames lists the output columns in matrix order.
func (ct *ColumnTransformer) FeatureNames() []string {
	out := append([]string(nil), ct.Categorical...)
	return append(out, ct.Passthrough...)
}

// Transform builds the numeric feature matrix for t.
func (ct *ColumnTransformer) Transform(t Table) ([][]float64, error) {
	if !ct.Fitted {
		return nil, ErrNotFitted
	}

	out := make([][]float64, t.Len())
	for i := range out {
		row := make([]float64, 0, len(ct.Categorical)+len(ct.Passthrough))

		for _, c := range ct.Categorical {
			raw, _ := t.Value(i, c)
			v, err := ct.Encoder.Encode(c, raw)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}

		for _, c := range ct.Passthrough {
			raw, ok := t.Value(i, c)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrMissingColumns, c)
			}
			if encoding.IsMissing(raw) {
				row = append(row, ct.Medians[c])
				continue
			}
			v, err := parseNumber(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: column %q row %d: %v", ErrInvalidValue, c, i, err)
			}
			row = append(row, v)
		}
		out[i] = row
	}
	return out, nil
}

// columnMedian is the lower median of the present values of column c, or 0
// when every cell is missing.
func columnMedian(t Table, c string) (float64, error) {
	var present []float64
	for i := 0; i < t.Len(); i++ {
		raw, _ := t.Value(i, c)
		if encoding.IsMissing(raw) {
			continue
		}
		v, err := parseNumber(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: column %q row %d: %v", ErrInvalidValue, c, i, err)
		}
		present = append(present, v)
	}
	if len(present) == 0 {
		return 0, nil
	}
	sort.Float64s(present)
	return stat.Quantile(0.5, stat.Empirical, present, nil), nil
}

func parseNumber(raw string) (float64, error) {
	if encoding.IsMissing(raw) {
		return 0, fmt.Errorf("missing value")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", raw)
	}
	return v, nil
}
