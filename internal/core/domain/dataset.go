package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"valuation-service/pkg/ml/encoding"
)

// Dataset is a loaded table: a header and raw string cells.
type Dataset struct {
	Name   string
	Header []string
	Rows   [][]string
	index  map[string]int
}

func NewDataset(name string, header []string, rows [][]string) *Dataset {
	d := &Dataset{Name: name, Header: header, Rows: rows}
	d.buildIndex()
	return d
}

func (d *Dataset) buildIndex() {
	d.index = make(map[string]int, len(d.Header))
	for i, c := range d.Header {
		d.index[c] = i
	}
}

func (d *Dataset) Columns() []string { return d.Header }

func (d *Dataset) Len() int { return len(d.Rows) }

func (d *Dataset) Has(column string) bool {
	_, ok := d.index[column]
	return ok
}

// Value returns the raw cell; short rows read as missing.
func (d *Dataset) Value(row int, column string) (string, bool) {
	j, ok := d.index[column]
	if !ok || row < 0 || row >= len(d.Rows) {
		return "", false
	}
	if j >= len(d.Rows[row]) {
		return "", true
	}
	return d.Rows[row][j], true
}

// Float parses a whole column as numbers.
func (d *Dataset) Float(column string) ([]float64, error) {
	if !d.Has(column) {
		return nil, fmt.Errorf("%w: column %q not found in %s data", ErrValidation, column, d.Name)
	}
	out := make([]float64, d.Len())
	for i := range out {
		raw, _ := d.Value(i, column)
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: column %q row %d: %q is not a finite number", ErrValidation, column, i, raw)
		}
		out[i] = v
	}
	return out, nil
}

// MissingValues counts empty or NaN-like cells per column; columns without
// gaps are omitted.
func (d *Dataset) MissingValues() map[string]int {
	out := make(map[string]int)
	for i := range d.Rows {
		for _, c := range d.Header {
			v, _ := d.Value(i, c)
			if encoding.IsMissing(v) {
				out[c]++
			}
		}
	}
	return out
}

// FormatCell renders a value scanned from a database driver as a raw cell.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
