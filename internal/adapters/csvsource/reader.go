// Package csvsource reads training tables from CSV files with a header row.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"valuation-service/internal/core/domain"
)

type Reader struct {
	comma rune
}

func NewReader() *Reader {
	return &Reader{comma: ','}
}

// ReadFile loads path into a Dataset named after the file. A path that does
// not exist is a configuration error; a broken file is an IO error.
func (r *Reader) ReadFile(ctx context.Context, path string) (*domain.Dataset, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty dataset path", domain.ErrConfiguration)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: dataset file %s does not exist", domain.ErrConfiguration, path)
		}
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrIO, path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return r.read(ctx, name, f)
}

func (r *Reader) read(ctx context.Context, name string, src io.Reader) (*domain.Dataset, error) {
	cr := csv.NewReader(src)
	cr.Comma = r.comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s has no header row", domain.ErrValidation, name)
		}
		return nil, fmt.Errorf("%w: read header of %s: %v", domain.ErrIO, name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	// exported by pandas with the index column unnamed
	if len(header) > 0 && header[0] == "" {
		header[0] = domain.ColumnID
	}

	var rows [][]string
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", domain.ErrIO, name, line, err)
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("%w: %s line %d has %d fields, header has %d", domain.ErrValidation, name, line, len(rec), len(header))
		}
		rows = append(rows, rec)
	}

	return domain.NewDataset(name, header, rows), nil
}
