package csvsource

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"valuation-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `type,sector,net_usable_area,net_area,n_rooms,n_bathroom,latitude,longitude,price
departamento,vitacura,140.0,170.0,4.0,4.0,-33.40123,-70.58056,11900
casa,la reina,129.0,129.0,3.0,2.0,-33.4434,-70.5692,7900
`

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	ds, err := NewReader().ReadFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "train", ds.Name)
	assert.Equal(t, 2, ds.Len())
	assert.True(t, ds.Has(domain.ColumnSector))

	v, ok := ds.Value(1, domain.ColumnSector)
	require.True(t, ok)
	assert.Equal(t, "la reina", v)

	prices, err := ds.Float(domain.ColumnPrice)
	require.NoError(t, err)
	assert.Equal(t, []float64{11900, 7900}, prices)
}

func TestReadFileMissingPath(t *testing.T) {
	_, err := NewReader().ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewReader().ReadFile(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestReadUnnamedIndexColumn(t *testing.T) {
	ds, err := NewReader().read(context.Background(), "t", strings.NewReader(",type,price\n0,casa,1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "type", "price"}, ds.Columns())
}

func TestReadRejectsEmptyAndRaggedFiles(t *testing.T) {
	_, err := NewReader().read(context.Background(), "t", strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewReader().read(context.Background(), "t", strings.NewReader("a,b\n1,2,3\n"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
