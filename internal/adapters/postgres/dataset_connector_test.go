package postgres

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"valuation-service/internal/core/domain"
	pgclient "valuation-service/pkg/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	fields []string
	data   [][]any
	pos    int
	closed bool
}

func (r *fakeRows) Close()                        { r.closed = true }
func (r *fakeRows) Err() error                    { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}
func (r *fakeRows) Scan(dest ...any) error { return errors.New("not implemented") }
func (r *fakeRows) Values() ([]any, error) { return r.data[r.pos-1], nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.fields))
	for i, f := range r.fields {
		out[i] = pgconn.FieldDescription{Name: f}
	}
	return out
}

type fakePool struct {
	rows    *fakeRows
	queries []string
	closed  bool
}

func (p *fakePool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.queries = append(p.queries, sql)
	return p.rows, nil
}

func (p *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.queries = append(p.queries, sql)
	return pgconn.CommandTag{}, nil
}

func (p *fakePool) Close() { p.closed = true }

func validConfig() pgclient.Config {
	return pgclient.Config{User: "ml", Password: "secret", Host: "localhost", Database: "properties"}
}

func TestFetchBeforeConnect(t *testing.T) {
	c := NewDatasetConnector(validConfig())

	_, err := c.Fetch(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "no database connection established")

	assert.ErrorIs(t, c.Execute(context.Background(), "SELECT 1"), domain.ErrConfiguration)
}

func TestConnectRequiresParameters(t *testing.T) {
	cfg := validConfig()
	cfg.Password = ""
	cfg.Database = ""

	err := NewDatasetConnector(cfg).Connect(context.Background())
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "password, database")
}

func TestFetchConvertsRows(t *testing.T) {
	price := pgtype.Numeric{Int: big.NewInt(119), Exp: 2, Valid: true}
	fp := &fakePool{rows: &fakeRows{
		fields: []string{"id", "type", "sector", "price"},
		data: [][]any{
			{int64(1), "casa", "vitacura", price},
			{int64(2), "departamento", nil, 7900.5},
		},
	}}

	c := NewDatasetConnector(validConfig())
	c.dial = func(ctx context.Context, cfg pgclient.Config) (pool, error) { return fp, nil }
	require.NoError(t, c.Connect(context.Background()))

	ds, err := c.Fetch(context.Background(), "SELECT * FROM train")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "type", "sector", "price"}, ds.Columns())
	assert.Equal(t, [][]string{
		{"1", "casa", "vitacura", "11900"},
		{"2", "departamento", "", "7900.5"},
	}, ds.Rows)
	assert.True(t, fp.rows.closed)

	require.NoError(t, c.Close())
	assert.True(t, fp.closed)

	_, err = c.Fetch(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
