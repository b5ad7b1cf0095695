package oracle

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"valuation-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDriver serves one fixed result set for every query.
type stubDriver struct {
	columns []string
	rows    [][]driver.Value
}

func (d *stubDriver) Open(name string) (driver.Conn, error) { return &stubConn{d: d}, nil }

type stubConn struct{ d *stubDriver }

func (c *stubConn) Prepare(query string) (driver.Stmt, error) { return &stubStmt{d: c.d}, nil }
func (c *stubConn) Close() error                              { return nil }
func (c *stubConn) Begin() (driver.Tx, error)                 { return nil, errors.New("no transactions") }

type stubStmt struct{ d *stubDriver }

func (s *stubStmt) Close() error                                    { return nil }
func (s *stubStmt) NumInput() int                                   { return -1 }
func (s *stubStmt) Exec(args []driver.Value) (driver.Result, error) { return driver.RowsAffected(0), nil }
func (s *stubStmt) Query(args []driver.Value) (driver.Rows, error) {
	return &stubRows{d: s.d}, nil
}

type stubRows struct {
	d   *stubDriver
	pos int
}

func (r *stubRows) Columns() []string { return r.d.columns }
func (r *stubRows) Close() error      { return nil }
func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.d.rows) {
		return io.EOF
	}
	copy(dest, r.d.rows[r.pos])
	r.pos++
	return nil
}

var registerOnce sync.Once

func stubConnector(t *testing.T) *DatasetConnector {
	registerOnce.Do(func() {
		sql.Register("oracle-stub", &stubDriver{
			columns: []string{"ID", "TYPE", "SECTOR", "PRICE"},
			rows: [][]driver.Value{
				{int64(1), "casa", "vitacura", float64(11900)},
				{int64(2), "departamento", nil, 7900.5},
			},
		})
	})
	c := NewDatasetConnector(Config{Host: "db", Service: "XEPDB1", User: "ml", Password: "secret"})
	c.driverName = "oracle-stub"
	return c
}

func TestDSN(t *testing.T) {
	dsn := Config{Host: "db.local", Service: "XEPDB1", User: "ml", Password: "p@ss"}.DSN()
	assert.True(t, strings.HasPrefix(dsn, "oracle://"))
	assert.Contains(t, dsn, "db.local:1521")
	assert.Contains(t, dsn, "XEPDB1")
}

func TestFetchBeforeConnect(t *testing.T) {
	c := NewDatasetConnector(Config{})
	_, err := c.Fetch(context.Background(), "SELECT 1 FROM dual")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.ErrorIs(t, c.Execute(context.Background(), "SELECT 1 FROM dual"), domain.ErrConfiguration)
}

func TestConnectRequiresParameters(t *testing.T) {
	err := NewDatasetConnector(Config{Host: "db"}).Connect(context.Background())
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "user, password, database")
}

func TestFetchLowercasesColumns(t *testing.T) {
	c := stubConnector(t)
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	ds, err := c.Fetch(context.Background(), "SELECT * FROM train")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "type", "sector", "price"}, ds.Columns())
	assert.Equal(t, [][]string{
		{"1", "casa", "vitacura", "11900"},
		{"2", "departamento", "", "7900.5"},
	}, ds.Rows)

	require.NoError(t, c.Execute(context.Background(), "DELETE FROM scratch"))
}
