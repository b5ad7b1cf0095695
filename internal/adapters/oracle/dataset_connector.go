// Package oracle implements the dataset connector for Oracle databases on
// top of the go-ora database/sql driver.
package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"valuation-service/internal/core/domain"

	go_ora "github.com/sijms/go-ora/v2"
)

const driverName = "oracle"

type Config struct {
	Host     string
	Port     int
	Service  string
	User     string
	Password string
	// Options are appended to the URL, e.g. {"SSL": "true"}.
	Options map[string]string

	PingTimeout time.Duration
}

// DSN builds the go-ora connection URL.
func (c Config) DSN() string {
	port := c.Port
	if port == 0 {
		port = 1521
	}
	return go_ora.BuildUrl(c.Host, port, c.Service, c.User, c.Password, c.Options)
}

type DatasetConnector struct {
	cfg        Config
	driverName string

	mu sync.Mutex
	db *sql.DB
}

func NewDatasetConnector(cfg Config) *DatasetConnector {
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 10 * time.Second
	}
	return &DatasetConnector{cfg: cfg, driverName: driverName}
}

func (c *DatasetConnector) Connect(ctx context.Context) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"user", c.cfg.User},
		{"password", c.cfg.Password},
		{"host", c.cfg.Host},
		{"database", c.cfg.Service},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing database connection parameters: %s", domain.ErrConfiguration, strings.Join(missing, ", "))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return nil
	}

	db, err := sql.Open(c.driverName, c.cfg.DSN())
	if err != nil {
		return fmt.Errorf("%w: OracleDatasetConnector: failed to open database connection: %v", domain.ErrIO, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("%w: OracleDatasetConnector: failed to ping database: %v", domain.ErrIO, err)
	}

	c.db = db
	return nil
}

func (c *DatasetConnector) current() (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil, fmt.Errorf("%w: no database connection established", domain.ErrConfiguration)
	}
	return c.db, nil
}

func (c *DatasetConnector) Execute(ctx context.Context, query string, args ...any) error {
	db, err := c.current()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: OracleDatasetConnector: exec failed: %v", domain.ErrIO, err)
	}
	return nil
}

func (c *DatasetConnector) Fetch(ctx context.Context, query string, args ...any) (*domain.Dataset, error) {
	db, err := c.current()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: OracleDatasetConnector: failed to query: %v", domain.ErrIO, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: OracleDatasetConnector: failed to read columns: %v", domain.ErrIO, err)
	}
	// Oracle folds unquoted identifiers to upper case
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = strings.ToLower(col)
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	var out [][]string
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: OracleDatasetConnector: failed to scan row: %v", domain.ErrIO, err)
		}
		rec := make([]string, len(values))
		for i, v := range values {
			rec[i] = domain.FormatCell(v)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: OracleDatasetConnector: error during rows iteration: %v", domain.ErrIO, err)
	}

	return domain.NewDataset("query", header, out), nil
}

func (c *DatasetConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
