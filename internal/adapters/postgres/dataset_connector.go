package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"valuation-service/internal/core/domain"
	pgclient "valuation-service/pkg/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pool is the subset of *pgxpool.Pool the connector uses.
type pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

type dialFunc func(ctx context.Context, cfg pgclient.Config) (pool, error)

func dialPool(ctx context.Context, cfg pgclient.Config) (pool, error) {
	p, err := pgclient.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

var _ pool = (*pgxpool.Pool)(nil)

// DatasetConnector pulls training tables out of PostgreSQL.
type DatasetConnector struct {
	cfg  pgclient.Config
	dial dialFunc

	mu   sync.Mutex
	pool pool
}

func NewDatasetConnector(cfg pgclient.Config) *DatasetConnector {
	return &DatasetConnector{cfg: cfg, dial: dialPool}
}

func (c *DatasetConnector) Connect(ctx context.Context) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"user", c.cfg.User},
		{"password", c.cfg.Password},
		{"host", c.cfg.Host},
		{"database", c.cfg.Database},
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
	if c.pool != nil {
		return nil
	}
	p, err := c.dial(ctx, c.cfg)
	if err != nil {
		return fmt.Errorf("%w: PostgresDatasetConnector: %v", domain.ErrIO, err)
	}
	c.pool = p
	return nil
}

func (c *DatasetConnector) current() (pool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool == nil {
		return nil, fmt.Errorf("%w: no database connection established", domain.ErrConfiguration)
	}
	return c.pool, nil
}

func (c *DatasetConnector) Execute(ctx context.Context, query string, args ...any) error {
	p, err := c.current()
	if err != nil {
		return err
	}
	if _, err := p.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: PostgresDatasetConnector: exec failed: %v", domain.ErrIO, err)
	}
	return nil
}

// Fetch runs query and returns the result set as a dataset named "query".
func (c *DatasetConnector) Fetch(ctx context.Context, query string, args ...any) (*domain.Dataset, error) {
	p, err := c.current()
	if err != nil {
		return nil, err
	}

	rows, err := p.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: PostgresDatasetConnector: failed to query: %v", domain.ErrIO, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Name
	}

	var out [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%w: PostgresDatasetConnector: failed to read row: %v", domain.ErrIO, err)
		}
		rec := make([]string, len(values))
		for i, v := range values {
			rec[i] = formatValue(v)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: PostgresDatasetConnector: error during rows iteration: %v", domain.ErrIO, err)
	}

	return domain.NewDataset("query", header, out), nil
}

func formatValue(v any) string {
	if n, ok := v.(pgtype.Numeric); ok {
		if !n.Valid {
			return ""
		}
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		return strconv.FormatFloat(f.Float64, 'g', -1, 64)
	}
	return domain.FormatCell(v)
}

func (c *DatasetConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
	return nil
}
