package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verte-zerg/shapematch/internal/model"
)

// PGRow abstracts pgx.Row for testability.
type PGRow interface {
	Scan(dest ...any) error
}

// PGRows abstracts pgx.Rows for testability.
type PGRows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...any) error
}

// PGConn is the query surface the Postgres store needs.
type PGConn interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (PGRows, error)
	QueryRow(ctx context.Context, sql string, args ...any) PGRow
	Close()
}

// PoolAdapter wraps *pgxpool.Pool to satisfy PGConn.
type PoolAdapter struct {
	pool *pgxpool.Pool
}

// NewPoolAdapter builds a PGConn adapter around a pgx pool.
func NewPoolAdapter(pool *pgxpool.Pool) *PoolAdapter {
	return &PoolAdapter{pool: pool}
}

func (p *PoolAdapter) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := p.pool.Exec(ctx, sql, args...)
	return err
}

func (p *PoolAdapter) Query(ctx context.Context, sql string, args ...any) (PGRows, error) {
	return p.pool.Query(ctx, sql, args...)
}

func (p *PoolAdapter) QueryRow(ctx context.Context, sql string, args ...any) PGRow {
	return p.pool.QueryRow(ctx, sql, args...)
}

func (p *PoolAdapter) Close() {
	p.pool.Close()
}

var (
	parsePGConfig = pgxpool.ParseConfig
	newPGPool     = pgxpool.NewWithConfig
	pingPGPool    = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

const pgSchema = `CREATE TABLE IF NOT EXISTS results (
	id BIGSERIAL PRIMARY KEY,
	clicks INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres stores results in a PostgreSQL table.
type Postgres struct {
	conn PGConn
}

// OpenPostgres connects to PostgreSQL and ensures the results table exists.
func OpenPostgres(dsn string) (*Postgres, error) {
	config, err := parsePGConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	config.MaxConns = 4
	config.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := newPGPool(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pingPGPool(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return NewPostgres(ctx, NewPoolAdapter(pool))
}

// NewPostgres builds a store over an existing connection and applies the schema.
func NewPostgres(ctx context.Context, conn PGConn) (*Postgres, error) {
	if err := conn.Exec(ctx, pgSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating results table: %w", err)
	}
	return &Postgres{conn: conn}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	p.conn.Close()
	return nil
}

// Save appends a result. The timestamp is assigned by the database.
func (p *Postgres) Save(ctx context.Context, rec model.ResultRecord) (string, error) {
	var id int64
	if err := p.conn.QueryRow(ctx, `INSERT INTO results (clicks) VALUES ($1) RETURNING id`, rec.Clicks).Scan(&id); err != nil {
		return "", fmt.Errorf("inserting result: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// QueryAll returns every result, oldest first.
func (p *Postgres) QueryAll(ctx context.Context) ([]model.ResultRecord, error) {
	rows, err := p.conn.Query(ctx, `SELECT id, clicks, created_at FROM results ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var records []model.ResultRecord
	for rows.Next() {
		var (
			id  int64
			rec model.ResultRecord
		)
		if err := rows.Scan(&id, &rec.Clicks, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		rec.ID = strconv.FormatInt(id, 10)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
