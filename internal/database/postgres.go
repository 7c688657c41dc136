package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prerna1001/pharma-press-tracker/internal/press"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the connection pool.
type PostgresConfig struct {
	DSN      string
	Table    string
	MaxConns int32
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store on top of a pgx pool.
type PostgresStore struct {
	pool  pgxPool
	table string
}

// NewPostgresStore connects to Postgres and pings it to fail fast on bad
// configuration.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newPostgresStore(pool, cfg.Table)
}

// NewPostgresStoreWithPool constructs a store from an existing pool,
// primarily for tests.
func NewPostgresStoreWithPool(pool pgxPool, table string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return newPostgresStore(pool, table)
}

func newPostgresStore(pool pgxPool, table string) (*PostgresStore, error) {
	if table == "" {
		table = "press_releases"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Reset drops and recreates the table. URL is the primary key; the
// uniqueness constraint is what enforces record deduplication.
func (s *PostgresStore) Reset(ctx context.Context) error {
	drop := fmt.Sprintf("DROP TABLE IF EXISTS %s", s.table)
	if _, err := s.pool.Exec(ctx, drop); err != nil {
		return fmt.Errorf("%w: drop table: %v", press.ErrStore, err)
	}
	create := fmt.Sprintf(`
CREATE TABLE %s (
	url TEXT PRIMARY KEY,
	company TEXT NOT NULL,
	published_date DATE NOT NULL,
	title TEXT NOT NULL,
	full_text TEXT
)`, s.table)
	if _, err := s.pool.Exec(ctx, create); err != nil {
		return fmt.Errorf("%w: create table: %v", press.ErrStore, err)
	}
	return nil
}

// Insert adds one record.
func (s *PostgresStore) Insert(ctx context.Context, record press.PressRelease) error {
	if record.URL == "" {
		return fmt.Errorf("%w: record has no url", press.ErrStore)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (url, company, published_date, title, full_text)
VALUES ($1, $2, $3, $4, $5)`, s.table)
	_, err := s.pool.Exec(ctx, query,
		record.URL,
		record.Company,
		record.PublishedDate.Time,
		record.Title,
		nullable(record.FullText),
	)
	if err != nil {
		return fmt.Errorf("%w: insert %s: %v", press.ErrStore, record.URL, err)
	}
	return nil
}

// List returns every stored record ordered by published_date descending.
func (s *PostgresStore) List(ctx context.Context) ([]press.PressRelease, error) {
	query := fmt.Sprintf(`
SELECT url, company, published_date, title, COALESCE(full_text, '')
FROM %s
ORDER BY published_date DESC, url`, s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", press.ErrStore, err)
	}
	defer rows.Close()

	var records []press.PressRelease
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list rows: %v", press.ErrStore, err)
	}
	return records, nil
}

// GetByURL returns the record with the exact URL.
func (s *PostgresStore) GetByURL(ctx context.Context, url string) (press.PressRelease, error) {
	query := fmt.Sprintf(`
SELECT url, company, published_date, title, COALESCE(full_text, '')
FROM %s
WHERE url = $1`, s.table)
	record, err := scanRecord(s.pool.QueryRow(ctx, query, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return press.PressRelease{}, ErrNotFound
		}
		return press.PressRelease{}, err
	}
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (press.PressRelease, error) {
	var (
		record    press.PressRelease
		published time.Time
	)
	if err := row.Scan(&record.URL, &record.Company, &published, &record.Title, &record.FullText); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return press.PressRelease{}, err
		}
		return press.PressRelease{}, fmt.Errorf("%w: scan row: %v", press.ErrStore, err)
	}
	record.PublishedDate = press.DateOf(published)
	return record, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
