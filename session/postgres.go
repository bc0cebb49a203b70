package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGExecutor is the subset of *pgxpool.Pool used by PostgresStore.
type PGExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists records in a single key/value table. Expired rows
// are filtered on read and removed lazily.
type PostgresStore struct {
	db        PGExecutor
	table     string
	namespace string
	clock     Clock
}

func NewPostgresStore(db PGExecutor, table, namespace string) *PostgresStore {
	if table == "" {
		table = "dashauth_kv"
	}
	if namespace == "" {
		namespace = "default"
	}
	return &PostgresStore{
		db:        db,
		table:     pgx.Identifier{table}.Sanitize(),
		namespace: namespace,
		clock:     realClock{},
	}
}

// OpenPostgres establishes a pool against dsn and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}
	return pool, nil
}

// Migrate creates the backing table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	expires_at TIMESTAMPTZ NULL,
	PRIMARY KEY (namespace, key)
)`
	if _, err := s.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string, ttlDays int) error {
	if err := validKey(key); err != nil {
		return err
	}

	var expiresAt *time.Time
	if ttl := TTL(ttlDays); ttl > 0 {
		t := s.clock.Now().Add(ttl).UTC()
		expiresAt = &t
	}

	query := `INSERT INTO ` + s.table + ` (namespace, key, value, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`
	if _, err := s.db.Exec(ctx, query, s.namespace, key, value, expiresAt); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}

	query := `SELECT value, expires_at FROM ` + s.table + ` WHERE namespace = $1 AND key = $2`

	var (
		value     string
		expiresAt *time.Time
	)
	if err := s.db.QueryRow(ctx, query, s.namespace, key).Scan(&value, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}

	if expiresAt != nil && !s.clock.Now().Before(*expiresAt) {
		if err := s.Remove(ctx, key); err != nil {
			return "", false, err
		}
		return "", false, nil
	}
	return value, true, nil
}

func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	query := `DELETE FROM ` + s.table + ` WHERE namespace = $1 AND key = $2`
	if _, err := s.db.Exec(ctx, query, s.namespace, key); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}
	return nil
}
