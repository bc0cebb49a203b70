package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgRow struct {
	value     string
	expiresAt *time.Time
}

// fakePG emulates the three statements PostgresStore issues.
type fakePG struct {
	rows    map[string]pgRow
	execErr error
	stmts   []string
}

func newFakePG() *fakePG {
	return &fakePG{rows: make(map[string]pgRow)}
}

func (f *fakePG) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.stmts = append(f.stmts, sql)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	switch {
	case strings.HasPrefix(sql, "INSERT"):
		key := args[0].(string) + "/" + args[1].(string)
		f.rows[key] = pgRow{value: args[2].(string), expiresAt: args[3].(*time.Time)}
	case strings.HasPrefix(sql, "DELETE"):
		delete(f.rows, args[0].(string)+"/"+args[1].(string))
	}
	return pgconn.CommandTag{}, nil
}

func (f *fakePG) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.stmts = append(f.stmts, sql)
	row, ok := f.rows[args[0].(string)+"/"+args[1].(string)]
	return fakeRow{row: row, found: ok}
}

type fakeRow struct {
	row   pgRow
	found bool
}

func (r fakeRow) Scan(dest ...any) error {
	if !r.found {
		return pgx.ErrNoRows
	}
	*dest[0].(*string) = r.row.value
	*dest[1].(**time.Time) = r.row.expiresAt
	return nil
}

func TestPostgresStoreContract(t *testing.T) {
	storeContract(t, NewPostgresStore(newFakePG(), "", "op-1"))
}

func TestPostgresStoreExpiredRowIsRemovedOnRead(t *testing.T) {
	db := newFakePG()
	s := NewPostgresStore(db, "kv", "op-1")
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.clock = clock
	ctx := context.Background()

	if err := s.Set(ctx, "accessToken", "tok", 7); err != nil {
		t.Fatalf("set: %v", err)
	}
	clock.Advance(8 * 24 * time.Hour)

	if _, ok, err := s.Get(ctx, "accessToken"); err != nil || ok {
		t.Fatalf("expected expired row absent, ok=%v err=%v", ok, err)
	}
	if len(db.rows) != 0 {
		t.Fatalf("expected expired row deleted, have %d rows", len(db.rows))
	}
}

func TestPostgresStoreZeroTTLStoresNullExpiry(t *testing.T) {
	db := newFakePG()
	s := NewPostgresStore(db, "kv", "")
	if err := s.Set(context.Background(), "user", "{}", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if row := db.rows["default/user"]; row.expiresAt != nil {
		t.Fatalf("expected NULL expiry, got %v", row.expiresAt)
	}
}

func TestPostgresStoreQuotesTableAndMigrates(t *testing.T) {
	db := newFakePG()
	s := NewPostgresStore(db, "auth kv", "")
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(db.stmts) != 1 || !strings.Contains(db.stmts[0], `CREATE TABLE IF NOT EXISTS "auth kv"`) {
		t.Fatalf("unexpected migration statement %q", db.stmts)
	}
}

func TestPostgresStoreWrapsBackendFailure(t *testing.T) {
	db := newFakePG()
	db.execErr = errors.New("conn reset")
	s := NewPostgresStore(db, "", "")

	if err := s.Set(context.Background(), "accessToken", "t", 1); !errors.Is(err, ErrDatabaseUnavailable) {
		t.Fatalf("expected ErrDatabaseUnavailable, got %v", err)
	}
	if err := s.Remove(context.Background(), "accessToken"); !errors.Is(err, ErrDatabaseUnavailable) {
		t.Fatalf("expected ErrDatabaseUnavailable, got %v", err)
	}
}
