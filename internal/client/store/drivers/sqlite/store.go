package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/passage/internal/client/store"
	_ "modernc.org/sqlite"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	dsn string
}

// NewStore opens the database at dsn. Use ":memory:" for a throwaway store.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// A second pooled connection to ":memory:" would see a different database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(&txStore{q: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Flags() store.Flags       { return &flagsRepo{q: s.db} }
func (s *Store) Sessions() store.Sessions { return &sessionsRepo{q: s.db} }

type txStore struct {
	q dbtx
}

func (t *txStore) Flags() store.Flags       { return &flagsRepo{q: t.q} }
func (t *txStore) Sessions() store.Sessions { return &sessionsRepo{q: t.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
