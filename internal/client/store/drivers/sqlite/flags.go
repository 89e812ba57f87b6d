package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/passage/internal/client/store"
)

type flagsRepo struct {
	q dbtx
}

func (r *flagsRepo) Flag(ctx context.Context, key string) (bool, error) {
	var value bool
	err := r.q.QueryRowContext(ctx, `SELECT value FROM flags WHERE key = ?`, key).Scan(&value)
	if errors.Is(mapNotFound(err), store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value, nil
}

func (r *flagsRepo) SetFlag(ctx context.Context, key string, value bool) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO flags (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	return err
}

func (r *flagsRepo) ClearFlag(ctx context.Context, key string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM flags WHERE key = ?`, key)
	return err
}
