package sqlite

import (
	"context"
	"time"
)

type sessionsRepo struct {
	q dbtx
}

func (r *sessionsRepo) LoadSession(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := r.q.QueryRowContext(ctx, `SELECT payload FROM sessions WHERE id = 1`).Scan(&payload)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return payload, nil
}

func (r *sessionsRepo) SaveSession(ctx context.Context, payload []byte) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sessions (id, payload, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		payload, time.Now().UTC(),
	)
	return err
}

func (r *sessionsRepo) DeleteSession(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE id = 1`)
	return err
}
