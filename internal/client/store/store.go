package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store: not found")

// Store is the device-local durable storage of the client. It outlives the
// process so flags and the persisted auth session survive restarts.
type Store interface {
	Flags() Flags
	Sessions() Sessions

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Flags() Flags
	Sessions() Sessions
}

// Flags is durable boolean storage keyed by name. An unset flag reads false.
type Flags interface {
	Flag(ctx context.Context, key string) (bool, error)
	SetFlag(ctx context.Context, key string, value bool) error
	ClearFlag(ctx context.Context, key string) error
}

// Sessions holds the single persisted auth session as an opaque payload.
type Sessions interface {
	// LoadSession returns ErrNotFound when nothing is stored.
	LoadSession(ctx context.Context) ([]byte, error)
	SaveSession(ctx context.Context, payload []byte) error
	DeleteSession(ctx context.Context) error
}
