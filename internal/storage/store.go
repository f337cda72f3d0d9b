// Package storage provides abstractions for durable pool persistence.
package storage

import (
	"context"

	"github.com/mmynk/chitpool/internal/models"
)

// Store defines the interface for the durable layer beneath the ledger.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the ledger. The ledger calls mutating methods
// inside its own critical section, so implementations never see two writes
// for the same pool at once; a returned error aborts the ledger operation
// before any in-memory state changes.
type Store interface {
	// InsertPool persists a newly created pool, its creator row, and the
	// advanced id counter in a single transaction. The pool's ID has
	// already been assigned by the ledger.
	InsertPool(ctx context.Context, pool *models.Pool) error

	// AppendParticipant records member at the given zero-based position in
	// the pool's participant list.
	AppendParticipant(ctx context.Context, poolID int64, position int, member string) error

	// LoadPools returns every stored pool in ascending id order, with
	// participants in stored position order, plus the next id to allocate.
	LoadPools(ctx context.Context) ([]*models.Pool, int64, error)

	// Close releases any resources held by the store.
	Close() error
}
