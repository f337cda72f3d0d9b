// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/chitpool/internal/models"
	"github.com/mmynk/chitpool/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite. Timestamps are stored
// as unix seconds plus a nanosecond remainder so time.Time values round-trip
// exactly.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertPool persists a pool, its participant rows, and the advanced id
// counter in one transaction.
func (s *SQLiteStore) InsertPool(ctx context.Context, pool *models.Pool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pools (id, title, description, total_amount, installment_amount, participant_limit, deadline, deadline_ns, created_at, created_at_ns, completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pool.ID, pool.Title, pool.Description, pool.TotalAmount, pool.InstallmentAmount,
		pool.ParticipantLimit, pool.Deadline.Unix(), pool.Deadline.Nanosecond(),
		pool.CreatedAt.Unix(), pool.CreatedAt.Nanosecond(), pool.Completed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pool: %w", err)
	}

	for i, member := range pool.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO pool_participants (pool_id, position, member) VALUES (?, ?, ?)",
			pool.ID, i, member,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, "UPDATE id_allocator SET next_id = ? WHERE id = 1", pool.ID+1)
	if err != nil {
		return fmt.Errorf("failed to advance id counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AppendParticipant records member at the given position in the pool's
// participant list.
func (s *SQLiteStore) AppendParticipant(ctx context.Context, poolID int64, position int, member string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO pool_participants (pool_id, position, member) VALUES (?, ?, ?)",
		poolID, position, member,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// LoadPools retrieves every pool in ascending id order, with participants
// in position order, plus the next id to allocate.
func (s *SQLiteStore) LoadPools(ctx context.Context) ([]*models.Pool, int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, total_amount, installment_amount, participant_limit, deadline, deadline_ns, created_at, created_at_ns, completed
		 FROM pools ORDER BY id`,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query pools: %w", err)
	}
	defer rows.Close()

	var pools []*models.Pool
	byID := make(map[int64]*models.Pool)
	for rows.Next() {
		pool := &models.Pool{}
		var deadline, deadlineNS, createdAt, createdAtNS int64
		if err := rows.Scan(&pool.ID, &pool.Title, &pool.Description, &pool.TotalAmount,
			&pool.InstallmentAmount, &pool.ParticipantLimit, &deadline, &deadlineNS,
			&createdAt, &createdAtNS, &pool.Completed); err != nil {
			return nil, 0, fmt.Errorf("failed to scan pool: %w", err)
		}
		pool.Deadline = time.Unix(deadline, deadlineNS).UTC()
		pool.CreatedAt = time.Unix(createdAt, createdAtNS).UTC()
		pools = append(pools, pool)
		byID[pool.ID] = pool
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate pools: %w", err)
	}

	// Participants arrive ordered by (pool_id, position), so appending in
	// scan order rebuilds each pool's join order.
	memberRows, err := s.db.QueryContext(ctx,
		"SELECT pool_id, member FROM pool_participants ORDER BY pool_id, position",
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query participants: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var poolID int64
		var member string
		if err := memberRows.Scan(&poolID, &member); err != nil {
			return nil, 0, fmt.Errorf("failed to scan participant: %w", err)
		}
		if pool, ok := byID[poolID]; ok {
			pool.Participants = append(pool.Participants, member)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate participants: %w", err)
	}

	var nextID int64
	err = s.db.QueryRowContext(ctx, "SELECT next_id FROM id_allocator WHERE id = 1").Scan(&nextID)
	if err == sql.ErrNoRows {
		nextID = 1
	} else if err != nil {
		return nil, 0, fmt.Errorf("failed to read id counter: %w", err)
	}

	return pools, nextID, nil
}
