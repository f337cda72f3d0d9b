// Package ledger implements the authoritative pool ledger. It combines the
// four responsibilities that must stay consistent with each other: the
// identifier allocator (strictly increasing ids, never reused), the pool
// store (the authoritative id -> record map), the per-member membership
// index, and the invariant checks every mutation must pass.
//
// Every mutation runs as one indivisible critical section: validation,
// durable write, in-memory update, and event emission all happen under the
// ledger's write lock, so no partial update is ever observable. Reads take
// the read lock and return deep copies.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mmynk/chitpool/internal/events"
	"github.com/mmynk/chitpool/internal/models"
	"github.com/mmynk/chitpool/internal/storage"
)

// Ledger is the pool record store. The zero value is not usable; construct
// with New or Open.
type Ledger struct {
	mu       sync.RWMutex
	pools    map[int64]*models.Pool
	byMember map[string]map[int64]struct{}
	nextID   int64

	store storage.Store // optional durable layer
	bus   *events.Bus   // optional observer bus
	nowFn func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the ledger's time source. Time is sampled once at the
// start of each operation and reused throughout it.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.nowFn = now }
}

// WithBus attaches an event bus. Every committed mutation is published to
// it, in commit order.
func WithBus(bus *events.Bus) Option {
	return func(l *Ledger) { l.bus = bus }
}

// New creates an empty in-memory ledger. State is lost on process exit;
// use Open for a durable ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		pools:    make(map[int64]*models.Pool),
		byMember: make(map[string]map[int64]struct{}),
		nextID:   1,
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open creates a ledger backed by the given store and seeds it from the
// persisted snapshot. The id counter resumes where it left off; if the
// persisted counter ever trails the highest stored id, it is floored to
// that id plus one.
func Open(ctx context.Context, store storage.Store, opts ...Option) (*Ledger, error) {
	l := New(opts...)
	l.store = store

	pools, nextID, err := store.LoadPools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pools: %w", err)
	}
	for _, p := range pools {
		l.pools[p.ID] = p
		for _, m := range p.Participants {
			l.indexMember(m, p.ID)
		}
		if p.ID >= nextID {
			nextID = p.ID + 1
		}
	}
	if nextID > l.nextID {
		l.nextID = nextID
	}
	return l, nil
}

// CreatePoolInput carries the caller-supplied fields for a new pool.
type CreatePoolInput struct {
	Title             string
	Description       string
	TotalAmount       int64
	InstallmentAmount int64
	ParticipantLimit  int
	Deadline          time.Time
	Creator           string
}

// CreatePool validates the input, allocates the next id, and stores a new
// pool with the creator as its first participant. A rejected or failed
// creation never consumes an id: the counter advances only when the pool
// has been durably stored.
func (l *Ledger) CreatePool(ctx context.Context, in CreatePoolInput) (models.Pool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if err := validateInput(in); err != nil {
		return models.Pool{}, err
	}
	if !in.Deadline.After(now) {
		return models.Pool{}, fmt.Errorf("%w: deadline %s, now %s",
			models.ErrInvalidDeadline, in.Deadline.Format(time.RFC3339), now.Format(time.RFC3339))
	}

	pool := &models.Pool{
		ID:                l.nextID,
		Title:             in.Title,
		Description:       in.Description,
		TotalAmount:       in.TotalAmount,
		InstallmentAmount: in.InstallmentAmount,
		ParticipantLimit:  in.ParticipantLimit,
		Deadline:          in.Deadline,
		CreatedAt:         now,
		Participants:      []string{in.Creator},
	}
	if _, exists := l.pools[pool.ID]; exists {
		return models.Pool{}, fmt.Errorf("id %d is already in use", pool.ID)
	}

	if l.store != nil {
		if err := l.store.InsertPool(ctx, pool); err != nil {
			return models.Pool{}, fmt.Errorf("failed to persist pool: %w", err)
		}
	}

	l.pools[pool.ID] = pool
	l.indexMember(in.Creator, pool.ID)
	l.nextID++

	l.publish(models.Event{Name: models.EventPoolCreated, Payload: models.PoolCreated{
		ID:               pool.ID,
		Title:            pool.Title,
		TotalAmount:      pool.TotalAmount,
		ParticipantLimit: pool.ParticipantLimit,
		Creator:          in.Creator,
	}})

	return clonePool(pool), nil
}

// JoinPool appends member to the pool's participant list. The checks run in
// a fixed order that callers can rely on: existence, then deadline, then
// capacity, then duplicate membership.
func (l *Ledger) JoinPool(ctx context.Context, id int64, member string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if member == "" {
		return fmt.Errorf("%w: member must not be empty", models.ErrInvalidInput)
	}
	pool, ok := l.pools[id]
	if !ok {
		return fmt.Errorf("%w: id %d", models.ErrNotFound, id)
	}
	if !now.Before(pool.Deadline) {
		return fmt.Errorf("%w: deadline was %s", models.ErrExpired, pool.Deadline.Format(time.RFC3339))
	}
	if len(pool.Participants) >= pool.ParticipantLimit {
		return fmt.Errorf("%w: participant limit %d reached", models.ErrFull, pool.ParticipantLimit)
	}
	if pool.HasParticipant(member) {
		return fmt.Errorf("%w: %q is already in pool %d", models.ErrAlreadyJoined, member, id)
	}

	if l.store != nil {
		if err := l.store.AppendParticipant(ctx, id, len(pool.Participants), member); err != nil {
			return fmt.Errorf("failed to persist participant: %w", err)
		}
	}

	pool.Participants = append(pool.Participants, member)
	l.indexMember(member, id)

	l.publish(models.Event{Name: models.EventPoolJoined, Payload: models.PoolJoined{
		ID:     id,
		Member: member,
	}})

	return nil
}

// Get returns a snapshot of the pool with the given id.
func (l *Ledger) Get(id int64) (models.Pool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pool, ok := l.pools[id]
	if !ok {
		return models.Pool{}, fmt.Errorf("%w: id %d", models.ErrNotFound, id)
	}
	return clonePool(pool), nil
}

// ListAll returns a snapshot of every pool in ascending id order. Ids are
// dense (1..N, nothing is ever deleted), so the scan walks the counter
// range directly.
func (l *Ledger) ListAll() []models.Pool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Pool, 0, len(l.pools))
	for id := int64(1); id < l.nextID; id++ {
		if pool, ok := l.pools[id]; ok {
			out = append(out, clonePool(pool))
		}
	}
	return out
}

// Participants returns the pool's member list in join order, creator first.
func (l *Ledger) Participants(id int64) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pool, ok := l.pools[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", models.ErrNotFound, id)
	}
	return append([]string(nil), pool.Participants...), nil
}

// MemberPools returns the ids of every pool the member belongs to, in
// ascending order. This is the read side of the membership index; it always
// agrees with filtering ListAll by participant.
func (l *Ledger) MemberPools(member string) []int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]int64, 0, len(l.byMember[member]))
	for id := range l.byMember[member] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Count returns the number of pools in the ledger.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.pools)
}

func validateInput(in CreatePoolInput) error {
	switch {
	case in.Title == "":
		return fmt.Errorf("%w: title must not be empty", models.ErrInvalidInput)
	case in.Description == "":
		return fmt.Errorf("%w: description must not be empty", models.ErrInvalidInput)
	case in.TotalAmount <= 0:
		return fmt.Errorf("%w: total amount must be positive, got %d", models.ErrInvalidInput, in.TotalAmount)
	case in.InstallmentAmount <= 0:
		return fmt.Errorf("%w: installment amount must be positive, got %d", models.ErrInvalidInput, in.InstallmentAmount)
	case in.ParticipantLimit <= 0:
		return fmt.Errorf("%w: participant limit must be positive, got %d", models.ErrInvalidInput, in.ParticipantLimit)
	case in.Creator == "":
		return fmt.Errorf("%w: creator must not be empty", models.ErrInvalidInput)
	}
	return nil
}

func (l *Ledger) indexMember(member string, id int64) {
	ids, ok := l.byMember[member]
	if !ok {
		ids = make(map[int64]struct{})
		l.byMember[member] = ids
	}
	ids[id] = struct{}{}
}

// publish emits while the write lock is held so that per-subscriber
// delivery order always matches commit order. Sends never block, so no
// observer code runs inside the critical section.
func (l *Ledger) publish(ev models.Event) {
	if l.bus != nil {
		l.bus.Publish(ev)
	}
}

func clonePool(p *models.Pool) models.Pool {
	cp := *p
	cp.Participants = append([]string(nil), p.Participants...)
	return cp
}
