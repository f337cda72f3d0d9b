// Package models defines the core domain models for the pool ledger.
//
// # Models
//
//   - Pool: a pooled-savings agreement with a fixed contribution schedule,
//     a participant cap, and a join deadline
//   - Event, PoolCreated, PoolJoined: notifications emitted after a
//     successful mutation commits
//
// Members are identified by opaque name strings supplied by the caller;
// there are no user accounts. Monetary amounts are integers in minor
// currency units (paise, cents), never floating point.
//
// # Design Principles
//
// 1. **Ledger owns the records**: Pool values handed out by the ledger are
// snapshots; mutating them never touches ledger state.
//
// 2. **Append-only membership**: a pool's participant list only grows, the
// creator is always element 0, and no field other than Participants changes
// after creation.
//
// 3. **Sentinel errors**: every way a mutation can be rejected has a named
// error value in this package, matched by callers with errors.Is.
package models
