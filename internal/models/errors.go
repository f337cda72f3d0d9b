package models

import "errors"

// Every way the ledger can reject a mutation has a sentinel here. All are
// local validation failures: the caller must correct the request, the ledger
// never retries, and no failure leaves the store partially mutated.
var (
	// ErrInvalidInput indicates malformed creation parameters: an empty
	// title, description, or member name, or a non-positive amount or
	// participant limit.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidDeadline indicates a creation deadline that is not strictly
	// in the future.
	ErrInvalidDeadline = errors.New("deadline is not in the future")

	// ErrNotFound indicates that no pool has the requested id.
	ErrNotFound = errors.New("pool not found")

	// ErrExpired indicates a join attempt at or past the pool's deadline.
	ErrExpired = errors.New("pool deadline has passed")

	// ErrFull indicates a join attempt on a pool at its participant limit.
	ErrFull = errors.New("pool is full")

	// ErrAlreadyJoined indicates that the member is already in the pool's
	// participant list.
	ErrAlreadyJoined = errors.New("member already joined")
)
