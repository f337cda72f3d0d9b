// Package calculator derives presentation views from pool snapshots.
// Nothing here is authoritative: the functions never mutate ledger state,
// and they never enforce a relationship between installment_amount,
// participant_limit, and total_amount; they only surface it.
package calculator

import (
	"fmt"
	"math"
	"time"

	"github.com/mmynk/chitpool/internal/models"
)

// Status describes whether a pool can still be joined.
type Status string

const (
	StatusOpen    Status = "open"
	StatusFull    Status = "full"
	StatusExpired Status = "expired"
)

// Schedule is the derived contribution timeline for one pool.
type Schedule struct {
	// Rounds is how many installments each member pays to reach the pool's
	// total amount.
	Rounds int `json:"rounds"`

	// FinalInstallment is the amount of the last round. It is smaller than
	// the pool's installment amount when the total does not divide evenly.
	FinalInstallment int64 `json:"final_installment"`

	// RoundPot is the amount collected per round at current membership.
	RoundPot int64 `json:"round_pot"`

	// FullPot is the amount collected per round if the pool fills up.
	FullPot int64 `json:"full_pot"`

	// SeatsLeft is the number of members who can still join.
	SeatsLeft int `json:"seats_left"`

	// Status is open, full, or expired. An expired pool reports expired
	// even when it is also full, matching the join check order.
	Status Status `json:"status"`
}

// ComputeSchedule derives the schedule for a pool snapshot at the given
// time. Rounds is the ceiling of total/installment, so the final
// installment shrinks to make the sum land exactly on the total.
func ComputeSchedule(pool models.Pool, now time.Time) (*Schedule, error) {
	if pool.TotalAmount <= 0 {
		return nil, fmt.Errorf("total amount must be positive")
	}
	if pool.InstallmentAmount <= 0 {
		return nil, fmt.Errorf("installment amount must be positive")
	}
	if pool.ParticipantLimit <= 0 {
		return nil, fmt.Errorf("participant limit must be positive")
	}
	if len(pool.Participants) == 0 {
		return nil, fmt.Errorf("pool must have at least one participant")
	}

	members := len(pool.Participants)
	seatsLeft := pool.ParticipantLimit - members

	// Each pot multiplies the installment by a head count; checking the
	// larger count bounds both products.
	scale := int64(pool.ParticipantLimit)
	if int64(members) > scale {
		scale = int64(members)
	}
	if pool.InstallmentAmount > math.MaxInt64/scale {
		return nil, fmt.Errorf("installment amount %d overflows the pot for %d members", pool.InstallmentAmount, scale)
	}

	// Ceiling division via quotient and remainder; the additive form
	// would overflow for amounts near the int64 ceiling.
	rounds := int(pool.TotalAmount / pool.InstallmentAmount)
	final := pool.InstallmentAmount
	if rem := pool.TotalAmount % pool.InstallmentAmount; rem != 0 {
		rounds++
		final = rem
	}

	status := StatusOpen
	switch {
	case !now.Before(pool.Deadline):
		status = StatusExpired
	case seatsLeft <= 0:
		status = StatusFull
	}

	return &Schedule{
		Rounds:           rounds,
		FinalInstallment: final,
		RoundPot:         pool.InstallmentAmount * int64(members),
		FullPot:          pool.InstallmentAmount * int64(pool.ParticipantLimit),
		SeatsLeft:        seatsLeft,
		Status:           status,
	}, nil
}
