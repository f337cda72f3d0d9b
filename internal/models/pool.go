package models

import "time"

// Pool represents a pooled-savings agreement: a group of members who commit
// to a fixed contribution schedule until a shared target amount is reached.
type Pool struct {
	// ID is the unique identifier for the pool. IDs are assigned by the
	// ledger in strictly increasing order starting at 1 and are never
	// reused, so the full set of ids is always 1..N with no gaps.
	ID int64 `json:"id"`

	// Title is the human-readable name of the pool.
	Title string `json:"title"`

	// Description explains the purpose of the pool to prospective members.
	Description string `json:"description"`

	// TotalAmount is the target amount each member contributes over the
	// life of the pool, in minor currency units.
	TotalAmount int64 `json:"total_amount"`

	// InstallmentAmount is the per-round contribution, in minor currency
	// units.
	InstallmentAmount int64 `json:"installment_amount"`

	// ParticipantLimit is the maximum number of members, creator included.
	// Immutable once set.
	ParticipantLimit int `json:"participant_limit"`

	// Deadline is the cutoff for joining. It is strictly after CreatedAt;
	// joins at or past the deadline are rejected.
	Deadline time.Time `json:"deadline"`

	// CreatedAt is when the pool was created. Fixed at creation time.
	CreatedAt time.Time `json:"created_at"`

	// Participants is the ordered member list. The creator is always
	// element 0, later members appear in join order, and a member never
	// appears twice.
	Participants []string `json:"participants"`

	// Completed is reserved for marking a pool that has run its full
	// schedule. No operation transitions it yet.
	Completed bool `json:"completed"`
}

// Creator returns the member who created the pool, or the empty string if
// the pool has no participants.
func (p *Pool) Creator() string {
	if len(p.Participants) == 0 {
		return ""
	}
	return p.Participants[0]
}

// HasParticipant reports whether member is in the pool's participant list.
func (p *Pool) HasParticipant(member string) bool {
	for _, m := range p.Participants {
		if m == member {
			return true
		}
	}
	return false
}
