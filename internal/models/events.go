package models

// Event names, used as the SSE event type on the wire.
const (
	EventPoolCreated = "pool_created"
	EventPoolJoined  = "pool_joined"
)

// Event wraps one committed ledger mutation for delivery to observers.
// Events are emitted only after the mutation has committed, in commit order.
type Event struct {
	// Name is one of the EventPool* constants.
	Name string `json:"name"`

	// Payload is the event body: PoolCreated or PoolJoined.
	Payload any `json:"payload"`
}

// PoolCreated is the payload emitted when a pool is created.
type PoolCreated struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	TotalAmount      int64  `json:"total_amount"`
	ParticipantLimit int    `json:"participant_limit"`
	Creator          string `json:"creator"`
}

// PoolJoined is the payload emitted when a member joins a pool.
type PoolJoined struct {
	ID     int64  `json:"id"`
	Member string `json:"member"`
}
