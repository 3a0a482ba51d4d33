package outbox

import (
	"time"
)

// Message is an event stored in the same transaction as the rows it describes.
// It stays in the outbox until a publish succeeds.
type Message struct {
	ID          int64
	MessageID   string
	Exchange    string
	RoutingKey  string
	Payload     []byte
	ContentType string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// MaxAttempts bounds Attempts; an exhausted message is kept for inspection
	// but never picked up again.
	MaxAttempts   int
	Attempts      int
	LastError     string
	NextAttemptAt time.Time
}

// Due reports whether m should be published at now.
func (m Message) Due(now time.Time) bool {
	return !m.Exhausted() && !m.NextAttemptAt.After(now)
}

// Exhausted reports whether m has used up its attempts.
func (m Message) Exhausted() bool {
	return m.Attempts >= m.MaxAttempts
}

// Retry is the bookkeeping recorded after a failed publish.
type Retry struct {
	Attempts      int
	LastError     string
	NextAttemptAt time.Time
}
