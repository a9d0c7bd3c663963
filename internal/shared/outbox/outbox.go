package outbox

import "time"

const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// Message is an outbox row persisted inside the same transaction as the
// state change it announces. The relay worker drains pending rows in
// creation order and publishes them to the bus.
type Message struct {
	ID          string
	EventType   string
	EntityType  string
	EntityID    string
	Payload     []byte
	Status      string
	RetryCount  int
	CreatedAt   time.Time
	PublishedAt *time.Time
}
