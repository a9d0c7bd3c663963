package entities

import "time"

// GrantStatus tracks where an opportunity sits relative to its deadline.
type GrantStatus string

const (
	GrantOpen        GrantStatus = "open"
	GrantClosingSoon GrantStatus = "closing_soon"
	GrantClosed      GrantStatus = "closed"
)

// Grant is a funding opportunity sourced from public listings. Grants are
// global records: reads are shared across all authenticated actors, writes
// are platform-admin only.
type Grant struct {
	GrantID     string      `json:"grant_id"`
	ExternalID  string      `json:"external_id"`
	Name        string      `json:"name"`
	Funder      string      `json:"funder"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	Region      string      `json:"region"`
	AmountMin   string      `json:"amount_min,omitempty"`
	AmountMax   string      `json:"amount_max,omitempty"`
	Deadline    time.Time   `json:"deadline"`
	Status      GrantStatus `json:"status"`
	Embedding   []float32   `json:"embedding,omitempty"`
	SourceURL   string      `json:"source_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// StatusFor derives the deadline-driven status: closed past the deadline,
// closing_soon inside the window before it, open otherwise.
func StatusFor(deadline time.Time, now time.Time, closingSoonWindow time.Duration) GrantStatus {
	if !now.Before(deadline) {
		return GrantClosed
	}
	if now.Add(closingSoonWindow).After(deadline) {
		return GrantClosingSoon
	}
	return GrantOpen
}
