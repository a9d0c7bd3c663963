package ports

import (
	"context"
	"time"

	"grantstw/contexts/grant-portfolio/matching-engine/domain/entities"
	"grantstw/internal/shared/events"
	"grantstw/internal/shared/outbox"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for new rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Authorizer is the cross-context gate into the membership service. It is
// satisfied structurally by the membership module's access gate.
type Authorizer interface {
	AuthorizeAction(ctx context.Context, actorID string, platformAdmin bool, orgID string, action string) (bool, string, error)
}

// Embedder turns free text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OrganizationDirectory reads organization profiles owned by the membership
// context. The matching engine never writes through this port.
type OrganizationDirectory interface {
	GetOrgProfile(ctx context.Context, orgID string) (entities.OrgProfile, bool, error)
	ListOrgProfiles(ctx context.Context) ([]entities.OrgProfile, error)
}

// Neighbor is one hit from a similarity index lookup.
type Neighbor struct {
	GrantID  string
	Distance float64
}

// SimilarityIndex narrows the candidate grant set for a profile vector.
// Implementations may be approximate; callers rescore every candidate with
// the exact alignment formula before persisting.
type SimilarityIndex interface {
	Nearest(ctx context.Context, vector []float32, k int) ([]Neighbor, error)
}

// Recheck re-verifies the acting membership inside the adapter's critical
// section, after the application layer has already authorized the request.
type Recheck func(ctx context.Context) error

// RankedMatch joins a match with the deadline of its grant so callers can
// apply the deterministic ordering.
type RankedMatch struct {
	Match    entities.Match
	Deadline time.Time
}

// TransitionAssignmentInput carries an assignment workflow move. The
// repository validates the transition against the current row under lock.
type TransitionAssignmentInput struct {
	Gate    Recheck
	OrgID   string
	GrantID string
	To      entities.AssignmentStatus
	Notes   string
	Now     time.Time
}

// Repository persists grants, matches, and assignments.
//
// UpsertMatch is keyed by (org, grant): an existing row keeps its match id,
// created-at, and user-viewed flag; score, factors, and matched-at are
// replaced. Mutations accept a Recheck gate that runs inside the same
// transaction or mutex hold as the write.
type Repository interface {
	UpsertGrant(ctx context.Context, grant entities.Grant) (entities.Grant, bool, error)
	GetGrant(ctx context.Context, grantID string) (entities.Grant, error)
	ListGrants(ctx context.Context) ([]entities.Grant, error)
	ListOpenGrants(ctx context.Context) ([]entities.Grant, error)
	SweepGrantStatuses(ctx context.Context, now time.Time, closingSoonWindow time.Duration) ([]entities.Grant, error)

	UpsertMatch(ctx context.Context, match entities.Match, gate Recheck) (entities.Match, error)
	GetMatch(ctx context.Context, orgID string, grantID string) (entities.Match, bool, error)
	ListRankedMatches(ctx context.Context, orgID string) ([]RankedMatch, error)
	MarkMatchViewed(ctx context.Context, orgID string, grantID string, now time.Time, gate Recheck) (entities.Match, error)

	CreateAssignment(ctx context.Context, assignment entities.Assignment, gate Recheck) (entities.Assignment, error)
	GetAssignment(ctx context.Context, orgID string, grantID string) (entities.Assignment, bool, error)
	ListAssignments(ctx context.Context, orgID string) ([]entities.Assignment, error)
	TransitionAssignment(ctx context.Context, input TransitionAssignmentInput) (entities.Assignment, error)
}

// OutboxRepository drains event rows written alongside match upserts.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error)
	MarkOutboxPublished(ctx context.Context, id string, at time.Time) error
	MarkOutboxFailed(ctx context.Context, id string) error
}

// EventPublisher pushes envelopes onto the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}
