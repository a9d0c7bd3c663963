package ports

import (
	"context"
	"time"

	"grantstw/contexts/grant-portfolio/drafting-service/domain/entities"
	"grantstw/contexts/grant-portfolio/drafting-service/domain/services"
)

// Clock abstracts current time for deterministic tests.
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

// OrganizationDirectory reads the composer's organization context from the
// membership projection.
type OrganizationDirectory interface {
	GetOrgContext(ctx context.Context, orgID string) (services.OrgContext, bool, error)
}

// GrantDirectory reads the composer's grant context from the matching
// engine's catalog projection.
type GrantDirectory interface {
	GetGrantContext(ctx context.Context, grantID string) (services.GrantContext, bool, error)
}

// Recheck re-verifies the acting membership inside the adapter's critical
// section, after the application layer has already authorized the request.
type Recheck func(ctx context.Context) error

// AppendVersionInput adds one snapshot to a draft's history. The repository
// assigns the version number (max existing plus one) inside its transaction,
// then moves the head. The parent pointer is the draft's current version
// unless BasedOnVersionID names an earlier version of the same draft; a
// version from another draft is rejected.
type AppendVersionInput struct {
	Gate             Recheck
	VersionID        string
	DraftID          string
	BasedOnVersionID string
	Sections         entities.DraftSections
	AuthorID         string
	Note             string
	Now              time.Time
}

// RollbackInput moves a draft's head to an earlier version. History is not
// rewritten; only the pointer moves.
type RollbackInput struct {
	Gate      Recheck
	DraftID   string
	VersionID string
	Now       time.Time
}

// Repository persists drafts and their version lineage.
type Repository interface {
	CreateDraft(ctx context.Context, draft entities.Draft, initial entities.DraftVersion, gate Recheck) (entities.Draft, error)
	GetDraft(ctx context.Context, draftID string) (entities.Draft, error)
	ListDrafts(ctx context.Context, orgID string) ([]entities.Draft, error)
	AppendVersion(ctx context.Context, input AppendVersionInput) (entities.DraftVersion, error)
	GetVersion(ctx context.Context, versionID string) (entities.DraftVersion, error)
	ListVersions(ctx context.Context, draftID string) ([]entities.DraftVersion, error)
	Rollback(ctx context.Context, input RollbackInput) (entities.Draft, error)
}
