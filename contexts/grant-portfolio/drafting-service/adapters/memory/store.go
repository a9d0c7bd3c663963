package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"grantstw/contexts/grant-portfolio/drafting-service/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/drafting-service/domain/errors"
	"grantstw/contexts/grant-portfolio/drafting-service/domain/services"
	"grantstw/contexts/grant-portfolio/drafting-service/ports"

	"github.com/google/uuid"
)

// Store is an in-memory adapter implementing the repository, directory,
// clock, and id generator ports. It is intended for tests and local
// development wiring. Mutations run under one mutex so the recheck gate and
// the version numbering observe the state the write applies to.
type Store struct {
	mu sync.RWMutex

	drafts   map[string]entities.Draft
	versions map[string]map[string]entities.DraftVersion
	orgs     map[string]services.OrgContext
	grants   map[string]services.GrantContext
}

func NewStore() *Store {
	return &Store{
		drafts:   make(map[string]entities.Draft),
		versions: make(map[string]map[string]entities.DraftVersion),
		orgs:     make(map[string]services.OrgContext),
		grants:   make(map[string]services.GrantContext),
	}
}

// Now implements ports.Clock.
func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

// NewID implements ports.IDGenerator.
func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// SeedOrgContext installs an organization projection for local wiring.
func (s *Store) SeedOrgContext(orgID string, org services.OrgContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[orgID] = org
}

// SeedGrantContext installs a grant projection for local wiring.
func (s *Store) SeedGrantContext(grantID string, grant services.GrantContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grantID] = grant
}

func (s *Store) GetOrgContext(_ context.Context, orgID string) (services.OrgContext, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.orgs[orgID]
	return org, ok, nil
}

func (s *Store) GetGrantContext(_ context.Context, grantID string) (services.GrantContext, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grant, ok := s.grants[grantID]
	return grant, ok, nil
}

func (s *Store) CreateDraft(ctx context.Context, draft entities.Draft, initial entities.DraftVersion, gate ports.Recheck) (entities.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gate != nil {
		if err := gate(ctx); err != nil {
			return entities.Draft{}, err
		}
	}
	if _, exists := s.drafts[draft.DraftID]; exists {
		return entities.Draft{}, domainerrors.ErrConflict
	}

	s.drafts[draft.DraftID] = draft
	s.versions[draft.DraftID] = map[string]entities.DraftVersion{
		initial.VersionID: initial,
	}
	return draft, nil
}

func (s *Store) GetDraft(_ context.Context, draftID string) (entities.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[draftID]
	if !ok {
		return entities.Draft{}, domainerrors.ErrDraftNotFound
	}
	return draft, nil
}

func (s *Store) ListDrafts(_ context.Context, orgID string) ([]entities.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []entities.Draft
	for _, draft := range s.drafts {
		if draft.OrgID == orgID {
			items = append(items, draft)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DraftID < items[j].DraftID })
	return items, nil
}

func (s *Store) AppendVersion(ctx context.Context, input ports.AppendVersionInput) (entities.DraftVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.Gate != nil {
		if err := input.Gate(ctx); err != nil {
			return entities.DraftVersion{}, err
		}
	}

	draft, ok := s.drafts[input.DraftID]
	if !ok {
		return entities.DraftVersion{}, domainerrors.ErrDraftNotFound
	}

	parentID := draft.CurrentVersionID
	if input.BasedOnVersionID != "" {
		if _, ok := s.versions[input.DraftID][input.BasedOnVersionID]; !ok {
			for _, rows := range s.versions {
				if _, found := rows[input.BasedOnVersionID]; found {
					return entities.DraftVersion{}, domainerrors.ErrCrossDraftVersion
				}
			}
			return entities.DraftVersion{}, domainerrors.ErrVersionNotFound
		}
		parentID = input.BasedOnVersionID
	}

	// Numbering continues from the maximum ever stored, so appending after
	// a rollback never reuses a number.
	maxNumber := 0
	for _, version := range s.versions[input.DraftID] {
		if version.VersionNumber > maxNumber {
			maxNumber = version.VersionNumber
		}
	}

	version := entities.DraftVersion{
		VersionID:       input.VersionID,
		DraftID:         input.DraftID,
		VersionNumber:   maxNumber + 1,
		ParentVersionID: parentID,
		Sections:        input.Sections,
		AuthorID:        input.AuthorID,
		Note:            input.Note,
		CreatedAt:       input.Now,
	}
	s.versions[input.DraftID][version.VersionID] = version

	draft.CurrentVersionID = version.VersionID
	draft.UpdatedAt = input.Now
	s.drafts[input.DraftID] = draft
	return version, nil
}

func (s *Store) GetVersion(_ context.Context, versionID string) (entities.DraftVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rows := range s.versions {
		if version, ok := rows[versionID]; ok {
			return version, nil
		}
	}
	return entities.DraftVersion{}, domainerrors.ErrVersionNotFound
}

func (s *Store) ListVersions(_ context.Context, draftID string) ([]entities.DraftVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.versions[draftID]
	items := make([]entities.DraftVersion, 0, len(rows))
	for _, version := range rows {
		items = append(items, version)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].VersionNumber < items[j].VersionNumber })
	return items, nil
}

func (s *Store) Rollback(ctx context.Context, input ports.RollbackInput) (entities.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.Gate != nil {
		if err := input.Gate(ctx); err != nil {
			return entities.Draft{}, err
		}
	}

	draft, ok := s.drafts[input.DraftID]
	if !ok {
		return entities.Draft{}, domainerrors.ErrDraftNotFound
	}
	if _, ok := s.versions[input.DraftID][input.VersionID]; !ok {
		return entities.Draft{}, domainerrors.ErrVersionNotFound
	}

	draft.CurrentVersionID = input.VersionID
	draft.UpdatedAt = input.Now
	s.drafts[input.DraftID] = draft
	return draft, nil
}

// CorruptVersionParent rewires a stored version's parent pointer. Test hook
// for exercising lineage corruption detection.
func (s *Store) CorruptVersionParent(draftID string, versionID string, parentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	version, ok := s.versions[draftID][versionID]
	if !ok {
		return
	}
	version.ParentVersionID = parentID
	s.versions[draftID][versionID] = version
}
