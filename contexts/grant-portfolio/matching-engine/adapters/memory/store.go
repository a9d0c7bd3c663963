package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"grantstw/contexts/grant-portfolio/matching-engine/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/matching-engine/domain/errors"
	"grantstw/contexts/grant-portfolio/matching-engine/domain/services"
	"grantstw/contexts/grant-portfolio/matching-engine/ports"
	"grantstw/internal/shared/events"
	"grantstw/internal/shared/outbox"

	"github.com/google/uuid"
)

// Store is an in-memory adapter implementing the repository, outbox, org
// directory, similarity index, clock, and id generator ports. It is intended
// for tests and local development wiring. Mutations run under one mutex so
// the recheck gate and invariant checks observe the state the write applies
// to.
type Store struct {
	mu sync.RWMutex

	grants      map[string]entities.Grant
	externalIDs map[string]string
	matches     map[string]map[string]entities.Match
	assignments map[string]map[string]entities.Assignment
	profiles    map[string]entities.OrgProfile
	outboxRows  []outbox.Message
}

func NewStore() *Store {
	return &Store{
		grants:      make(map[string]entities.Grant),
		externalIDs: make(map[string]string),
		matches:     make(map[string]map[string]entities.Match),
		assignments: make(map[string]map[string]entities.Assignment),
		profiles:    make(map[string]entities.OrgProfile),
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

// SeedOrgProfile installs an organization projection for local wiring.
func (s *Store) SeedOrgProfile(profile entities.OrgProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.OrgID] = profile
}

func (s *Store) GetOrgProfile(_ context.Context, orgID string) (entities.OrgProfile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[orgID]
	return profile, ok, nil
}

func (s *Store) ListOrgProfiles(_ context.Context) ([]entities.OrgProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.OrgProfile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		items = append(items, profile)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].OrgID < items[j].OrgID })
	return items, nil
}

func (s *Store) UpsertGrant(_ context.Context, grant entities.Grant) (entities.Grant, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existingID, ok := s.externalIDs[grant.ExternalID]
	if !ok {
		s.grants[grant.GrantID] = grant
		s.externalIDs[grant.ExternalID] = grant.GrantID
		return grant, true, nil
	}

	existing := s.grants[existingID]
	grant.GrantID = existing.GrantID
	grant.CreatedAt = existing.CreatedAt
	s.grants[existingID] = grant
	return grant, false, nil
}

func (s *Store) GetGrant(_ context.Context, grantID string) (entities.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grant, ok := s.grants[grantID]
	if !ok {
		return entities.Grant{}, domainerrors.ErrGrantNotFound
	}
	return grant, nil
}

func (s *Store) ListGrants(_ context.Context) ([]entities.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listGrantsLocked(false), nil
}

func (s *Store) ListOpenGrants(_ context.Context) ([]entities.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listGrantsLocked(true), nil
}

func (s *Store) listGrantsLocked(openOnly bool) []entities.Grant {
	items := make([]entities.Grant, 0, len(s.grants))
	for _, grant := range s.grants {
		if openOnly && grant.Status == entities.GrantClosed {
			continue
		}
		items = append(items, grant)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].GrantID < items[j].GrantID })
	return items
}

func (s *Store) SweepGrantStatuses(_ context.Context, now time.Time, closingSoonWindow time.Duration) ([]entities.Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []entities.Grant
	for id, grant := range s.grants {
		next := entities.StatusFor(grant.Deadline, now, closingSoonWindow)
		if next == grant.Status {
			continue
		}
		grant.Status = next
		grant.UpdatedAt = now
		s.grants[id] = grant
		changed = append(changed, grant)
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].GrantID < changed[j].GrantID })
	return changed, nil
}

// Nearest implements ports.SimilarityIndex with an exact scan over open
// grant vectors. Distance is one minus cosine similarity.
func (s *Store) Nearest(_ context.Context, vector []float32, k int) ([]ports.Neighbor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var neighbors []ports.Neighbor
	for _, grant := range s.grants {
		if grant.Status == entities.GrantClosed || len(grant.Embedding) == 0 {
			continue
		}
		neighbors = append(neighbors, ports.Neighbor{
			GrantID:  grant.GrantID,
			Distance: 1 - services.Cosine(vector, grant.Embedding),
		})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].GrantID < neighbors[j].GrantID
	})
	if k > 0 && len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

func (s *Store) UpsertMatch(ctx context.Context, match entities.Match, gate ports.Recheck) (entities.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gate != nil {
		if err := gate(ctx); err != nil {
			return entities.Match{}, err
		}
	}
	if _, ok := s.grants[match.GrantID]; !ok {
		return entities.Match{}, domainerrors.ErrGrantNotFound
	}

	rows := s.matches[match.OrgID]
	if rows == nil {
		rows = make(map[string]entities.Match)
		s.matches[match.OrgID] = rows
	}

	if existing, ok := rows[match.GrantID]; ok {
		match.MatchID = existing.MatchID
		match.CreatedAt = existing.CreatedAt
		match.UserViewed = existing.UserViewed
	}
	rows[match.GrantID] = match

	if err := s.appendMatchEventLocked(match); err != nil {
		return entities.Match{}, err
	}
	return match, nil
}

func (s *Store) GetMatch(_ context.Context, orgID string, grantID string) (entities.Match, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	match, ok := s.matches[orgID][grantID]
	return match, ok, nil
}

func (s *Store) ListRankedMatches(_ context.Context, orgID string) ([]ports.RankedMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.matches[orgID]
	items := make([]ports.RankedMatch, 0, len(rows))
	for grantID, match := range rows {
		items = append(items, ports.RankedMatch{
			Match:    match,
			Deadline: s.grants[grantID].Deadline,
		})
	}
	return items, nil
}

func (s *Store) MarkMatchViewed(ctx context.Context, orgID string, grantID string, now time.Time, gate ports.Recheck) (entities.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gate != nil {
		if err := gate(ctx); err != nil {
			return entities.Match{}, err
		}
	}

	match, ok := s.matches[orgID][grantID]
	if !ok {
		return entities.Match{}, domainerrors.ErrMatchNotFound
	}
	match.UserViewed = true
	match.UpdatedAt = now
	s.matches[orgID][grantID] = match
	return match, nil
}

func (s *Store) CreateAssignment(ctx context.Context, assignment entities.Assignment, gate ports.Recheck) (entities.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gate != nil {
		if err := gate(ctx); err != nil {
			return entities.Assignment{}, err
		}
	}

	rows := s.assignments[assignment.OrgID]
	if rows == nil {
		rows = make(map[string]entities.Assignment)
		s.assignments[assignment.OrgID] = rows
	}
	if _, ok := rows[assignment.GrantID]; ok {
		return entities.Assignment{}, domainerrors.ErrAssignmentExists
	}
	rows[assignment.GrantID] = assignment
	return assignment, nil
}

func (s *Store) GetAssignment(_ context.Context, orgID string, grantID string) (entities.Assignment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assignment, ok := s.assignments[orgID][grantID]
	return assignment, ok, nil
}

func (s *Store) ListAssignments(_ context.Context, orgID string) ([]entities.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.assignments[orgID]
	items := make([]entities.Assignment, 0, len(rows))
	for _, assignment := range rows {
		items = append(items, assignment)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].GrantID < items[j].GrantID })
	return items, nil
}

func (s *Store) TransitionAssignment(ctx context.Context, input ports.TransitionAssignmentInput) (entities.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.Gate != nil {
		if err := input.Gate(ctx); err != nil {
			return entities.Assignment{}, err
		}
	}

	assignment, ok := s.assignments[input.OrgID][input.GrantID]
	if !ok {
		return entities.Assignment{}, domainerrors.ErrAssignmentNotFound
	}
	if !entities.CanTransition(assignment.Status, input.To) {
		return entities.Assignment{}, domainerrors.ErrInvalidTransition
	}

	assignment.Status = input.To
	if input.Notes != "" {
		assignment.Notes = input.Notes
	}
	assignment.UpdatedAt = input.Now
	s.assignments[input.OrgID][input.GrantID] = assignment
	return assignment, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]outbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]outbox.Message, 0, limit)
	for _, row := range s.outboxRows {
		if row.Status != outbox.StatusPending {
			continue
		}
		items = append(items, row)
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, row := range s.outboxRows {
		if row.ID == id {
			s.outboxRows[i].Status = outbox.StatusPublished
			s.outboxRows[i].PublishedAt = &at
			return nil
		}
	}
	return nil
}

func (s *Store) MarkOutboxFailed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, row := range s.outboxRows {
		if row.ID == id {
			s.outboxRows[i].Status = outbox.StatusFailed
			s.outboxRows[i].RetryCount++
			return nil
		}
	}
	return nil
}

// appendMatchEventLocked writes the match.updated envelope in the same
// critical section as the match row.
func (s *Store) appendMatchEventLocked(match entities.Match) error {
	envelope := events.Envelope{
		EventID:        uuid.NewString(),
		EventType:      "match.updated",
		SourceService:  "grant-portfolio/matching-engine",
		OccurredAtUTC:  match.MatchedAt,
		EntityType:     "match",
		EntityID:       match.MatchID,
		PayloadVersion: 1,
		Payload:        match,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.outboxRows = append(s.outboxRows, outbox.Message{
		ID:         envelope.EventID,
		EventType:  envelope.EventType,
		EntityType: envelope.EntityType,
		EntityID:   envelope.EntityID,
		Payload:    payload,
		Status:     outbox.StatusPending,
		CreatedAt:  match.MatchedAt,
	})
	return nil
}
