package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"grantstw/contexts/grant-portfolio/matching-engine/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/matching-engine/domain/errors"
	"grantstw/contexts/grant-portfolio/matching-engine/ports"
	"grantstw/internal/shared/events"
	"grantstw/internal/shared/outbox"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) UpsertGrant(ctx context.Context, grant entities.Grant) (entities.Grant, bool, error) {
	row, err := grantModelFromEntity(grant)
	if err != nil {
		return entities.Grant{}, false, err
	}

	var (
		result  entities.Grant
		created bool
	)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing grantModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_id = ?", row.ExternalID).
			First(&existing).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return domainerrors.ErrConflict
				}
				return err
			}
			created = true
			result, err = row.toEntity()
			return err
		}
		if err != nil {
			return err
		}

		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		if err := tx.Model(&grantModel{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"name":        row.Name,
				"funder":      row.Funder,
				"description": row.Description,
				"tags":        row.Tags,
				"region":      row.Region,
				"amount_min":  row.AmountMin,
				"amount_max":  row.AmountMax,
				"deadline":    row.Deadline,
				"status":      row.Status,
				"embedding":   row.Embedding,
				"source_url":  row.SourceURL,
				"updated_at":  row.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		result, err = row.toEntity()
		return err
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			return entities.Grant{}, false, err
		}
		return entities.Grant{}, false, r.logError("match_repo_upsert_grant_failed", err,
			"external_id", grant.ExternalID,
		)
	}
	return result, created, nil
}

func (r *Repository) GetGrant(ctx context.Context, grantID string) (entities.Grant, error) {
	var row grantModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(grantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Grant{}, domainerrors.ErrGrantNotFound
		}
		return entities.Grant{}, r.logError("match_repo_get_grant_failed", err, "grant_id", grantID)
	}
	return row.toEntity()
}

func (r *Repository) ListGrants(ctx context.Context) ([]entities.Grant, error) {
	return r.listGrants(ctx, false)
}

func (r *Repository) ListOpenGrants(ctx context.Context) ([]entities.Grant, error) {
	return r.listGrants(ctx, true)
}

func (r *Repository) listGrants(ctx context.Context, openOnly bool) ([]entities.Grant, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if openOnly {
		query = query.Where("status <> ?", string(entities.GrantClosed))
	}
	var rows []grantModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.logError("match_repo_list_grants_failed", err)
	}
	items := make([]entities.Grant, 0, len(rows))
	for _, row := range rows {
		grant, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, grant)
	}
	return items, nil
}

func (r *Repository) SweepGrantStatuses(ctx context.Context, now time.Time, closingSoonWindow time.Duration) ([]entities.Grant, error) {
	var changed []entities.Grant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Closed is terminal under sweeping; re-ingest is the only path back.
		var rows []grantModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status <> ?", string(entities.GrantClosed)).
			Order("id ASC").
			Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			next := entities.StatusFor(row.Deadline, now, closingSoonWindow)
			if string(next) == row.Status {
				continue
			}
			if err := tx.Model(&grantModel{}).
				Where("id = ?", row.ID).
				Updates(map[string]any{
					"status":     string(next),
					"updated_at": now.UTC(),
				}).Error; err != nil {
				return err
			}
			row.Status = string(next)
			row.UpdatedAt = now.UTC()
			grant, err := row.toEntity()
			if err != nil {
				return err
			}
			changed = append(changed, grant)
		}
		return nil
	})
	if err != nil {
		return nil, r.logError("match_repo_sweep_grants_failed", err)
	}
	return changed, nil
}

func (r *Repository) UpsertMatch(ctx context.Context, match entities.Match, gate ports.Recheck) (entities.Match, error) {
	var result entities.Match
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if gate != nil {
			if err := gate(ctx); err != nil {
				return err
			}
		}

		var grantCount int64
		if err := tx.Model(&grantModel{}).
			Where("id = ?", match.GrantID).
			Count(&grantCount).Error; err != nil {
			return err
		}
		if grantCount == 0 {
			return domainerrors.ErrGrantNotFound
		}

		row, err := matchModelFromEntity(match)
		if err != nil {
			return err
		}

		var existing matchModel
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("org_id = ?", match.OrgID).
			Where("grant_id = ?", match.GrantID).
			First(&existing).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return domainerrors.ErrConflict
				}
				return err
			}
			result, err = row.toEntity()
			if err != nil {
				return err
			}
			return appendMatchEventTx(tx, result)
		}
		if err != nil {
			return err
		}

		// Updates keep the row identity and the sticky viewed flag.
		if err := tx.Model(&matchModel{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"score":      row.Score,
				"factors":    row.Factors,
				"matched_at": row.MatchedAt,
				"updated_at": row.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		existing.Score = row.Score
		existing.Factors = row.Factors
		existing.MatchedAt = row.MatchedAt
		existing.UpdatedAt = row.UpdatedAt
		result, err = existing.toEntity()
		if err != nil {
			return err
		}
		return appendMatchEventTx(tx, result)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPermissionDenied) ||
			errors.Is(err, domainerrors.ErrGrantNotFound) ||
			errors.Is(err, domainerrors.ErrConflict) {
			return entities.Match{}, err
		}
		return entities.Match{}, r.logError("match_repo_upsert_match_failed", err,
			"org_id", match.OrgID,
			"grant_id", match.GrantID,
		)
	}
	return result, nil
}

func (r *Repository) GetMatch(ctx context.Context, orgID string, grantID string) (entities.Match, bool, error) {
	var row matchModel
	err := r.db.WithContext(ctx).
		Where("org_id = ?", strings.TrimSpace(orgID)).
		Where("grant_id = ?", strings.TrimSpace(grantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Match{}, false, nil
		}
		return entities.Match{}, false, r.logError("match_repo_get_match_failed", err,
			"org_id", orgID,
			"grant_id", grantID,
		)
	}
	match, err := row.toEntity()
	if err != nil {
		return entities.Match{}, false, err
	}
	return match, true, nil
}

func (r *Repository) ListRankedMatches(ctx context.Context, orgID string) ([]ports.RankedMatch, error) {
	var rows []matchModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", strings.TrimSpace(orgID)).
		Find(&rows).Error; err != nil {
		return nil, r.logError("match_repo_list_matches_failed", err, "org_id", orgID)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	grantIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		grantIDs = append(grantIDs, row.GrantID)
	}
	var grants []grantModel
	if err := r.db.WithContext(ctx).
		Select("id", "deadline").
		Where("id IN ?", grantIDs).
		Find(&grants).Error; err != nil {
		return nil, r.logError("match_repo_list_match_grants_failed", err, "org_id", orgID)
	}
	deadlines := make(map[string]time.Time, len(grants))
	for _, grant := range grants {
		deadlines[grant.ID] = grant.Deadline
	}

	items := make([]ports.RankedMatch, 0, len(rows))
	for _, row := range rows {
		match, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, ports.RankedMatch{
			Match:    match,
			Deadline: deadlines[row.GrantID],
		})
	}
	return items, nil
}

func (r *Repository) MarkMatchViewed(ctx context.Context, orgID string, grantID string, now time.Time, gate ports.Recheck) (entities.Match, error) {
	var result entities.Match
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if gate != nil {
			if err := gate(ctx); err != nil {
				return err
			}
		}

		var row matchModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("org_id = ?", orgID).
			Where("grant_id = ?", grantID).
			First(&row).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrMatchNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&matchModel{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{
				"user_viewed": true,
				"updated_at":  now.UTC(),
			}).Error; err != nil {
			return err
		}
		row.UserViewed = true
		row.UpdatedAt = now.UTC()
		result, err = row.toEntity()
		return err
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPermissionDenied) ||
			errors.Is(err, domainerrors.ErrMatchNotFound) {
			return entities.Match{}, err
		}
		return entities.Match{}, r.logError("match_repo_mark_viewed_failed", err,
			"org_id", orgID,
			"grant_id", grantID,
		)
	}
	return result, nil
}

func (r *Repository) CreateAssignment(ctx context.Context, assignment entities.Assignment, gate ports.Recheck) (entities.Assignment, error) {
	row := assignmentModelFromEntity(assignment)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if gate != nil {
			if err := gate(ctx); err != nil {
				return err
			}
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAssignmentExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPermissionDenied) ||
			errors.Is(err, domainerrors.ErrAssignmentExists) {
			return entities.Assignment{}, err
		}
		return entities.Assignment{}, r.logError("match_repo_create_assignment_failed", err,
			"org_id", assignment.OrgID,
			"grant_id", assignment.GrantID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetAssignment(ctx context.Context, orgID string, grantID string) (entities.Assignment, bool, error) {
	var row assignmentModel
	err := r.db.WithContext(ctx).
		Where("org_id = ?", strings.TrimSpace(orgID)).
		Where("grant_id = ?", strings.TrimSpace(grantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Assignment{}, false, nil
		}
		return entities.Assignment{}, false, r.logError("match_repo_get_assignment_failed", err,
			"org_id", orgID,
			"grant_id", grantID,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListAssignments(ctx context.Context, orgID string) ([]entities.Assignment, error) {
	var rows []assignmentModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", strings.TrimSpace(orgID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("match_repo_list_assignments_failed", err, "org_id", orgID)
	}
	items := make([]entities.Assignment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) TransitionAssignment(ctx context.Context, input ports.TransitionAssignmentInput) (entities.Assignment, error) {
	var result entities.Assignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.Gate != nil {
			if err := input.Gate(ctx); err != nil {
				return err
			}
		}

		var row assignmentModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("org_id = ?", input.OrgID).
			Where("grant_id = ?", input.GrantID).
			First(&row).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrAssignmentNotFound
		}
		if err != nil {
			return err
		}

		if !entities.CanTransition(entities.AssignmentStatus(row.Status), input.To) {
			return domainerrors.ErrInvalidTransition
		}

		updates := map[string]any{
			"status":     string(input.To),
			"updated_at": input.Now.UTC(),
		}
		if input.Notes != "" {
			updates["notes"] = input.Notes
			row.Notes = input.Notes
		}
		if err := tx.Model(&assignmentModel{}).
			Where("id = ?", row.ID).
			Updates(updates).Error; err != nil {
			return err
		}
		row.Status = string(input.To)
		row.UpdatedAt = input.Now.UTC()
		result = row.toEntity()
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPermissionDenied) ||
			errors.Is(err, domainerrors.ErrAssignmentNotFound) ||
			errors.Is(err, domainerrors.ErrInvalidTransition) {
			return entities.Assignment{}, err
		}
		return entities.Assignment{}, r.logError("match_repo_transition_assignment_failed", err,
			"org_id", input.OrgID,
			"grant_id", input.GrantID,
		)
	}
	return result, nil
}

// GetOrgProfile reads the organizations projection owned by the membership
// context. Columns are read-only here.
func (r *Repository) GetOrgProfile(ctx context.Context, orgID string) (entities.OrgProfile, bool, error) {
	var row orgProfileModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(orgID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.OrgProfile{}, false, nil
		}
		return entities.OrgProfile{}, false, r.logError("match_repo_get_org_profile_failed", err, "org_id", orgID)
	}
	profile, err := row.toEntity()
	if err != nil {
		return entities.OrgProfile{}, false, err
	}
	return profile, true, nil
}

func (r *Repository) ListOrgProfiles(ctx context.Context) ([]entities.OrgProfile, error) {
	var rows []orgProfileModel
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("match_repo_list_org_profiles_failed", err)
	}
	items := make([]entities.OrgProfile, 0, len(rows))
	for _, row := range rows {
		profile, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, profile)
	}
	return items, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("match_repo_list_outbox_failed", err)
	}
	items := make([]outbox.Message, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toMessage())
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": at.UTC(),
		}).Error
	if err != nil {
		return r.logError("match_repo_mark_outbox_published_failed", err, "outbox_id", id)
	}
	return nil
}

func (r *Repository) MarkOutboxFailed(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      outbox.StatusFailed,
			"retry_count": gorm.Expr("retry_count + 1"),
		}).Error
	if err != nil {
		return r.logError("match_repo_mark_outbox_failed_failed", err, "outbox_id", id)
	}
	return nil
}

// appendMatchEventTx writes the match.updated envelope inside the same
// transaction as the match row.
func appendMatchEventTx(tx *gorm.DB, match entities.Match) error {
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
	return tx.Create(&outboxModel{
		ID:         envelope.EventID,
		EventType:  envelope.EventType,
		EntityType: envelope.EntityType,
		EntityID:   envelope.EntityID,
		Payload:    datatypes.JSON(payload),
		Status:     outbox.StatusPending,
		CreatedAt:  match.MatchedAt.UTC(),
	}).Error
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "grant-portfolio/matching-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("matching repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type grantModel struct {
	ID          string         `gorm:"column:id;primaryKey"`
	ExternalID  string         `gorm:"column:external_id;uniqueIndex"`
	Name        string         `gorm:"column:name"`
	Funder      string         `gorm:"column:funder"`
	Description string         `gorm:"column:description"`
	Tags        datatypes.JSON `gorm:"column:tags"`
	Region      string         `gorm:"column:region"`
	AmountMin   string         `gorm:"column:amount_min"`
	AmountMax   string         `gorm:"column:amount_max"`
	Deadline    time.Time      `gorm:"column:deadline"`
	Status      string         `gorm:"column:status"`
	Embedding   datatypes.JSON `gorm:"column:embedding"`
	SourceURL   string         `gorm:"column:source_url"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (grantModel) TableName() string {
	return "grants"
}

func grantModelFromEntity(grant entities.Grant) (grantModel, error) {
	tags, err := json.Marshal(grant.Tags)
	if err != nil {
		return grantModel{}, err
	}
	embedding, err := json.Marshal(grant.Embedding)
	if err != nil {
		return grantModel{}, err
	}
	return grantModel{
		ID:          strings.TrimSpace(grant.GrantID),
		ExternalID:  strings.TrimSpace(grant.ExternalID),
		Name:        grant.Name,
		Funder:      grant.Funder,
		Description: grant.Description,
		Tags:        datatypes.JSON(tags),
		Region:      grant.Region,
		AmountMin:   grant.AmountMin,
		AmountMax:   grant.AmountMax,
		Deadline:    grant.Deadline.UTC(),
		Status:      string(grant.Status),
		Embedding:   datatypes.JSON(embedding),
		SourceURL:   grant.SourceURL,
		CreatedAt:   grant.CreatedAt.UTC(),
		UpdatedAt:   grant.UpdatedAt.UTC(),
	}, nil
}

func (m grantModel) toEntity() (entities.Grant, error) {
	var tags []string
	if len(m.Tags) > 0 {
		if err := json.Unmarshal(m.Tags, &tags); err != nil {
			return entities.Grant{}, err
		}
	}
	var embedding []float32
	if len(m.Embedding) > 0 {
		if err := json.Unmarshal(m.Embedding, &embedding); err != nil {
			return entities.Grant{}, err
		}
	}
	return entities.Grant{
		GrantID:     m.ID,
		ExternalID:  m.ExternalID,
		Name:        m.Name,
		Funder:      m.Funder,
		Description: m.Description,
		Tags:        tags,
		Region:      m.Region,
		AmountMin:   m.AmountMin,
		AmountMax:   m.AmountMax,
		Deadline:    m.Deadline,
		Status:      entities.GrantStatus(m.Status),
		Embedding:   embedding,
		SourceURL:   m.SourceURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

type matchModel struct {
	ID         string         `gorm:"column:id;primaryKey"`
	OrgID      string         `gorm:"column:org_id;uniqueIndex:idx_matches_org_grant"`
	GrantID    string         `gorm:"column:grant_id;uniqueIndex:idx_matches_org_grant"`
	Score      float64        `gorm:"column:score"`
	Factors    datatypes.JSON `gorm:"column:factors"`
	UserViewed bool           `gorm:"column:user_viewed"`
	MatchedAt  time.Time      `gorm:"column:matched_at"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
}

func (matchModel) TableName() string {
	return "grant_matches"
}

func matchModelFromEntity(match entities.Match) (matchModel, error) {
	factors, err := json.Marshal(match.Factors)
	if err != nil {
		return matchModel{}, err
	}
	return matchModel{
		ID:         strings.TrimSpace(match.MatchID),
		OrgID:      strings.TrimSpace(match.OrgID),
		GrantID:    strings.TrimSpace(match.GrantID),
		Score:      match.Score,
		Factors:    datatypes.JSON(factors),
		UserViewed: match.UserViewed,
		MatchedAt:  match.MatchedAt.UTC(),
		CreatedAt:  match.CreatedAt.UTC(),
		UpdatedAt:  match.UpdatedAt.UTC(),
	}, nil
}

func (m matchModel) toEntity() (entities.Match, error) {
	var factors entities.AlignmentFactors
	if len(m.Factors) > 0 {
		if err := json.Unmarshal(m.Factors, &factors); err != nil {
			return entities.Match{}, err
		}
	}
	return entities.Match{
		MatchID:    m.ID,
		OrgID:      m.OrgID,
		GrantID:    m.GrantID,
		Score:      m.Score,
		Factors:    factors,
		UserViewed: m.UserViewed,
		MatchedAt:  m.MatchedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}

type assignmentModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	OrgID     string    `gorm:"column:org_id;uniqueIndex:idx_assignments_org_grant"`
	GrantID   string    `gorm:"column:grant_id;uniqueIndex:idx_assignments_org_grant"`
	Status    string    `gorm:"column:status"`
	Notes     string    `gorm:"column:notes"`
	CreatedBy string    `gorm:"column:created_by"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (assignmentModel) TableName() string {
	return "grant_assignments"
}

func assignmentModelFromEntity(assignment entities.Assignment) assignmentModel {
	return assignmentModel{
		ID:        strings.TrimSpace(assignment.AssignmentID),
		OrgID:     strings.TrimSpace(assignment.OrgID),
		GrantID:   strings.TrimSpace(assignment.GrantID),
		Status:    string(assignment.Status),
		Notes:     assignment.Notes,
		CreatedBy: assignment.CreatedBy,
		CreatedAt: assignment.CreatedAt.UTC(),
		UpdatedAt: assignment.UpdatedAt.UTC(),
	}
}

func (m assignmentModel) toEntity() entities.Assignment {
	return entities.Assignment{
		AssignmentID: m.ID,
		OrgID:        m.OrgID,
		GrantID:      m.GrantID,
		Status:       entities.AssignmentStatus(m.Status),
		Notes:        m.Notes,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type orgProfileModel struct {
	ID           string         `gorm:"column:id;primaryKey"`
	Name         string         `gorm:"column:name"`
	FocusTags    datatypes.JSON `gorm:"column:focus_tags"`
	FitEmbedding datatypes.JSON `gorm:"column:fit_embedding"`
}

func (orgProfileModel) TableName() string {
	return "organizations"
}

func (m orgProfileModel) toEntity() (entities.OrgProfile, error) {
	var tags []string
	if len(m.FocusTags) > 0 {
		if err := json.Unmarshal(m.FocusTags, &tags); err != nil {
			return entities.OrgProfile{}, err
		}
	}
	var embedding []float32
	if len(m.FitEmbedding) > 0 {
		if err := json.Unmarshal(m.FitEmbedding, &embedding); err != nil {
			return entities.OrgProfile{}, err
		}
	}
	return entities.OrgProfile{
		OrgID:        m.ID,
		Name:         m.Name,
		FocusTags:    tags,
		FitEmbedding: embedding,
	}, nil
}

type outboxModel struct {
	ID          string         `gorm:"column:id;primaryKey"`
	EventType   string         `gorm:"column:event_type"`
	EntityType  string         `gorm:"column:entity_type"`
	EntityID    string         `gorm:"column:entity_id"`
	Payload     datatypes.JSON `gorm:"column:payload"`
	Status      string         `gorm:"column:status;index"`
	RetryCount  int            `gorm:"column:retry_count"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	PublishedAt *time.Time     `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "match_outbox"
}

func (m outboxModel) toMessage() outbox.Message {
	return outbox.Message{
		ID:          m.ID,
		EventType:   m.EventType,
		EntityType:  m.EntityType,
		EntityID:    m.EntityID,
		Payload:     []byte(m.Payload),
		Status:      m.Status,
		RetryCount:  m.RetryCount,
		CreatedAt:   m.CreatedAt,
		PublishedAt: m.PublishedAt,
	}
}
