package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"grantstw/contexts/identity-access/membership-service/domain/entities"
	domainerrors "grantstw/contexts/identity-access/membership-service/domain/errors"
	"grantstw/contexts/identity-access/membership-service/ports"

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

func (r *Repository) CreateOrganizationWithOwner(ctx context.Context, input ports.CreateOrganizationInput) error {
	orgRow, err := organizationModelFromEntity(input.Organization)
	if err != nil {
		return err
	}
	memberRow := membershipModelFromEntity(input.OwnerMembership)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&orgRow).Error; err != nil {
			return err
		}
		return tx.Create(&memberRow).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrOrganizationExists
		}
		return r.logError("membership_repo_create_org_failed", err,
			"org_id", input.Organization.OrgID,
			"registry_key", input.Organization.RegistryKey,
		)
	}
	return nil
}

func (r *Repository) GetOrganization(ctx context.Context, orgID string) (entities.Organization, error) {
	var row organizationModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(orgID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Organization{}, domainerrors.ErrOrganizationNotFound
		}
		return entities.Organization{}, r.logError("membership_repo_get_org_failed", err, "org_id", orgID)
	}
	return row.toEntity()
}

func (r *Repository) ListOrganizations(ctx context.Context) ([]entities.Organization, error) {
	var rows []organizationModel
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("membership_repo_list_orgs_failed", err)
	}
	items := make([]entities.Organization, 0, len(rows))
	for _, row := range rows {
		organization, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, organization)
	}
	return items, nil
}

func (r *Repository) GetMembership(ctx context.Context, orgID string, actorID string) (entities.Membership, bool, error) {
	var row membershipModel
	err := r.db.WithContext(ctx).
		Where("org_id = ?", strings.TrimSpace(orgID)).
		Where("actor_id = ?", strings.TrimSpace(actorID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Membership{}, false, nil
		}
		return entities.Membership{}, false, r.logError("membership_repo_get_membership_failed", err,
			"org_id", orgID,
			"actor_id", actorID,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListMemberships(ctx context.Context, orgID string) ([]entities.Membership, error) {
	var rows []membershipModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", strings.TrimSpace(orgID)).
		Order("actor_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("membership_repo_list_memberships_failed", err, "org_id", orgID)
	}
	items := make([]entities.Membership, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpsertInvite(ctx context.Context, input ports.InviteInput) (entities.Membership, error) {
	var result entities.Membership
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.checkGateTx(tx, input.OrgID, input.Gate); err != nil {
			return err
		}

		var row membershipModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("org_id = ?", input.OrgID).
			Where("actor_id = ?", input.TargetActorID).
			First(&row).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = membershipModel{
				ID:        input.MembershipID,
				OrgID:     input.OrgID,
				ActorID:   input.TargetActorID,
				Role:      string(input.Role),
				Status:    string(entities.MembershipInvited),
				InvitedBy: input.InvitedBy,
				CreatedAt: input.Now.UTC(),
				UpdatedAt: input.Now.UTC(),
			}
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					// Concurrent invite for the same pair; the unique index on
					// (org_id, actor_id) keeps one row per pair.
					return domainerrors.ErrMembershipNotFound
				}
				return err
			}
			result = row.toEntity()
			return nil
		}
		if err != nil {
			return err
		}

		if row.Role == string(entities.RoleOwner) &&
			row.Status == string(entities.MembershipActive) &&
			input.Role != entities.RoleOwner {
			var others int64
			if err := tx.Model(&membershipModel{}).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("org_id = ?", input.OrgID).
				Where("actor_id <> ?", input.TargetActorID).
				Where("role = ?", string(entities.RoleOwner)).
				Where("status = ?", string(entities.MembershipActive)).
				Count(&others).Error; err != nil {
				return err
			}
			if others == 0 {
				return domainerrors.ErrLastOwner
			}
		}

		updates := map[string]any{
			"role":       string(input.Role),
			"invited_by": input.InvitedBy,
			"updated_at": input.Now.UTC(),
		}
		if row.Status == string(entities.MembershipSuspended) {
			updates["status"] = string(entities.MembershipInvited)
			row.Status = string(entities.MembershipInvited)
		}
		if err := tx.Model(&membershipModel{}).
			Where("id = ?", row.ID).
			Updates(updates).Error; err != nil {
			return err
		}
		row.Role = string(input.Role)
		row.InvitedBy = input.InvitedBy
		row.UpdatedAt = input.Now.UTC()
		result = row.toEntity()
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPermissionDenied) ||
			errors.Is(err, domainerrors.ErrMembershipNotFound) ||
			errors.Is(err, domainerrors.ErrLastOwner) {
			return entities.Membership{}, err
		}
		return entities.Membership{}, r.logError("membership_repo_upsert_invite_failed", err,
			"org_id", input.OrgID,
			"target_actor_id", input.TargetActorID,
		)
	}
	return result, nil
}

func (r *Repository) SetMembershipStatus(ctx context.Context, input ports.SetStatusInput) (entities.Membership, error) {
	var result entities.Membership
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.checkGateTx(tx, input.OrgID, input.Gate); err != nil {
			return err
		}

		var row membershipModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("org_id = ?", input.OrgID).
			Where("actor_id = ?", input.TargetActorID).
			First(&row).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrMembershipNotFound
		}
		if err != nil {
			return err
		}

		if row.Role == string(entities.RoleOwner) &&
			row.Status == string(entities.MembershipActive) &&
			input.Status != entities.MembershipActive {
			// Lock the sibling owner rows so two concurrent demotions cannot
			// both observe another active owner.
			var others int64
			if err := tx.Model(&membershipModel{}).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("org_id = ?", input.OrgID).
				Where("actor_id <> ?", input.TargetActorID).
				Where("role = ?", string(entities.RoleOwner)).
				Where("status = ?", string(entities.MembershipActive)).
				Count(&others).Error; err != nil {
				return err
			}
			if others == 0 {
				return domainerrors.ErrLastOwner
			}
		}

		if err := tx.Model(&membershipModel{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{
				"status":     string(input.Status),
				"updated_at": input.Now.UTC(),
			}).Error; err != nil {
			return err
		}
		row.Status = string(input.Status)
		row.UpdatedAt = input.Now.UTC()
		result = row.toEntity()
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPermissionDenied) ||
			errors.Is(err, domainerrors.ErrMembershipNotFound) ||
			errors.Is(err, domainerrors.ErrLastOwner) {
			return entities.Membership{}, err
		}
		return entities.Membership{}, r.logError("membership_repo_set_status_failed", err,
			"org_id", input.OrgID,
			"target_actor_id", input.TargetActorID,
		)
	}
	return result, nil
}

func (r *Repository) UpdateFitProfile(ctx context.Context, input ports.FitProfileInput) (entities.Organization, error) {
	var result entities.Organization
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.checkGateTx(tx, input.OrgID, input.Gate); err != nil {
			return err
		}

		var row organizationModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", input.OrgID).
			First(&row).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrOrganizationNotFound
		}
		if err != nil {
			return err
		}

		embedding, err := json.Marshal(input.Embedding)
		if err != nil {
			return err
		}
		if err := tx.Model(&organizationModel{}).
			Where("id = ?", input.OrgID).
			Updates(map[string]any{
				"fit_summary":    input.Summary,
				"fit_embedding":  datatypes.JSON(embedding),
				"fit_updated_at": input.Now.UTC(),
				"updated_at":     input.Now.UTC(),
			}).Error; err != nil {
			return err
		}
		row.FitSummary = input.Summary
		row.FitEmbedding = datatypes.JSON(embedding)
		row.FitUpdatedAt = input.Now.UTC()
		row.UpdatedAt = input.Now.UTC()
		result, err = row.toEntity()
		return err
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPermissionDenied) ||
			errors.Is(err, domainerrors.ErrOrganizationNotFound) {
			return entities.Organization{}, err
		}
		return entities.Organization{}, r.logError("membership_repo_update_fit_failed", err, "org_id", input.OrgID)
	}
	return result, nil
}

// checkGateTx re-verifies the acting membership inside the write transaction.
func (r *Repository) checkGateTx(tx *gorm.DB, orgID string, gate ports.RoleGate) error {
	if gate.PlatformAdmin {
		return nil
	}
	var row membershipModel
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
		Where("org_id = ?", orgID).
		Where("actor_id = ?", gate.ActorID).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainerrors.ErrPermissionDenied
	}
	if err != nil {
		return err
	}
	if row.Status != string(entities.MembershipActive) {
		return domainerrors.ErrPermissionDenied
	}
	if !entities.RoleAllowed(entities.Role(row.Role), gate.AllowedRoles) {
		return domainerrors.ErrPermissionDenied
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "identity-access/membership-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("membership repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type organizationModel struct {
	ID             string         `gorm:"column:id;primaryKey"`
	RegistryKey    string         `gorm:"column:registry_key;uniqueIndex"`
	Name           string         `gorm:"column:name"`
	Region         string         `gorm:"column:region"`
	Mission        string         `gorm:"column:mission"`
	FocusTags      datatypes.JSON `gorm:"column:focus_tags"`
	AnnualBudget   string         `gorm:"column:annual_budget"`
	FitSummary     string         `gorm:"column:fit_summary"`
	FitEmbedding   datatypes.JSON `gorm:"column:fit_embedding"`
	FitUpdatedAt   time.Time      `gorm:"column:fit_updated_at"`
	VoiceTone      string         `gorm:"column:voice_tone"`
	VoiceEmbedding datatypes.JSON `gorm:"column:voice_embedding"`
	VoiceUpdatedAt time.Time      `gorm:"column:voice_updated_at"`
	CreatedBy      string         `gorm:"column:created_by"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
}

func (organizationModel) TableName() string {
	return "organizations"
}

func organizationModelFromEntity(organization entities.Organization) (organizationModel, error) {
	tags, err := json.Marshal(organization.FocusTags)
	if err != nil {
		return organizationModel{}, err
	}
	fitEmbedding, err := json.Marshal(organization.Fit.Embedding)
	if err != nil {
		return organizationModel{}, err
	}
	voiceEmbedding, err := json.Marshal(organization.Voice.Embedding)
	if err != nil {
		return organizationModel{}, err
	}
	return organizationModel{
		ID:             strings.TrimSpace(organization.OrgID),
		RegistryKey:    strings.TrimSpace(organization.RegistryKey),
		Name:           organization.Name,
		Region:         organization.Region,
		Mission:        organization.Mission,
		FocusTags:      datatypes.JSON(tags),
		AnnualBudget:   organization.AnnualBudget,
		FitSummary:     organization.Fit.Summary,
		FitEmbedding:   datatypes.JSON(fitEmbedding),
		FitUpdatedAt:   organization.Fit.UpdatedAt.UTC(),
		VoiceTone:      organization.Voice.Tone,
		VoiceEmbedding: datatypes.JSON(voiceEmbedding),
		VoiceUpdatedAt: organization.Voice.UpdatedAt.UTC(),
		CreatedBy:      organization.CreatedBy,
		CreatedAt:      organization.CreatedAt.UTC(),
		UpdatedAt:      organization.UpdatedAt.UTC(),
	}, nil
}

func (m organizationModel) toEntity() (entities.Organization, error) {
	var tags []string
	if len(m.FocusTags) > 0 {
		if err := json.Unmarshal(m.FocusTags, &tags); err != nil {
			return entities.Organization{}, err
		}
	}
	var fitEmbedding []float32
	if len(m.FitEmbedding) > 0 {
		if err := json.Unmarshal(m.FitEmbedding, &fitEmbedding); err != nil {
			return entities.Organization{}, err
		}
	}
	var voiceEmbedding []float32
	if len(m.VoiceEmbedding) > 0 {
		if err := json.Unmarshal(m.VoiceEmbedding, &voiceEmbedding); err != nil {
			return entities.Organization{}, err
		}
	}
	return entities.Organization{
		OrgID:        m.ID,
		RegistryKey:  m.RegistryKey,
		Name:         m.Name,
		Region:       m.Region,
		Mission:      m.Mission,
		FocusTags:    tags,
		AnnualBudget: m.AnnualBudget,
		Fit: entities.FitProfile{
			Summary:   m.FitSummary,
			Embedding: fitEmbedding,
			UpdatedAt: m.FitUpdatedAt,
		},
		Voice: entities.VoiceProfile{
			Tone:      m.VoiceTone,
			Embedding: voiceEmbedding,
			UpdatedAt: m.VoiceUpdatedAt,
		},
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

type membershipModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	OrgID     string    `gorm:"column:org_id;uniqueIndex:idx_memberships_org_actor"`
	ActorID   string    `gorm:"column:actor_id;uniqueIndex:idx_memberships_org_actor"`
	Role      string    `gorm:"column:role"`
	Status    string    `gorm:"column:status"`
	InvitedBy string    `gorm:"column:invited_by"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (membershipModel) TableName() string {
	return "memberships"
}

func membershipModelFromEntity(membership entities.Membership) membershipModel {
	return membershipModel{
		ID:        strings.TrimSpace(membership.MembershipID),
		OrgID:     strings.TrimSpace(membership.OrgID),
		ActorID:   strings.TrimSpace(membership.ActorID),
		Role:      string(membership.Role),
		Status:    string(membership.Status),
		InvitedBy: membership.InvitedBy,
		CreatedAt: membership.CreatedAt.UTC(),
		UpdatedAt: membership.UpdatedAt.UTC(),
	}
}

func (m membershipModel) toEntity() entities.Membership {
	return entities.Membership{
		MembershipID: m.ID,
		OrgID:        m.OrgID,
		ActorID:      m.ActorID,
		Role:         entities.Role(m.Role),
		Status:       entities.MembershipStatus(m.Status),
		InvitedBy:    m.InvitedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
