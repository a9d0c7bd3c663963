package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"grantstw/contexts/grant-portfolio/drafting-service/domain/entities"
	domainerrors "grantstw/contexts/grant-portfolio/drafting-service/domain/errors"
	"grantstw/contexts/grant-portfolio/drafting-service/domain/services"
	"grantstw/contexts/grant-portfolio/drafting-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const appendRetryLimit = 3

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

func (r *Repository) CreateDraft(ctx context.Context, draft entities.Draft, initial entities.DraftVersion, gate ports.Recheck) (entities.Draft, error) {
	draftRow := draftModelFromEntity(draft)
	versionRow, err := versionModelFromEntity(initial)
	if err != nil {
		return entities.Draft{}, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if gate != nil {
			if err := gate(ctx); err != nil {
				return err
			}
		}
		if err := tx.Create(&draftRow).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrConflict
			}
			return err
		}
		return tx.Create(&versionRow).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPermissionDenied) ||
			errors.Is(err, domainerrors.ErrConflict) {
			return entities.Draft{}, err
		}
		return entities.Draft{}, r.logError("draft_repo_create_failed", err,
			"org_id", draft.OrgID,
			"draft_id", draft.DraftID,
		)
	}
	return draft, nil
}

func (r *Repository) GetDraft(ctx context.Context, draftID string) (entities.Draft, error) {
	var row draftModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(draftID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Draft{}, domainerrors.ErrDraftNotFound
		}
		return entities.Draft{}, r.logError("draft_repo_get_failed", err, "draft_id", draftID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListDrafts(ctx context.Context, orgID string) ([]entities.Draft, error) {
	var rows []draftModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", strings.TrimSpace(orgID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("draft_repo_list_failed", err, "org_id", orgID)
	}
	items := make([]entities.Draft, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendVersion(ctx context.Context, input ports.AppendVersionInput) (entities.DraftVersion, error) {
	result, err := appendWithRetry(ctx, input, r.appendVersionOnce)
	if err != nil {
		if errors.Is(err, domainerrors.ErrPermissionDenied) ||
			errors.Is(err, domainerrors.ErrDraftNotFound) ||
			errors.Is(err, domainerrors.ErrVersionNotFound) ||
			errors.Is(err, domainerrors.ErrCrossDraftVersion) ||
			errors.Is(err, domainerrors.ErrConflict) {
			return entities.DraftVersion{}, err
		}
		return entities.DraftVersion{}, r.logError("draft_repo_append_failed", err,
			"draft_id", input.DraftID,
		)
	}
	return result, nil
}

// appendWithRetry re-runs one append attempt while the unique index on
// (draft_id, version_number) rejects it. A concurrent append can claim the
// same number between the max read and the insert; each retry recomputes
// against the new head. The last conflict propagates once the limit is spent.
func appendWithRetry(
	ctx context.Context,
	input ports.AppendVersionInput,
	attempt func(context.Context, ports.AppendVersionInput) (entities.DraftVersion, error),
) (entities.DraftVersion, error) {
	var version entities.DraftVersion
	var err error
	for i := 0; i < appendRetryLimit; i++ {
		version, err = attempt(ctx, input)
		if !errors.Is(err, domainerrors.ErrConflict) {
			return version, err
		}
	}
	return version, err
}

func (r *Repository) appendVersionOnce(ctx context.Context, input ports.AppendVersionInput) (entities.DraftVersion, error) {
	var result entities.DraftVersion
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.Gate != nil {
			if err := input.Gate(ctx); err != nil {
				return err
			}
		}

		var draftRow draftModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", input.DraftID).
			First(&draftRow).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrDraftNotFound
		}
		if err != nil {
			return err
		}

		parentID := draftRow.CurrentVersionID
		if input.BasedOnVersionID != "" {
			var baseRow versionModel
			err := tx.Where("id = ?", input.BasedOnVersionID).First(&baseRow).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrVersionNotFound
			}
			if err != nil {
				return err
			}
			if baseRow.DraftID != input.DraftID {
				return domainerrors.ErrCrossDraftVersion
			}
			parentID = baseRow.ID
		}

		var maxNumber int
		if err := tx.Model(&versionModel{}).
			Where("draft_id = ?", input.DraftID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&maxNumber).Error; err != nil {
			return err
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
		row, err := versionModelFromEntity(version)
		if err != nil {
			return err
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrConflict
			}
			return err
		}

		if err := tx.Model(&draftModel{}).
			Where("id = ?", input.DraftID).
			Updates(map[string]any{
				"current_version_id": version.VersionID,
				"updated_at":         input.Now.UTC(),
			}).Error; err != nil {
			return err
		}
		result = version
		return nil
	})
	if err != nil {
		return entities.DraftVersion{}, err
	}
	return result, nil
}

func (r *Repository) GetVersion(ctx context.Context, versionID string) (entities.DraftVersion, error) {
	var row versionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(versionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.DraftVersion{}, domainerrors.ErrVersionNotFound
		}
		return entities.DraftVersion{}, r.logError("draft_repo_get_version_failed", err, "version_id", versionID)
	}
	return row.toEntity()
}

func (r *Repository) ListVersions(ctx context.Context, draftID string) ([]entities.DraftVersion, error) {
	var rows []versionModel
	if err := r.db.WithContext(ctx).
		Where("draft_id = ?", strings.TrimSpace(draftID)).
		Order("version_number ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("draft_repo_list_versions_failed", err, "draft_id", draftID)
	}
	items := make([]entities.DraftVersion, 0, len(rows))
	for _, row := range rows {
		version, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, version)
	}
	return items, nil
}

func (r *Repository) Rollback(ctx context.Context, input ports.RollbackInput) (entities.Draft, error) {
	var result entities.Draft
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.Gate != nil {
			if err := input.Gate(ctx); err != nil {
				return err
			}
		}

		var draftRow draftModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", input.DraftID).
			First(&draftRow).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrDraftNotFound
		}
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&versionModel{}).
			Where("id = ?", input.VersionID).
			Where("draft_id = ?", input.DraftID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrVersionNotFound
		}

		if err := tx.Model(&draftModel{}).
			Where("id = ?", input.DraftID).
			Updates(map[string]any{
				"current_version_id": input.VersionID,
				"updated_at":         input.Now.UTC(),
			}).Error; err != nil {
			return err
		}
		draftRow.CurrentVersionID = input.VersionID
		draftRow.UpdatedAt = input.Now.UTC()
		result = draftRow.toEntity()
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPermissionDenied) ||
			errors.Is(err, domainerrors.ErrDraftNotFound) ||
			errors.Is(err, domainerrors.ErrVersionNotFound) {
			return entities.Draft{}, err
		}
		return entities.Draft{}, r.logError("draft_repo_rollback_failed", err,
			"draft_id", input.DraftID,
			"version_id", input.VersionID,
		)
	}
	return result, nil
}

// GetOrgContext reads the organizations projection owned by the membership
// context. Columns are read-only here.
func (r *Repository) GetOrgContext(ctx context.Context, orgID string) (services.OrgContext, bool, error) {
	var row orgContextModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(orgID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.OrgContext{}, false, nil
		}
		return services.OrgContext{}, false, r.logError("draft_repo_get_org_failed", err, "org_id", orgID)
	}
	org, err := row.toContext()
	if err != nil {
		return services.OrgContext{}, false, err
	}
	return org, true, nil
}

// GetGrantContext reads the grants projection owned by the matching engine.
func (r *Repository) GetGrantContext(ctx context.Context, grantID string) (services.GrantContext, bool, error) {
	var row grantContextModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(grantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.GrantContext{}, false, nil
		}
		return services.GrantContext{}, false, r.logError("draft_repo_get_grant_failed", err, "grant_id", grantID)
	}
	grant, err := row.toContext()
	if err != nil {
		return services.GrantContext{}, false, err
	}
	return grant, true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "grant-portfolio/drafting-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("drafting repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type draftModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	OrgID            string    `gorm:"column:org_id;index"`
	GrantID          string    `gorm:"column:grant_id"`
	Title            string    `gorm:"column:title"`
	CurrentVersionID string    `gorm:"column:current_version_id"`
	CreatedBy        string    `gorm:"column:created_by"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (draftModel) TableName() string {
	return "drafts"
}

func draftModelFromEntity(draft entities.Draft) draftModel {
	return draftModel{
		ID:               strings.TrimSpace(draft.DraftID),
		OrgID:            strings.TrimSpace(draft.OrgID),
		GrantID:          strings.TrimSpace(draft.GrantID),
		Title:            draft.Title,
		CurrentVersionID: draft.CurrentVersionID,
		CreatedBy:        draft.CreatedBy,
		CreatedAt:        draft.CreatedAt.UTC(),
		UpdatedAt:        draft.UpdatedAt.UTC(),
	}
}

func (m draftModel) toEntity() entities.Draft {
	return entities.Draft{
		DraftID:          m.ID,
		OrgID:            m.OrgID,
		GrantID:          m.GrantID,
		Title:            m.Title,
		CurrentVersionID: m.CurrentVersionID,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

type versionModel struct {
	ID              string         `gorm:"column:id;primaryKey"`
	DraftID         string         `gorm:"column:draft_id;uniqueIndex:idx_versions_draft_number"`
	VersionNumber   int            `gorm:"column:version_number;uniqueIndex:idx_versions_draft_number"`
	ParentVersionID string         `gorm:"column:parent_version_id"`
	Sections        datatypes.JSON `gorm:"column:sections"`
	AuthorID        string         `gorm:"column:author_id"`
	Note            string         `gorm:"column:note"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
}

func (versionModel) TableName() string {
	return "draft_versions"
}

func versionModelFromEntity(version entities.DraftVersion) (versionModel, error) {
	sections, err := json.Marshal(version.Sections)
	if err != nil {
		return versionModel{}, err
	}
	return versionModel{
		ID:              strings.TrimSpace(version.VersionID),
		DraftID:         strings.TrimSpace(version.DraftID),
		VersionNumber:   version.VersionNumber,
		ParentVersionID: version.ParentVersionID,
		Sections:        datatypes.JSON(sections),
		AuthorID:        version.AuthorID,
		Note:            version.Note,
		CreatedAt:       version.CreatedAt.UTC(),
	}, nil
}

func (m versionModel) toEntity() (entities.DraftVersion, error) {
	var sections entities.DraftSections
	if len(m.Sections) > 0 {
		if err := json.Unmarshal(m.Sections, &sections); err != nil {
			return entities.DraftVersion{}, err
		}
	}
	return entities.DraftVersion{
		VersionID:       m.ID,
		DraftID:         m.DraftID,
		VersionNumber:   m.VersionNumber,
		ParentVersionID: m.ParentVersionID,
		Sections:        sections,
		AuthorID:        m.AuthorID,
		Note:            m.Note,
		CreatedAt:       m.CreatedAt,
	}, nil
}

type orgContextModel struct {
	ID           string         `gorm:"column:id;primaryKey"`
	Name         string         `gorm:"column:name"`
	Region       string         `gorm:"column:region"`
	Mission      string         `gorm:"column:mission"`
	FocusTags    datatypes.JSON `gorm:"column:focus_tags"`
	AnnualBudget string         `gorm:"column:annual_budget"`
}

func (orgContextModel) TableName() string {
	return "organizations"
}

func (m orgContextModel) toContext() (services.OrgContext, error) {
	var tags []string
	if len(m.FocusTags) > 0 {
		if err := json.Unmarshal(m.FocusTags, &tags); err != nil {
			return services.OrgContext{}, err
		}
	}
	return services.OrgContext{
		Name:         m.Name,
		Region:       m.Region,
		Mission:      m.Mission,
		FocusTags:    tags,
		AnnualBudget: m.AnnualBudget,
	}, nil
}

type grantContextModel struct {
	ID        string         `gorm:"column:id;primaryKey"`
	Name      string         `gorm:"column:name"`
	Funder    string         `gorm:"column:funder"`
	Tags      datatypes.JSON `gorm:"column:tags"`
	AmountMin string         `gorm:"column:amount_min"`
	AmountMax string         `gorm:"column:amount_max"`
}

func (grantContextModel) TableName() string {
	return "grants"
}

func (m grantContextModel) toContext() (services.GrantContext, error) {
	var tags []string
	if len(m.Tags) > 0 {
		if err := json.Unmarshal(m.Tags, &tags); err != nil {
			return services.GrantContext{}, err
		}
	}
	return services.GrantContext{
		Name:      m.Name,
		Funder:    m.Funder,
		Tags:      tags,
		AmountMin: m.AmountMin,
		AmountMax: m.AmountMax,
	}, nil
}
