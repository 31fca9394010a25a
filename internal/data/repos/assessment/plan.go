package assessment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/sahanw/arogya-backend/internal/domain/assessment"
	"github.com/sahanw/arogya-backend/internal/pkg/dbctx"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

type PlanRepo interface {
	Create(dbc dbctx.Context, row *types.PlanRecord) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PlanRecord, error)
	GetLatestByAssessment(dbc dbctx.Context, assessmentID uuid.UUID) (*types.PlanRecord, error)
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error
	UpdatePhases(dbc dbctx.Context, id uuid.UUID, phases []byte, language string) error
}

type planRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return &planRepo{db: db, log: baseLog.With("repo", "PlanRepo")}
}

func (r *planRepo) Create(dbc dbctx.Context, row *types.PlanRecord) error {
	if row == nil || row.AssessmentID == uuid.Nil || row.ParticipantID == uuid.Nil {
		return nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *planRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PlanRecord, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.PlanRecord
	if err := t.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *planRepo) GetLatestByAssessment(dbc dbctx.Context, assessmentID uuid.UUID) (*types.PlanRecord, error) {
	if assessmentID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.PlanRecord
	if err := t.WithContext(dbc.Ctx).
		Where("assessment_id = ?", assessmentID).
		Order("created_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *planRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error {
	if id == uuid.Nil || status == "" {
		return nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.PlanRecord{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *planRepo) UpdatePhases(dbc dbctx.Context, id uuid.UUID, phases []byte, language string) error {
	if id == uuid.Nil || len(phases) == 0 {
		return nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	updates := map[string]interface{}{"phases": phases}
	if language != "" {
		updates["language"] = language
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.PlanRecord{}).
		Where("id = ?", id).
		Updates(updates).Error
}
