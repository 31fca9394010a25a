package assessment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/sahanw/arogya-backend/internal/domain/assessment"
	"github.com/sahanw/arogya-backend/internal/pkg/dbctx"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

type RecordRepo interface {
	Create(dbc dbctx.Context, row *types.Record) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Record, error)
	GetLatestByParticipant(dbc dbctx.Context, participantID uuid.UUID) (*types.Record, error)
	ListByParticipant(dbc dbctx.Context, participantID uuid.UUID, limit int) ([]types.Record, error)
}

type recordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordRepo(db *gorm.DB, baseLog *logger.Logger) RecordRepo {
	return &recordRepo{db: db, log: baseLog.With("repo", "AssessmentRecordRepo")}
}

func (r *recordRepo) Create(dbc dbctx.Context, row *types.Record) error {
	if row == nil || row.ParticipantID == uuid.Nil {
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

func (r *recordRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Record, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Record
	if err := t.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *recordRepo) GetLatestByParticipant(dbc dbctx.Context, participantID uuid.UUID) (*types.Record, error) {
	if participantID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Record
	if err := t.WithContext(dbc.Ctx).
		Where("participant_id = ?", participantID).
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

func (r *recordRepo) ListByParticipant(dbc dbctx.Context, participantID uuid.UUID, limit int) ([]types.Record, error) {
	if participantID == uuid.Nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []types.Record
	if err := t.WithContext(dbc.Ctx).
		Where("participant_id = ?", participantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
