package participant

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/sahanw/arogya-backend/internal/domain/participant"
	"github.com/sahanw/arogya-backend/internal/pkg/dbctx"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

type Repo interface {
	Create(dbc dbctx.Context, row *types.Participant) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Participant, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.Participant, error)
	UpdateLanguage(dbc dbctx.Context, id uuid.UUID, language, culture string) error
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, baseLog *logger.Logger) Repo {
	return &repo{db: db, log: baseLog.With("repo", "ParticipantRepo")}
}

func (r *repo) Create(dbc dbctx.Context, row *types.Participant) error {
	if row == nil || row.Email == "" {
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
	row.Email = strings.ToLower(strings.TrimSpace(row.Email))
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *repo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Participant, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Participant
	if err := t.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *repo) GetByEmail(dbc dbctx.Context, email string) (*types.Participant, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Participant
	if err := t.WithContext(dbc.Ctx).First(&out, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *repo) UpdateLanguage(dbc dbctx.Context, id uuid.UUID, language, culture string) error {
	if id == uuid.Nil || language == "" {
		return nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	updates := map[string]interface{}{"preferred_language": language}
	if culture != "" {
		updates["preferred_culture"] = culture
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Participant{}).
		Where("id = ?", id).
		Updates(updates).Error
}
