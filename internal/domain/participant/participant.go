package participant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Participant struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email             string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password          string    `gorm:"not null;column:password" json:"-"`
	DisplayName       string    `gorm:"column:display_name" json:"display_name"`
	PreferredLanguage string    `gorm:"not null;default:'en';column:preferred_language" json:"preferred_language"`
	PreferredCulture  string    `gorm:"column:preferred_culture" json:"preferred_culture"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Participant) TableName() string { return "participant" }
