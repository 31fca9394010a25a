package assessment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Record is the persisted form of one scored questionnaire submission.
type Record struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ParticipantID    uuid.UUID      `gorm:"type:uuid;index;not null;column:participant_id" json:"participant_id"`
	Responses        datatypes.JSON `gorm:"type:jsonb;column:responses" json:"-"`
	Score            float64        `gorm:"not null;column:score" json:"score"`
	Stage            int            `gorm:"not null;column:stage" json:"stage"`
	StageConfidence  float64        `gorm:"column:stage_confidence" json:"stage_confidence"`
	StageSource      string         `gorm:"column:stage_source" json:"stage_source"`
	CriticalOverride bool           `gorm:"not null;default:false;column:critical_override" json:"critical_override"`
	Factors          datatypes.JSON `gorm:"type:jsonb;column:factors" json:"factors"`
	TopFactors       datatypes.JSON `gorm:"type:jsonb;column:top_factors" json:"top_factors"`
	Language         string         `gorm:"column:language" json:"language"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Record) TableName() string { return "assessment" }

// PlanRecord is the persisted form of an assembled intervention plan.
type PlanRecord struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssessmentID        uuid.UUID      `gorm:"type:uuid;index;not null;column:assessment_id" json:"assessment_id"`
	ParticipantID       uuid.UUID      `gorm:"type:uuid;index;not null;column:participant_id" json:"participant_id"`
	Stage               int            `gorm:"not null;column:stage" json:"stage"`
	TotalWeeks          int            `gorm:"not null;column:total_weeks" json:"total_weeks"`
	Phases              datatypes.JSON `gorm:"type:jsonb;column:phases" json:"phases"`
	Outcomes            datatypes.JSON `gorm:"type:jsonb;column:outcomes" json:"outcomes"`
	Explanations        datatypes.JSON `gorm:"type:jsonb;column:explanations" json:"explanations"`
	Summary             datatypes.JSON `gorm:"type:jsonb;column:summary" json:"summary"`
	UniquenessScore     float64        `gorm:"column:uniqueness_score" json:"uniqueness_score"`
	ExplainabilityScore float64        `gorm:"column:explainability_score" json:"explainability_score"`
	Language            string         `gorm:"column:language" json:"language"`
	Status              string         `gorm:"not null;default:'active';column:status" json:"status"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PlanRecord) TableName() string { return "intervention_plan" }
