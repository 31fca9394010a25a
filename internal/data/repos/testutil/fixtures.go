package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sahanw/arogya-backend/internal/domain/assessment"
	"github.com/sahanw/arogya-backend/internal/domain/participant"
)

func SeedParticipant(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *participant.Participant {
	tb.Helper()
	p := &participant.Participant{
		ID:                uuid.New(),
		Email:             email,
		Password:          "hashed-pw",
		DisplayName:       "Test Participant",
		PreferredLanguage: "en",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed participant: %v", err)
	}
	return p
}

func SeedAssessment(tb testing.TB, ctx context.Context, tx *gorm.DB, participantID uuid.UUID, score float64, stage int) *assessment.Record {
	tb.Helper()
	r := &assessment.Record{
		ID:            uuid.New(),
		ParticipantID: participantID,
		Responses:     datatypes.JSON([]byte(`{"q58": 5, "q61": 3}`)),
		Score:         score,
		Stage:         stage,
		StageSource:   "local_estimate",
		Factors:       datatypes.JSON([]byte("[]")),
		TopFactors:    datatypes.JSON([]byte("[]")),
		Language:      "en",
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed assessment: %v", err)
	}
	return r
}

func SeedPlan(tb testing.TB, ctx context.Context, tx *gorm.DB, assessmentID, participantID uuid.UUID, stage int) *assessment.PlanRecord {
	tb.Helper()
	p := &assessment.PlanRecord{
		ID:            uuid.New(),
		AssessmentID:  assessmentID,
		ParticipantID: participantID,
		Stage:         stage,
		TotalWeeks:    8,
		Phases:        datatypes.JSON([]byte("[]")),
		Outcomes:      datatypes.JSON([]byte("{}")),
		Explanations:  datatypes.JSON([]byte("[]")),
		Summary:       datatypes.JSON([]byte("{}")),
		Language:      "en",
		Status:        "active",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed plan: %v", err)
	}
	return p
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
