package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/sahanw/arogya-backend/internal/clients/textgen"
	assessmentrepo "github.com/sahanw/arogya-backend/internal/data/repos/assessment"
	participantrepo "github.com/sahanw/arogya-backend/internal/data/repos/participant"
	"github.com/sahanw/arogya-backend/internal/domain/assessment"
	"github.com/sahanw/arogya-backend/internal/observability"
	"github.com/sahanw/arogya-backend/internal/pkg/dbctx"
	apperrors "github.com/sahanw/arogya-backend/internal/pkg/errors"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

// AdaptationService rewrites a stored plan's narrative text for a target
// language and cultural context. Structure, weeks and risk estimates
// never change; only the wording does.
type AdaptationService interface {
	AdaptPlan(ctx context.Context, planID uuid.UUID, language, culture string) (*assessment.PlanRecord, []assessment.InterventionPhase, error)
}

type adaptationService struct {
	plans        assessmentrepo.PlanRepo
	participants participantrepo.Repo
	textgen      textgen.Client
	log          *logger.Logger
}

func NewAdaptationService(
	plans assessmentrepo.PlanRepo,
	participants participantrepo.Repo,
	textgenClient textgen.Client,
	baseLog *logger.Logger,
) AdaptationService {
	return &adaptationService{
		plans:        plans,
		participants: participants,
		textgen:      textgenClient,
		log:          baseLog.With("service", "Adaptation"),
	}
}

func (s *adaptationService) AdaptPlan(ctx context.Context, planID uuid.UUID, language, culture string) (*assessment.PlanRecord, []assessment.InterventionPhase, error) {
	if language == "" {
		return nil, nil, fmt.Errorf("%w: language is required", apperrors.ErrInvalidArgument)
	}
	if s.textgen == nil {
		return nil, nil, fmt.Errorf("%w: text generation is not configured", apperrors.ErrUnavailable)
	}

	plan, err := s.plans.GetByID(dbctx.Context{Ctx: ctx}, planID)
	if err != nil {
		return nil, nil, err
	}
	if plan == nil {
		return nil, nil, fmt.Errorf("%w: plan %s", apperrors.ErrNotFound, planID)
	}
	if plan.Language == language {
		var current []assessment.InterventionPhase
		if err := json.Unmarshal(plan.Phases, &current); err != nil {
			return nil, nil, fmt.Errorf("failed to decode phases: %w", err)
		}
		return plan, current, nil
	}

	var phases []assessment.InterventionPhase
	if err := json.Unmarshal(plan.Phases, &phases); err != nil {
		return nil, nil, fmt.Errorf("failed to decode phases: %w", err)
	}
	if len(phases) == 0 {
		return nil, nil, fmt.Errorf("%w: plan %s has no phases", apperrors.ErrInvalidArgument, planID)
	}

	adapted, err := s.textgen.AdaptPlan(ctx, phases, language, culture)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: plan adaptation failed: %v", apperrors.ErrUnavailable, err)
	}
	if len(adapted) != len(phases) {
		return nil, nil, fmt.Errorf("%w: adaptation changed the phase count", apperrors.ErrUnavailable)
	}

	adaptedJSON, err := json.Marshal(adapted)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode adapted phases: %w", err)
	}
	if err := s.plans.UpdatePhases(dbctx.Context{Ctx: ctx}, planID, adaptedJSON, language); err != nil {
		return nil, nil, err
	}

	if err := s.participants.UpdateLanguage(dbctx.Context{Ctx: ctx}, plan.ParticipantID, language, culture); err != nil {
		s.log.Warn("Could not store participant language preference",
			"participant_id", plan.ParticipantID, "error", err)
	}

	plan.Phases = adaptedJSON
	plan.Language = language
	if m := observability.Current(); m != nil {
		m.IncAdaptation(language)
	}
	s.log.Info("Plan adapted",
		"plan_id", planID,
		"language", language,
		"culture", culture,
		"phases", len(adapted))
	return plan, adapted, nil
}
