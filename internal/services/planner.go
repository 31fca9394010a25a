package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sahanw/arogya-backend/internal/catalog"
	"github.com/sahanw/arogya-backend/internal/clients/textgen"
	assessmentrepo "github.com/sahanw/arogya-backend/internal/data/repos/assessment"
	"github.com/sahanw/arogya-backend/internal/domain/assessment"
	"github.com/sahanw/arogya-backend/internal/observability"
	"github.com/sahanw/arogya-backend/internal/pkg/dbctx"
	apperrors "github.com/sahanw/arogya-backend/internal/pkg/errors"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
	"github.com/sahanw/arogya-backend/internal/timeline"
)

// PlannerService turns a scored assessment into a phased intervention plan.
type PlannerService interface {
	GeneratePlan(ctx context.Context, assessmentID uuid.UUID) (*assessment.PlanRecord, *assessment.Plan, error)
	GetPlan(ctx context.Context, planID uuid.UUID) (*assessment.PlanRecord, error)
	LatestPlanForAssessment(ctx context.Context, assessmentID uuid.UUID) (*assessment.PlanRecord, error)

	// BuildPlan assembles a plan for an in-memory profile without
	// touching storage. Batch processing uses this path.
	BuildPlan(ctx context.Context, profile assessment.RiskProfile, responses map[string]interface{}) assessment.Plan
}

type plannerService struct {
	records   assessmentrepo.RecordRepo
	plans     assessmentrepo.PlanRepo
	catalog   *catalog.Catalog
	scheduler *timeline.Scheduler
	assembler *timeline.Assembler
	textgen   textgen.Client
	log       *logger.Logger
}

// NewPlannerService wires plan generation. The text generation client is
// optional; with nil every plan uses the deterministic fallback phases.
func NewPlannerService(
	records assessmentrepo.RecordRepo,
	plans assessmentrepo.PlanRepo,
	cat *catalog.Catalog,
	scheduler *timeline.Scheduler,
	assembler *timeline.Assembler,
	textgenClient textgen.Client,
	baseLog *logger.Logger,
) PlannerService {
	return &plannerService{
		records:   records,
		plans:     plans,
		catalog:   cat,
		scheduler: scheduler,
		assembler: assembler,
		textgen:   textgenClient,
		log:       baseLog.With("service", "Planner"),
	}
}

func (s *plannerService) GeneratePlan(ctx context.Context, assessmentID uuid.UUID) (*assessment.PlanRecord, *assessment.Plan, error) {
	record, err := s.records.GetByID(dbctx.Context{Ctx: ctx}, assessmentID)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, fmt.Errorf("%w: assessment %s", apperrors.ErrNotFound, assessmentID)
	}

	profile, responses, err := profileFromRecord(record)
	if err != nil {
		return nil, nil, err
	}

	plan := s.BuildPlan(ctx, profile, responses)
	plan.Language = record.Language

	planRecord, err := s.persistPlan(ctx, record, &plan)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("Plan generated",
		"plan_id", planRecord.ID,
		"assessment_id", assessmentID,
		"total_weeks", plan.ExpectedOutcomes.TotalWeeks,
		"phases", len(plan.Phases),
		"uniqueness_score", plan.UniquenessScore)
	return planRecord, &plan, nil
}

func (s *plannerService) BuildPlan(ctx context.Context, profile assessment.RiskProfile, responses map[string]interface{}) assessment.Plan {
	guide := s.scheduler.PlanGuide(profile.TopFactors)
	phases, usedFallback := s.narrativePhases(ctx, profile, guide, responses)
	if m := observability.Current(); m != nil {
		m.IncPlanGenerated(usedFallback)
	}
	return s.assembler.Assemble(phases, guide, profile)
}

// narrativePhases asks the text generation service for a tailored plan and
// falls back to the static phase template when generation is unavailable.
func (s *plannerService) narrativePhases(ctx context.Context, profile assessment.RiskProfile, guide assessment.TimelinePlanGuide, responses map[string]interface{}) ([]assessment.NarrativePhase, bool) {
	if s.textgen == nil {
		return timeline.FallbackPhases(), true
	}
	userContext := s.userContext(profile, responses)
	phases, err := s.textgen.GeneratePlan(ctx, profile, guide, userContext)
	if err != nil {
		s.log.Warn("Plan generation failed, using fallback phases", "error", err)
		return timeline.FallbackPhases(), true
	}
	if len(phases) == 0 {
		s.log.Warn("Plan generation returned no phases, using fallback phases")
		return timeline.FallbackPhases(), true
	}
	return phases, false
}

// userContext renders the participant's top factors grouped by category,
// with readable answers and point priorities, for the generation prompt.
func (s *plannerService) userContext(profile assessment.RiskProfile, responses map[string]interface{}) string {
	var b strings.Builder
	b.WriteString("USER'S RISK PROFILE WITH SCORING PRIORITIES:\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Total Risk Score: %.1f\n\n", profile.Score)

	grouped := map[assessment.Category][]assessment.ScoredFactor{}
	var order []assessment.Category
	for _, f := range profile.TopFactors {
		cat := f.Category
		if cat == "" {
			cat = assessment.CategoryUnknown
		}
		if _, seen := grouped[cat]; !seen {
			order = append(order, cat)
		}
		grouped[cat] = append(grouped[cat], f)
	}

	for _, cat := range order {
		heading := strings.ToUpper(strings.ReplaceAll(string(cat), "_", " "))
		b.WriteString("\n" + heading + ":\n")
		b.WriteString(strings.Repeat("-", 40) + "\n")

		factors := grouped[cat]
		if len(factors) > 3 {
			factors = factors[:3]
		}
		for _, f := range factors {
			question := f.Question
			if question == "" {
				question = f.Feature
			}
			b.WriteString("• " + question + "\n")
			fmt.Fprintf(&b, "  Answer: %s\n", s.readableAnswer(f, responses))
			fmt.Fprintf(&b, "  Risk Points: %.0f\n", f.Points)
			fmt.Fprintf(&b, "  Priority: %s\n\n", pointPriority(f.Points))
		}
	}

	b.WriteString("\nINTERVENTION PRIORITY GUIDANCE:\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString(`Based on clinical guidelines, address in this order:
1. CRITICAL (20+ points): Injection drug use, forced sex
2. HIGH (10-19 points): No HIV testing, 4+ partners, substance use before sex
3. MEDIUM (5-9 points): Multiple partners, no condom use, depression
4. LOW (1-4 points): Other factors

Create behavioral interventions that:
- Are specific and actionable
- Address the highest point factors first
- Show progression from current stage to lower stages
- Include weekly goals and activities`)
	return b.String()
}

func (s *plannerService) readableAnswer(f assessment.ScoredFactor, responses map[string]interface{}) string {
	if v, err := strconv.Atoi(f.UserValue); err == nil {
		return s.catalog.ReadableValue(f.Feature, v)
	}
	if f.UserValue != "" {
		return f.UserValue
	}
	if raw, ok := responses[f.Feature]; ok {
		if num, ok := raw.(float64); ok {
			return s.catalog.ReadableValue(f.Feature, int(num))
		}
	}
	return "N/A"
}

func pointPriority(points float64) string {
	switch {
	case points >= 10:
		return "HIGH"
	case points >= 5:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func (s *plannerService) persistPlan(ctx context.Context, record *assessment.Record, plan *assessment.Plan) (*assessment.PlanRecord, error) {
	phasesJSON, err := json.Marshal(plan.Phases)
	if err != nil {
		return nil, fmt.Errorf("failed to encode phases: %w", err)
	}
	outcomesJSON, err := json.Marshal(plan.ExpectedOutcomes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode outcomes: %w", err)
	}
	explanationsJSON, err := json.Marshal(plan.Explanations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode explanations: %w", err)
	}
	summaryJSON, err := json.Marshal(plan.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}

	var topFactors []assessment.ScoredFactor
	if len(record.TopFactors) > 0 {
		if err := json.Unmarshal(record.TopFactors, &topFactors); err != nil {
			return nil, fmt.Errorf("failed to decode top factors: %w", err)
		}
	}

	planRecord := &assessment.PlanRecord{
		AssessmentID:        record.ID,
		ParticipantID:       record.ParticipantID,
		Stage:               plan.Stage,
		TotalWeeks:          plan.ExpectedOutcomes.TotalWeeks,
		Phases:              phasesJSON,
		Outcomes:            outcomesJSON,
		Explanations:        explanationsJSON,
		Summary:             summaryJSON,
		UniquenessScore:     plan.UniquenessScore,
		ExplainabilityScore: timeline.ExplainabilityScore(topFactors),
		Language:            plan.Language,
		Status:              "active",
	}
	if err := s.plans.Create(dbctx.Context{Ctx: ctx}, planRecord); err != nil {
		return nil, err
	}
	return planRecord, nil
}

func (s *plannerService) GetPlan(ctx context.Context, planID uuid.UUID) (*assessment.PlanRecord, error) {
	plan, err := s.plans.GetByID(dbctx.Context{Ctx: ctx}, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: plan %s", apperrors.ErrNotFound, planID)
	}
	return plan, nil
}

func (s *plannerService) LatestPlanForAssessment(ctx context.Context, assessmentID uuid.UUID) (*assessment.PlanRecord, error) {
	plan, err := s.plans.GetLatestByAssessment(dbctx.Context{Ctx: ctx}, assessmentID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: no plan for assessment %s", apperrors.ErrNotFound, assessmentID)
	}
	return plan, nil
}

// profileFromRecord rebuilds the in-memory risk profile from a stored row.
func profileFromRecord(record *assessment.Record) (assessment.RiskProfile, map[string]interface{}, error) {
	var factors, topFactors []assessment.ScoredFactor
	if len(record.Factors) > 0 {
		if err := json.Unmarshal(record.Factors, &factors); err != nil {
			return assessment.RiskProfile{}, nil, fmt.Errorf("failed to decode factors: %w", err)
		}
	}
	if len(record.TopFactors) > 0 {
		if err := json.Unmarshal(record.TopFactors, &topFactors); err != nil {
			return assessment.RiskProfile{}, nil, fmt.Errorf("failed to decode top factors: %w", err)
		}
	}
	var responses map[string]interface{}
	if len(record.Responses) > 0 {
		if err := json.Unmarshal(record.Responses, &responses); err != nil {
			return assessment.RiskProfile{}, nil, fmt.Errorf("failed to decode responses: %w", err)
		}
	}
	profile := assessment.RiskProfile{
		Score:            record.Score,
		Stage:            record.Stage,
		StageConfidence:  record.StageConfidence,
		StageSource:      record.StageSource,
		CriticalOverride: record.CriticalOverride,
		Factors:          factors,
		TopFactors:       topFactors,
	}
	return profile, responses, nil
}
