package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sahanw/arogya-backend/internal/domain/assessment"
	apperrors "github.com/sahanw/arogya-backend/internal/pkg/errors"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

func batchResult(id string, stage int, phaseNames []string, topFeatures []string) BatchUserResult {
	phases := make([]assessment.InterventionPhase, len(phaseNames))
	for i, name := range phaseNames {
		phases[i] = assessment.InterventionPhase{Name: name}
	}
	factors := make([]assessment.ScoredFactor, len(topFeatures))
	for i, feature := range topFeatures {
		factors[i] = assessment.ScoredFactor{Feature: feature}
	}
	return BatchUserResult{
		UserID:         id,
		RiskPrediction: assessment.RiskProfile{Stage: stage, TopFactors: factors},
		Plan:           assessment.Plan{Stage: stage, Phases: phases},
	}
}

func TestCompareResultsSameStageDifferentPlans(t *testing.T) {
	a := batchResult("u1", 2, []string{"Safer Sex Foundations", "Testing Routine"}, []string{"q58", "q61", "q82"})
	b := batchResult("u2", 2, []string{"Substance Support", "Testing Routine"}, []string{"q52", "q61", "q19"})

	cmp := compareResults(a, b)
	if !cmp.SameRiskStage {
		t.Fatalf("both results are stage 2")
	}
	if cmp.CommonInterventions != 1 {
		t.Fatalf("expected 1 shared phase name, got %d", cmp.CommonInterventions)
	}
	if cmp.DifferentInterventions != 2 {
		t.Fatalf("expected 2 in the symmetric difference, got %d", cmp.DifferentInterventions)
	}
	if cmp.CommonRiskFactors != 1 {
		t.Fatalf("only q61 overlaps in the top 3, got %d", cmp.CommonRiskFactors)
	}
	if !cmp.IsTrulyPersonalized {
		t.Fatalf("more different than shared phases at the same stage is personalized")
	}
}

func TestCompareResultsIdenticalPlansNotPersonalized(t *testing.T) {
	a := batchResult("u1", 1, []string{"Phase A", "Phase B"}, []string{"q58"})
	b := batchResult("u2", 1, []string{"Phase A", "Phase B"}, []string{"q58"})

	cmp := compareResults(a, b)
	if cmp.IsTrulyPersonalized {
		t.Fatalf("identical plans at the same stage are not personalized")
	}
	if cmp.CommonInterventions != 2 || cmp.DifferentInterventions != 0 {
		t.Fatalf("expected 2 common / 0 different, got %d/%d",
			cmp.CommonInterventions, cmp.DifferentInterventions)
	}
}

func TestCompareResultsDifferentStagesAlwaysPersonalized(t *testing.T) {
	a := batchResult("u1", 0, []string{"Phase A"}, nil)
	b := batchResult("u2", 3, []string{"Phase A"}, nil)

	cmp := compareResults(a, b)
	if cmp.SameRiskStage {
		t.Fatalf("stages 0 and 3 are not the same")
	}
	if !cmp.IsTrulyPersonalized {
		t.Fatalf("different stages count as personalized regardless of overlap")
	}
}

func TestCompareResultsTopFactorWindow(t *testing.T) {
	a := batchResult("u1", 1, nil, []string{"q58", "q61", "q82", "q19"})
	b := batchResult("u2", 1, nil, []string{"q19"})

	// q19 sits outside u1's top-3 window, so it must not count.
	if cmp := compareResults(a, b); cmp.CommonRiskFactors != 0 {
		t.Fatalf("expected 0 shared top factors, got %d", cmp.CommonRiskFactors)
	}
}

func TestAnalyzePersonalization(t *testing.T) {
	comparisons := []BatchComparison{
		{SameRiskStage: true, IsTrulyPersonalized: true},
		{SameRiskStage: true, IsTrulyPersonalized: false},
		{SameRiskStage: true, IsTrulyPersonalized: true},
		{SameRiskStage: false, IsTrulyPersonalized: true},
	}
	analysis := analyzePersonalization(comparisons)
	if analysis.TotalComparisons != 4 {
		t.Fatalf("expected 4 comparisons, got %d", analysis.TotalComparisons)
	}
	if analysis.SameStageComparisons != 3 {
		t.Fatalf("expected 3 same-stage comparisons, got %d", analysis.SameStageComparisons)
	}
	if analysis.TrulyPersonalized != 2 {
		t.Fatalf("expected 2 personalized, got %d", analysis.TrulyPersonalized)
	}
	if analysis.PersonalizationRate != 2.0/3.0 {
		t.Fatalf("expected rate 2/3, got %f", analysis.PersonalizationRate)
	}
	if analysis.Analysis != "2/3 same-stage users got different plans" {
		t.Fatalf("unexpected analysis string %q", analysis.Analysis)
	}
}

func TestAnalyzePersonalizationEmpty(t *testing.T) {
	analysis := analyzePersonalization(nil)
	if analysis.Analysis != "No comparisons available" {
		t.Fatalf("unexpected analysis string %q", analysis.Analysis)
	}
	if analysis.PersonalizationRate != 0 {
		t.Fatalf("no comparisons means rate 0, got %f", analysis.PersonalizationRate)
	}
}

func TestBatchUserIDStable(t *testing.T) {
	a := map[string]interface{}{"q58": 5.0, "q61": 3.0}
	b := map[string]interface{}{"q61": 3.0, "q58": 5.0}

	idA, idB := batchUserID(a), batchUserID(b)
	if idA != idB {
		t.Fatalf("equal submissions must share an ID: %s vs %s", idA, idB)
	}
	if len(idA) != 8 {
		t.Fatalf("expected an 8-character hex ID, got %q", idA)
	}
	if idA == batchUserID(map[string]interface{}{"q58": 6.0}) {
		t.Fatalf("different submissions must not collide on these inputs")
	}
}

type stubAssessments struct {
	total int
	fail  map[int]error
}

func (s *stubAssessments) Submit(context.Context, uuid.UUID, map[string]interface{}, string) (*assessment.Record, error) {
	return nil, nil
}

func (s *stubAssessments) Get(context.Context, uuid.UUID) (*assessment.Record, error) {
	return nil, nil
}

func (s *stubAssessments) Latest(context.Context, uuid.UUID) (*assessment.Record, error) {
	return nil, nil
}

func (s *stubAssessments) List(context.Context, uuid.UUID, int) ([]assessment.Record, error) {
	return nil, nil
}

func (s *stubAssessments) ScoreResponses(_ context.Context, responses map[string]interface{}) (assessment.RiskProfile, error) {
	ord := responses["q58"].(int)
	if err, ok := s.fail[ord]; ok {
		return assessment.RiskProfile{}, err
	}
	// Earlier submissions finish last so collection order cannot ride on
	// completion order.
	time.Sleep(time.Duration(s.total-ord) * 2 * time.Millisecond)
	return assessment.RiskProfile{Score: float64(ord), Stage: ord % 2}, nil
}

type stubPlanner struct{}

func (s *stubPlanner) GeneratePlan(context.Context, uuid.UUID) (*assessment.PlanRecord, *assessment.Plan, error) {
	return nil, nil, nil
}

func (s *stubPlanner) GetPlan(context.Context, uuid.UUID) (*assessment.PlanRecord, error) {
	return nil, nil
}

func (s *stubPlanner) LatestPlanForAssessment(context.Context, uuid.UUID) (*assessment.PlanRecord, error) {
	return nil, nil
}

func (s *stubPlanner) BuildPlan(_ context.Context, profile assessment.RiskProfile, _ map[string]interface{}) assessment.Plan {
	return assessment.Plan{
		Stage:  profile.Stage,
		Phases: []assessment.InterventionPhase{{Name: fmt.Sprintf("Plan for %d", int(profile.Score))}},
	}
}

func testBatch(t *testing.T, assessments AssessmentService, planner PlannerService, concurrency int) *batchService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &batchService{
		assessments: assessments,
		planner:     planner,
		log:         log.With("service", "Batch"),
		concurrency: concurrency,
	}
}

func TestProcessCollectsResultsInSubmissionOrder(t *testing.T) {
	const n = 6
	submissions := make([]map[string]interface{}, n)
	for i := range submissions {
		submissions[i] = map[string]interface{}{"q58": i}
	}
	svc := testBatch(t, &stubAssessments{total: n}, &stubPlanner{}, 3)

	result, err := svc.Process(context.Background(), submissions)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.Results) != n {
		t.Fatalf("expected %d results, got %d", n, len(result.Results))
	}
	for i, r := range result.Results {
		if r.RiskPrediction.Score != float64(i) {
			t.Fatalf("result %d carries score %.0f; results must land at their submission index",
				i, r.RiskPrediction.Score)
		}
		if r.Plan.Phases[0].Name != fmt.Sprintf("Plan for %d", i) {
			t.Fatalf("result %d carries plan %q", i, r.Plan.Phases[0].Name)
		}
		if r.UserID == "" {
			t.Fatalf("result %d is missing a user ID", i)
		}
	}
	if want := n * (n - 1) / 2; len(result.Comparisons) != want {
		t.Fatalf("expected %d pairwise comparisons, got %d", want, len(result.Comparisons))
	}
	if result.PersonalizationAnalysis.TotalComparisons != len(result.Comparisons) {
		t.Fatalf("analysis must aggregate every comparison")
	}
}

func TestProcessSubmissionFailureAborts(t *testing.T) {
	submissions := []map[string]interface{}{
		{"q58": 0},
		{"q58": 1},
		{"q58": 2},
	}
	scoreErr := errors.New("vector rejected")
	svc := testBatch(t, &stubAssessments{total: 3, fail: map[int]error{1: scoreErr}}, &stubPlanner{}, 2)

	_, err := svc.Process(context.Background(), submissions)
	if !errors.Is(err, scoreErr) {
		t.Fatalf("expected the scoring failure surfaced, got %v", err)
	}
}

func TestProcessRejectsEmptyBatch(t *testing.T) {
	svc := testBatch(t, &stubAssessments{}, &stubPlanner{}, 1)
	if _, err := svc.Process(context.Background(), nil); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("empty batch must be invalid, got %v", err)
	}
}
