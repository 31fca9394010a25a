package services

import (
	"context"
	"strings"
	"testing"

	"github.com/sahanw/arogya-backend/internal/catalog"
	"github.com/sahanw/arogya-backend/internal/domain/assessment"
	"github.com/sahanw/arogya-backend/internal/timeline"
)

func testPlanner(t *testing.T) *plannerService {
	t.Helper()
	cat, err := catalog.Default(nil)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return &plannerService{
		catalog:   cat,
		scheduler: timeline.NewDefaultScheduler(),
		assembler: timeline.NewAssembler(),
	}
}

func TestBuildPlanFallsBackWithoutTextGen(t *testing.T) {
	svc := testPlanner(t)

	profile := assessment.RiskProfile{
		Score: 35,
		Stage: 1,
		TopFactors: []assessment.ScoredFactor{
			{Feature: "q61", Points: 12, Reason: "No condom last sex", Category: assessment.CategorySexualBehavior},
		},
	}
	plan := svc.BuildPlan(context.Background(), profile, map[string]interface{}{"q61": 3.0})

	if len(plan.Phases) != 1 {
		t.Fatalf("fallback plans have one phase, got %d", len(plan.Phases))
	}
	if plan.Phases[0].Name != "Personalized Risk Awareness" {
		t.Fatalf("unexpected fallback phase %q", plan.Phases[0].Name)
	}
	if plan.Stage != 1 {
		t.Fatalf("plan stage should mirror the profile, got %d", plan.Stage)
	}
	if plan.ExpectedOutcomes.TotalWeeks == 0 {
		t.Fatalf("plan must carry a computed duration")
	}
}

func TestUserContextGroupsFactorsByCategory(t *testing.T) {
	svc := testPlanner(t)

	profile := assessment.RiskProfile{
		Score: 47,
		TopFactors: []assessment.ScoredFactor{
			{
				Feature:   "q58",
				Points:    20,
				Reason:    "6+ lifetime partners",
				Question:  "With how many people have you ever had sexual intercourse?",
				Category:  assessment.CategorySexualBehavior,
				UserValue: "7",
			},
			{
				Feature:  "q27",
				Points:   10,
				Reason:   "Suicidal thoughts",
				Category: assessment.CategoryMentalHealth,
			},
			{
				Feature:  "q61",
				Points:   12,
				Reason:   "No condom last sex",
				Category: assessment.CategorySexualBehavior,
			},
		},
	}

	got := svc.userContext(profile, map[string]interface{}{})

	if !strings.HasPrefix(got, "USER'S RISK PROFILE WITH SCORING PRIORITIES:\n") {
		t.Fatalf("unexpected preamble: %q", got[:60])
	}
	if !strings.Contains(got, "Total Risk Score: 47.0") {
		t.Fatalf("missing total score line")
	}
	sexual := strings.Index(got, "SEXUAL BEHAVIOR:")
	mental := strings.Index(got, "MENTAL HEALTH:")
	if sexual == -1 || mental == -1 {
		t.Fatalf("missing category headings")
	}
	if sexual > mental {
		t.Fatalf("categories must keep first-seen order")
	}
	if !strings.Contains(got, "Priority: HIGH") {
		t.Fatalf("a 20-point factor is HIGH priority")
	}
	if !strings.Contains(got, "INTERVENTION PRIORITY GUIDANCE:") {
		t.Fatalf("missing guidance block")
	}
}

func TestUserContextCapsFactorsPerCategory(t *testing.T) {
	svc := testPlanner(t)

	factors := make([]assessment.ScoredFactor, 5)
	for i := range factors {
		factors[i] = assessment.ScoredFactor{
			Feature:  "q58",
			Points:   float64(20 - i),
			Reason:   "partners",
			Category: assessment.CategorySexualBehavior,
		}
	}
	got := svc.userContext(assessment.RiskProfile{TopFactors: factors}, nil)
	if n := strings.Count(got, "• "); n != 3 {
		t.Fatalf("each category lists at most 3 factors, got %d", n)
	}
}

func TestReadableAnswerResolution(t *testing.T) {
	svc := testPlanner(t)

	withLabel := svc.readableAnswer(assessment.ScoredFactor{Feature: "q58", UserValue: "7"}, nil)
	if withLabel == "7" || withLabel == "Value 7" {
		t.Fatalf("q58=7 should resolve a catalog label, got %q", withLabel)
	}

	rawValue := svc.readableAnswer(assessment.ScoredFactor{Feature: "x", UserValue: "q82=1, q61=3"}, nil)
	if rawValue != "q82=1, q61=3" {
		t.Fatalf("non-numeric user values pass through, got %q", rawValue)
	}

	fromResponses := svc.readableAnswer(
		assessment.ScoredFactor{Feature: "q58"},
		map[string]interface{}{"q58": 7.0},
	)
	if fromResponses != withLabel {
		t.Fatalf("response lookup should resolve the same label, got %q", fromResponses)
	}

	if got := svc.readableAnswer(assessment.ScoredFactor{Feature: "q58"}, nil); got != "N/A" {
		t.Fatalf("unanswered factors render N/A, got %q", got)
	}
}

func TestPointPriority(t *testing.T) {
	cases := []struct {
		points float64
		want   string
	}{
		{25, "HIGH"},
		{10, "HIGH"},
		{9, "MEDIUM"},
		{5, "MEDIUM"},
		{4, "LOW"},
		{0, "LOW"},
	}
	for _, tc := range cases {
		if got := pointPriority(tc.points); got != tc.want {
			t.Fatalf("pointPriority(%.0f): expected %s, got %s", tc.points, tc.want, got)
		}
	}
}
