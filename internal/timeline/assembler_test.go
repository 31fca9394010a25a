package timeline

import (
	"testing"

	"github.com/sahanw/arogya-backend/internal/domain/assessment"
)

func TestAssemblePhasesAreContiguous(t *testing.T) {
	a := NewAssembler()

	phases := []assessment.NarrativePhase{
		{Title: "Safer Sex Foundations", WeekRange: "Weeks 1-3", CoreHabit: "Consistent condom use"},
		{Title: "Testing Routine", WeekRange: "Weeks 4-6", CoreHabit: "Quarterly testing"},
		{Title: "Maintenance", WeekRange: "Weeks 7-8", CoreHabit: "Keep the habits going"},
	}
	guide := assessment.TimelinePlanGuide{TotalWeeks: 8, Categories: []assessment.Category{assessment.CategorySexualBehavior}}
	plan := a.Assemble(phases, guide, assessment.RiskProfile{Stage: 2})

	if len(plan.Phases) != 3 {
		t.Fatalf("expected 3 phases, got %d", len(plan.Phases))
	}
	if plan.Phases[0].StartWeek != 1 {
		t.Fatalf("plans start at week 1, got %d", plan.Phases[0].StartWeek)
	}
	for i := 1; i < len(plan.Phases); i++ {
		prev, cur := plan.Phases[i-1], plan.Phases[i]
		if cur.StartWeek != prev.EndWeek+1 {
			t.Fatalf("phase %d starts at week %d but phase %d ends at %d", i+1, cur.StartWeek, i, prev.EndWeek)
		}
	}
	if plan.ExpectedOutcomes.TotalWeeks != 8 {
		t.Fatalf("total weeks should equal the last end week, got %d", plan.ExpectedOutcomes.TotalWeeks)
	}
	if plan.Phases[1].DurationWeeks != 3 {
		t.Fatalf("Weeks 4-6 spans 3 weeks, got %d", plan.Phases[1].DurationWeeks)
	}
}

func TestAssembleFallbackWhenEmpty(t *testing.T) {
	a := NewAssembler()

	plan := a.Assemble(nil, assessment.TimelinePlanGuide{TotalWeeks: 4}, assessment.RiskProfile{Stage: 1})
	if len(plan.Phases) != 1 {
		t.Fatalf("degraded mode has exactly one phase, got %d", len(plan.Phases))
	}
	phase := plan.Phases[0]
	if phase.Name != "Personalized Risk Awareness" {
		t.Fatalf("unexpected fallback phase %q", phase.Name)
	}
	if phase.StartWeek != 1 || phase.EndWeek != 2 {
		t.Fatalf("fallback phase should cover weeks 1-2, got %d-%d", phase.StartWeek, phase.EndWeek)
	}
}

func TestAssembleDurationWithoutWeekRange(t *testing.T) {
	a := NewAssembler()

	phases := []assessment.NarrativePhase{
		{Title: "One", CoreHabit: "a"},
		{Title: "Two", CoreHabit: "b"},
		{Title: "Three", CoreHabit: "c"},
	}
	plan := a.Assemble(phases, assessment.TimelinePlanGuide{TotalWeeks: 12}, assessment.RiskProfile{Stage: 1})

	// First phase is front-loaded to a third of the plan, the rest split evenly.
	if plan.Phases[0].DurationWeeks != 4 {
		t.Fatalf("expected first phase of 4 weeks, got %d", plan.Phases[0].DurationWeeks)
	}
	for i, p := range plan.Phases[1:] {
		if p.DurationWeeks < 2 {
			t.Fatalf("phase %d shorter than the 2-week floor: %d", i+2, p.DurationWeeks)
		}
	}
}

func TestAssembleReductionCaps(t *testing.T) {
	a := NewAssembler()

	phases := make([]assessment.NarrativePhase, 6)
	for i := range phases {
		phases[i] = assessment.NarrativePhase{Title: "Phase", WeekRange: "Weeks 1-2", CoreHabit: "habit"}
	}
	plan := a.Assemble(phases, assessment.TimelinePlanGuide{TotalWeeks: 12}, assessment.RiskProfile{Stage: 3})

	if plan.ExpectedOutcomes.ExpectedRiskReduction != 0.8 {
		t.Fatalf("total reduction must cap at 0.8, got %.2f", plan.ExpectedOutcomes.ExpectedRiskReduction)
	}
	if plan.ExpectedOutcomes.ExpectedFinalStage != 2 {
		t.Fatalf("a reduction above 0.3 drops one stage, got %d", plan.ExpectedOutcomes.ExpectedFinalStage)
	}
}

func TestAssembleStageNeverNegative(t *testing.T) {
	a := NewAssembler()

	phases := []assessment.NarrativePhase{
		{Title: "A", WeekRange: "Weeks 1-4", CoreHabit: "a"},
		{Title: "B", WeekRange: "Weeks 5-8", CoreHabit: "b"},
		{Title: "C", WeekRange: "Weeks 9-12", CoreHabit: "c"},
	}
	plan := a.Assemble(phases, assessment.TimelinePlanGuide{TotalWeeks: 12}, assessment.RiskProfile{Stage: 0})
	if plan.ExpectedOutcomes.ExpectedFinalStage < 0 {
		t.Fatalf("final stage must not go below 0, got %d", plan.ExpectedOutcomes.ExpectedFinalStage)
	}
}

func TestAssembleFirstPhaseBoost(t *testing.T) {
	a := NewAssembler()

	phases := []assessment.NarrativePhase{
		{Title: "A", WeekRange: "Weeks 1-2", CoreHabit: "a"},
		{Title: "B", WeekRange: "Weeks 3-4", CoreHabit: "b"},
	}
	plan := a.Assemble(phases, assessment.TimelinePlanGuide{TotalWeeks: 4}, assessment.RiskProfile{Stage: 1})

	first, second := plan.Phases[0], plan.Phases[1]
	if first.ExpectedRiskReduction <= second.ExpectedRiskReduction {
		t.Fatalf("first phase should carry the boosted estimate: %.3f vs %.3f",
			first.ExpectedRiskReduction, second.ExpectedRiskReduction)
	}
	if first.ExpectedRiskReduction > 0.3 {
		t.Fatalf("per-phase reduction must cap at 0.3, got %.3f", first.ExpectedRiskReduction)
	}
}

func TestAssembleIntensityBySeverity(t *testing.T) {
	a := NewAssembler()

	phases := []assessment.NarrativePhase{
		{Title: "A", WeekRange: "Weeks 1-2", CoreHabit: "a"},
		{Title: "B", WeekRange: "Weeks 3-4", CoreHabit: "b"},
	}

	severe := a.Assemble(phases, assessment.TimelinePlanGuide{TotalWeeks: 4}, assessment.RiskProfile{Stage: 3})
	if severe.Phases[0].Intensity != "high" || severe.Phases[1].Intensity != "medium" {
		t.Fatalf("severe plans start high then taper, got %s/%s",
			severe.Phases[0].Intensity, severe.Phases[1].Intensity)
	}

	mild := a.Assemble(phases, assessment.TimelinePlanGuide{TotalWeeks: 4}, assessment.RiskProfile{Stage: 0})
	for _, p := range mild.Phases {
		if p.Intensity != "low" {
			t.Fatalf("mild plans stay low throughout, got %s", p.Intensity)
		}
	}
}

func TestAssembleUniquenessScore(t *testing.T) {
	a := NewAssembler()

	phases := []assessment.NarrativePhase{
		{Title: "Same", WeekRange: "Weeks 1-2", CoreHabit: "a"},
		{Title: "Same", WeekRange: "Weeks 3-4", CoreHabit: "b"},
		{Title: "Other", WeekRange: "Weeks 5-6", CoreHabit: "c"},
	}
	plan := a.Assemble(phases, assessment.TimelinePlanGuide{TotalWeeks: 6}, assessment.RiskProfile{Stage: 1})
	if plan.UniquenessScore != 50 {
		t.Fatalf("2 distinct names score 50, got %.1f", plan.UniquenessScore)
	}
}

func TestParseWeekRange(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"Weeks 1-3", 3, true},
		{"Week 4-4", 1, true},
		{"Weeks 5 - 8", 4, true},
		{"Weeks 6-2", 0, false},
		{"ongoing", 0, false},
		{"Weeks x-y", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseWeekRange(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parseWeekRange(%q): expected (%d,%v), got (%d,%v)", tc.raw, tc.want, tc.ok, got, ok)
		}
	}
}

func TestExplainabilityScore(t *testing.T) {
	if got := ExplainabilityScore(nil); got != 30 {
		t.Fatalf("no factors scores the base 30, got %.1f", got)
	}

	factors := []assessment.ScoredFactor{
		{Feature: "q58", Reason: "4+ partners", Question: "How many partners?"},
		{Feature: "q61", Reason: "No condom", Question: "q61"},
	}
	// 30 + (10+5) for the resolved factor + 10 for the unresolved one
	if got := ExplainabilityScore(factors); got != 55 {
		t.Fatalf("expected 55, got %.1f", got)
	}

	many := make([]assessment.ScoredFactor, 10)
	for i := range many {
		many[i] = assessment.ScoredFactor{Feature: "f", Reason: "r", Question: "resolved"}
	}
	if got := ExplainabilityScore(many); got != 100 {
		t.Fatalf("score must cap at 100, got %.1f", got)
	}
}
