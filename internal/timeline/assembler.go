package timeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sahanw/arogya-backend/internal/domain/assessment"
)

const (
	// fallbackPhaseDuration is used when an explicit week range cannot be
	// parsed.
	fallbackPhaseDuration = 2
	maxTotalReduction     = 0.8
	stageDropThreshold    = 0.3
)

// Assembler anchors narrative phases to concrete weeks and computes the
// plan-level outcome estimates.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// FallbackPhases is the documented degraded-mode plan used when the text
// generator returns nothing usable: one generic awareness phase.
func FallbackPhases() []assessment.NarrativePhase {
	return []assessment.NarrativePhase{
		{
			Title:     "Personalized Risk Awareness",
			WeekRange: "Weeks 1-2",
			CoreHabit: "Understand personal risk factors",
			WeeklyActivities: []string{
				"Week 1: Daily risk reflection journal",
				"Week 2: Weekly safety planning session",
			},
			UserRationale: "Building awareness of your specific risk patterns",
			Goals:         []string{"Understand personal risk factors", "Set safety goals"},
			Rationale:     "Building awareness of your specific risk patterns",
		},
	}
}

// Assemble lays the phases out contiguously from week 1 and derives the
// aggregate outcomes. The recomputed total (max end week) supersedes the
// scheduler's earlier estimate.
func (a *Assembler) Assemble(phases []assessment.NarrativePhase, guide assessment.TimelinePlanGuide, profile assessment.RiskProfile) assessment.Plan {
	if len(phases) == 0 {
		phases = FallbackPhases()
	}

	targetFeatures := topFeatures(profile.TopFactors, 3)
	sequenced := make([]assessment.InterventionPhase, 0, len(phases))
	currentWeek := 1

	for i, phase := range phases {
		ordinal := i + 1
		duration := a.phaseDuration(phase, ordinal, len(phases), currentWeek, guide.TotalWeeks)
		endWeek := currentWeek + duration - 1

		sequenced = append(sequenced, assessment.InterventionPhase{
			ID:                    fmt.Sprintf("PHASE_%d", ordinal),
			Name:                  phaseName(phase, ordinal),
			Description:           phase.CoreHabit,
			SimpleSteps:           phase.WeeklyActivities,
			UserRationale:         phase.UserRationale,
			DurationWeeks:         duration,
			Intensity:             intensity(profile.Stage, ordinal),
			Format:                "practical_guide",
			TargetFeatures:        targetFeatures,
			ExpectedRiskReduction: reductionEstimate(profile.Stage, ordinal),
			StartWeek:             currentWeek,
			EndWeek:               endWeek,
			Status:                "pending",
			Goals:                 phase.Goals,
			Rationale:             phase.Rationale,
		})
		currentWeek = endWeek + 1
	}

	actualTotal := 0
	totalReduction := 0.0
	for _, p := range sequenced {
		if p.EndWeek > actualTotal {
			actualTotal = p.EndWeek
		}
		totalReduction += p.ExpectedRiskReduction
	}
	if totalReduction > maxTotalReduction {
		totalReduction = maxTotalReduction
	}

	finalStage := profile.Stage
	if totalReduction > stageDropThreshold {
		finalStage--
	}
	if finalStage < 0 {
		finalStage = 0
	}

	return assessment.Plan{
		Stage:  profile.Stage,
		Phases: sequenced,
		ExpectedOutcomes: assessment.ExpectedOutcomes{
			TotalWeeks:            actualTotal,
			ExpectedRiskReduction: totalReduction,
			ExpectedFinalStage:    finalStage,
			InterventionCount:     len(sequenced),
			CompletionTimeline:    fmt.Sprintf("%d weeks", actualTotal),
			FocusAreasCount:       len(guide.Categories),
		},
		Explanations:    explanations(sequenced, profile.TopFactors),
		Summary:         summary(sequenced, profile.TopFactors, guide),
		UniquenessScore: uniquenessScore(sequenced),
	}
}

// phaseDuration prefers an explicit week range; otherwise it front-loads the
// first phase and splits the remainder evenly.
func (a *Assembler) phaseDuration(phase assessment.NarrativePhase, ordinal, phaseCount, currentWeek, totalWeeks int) int {
	if strings.Contains(phase.WeekRange, "-") {
		if d, ok := parseWeekRange(phase.WeekRange); ok {
			return d
		}
		return fallbackPhaseDuration
	}
	if ordinal == 1 {
		d := totalWeeks / 3
		if d < 2 {
			d = 2
		}
		if d > 4 {
			d = 4
		}
		return d
	}
	remaining := totalWeeks - currentWeek + 1
	phasesLeft := phaseCount - ordinal + 1
	d := remaining / phasesLeft
	if d < 2 {
		d = 2
	}
	return d
}

func parseWeekRange(raw string) (int, bool) {
	s := strings.ReplaceAll(raw, "Weeks", "")
	s = strings.ReplaceAll(s, "Week", "")
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return 0, false
	}
	start, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	end, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, false
	}
	d := end - start + 1
	if d < 1 {
		return 0, false
	}
	return d, true
}

func phaseName(phase assessment.NarrativePhase, ordinal int) string {
	if strings.TrimSpace(phase.Title) != "" {
		return phase.Title
	}
	return fmt.Sprintf("Step %d", ordinal)
}

// intensity tapers over the plan: severe cases start high, mild cases stay
// low throughout.
func intensity(stage, ordinal int) string {
	switch {
	case stage >= 2:
		if ordinal == 1 {
			return "high"
		}
		return "medium"
	case stage == 1:
		if ordinal <= 2 {
			return "medium"
		}
		return "low"
	default:
		return "low"
	}
}

// reductionEstimate gives the first phase a 1.5x boost, capped per phase.
func reductionEstimate(stage, ordinal int) float64 {
	base := map[int]float64{0: 0.1, 1: 0.15, 2: 0.2, 3: 0.25}
	b, ok := base[stage]
	if !ok {
		b = 0.15
	}
	if ordinal == 1 {
		b *= 1.5
	}
	if b > 0.3 {
		b = 0.3
	}
	return b
}

func topFeatures(factors []assessment.ScoredFactor, n int) []string {
	out := make([]string, 0, n)
	for _, f := range factors {
		if len(out) == n {
			break
		}
		out = append(out, f.Feature)
	}
	return out
}

func explanations(phases []assessment.InterventionPhase, topFactors []assessment.ScoredFactor) []assessment.PlanExplanation {
	out := make([]assessment.PlanExplanation, 0, len(phases))
	for _, phase := range phases {
		matched := make([]assessment.MatchedFactor, 0, 2)
		for i, f := range topFactors {
			if i == 2 {
				break
			}
			if contains(phase.TargetFeatures, f.Feature) {
				matched = append(matched, assessment.MatchedFactor{
					Factor:         f.Feature,
					Impact:         f.Points,
					Interpretation: f.Reason,
				})
			}
		}
		reason := phase.Rationale
		if reason == "" {
			reason = "Generated based on your risk profile"
		}
		out = append(out, assessment.PlanExplanation{
			Intervention:    phase.Name,
			Reason:          reason,
			MatchedFactors:  matched,
			ExpectedBenefit: fmt.Sprintf("Expected duration: %d weeks", phase.DurationWeeks),
		})
	}
	return out
}

func summary(phases []assessment.InterventionPhase, topFactors []assessment.ScoredFactor, guide assessment.TimelinePlanGuide) assessment.PlanSummary {
	focus := focusAreas(topFactors, 3)
	return assessment.PlanSummary{
		TotalInterventions:  len(phases),
		FocusAreas:          focus,
		TimelineCalculation: fmt.Sprintf("Based on %d key risk areas", len(guide.Categories)),
		WeeklyIntensity:     "Progressive (increases then tapers)",
	}
}

func focusAreas(topFactors []assessment.ScoredFactor, n int) []string {
	seen := map[string]bool{}
	out := make([]string, 0, n)
	for i, f := range topFactors {
		if i == 3 {
			break
		}
		cat := f.Category
		if cat == "" || cat == assessment.CategoryUnknown {
			continue
		}
		label := titleCase(strings.ReplaceAll(string(cat), "_", " "))
		if seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
		if len(out) == n {
			break
		}
	}
	if len(out) == 0 {
		return []string{"Behavioral Risk Reduction"}
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// uniquenessScore is a coarse personalization signal: distinct phase titles,
// 25 points each, capped at 100.
func uniquenessScore(phases []assessment.InterventionPhase) float64 {
	names := map[string]bool{}
	for _, p := range phases {
		names[p.Name] = true
	}
	score := float64(len(names)) * 25
	if score > 100 {
		score = 100
	}
	return score
}

// ExplainabilityScore rates how well a ranked factor list explains itself:
// a base of 30, plus 10 per factor with a reason and 5 per factor with a
// resolved catalog prompt, capped at 100.
func ExplainabilityScore(topFactors []assessment.ScoredFactor) float64 {
	score := 30.0
	for _, f := range topFactors {
		if f.Reason != "" {
			score += 10
		}
		if f.Question != "" && f.Question != f.Feature {
			score += 5
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}

func contains(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}
