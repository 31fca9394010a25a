package textgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahanw/arogya-backend/internal/domain/assessment"
)

const planSystemPrompt = `ROLE: You are a Sri Lankan HIV prevention public health advisor for the Sri Lankan National STD/AIDS Control Programme.
You are a supportive, practical coach helping adults build safer, healthier habits. The user does NOT have HIV and wants to stay that way.

CRITICAL TONE & FORMAT RULES:
1. Tone: supportive, encouraging, collaborative. Use "you" and "we". Avoid clinical jargon.
2. Language: simple, clear English only. This plan will be culturally adapted later for Sinhala or Tamil speakers by a separate system.
3. Focus on behavior: every activity must be a concrete, doable behavior the user can practice in daily life. Never prescribe medication or clinical treatment.
4. Age-neutral language: write for any adult (ages 13-65+). Prefer "healthcare provider", "clinic", "helpline", "support group" over "trusted adult" or "parent".
5. Cultural relevance: use examples, services (government clinics, the 1926 helpline) and social structures natural to a Sri Lankan adult.
6. Structure each phase as a simple weekly guide with one core habit.`

var planSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"personalized_plan", "plan_summary"},
	"properties": map[string]any{
		"personalized_plan": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"phase_title", "week_range", "core_habit", "weekly_activities", "why_this_matters_for_you"},
				"properties": map[string]any{
					"phase_title":              map[string]any{"type": "string"},
					"week_range":               map[string]any{"type": "string"},
					"core_habit":               map[string]any{"type": "string"},
					"weekly_activities":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"why_this_matters_for_you": map[string]any{"type": "string"},
				},
			},
		},
		"plan_summary": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []string{"total_weeks", "your_main_focus", "key_to_success"},
			"properties": map[string]any{
				"total_weeks":     map[string]any{"type": "integer"},
				"your_main_focus": map[string]any{"type": "string"},
				"key_to_success":  map[string]any{"type": "string"},
			},
		},
	},
}

type planResponse struct {
	PersonalizedPlan []assessment.NarrativePhase `json:"personalized_plan"`
	PlanSummary      struct {
		TotalWeeks    int    `json:"total_weeks"`
		YourMainFocus string `json:"your_main_focus"`
		KeyToSuccess  string `json:"key_to_success"`
	} `json:"plan_summary"`
}

var riskLevels = []string{"Low", "Moderate", "High", "Very High"}

func (c *client) GeneratePlan(ctx context.Context, profile assessment.RiskProfile, guide assessment.TimelinePlanGuide, userContext string) ([]assessment.NarrativePhase, error) {
	stage := profile.Stage
	if stage < 0 {
		stage = 0
	}
	if stage > 3 {
		stage = 3
	}

	targetStage := stage - 1
	if targetStage < 0 {
		targetStage = 0
	}

	user := fmt.Sprintf(`CLINICAL GUIDANCE FOR PLAN STRUCTURE:
%s

RISK LEVEL: %s

%s

CURRENT STAGE: %d (Score: %.1f)
TARGET PROGRESSION: Stage %d -> Stage %d

Each phase should show how behavioral changes reduce specific risk factors.
Generate the personalized plan now.`,
		guide.Guidance, riskLevels[stage], userContext, stage, profile.Score, stage, targetStage)

	var resp planResponse
	if err := c.generateJSON(ctx, planSystemPrompt, user, "personalized_plan", planSchema, &resp); err != nil {
		return nil, err
	}
	if len(resp.PersonalizedPlan) == 0 {
		return nil, fmt.Errorf("text generator returned no phases")
	}
	return resp.PersonalizedPlan, nil
}

const adaptSystemPrompt = `ROLE: You are a cultural adaptation specialist for Sri Lankan public health material.
Rewrite the given intervention plan phases for the target language and cultural register.

RULES:
1. Keep the SAME number of phases, the same week ranges, and the same behavioral meaning.
2. Keep the same JSON field names.
3. Adapt examples, services and phrasing so they feel natural to the target audience.
4. Never add or remove health advice.`

var adaptSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"phases"},
	"properties": map[string]any{
		"phases": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"name", "description", "simple_steps", "user_rationale"},
				"properties": map[string]any{
					"name":           map[string]any{"type": "string"},
					"description":    map[string]any{"type": "string"},
					"simple_steps":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"user_rationale": map[string]any{"type": "string"},
				},
			},
		},
	},
}

type adaptResponse struct {
	Phases []struct {
		Name          string   `json:"name"`
		Description   string   `json:"description"`
		SimpleSteps   []string `json:"simple_steps"`
		UserRationale string   `json:"user_rationale"`
	} `json:"phases"`
}

// AdaptPlan rewrites phase text for the target language and culture. Week
// ranges and phase count are preserved; only the free text fields change.
func (c *client) AdaptPlan(ctx context.Context, phases []assessment.InterventionPhase, language, culture string) ([]assessment.InterventionPhase, error) {
	if len(phases) == 0 {
		return phases, nil
	}
	if culture == "" {
		culture = language
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "TARGET LANGUAGE: %s\nTARGET CULTURE: %s\n\nPHASES TO ADAPT:\n", language, culture)
	for i, p := range phases {
		fmt.Fprintf(&sb, "\nPhase %d (%s, weeks %d-%d):\n", i+1, p.Name, p.StartWeek, p.EndWeek)
		fmt.Fprintf(&sb, "  core habit: %s\n", p.Description)
		for _, s := range p.SimpleSteps {
			fmt.Fprintf(&sb, "  - %s\n", s)
		}
		fmt.Fprintf(&sb, "  why it matters: %s\n", p.UserRationale)
	}

	var resp adaptResponse
	if err := c.generateJSON(ctx, adaptSystemPrompt, sb.String(), "adapted_phases", adaptSchema, &resp); err != nil {
		return nil, err
	}
	if len(resp.Phases) != len(phases) {
		return nil, fmt.Errorf("adaptation changed phase count: got %d, want %d", len(resp.Phases), len(phases))
	}

	out := make([]assessment.InterventionPhase, len(phases))
	copy(out, phases)
	for i := range out {
		out[i].Name = resp.Phases[i].Name
		out[i].Description = resp.Phases[i].Description
		out[i].SimpleSteps = resp.Phases[i].SimpleSteps
		out[i].UserRationale = resp.Phases[i].UserRationale
	}
	return out, nil
}
