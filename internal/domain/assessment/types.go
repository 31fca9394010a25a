package assessment

// Category groups questionnaire items by the kind of intervention they call for.
type Category string

const (
	CategorySexualBehavior Category = "sexual_behavior"
	CategorySubstanceUse   Category = "substance_use"
	CategoryViolence       Category = "violence"
	CategoryMentalHealth   Category = "mental_health"
	CategorySocialFactors  Category = "social_factors"
	CategoryProtective     Category = "protective"
	CategoryDemographics   Category = "demographics"
	CategoryGeneral        Category = "general"
	CategoryUnknown        Category = "unknown"
)

// PriorityTier is derived from a factor's point delta (sign and magnitude).
type PriorityTier string

const (
	TierCriticalRisk       PriorityTier = "CRITICAL_RISK"
	TierHighRisk           PriorityTier = "HIGH_RISK"
	TierMediumRisk         PriorityTier = "MEDIUM_RISK"
	TierLowRisk            PriorityTier = "LOW_RISK"
	TierStrongProtective   PriorityTier = "STRONG_PROTECTIVE"
	TierModerateProtective PriorityTier = "MODERATE_PROTECTIVE"
	TierWeakProtective     PriorityTier = "WEAK_PROTECTIVE"
	TierNeutral            PriorityTier = "NEUTRAL"
	// TierCritical marks an escalation override, outside the graded tiers.
	TierCritical PriorityTier = "CRITICAL"
	// TierSummary marks the audit entry carrying the running total.
	TierSummary PriorityTier = "SUMMARY"
)

// FactorKind tells downstream consumers which rule mechanism produced a factor.
type FactorKind string

const (
	KindRule          FactorKind = "rule"
	KindCombination   FactorKind = "combination"
	KindOverride      FactorKind = "override"
	KindInformational FactorKind = "informational"
	KindSummary       FactorKind = "summary"
)

// FeatureDefinition is one catalog entry for a questionnaire item.
type FeatureDefinition struct {
	Code     string            `json:"code" yaml:"code"`
	Category Category          `json:"category" yaml:"category"`
	Question string            `json:"question" yaml:"question"`
	Options  map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

// ResponseSet maps a question code to a cleaned integer answer. A nil entry
// means the participant skipped or declined the question.
type ResponseSet map[string]*int

// Get returns the answer for code, if present and answered.
func (r ResponseSet) Get(code string) (int, bool) {
	v, ok := r[code]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// ScoredFactor is one triggered rule with its contribution to the total score.
type ScoredFactor struct {
	Feature   string       `json:"feature"`
	Points    float64      `json:"points"`
	Reason    string       `json:"reason"`
	Priority  PriorityTier `json:"priority"`
	Kind      FactorKind   `json:"kind"`
	UserValue string       `json:"user_value,omitempty"`
	Question  string       `json:"question,omitempty"`
	Category  Category     `json:"category,omitempty"`
}

// RiskProfile is the full scoring result for one response set. Stage comes
// from the external classifier; LocalStageEstimate is a score-derived
// cross-check retained for debugging only.
type RiskProfile struct {
	Score              float64        `json:"score"`
	Stage              int            `json:"stage"`
	StageConfidence    float64        `json:"stage_confidence,omitempty"`
	StageSource        string         `json:"stage_source"`
	LocalStageEstimate int            `json:"local_stage_estimate"`
	CriticalOverride   bool           `json:"critical_override"`
	Factors            []ScoredFactor `json:"factors"`
	TopFactors         []ScoredFactor `json:"top_factors"`
}

// TimelinePlanGuide steers the text generator's phase structure without
// fixing the phase count.
type TimelinePlanGuide struct {
	TotalWeeks      int        `json:"total_weeks"`
	Categories      []Category `json:"categories"`
	HighImpactCount int        `json:"high_impact_count"`
	Guidance        string     `json:"guidance"`
}

// NarrativePhase is one phase of free text as returned by the text generator.
type NarrativePhase struct {
	Title            string   `json:"phase_title"`
	WeekRange        string   `json:"week_range,omitempty"`
	CoreHabit        string   `json:"core_habit"`
	WeeklyActivities []string `json:"weekly_activities"`
	UserRationale    string   `json:"why_this_matters_for_you"`
	Goals            []string `json:"goals,omitempty"`
	Rationale        string   `json:"rationale,omitempty"`
}

// InterventionPhase is a narrative phase anchored to concrete weeks.
type InterventionPhase struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Description           string   `json:"description"`
	SimpleSteps           []string `json:"simple_steps"`
	UserRationale         string   `json:"user_rationale"`
	DurationWeeks         int      `json:"duration_weeks"`
	Intensity             string   `json:"intensity"`
	Format                string   `json:"format"`
	TargetFeatures        []string `json:"target_features"`
	ExpectedRiskReduction float64  `json:"expected_risk_reduction"`
	StartWeek             int      `json:"start_week"`
	EndWeek               int      `json:"end_week"`
	Status                string   `json:"current_status"`
	Goals                 []string `json:"goals,omitempty"`
	Rationale             string   `json:"rationale,omitempty"`
}

type ExpectedOutcomes struct {
	TotalWeeks            int     `json:"total_weeks"`
	ExpectedRiskReduction float64 `json:"expected_risk_reduction"`
	ExpectedFinalStage    int     `json:"expected_final_stage"`
	InterventionCount     int     `json:"intervention_count"`
	CompletionTimeline    string  `json:"completion_timeline"`
	FocusAreasCount       int     `json:"focus_areas_count"`
}

type MatchedFactor struct {
	Factor         string  `json:"factor"`
	Impact         float64 `json:"impact"`
	Interpretation string  `json:"interpretation"`
}

type PlanExplanation struct {
	Intervention    string          `json:"intervention"`
	Reason          string          `json:"reason"`
	MatchedFactors  []MatchedFactor `json:"matched_factors"`
	ExpectedBenefit string          `json:"expected_benefit"`
}

type PlanSummary struct {
	TotalInterventions  int      `json:"total_interventions"`
	FocusAreas          []string `json:"focus_areas"`
	TimelineCalculation string   `json:"timeline_calculation"`
	WeeklyIntensity     string   `json:"weekly_intensity"`
}

// Plan is the assembled intervention timeline for one assessment.
type Plan struct {
	Stage            int                 `json:"risk_stage"`
	Phases           []InterventionPhase `json:"phases"`
	ExpectedOutcomes ExpectedOutcomes    `json:"expected_outcomes"`
	Explanations     []PlanExplanation   `json:"explanations"`
	Summary          PlanSummary         `json:"plan_summary"`
	UniquenessScore  float64             `json:"uniqueness_score"`
	Language         string              `json:"language,omitempty"`
}
