package scoring

import (
	"fmt"
	"strconv"

	"github.com/sahanw/arogya-backend/internal/domain/assessment"
)

// Engine evaluates the declarative rule table over a normalized response set.
// Scoring is a pure function: same responses, same score and factor order.
type Engine struct {
	rules Ruleset
}

func NewEngine(rules Ruleset) *Engine {
	return &Engine{rules: rules}
}

func NewDefaultEngine() *Engine {
	return NewEngine(DefaultRuleset())
}

// Score returns the accumulated score and every triggered factor, including
// the zero-point informational factor and the trailing summary entry. When an
// escalation override fires the sentinel score is returned with exactly one
// critical factor and no further rules are evaluated.
func (e *Engine) Score(responses assessment.ResponseSet) (float64, []assessment.ScoredFactor) {
	for _, ov := range e.rules.Overrides {
		if allHold(ov.All, responses) {
			factor := assessment.ScoredFactor{
				Feature:   ov.Feature,
				Points:    e.rules.SentinelScore,
				Reason:    ov.Reason,
				Priority:  assessment.TierCritical,
				Kind:      assessment.KindOverride,
				UserValue: renderConditions(ov.All, responses),
			}
			return e.rules.SentinelScore, []assessment.ScoredFactor{factor}
		}
	}

	var score float64
	factors := make([]assessment.ScoredFactor, 0, 16)

	for _, cond := range e.rules.NoActivity {
		if cond.holds(responses) {
			factors = append(factors, assessment.ScoredFactor{
				Feature:  "never_had_sex",
				Points:   0,
				Reason:   "Never had sexual intercourse",
				Priority: assessment.TierNeutral,
				Kind:     assessment.KindInformational,
			})
			break
		}
	}

	for _, family := range e.rules.Families {
		key := e.rules.responseKey(family.Feature)
		v, ok := responses.Get(key)
		if !ok {
			continue
		}
		for _, band := range family.Bands {
			if !band.matches(v) {
				continue
			}
			score += band.Points
			factors = append(factors, assessment.ScoredFactor{
				Feature:   family.Feature,
				Points:    band.Points,
				Reason:    band.Reason,
				Priority:  TierFor(band.Points),
				Kind:      assessment.KindRule,
				UserValue: strconv.Itoa(v),
			})
			break
		}
	}

	for _, combo := range e.rules.Combinations {
		if !allHold(combo.All, responses) {
			continue
		}
		if len(combo.AnyOf) > 0 && !anyHolds(combo.AnyOf, responses) {
			continue
		}
		score += combo.Points
		factors = append(factors, assessment.ScoredFactor{
			Feature:   combo.Name,
			Points:    combo.Points,
			Reason:    combo.Reason,
			Priority:  TierFor(combo.Points),
			Kind:      assessment.KindCombination,
			UserValue: renderConditions(combo.All, responses),
		})
	}

	factors = append(factors, assessment.ScoredFactor{
		Feature:  "stage_summary",
		Points:   score,
		Reason:   fmt.Sprintf("Total Risk Score: %.1f", score),
		Priority: assessment.TierSummary,
		Kind:     assessment.KindSummary,
	})

	return score, factors
}

func allHold(conds []Condition, responses assessment.ResponseSet) bool {
	for _, c := range conds {
		if !c.holds(responses) {
			return false
		}
	}
	return len(conds) > 0
}

func anyHolds(conds []Condition, responses assessment.ResponseSet) bool {
	for _, c := range conds {
		if c.holds(responses) {
			return true
		}
	}
	return false
}
