package scoring

import (
	"fmt"
	"strings"

	"github.com/sahanw/arogya-backend/internal/domain/assessment"
)

// SentinelScore is returned when an escalation override fires. It is a fixed
// constant, not a sum of rule points.
const SentinelScore = 999

type CompareOp string

const (
	OpEq  CompareOp = "eq"
	OpGTE CompareOp = "gte"
	OpLTE CompareOp = "lte"
	OpIn  CompareOp = "in"
)

// Condition compares one answer against a trigger value or value set. An
// unanswered question never satisfies a condition.
type Condition struct {
	Feature string
	Op      CompareOp
	Value   int
	Set     []int
}

func (c Condition) holds(responses assessment.ResponseSet) bool {
	v, ok := responses.Get(c.Feature)
	if !ok {
		return false
	}
	switch c.Op {
	case OpEq:
		return v == c.Value
	case OpGTE:
		return v >= c.Value
	case OpLTE:
		return v <= c.Value
	case OpIn:
		for _, s := range c.Set {
			if v == s {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Band is one trigger of a rule family. Within a family, bands are evaluated
// in declaration order and the first match wins.
type Band struct {
	Op     CompareOp
	Value  int
	Set    []int
	Points float64
	Reason string
}

func (b Band) matches(v int) bool {
	switch b.Op {
	case OpEq:
		return v == b.Value
	case OpGTE:
		return v >= b.Value
	case OpLTE:
		return v <= b.Value
	case OpIn:
		for _, s := range b.Set {
			if v == s {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// RuleFamily scores one feature. A feature code may appear in more than one
// family with different point scales; that layering is intentional.
type RuleFamily struct {
	Feature string
	Bands   []Band
}

// CombinationRule contributes a single extra delta when every All condition
// holds and, if AnyOf is non-empty, at least one of those holds too. It is
// additive on top of the per-feature rules for the same answers.
type CombinationRule struct {
	Name   string
	Points float64
	Reason string
	All    []Condition
	AnyOf  []Condition
}

// OverrideRule short-circuits scoring with the sentinel score when every
// condition holds.
type OverrideRule struct {
	Feature string
	Reason  string
	All     []Condition
}

// Ruleset is the full declarative rule table evaluated by the engine.
type Ruleset struct {
	SentinelScore float64
	// Aliases maps a rule-table code to the response key it reads, for the
	// binary recode items whose answers arrive under a different code.
	Aliases   []Alias
	Overrides []OverrideRule
	// NoActivity lists the answers that indicate no sexual activity; any one
	// of them triggers the zero-point informational factor.
	NoActivity   []Condition
	Families     []RuleFamily
	Combinations []CombinationRule
}

type Alias struct {
	Code string
	Key  string
}

func (rs Ruleset) responseKey(code string) string {
	for _, a := range rs.Aliases {
		if a.Code == code {
			return a.Key
		}
	}
	return code
}

func renderConditions(conds []Condition, responses assessment.ResponseSet) string {
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		if v, ok := responses.Get(c.Feature); ok {
			parts = append(parts, fmt.Sprintf("%s=%d", c.Feature, v))
		}
	}
	return strings.Join(parts, ", ")
}

// DefaultRuleset returns the clinical rule table. Point values and trigger
// bands follow the validated scoring model; changing them is a clinical
// decision, not a refactor.
func DefaultRuleset() Ruleset {
	return Ruleset{
		SentinelScore: SentinelScore,
		Aliases: []Alias{
			{Code: "QN56", Key: "q12"},
			{Code: "QN57", Key: "q13"},
			{Code: "QN58", Key: "q14"},
			{Code: "QN59", Key: "q15"},
			{Code: "QN60", Key: "q16"},
			{Code: "QN61", Key: "q17"},
			{Code: "QN62", Key: "q62"},
			{Code: "QN63", Key: "q63"},
			{Code: "QN64", Key: "q64"},
			{Code: "QN43", Key: "q43"},
			{Code: "QN46", Key: "q46"},
			{Code: "QN48", Key: "q48"},
			{Code: "QN52", Key: "q52"},
			{Code: "QN55", Key: "q55"},
			{Code: "QN26", Key: "q26"},
			{Code: "QN27", Key: "q27"},
			{Code: "QN29", Key: "q29"},
			{Code: "QN30", Key: "q30"},
			{Code: "QN84", Key: "q84"},
			{Code: "QN85", Key: "q85"},
		},
		Overrides: []OverrideRule{
			{
				Feature: "q55_q52_combination",
				Reason:  "Injected 2+ times AND used heroin (SSP/PrEP criteria)",
				All: []Condition{
					{Feature: "q55", Op: OpEq, Value: 3},
					{Feature: "q52", Op: OpGTE, Value: 2},
				},
			},
			{
				Feature: "q55",
				Reason:  "Injection drug use 2+ times",
				All: []Condition{
					{Feature: "q55", Op: OpGTE, Value: 3},
				},
			},
		},
		NoActivity: []Condition{
			{Feature: "QN56", Op: OpEq, Value: 2},
			{Feature: "q58", Op: OpEq, Value: 1},
			{Feature: "q63", Op: OpEq, Value: 1},
			{Feature: "q62", Op: OpEq, Value: 1},
			{Feature: "q60", Op: OpEq, Value: 1},
			{Feature: "q61", Op: OpEq, Value: 1},
			{Feature: "q59", Op: OpEq, Value: 1},
		},
		Families: []RuleFamily{
			// Core sexual exposure (binary recodes)
			{Feature: "QN56", Bands: []Band{{Op: OpEq, Value: 1, Points: 5, Reason: "Had sexual intercourse"}}},
			{Feature: "QN57", Bands: []Band{{Op: OpEq, Value: 1, Points: 8, Reason: "Sexual intercourse before age 18"}}},
			{Feature: "QN58", Bands: []Band{{Op: OpEq, Value: 1, Points: 15, Reason: "4+ sexual partners"}}},
			{Feature: "QN59", Bands: []Band{{Op: OpEq, Value: 1, Points: 5, Reason: "Currently sexually active"}}},
			{Feature: "QN60", Bands: []Band{{Op: OpEq, Value: 1, Points: 10, Reason: "Substances before last sex"}}},
			{Feature: "QN62", Bands: []Band{{Op: OpEq, Value: 1, Points: 5, Reason: "Used birth control pills"}}},

			// Sexual identity and contacts
			{Feature: "q63", Bands: []Band{{Op: OpIn, Set: []int{2, 3, 4}, Points: 8, Reason: "Has had sexual contact with others"}}},
			{Feature: "q64", Bands: []Band{
				{Op: OpIn, Set: []int{2, 3}, Points: 8, Reason: "Gay/Lesbian or Bisexual"},
				{Op: OpIn, Set: []int{4, 5}, Points: 6, Reason: "Other or Questioning"},
			}},

			// Raw sexual behavior, graduated
			{Feature: "q60", Bands: []Band{{Op: OpEq, Value: 2, Points: 10, Reason: "Substances before last sex"}}},
			{Feature: "q58", Bands: []Band{
				{Op: OpEq, Value: 7, Points: 20, Reason: "6+ lifetime partners"},
				{Op: OpGTE, Value: 5, Points: 15, Reason: "4-5 lifetime partners"},
				{Op: OpGTE, Value: 3, Points: 10, Reason: "2-3 lifetime partners"},
				{Op: OpEq, Value: 2, Points: 4, Reason: "1 lifetime partner"},
			}},
			{Feature: "q59", Bands: []Band{{Op: OpGTE, Value: 4, Points: 8, Reason: "2+ recent partners"}}},
			{Feature: "q61", Bands: []Band{{Op: OpEq, Value: 3, Points: 12, Reason: "No condom last sex"}}},
			{Feature: "q62", Bands: []Band{{Op: OpIn, Set: []int{2, 3, 5, 6, 7, 8}, Points: 8, Reason: "Used contraception"}}},

			// Substance use, graduated
			{Feature: "QN43", Bands: []Band{{Op: OpEq, Value: 1, Points: 7, Reason: "Binge drinking"}}},
			{Feature: "QN48", Bands: []Band{{Op: OpEq, Value: 1, Points: 5, Reason: "Marijuana use"}}},
			{Feature: "QN46", Bands: []Band{{Op: OpEq, Value: 1, Points: 4, Reason: "Ever used marijuana"}}},
			{Feature: "q52", Bands: []Band{
				{Op: OpGTE, Value: 3, Points: 20, Reason: "10+ times heroin use"},
				{Op: OpEq, Value: 2, Points: 15, Reason: "1-9 times heroin use"},
			}},
			{Feature: "q44", Bands: []Band{{Op: OpGTE, Value: 6, Points: 10, Reason: "Heavy episodic drinking"}}},

			// Demographics
			{Feature: "q1", Bands: []Band{{Op: OpGTE, Value: 5, Points: 4, Reason: "Age 35+ years"}}},
			{Feature: "raceeth", Bands: []Band{{Op: OpIn, Set: []int{3, 6, 7}, Points: 3, Reason: "Race/ethnicity disparities"}}},

			// Violence and coercion, graduated
			{Feature: "q21", Bands: []Band{
				{Op: OpGTE, Value: 4, Points: 12, Reason: "2+ times sexual coercion"},
				{Op: OpGTE, Value: 3, Points: 6, Reason: "1 time sexual coercion"},
			}},
			{Feature: "q20", Bands: []Band{
				{Op: OpGTE, Value: 3, Points: 14, Reason: "2+ times forced sex"},
				{Op: OpGTE, Value: 2, Points: 8, Reason: "1 time forced sex"},
			}},
			{Feature: "q22", Bands: []Band{
				{Op: OpGTE, Value: 4, Points: 11, Reason: "2+ times physical violence"},
				{Op: OpGTE, Value: 3, Points: 6, Reason: "1 time physical violence"},
			}},
			{Feature: "q19", Bands: []Band{{Op: OpEq, Value: 1, Points: 35, Reason: "Forced sex"}}},

			// Mental health and co-factors
			{Feature: "q26", Bands: []Band{{Op: OpEq, Value: 1, Points: 6, Reason: "Depression symptoms"}}},
			{Feature: "q27", Bands: []Band{{Op: OpEq, Value: 1, Points: 10, Reason: "Suicidal thoughts"}}},
			{Feature: "q29", Bands: []Band{
				{Op: OpGTE, Value: 4, Points: 15, Reason: "4+ suicide attempts"},
				{Op: OpGTE, Value: 2, Points: 10, Reason: "1-3 suicide attempts"},
			}},
			{Feature: "q30", Bands: []Band{{Op: OpEq, Value: 2, Points: 18, Reason: "Suicide attempt with treatment"}}},
			{Feature: "q89", Bands: []Band{{Op: OpGTE, Value: 4, Points: 8, Reason: "Often disrespected"}}},
			{Feature: "q84", Bands: []Band{{Op: OpGTE, Value: 4, Points: 10, Reason: "Poor mental health"}}},
			{Feature: "q85", Bands: []Band{{Op: OpLTE, Value: 3, Points: 5, Reason: "Inadequate sleep"}}},
			{Feature: "QN106", Bands: []Band{{Op: OpEq, Value: 1, Points: 8, Reason: "Cognitive difficulties"}}},

			// Social factors
			{Feature: "q80", Bands: []Band{{Op: OpGTE, Value: 6, Points: 3, Reason: "Heavy social media use"}}},
			{Feature: "q86", Bands: []Band{{Op: OpGTE, Value: 2, Points: 7, Reason: "Housing instability"}}},
			{Feature: "QN102", Bands: []Band{{Op: OpEq, Value: 1, Points: 6, Reason: "Family incarceration"}}},

			// Protective factors
			{Feature: "q81", Bands: []Band{{Op: OpEq, Value: 1, Points: -12, Reason: "HIV negative test"}}},
			{Feature: "q103", Bands: []Band{{Op: OpLTE, Value: 2, Points: -8, Reason: "Community connection (protective)"}}},
			{Feature: "q104", Bands: []Band{{Op: OpGTE, Value: 4, Points: -8, Reason: "Safety awareness (protective)"}}},
			{Feature: "q78", Bands: []Band{{Op: OpGTE, Value: 2, Points: -5, Reason: "Community involvement (protective)"}}},
			{Feature: "q76", Bands: []Band{{Op: OpGTE, Value: 5, Points: -4, Reason: "Physical activity (protective)"}}},

			// Other co-factors
			{Feature: "q82", Bands: []Band{{Op: OpEq, Value: 1, Points: 8, Reason: "STD testing"}}},
			{Feature: "q66", Bands: []Band{
				{Op: OpEq, Value: 1, Points: 7, Reason: "Very underweight"},
				{Op: OpEq, Value: 2, Points: 5, Reason: "Slightly underweight"},
				{Op: OpGTE, Value: 4, Points: 3, Reason: "Overweight"},
			}},
			{Feature: "q65", Bands: []Band{{Op: OpEq, Value: 2, Points: 6, Reason: "Transgender"}}},

			// Diet
			{Feature: "q69", Bands: []Band{{Op: OpEq, Value: 1, Points: 2, Reason: "Poor diet (q69)"}}},
			{Feature: "q70", Bands: []Band{{Op: OpEq, Value: 1, Points: 2, Reason: "Poor diet (q70)"}}},
			{Feature: "q71", Bands: []Band{{Op: OpEq, Value: 1, Points: 2, Reason: "Poor diet (q71)"}}},
			{Feature: "q72", Bands: []Band{{Op: OpEq, Value: 1, Points: 2, Reason: "Poor diet (q72)"}}},
			{Feature: "q73", Bands: []Band{{Op: OpEq, Value: 1, Points: 2, Reason: "Poor diet (q73)"}}},
			{Feature: "q74", Bands: []Band{{Op: OpEq, Value: 1, Points: -2, Reason: "No soda (protective)"}}},

			// Single injection event sits below the escalation threshold
			{Feature: "q55", Bands: []Band{{Op: OpEq, Value: 2, Points: 30, Reason: "Injection drug use (1 time)"}}},
		},
		Combinations: []CombinationRule{
			{
				Name:   "q82_q61_combo",
				Points: 25,
				Reason: "STD testing + no condom",
				All: []Condition{
					{Feature: "q82", Op: OpEq, Value: 1},
					{Feature: "q61", Op: OpEq, Value: 3},
				},
			},
			{
				Name:   "q19_q86_substance_combo",
				Points: 40,
				Reason: "Forced sex + housing + substance",
				All: []Condition{
					{Feature: "q19", Op: OpEq, Value: 1},
					{Feature: "q86", Op: OpGTE, Value: 2},
				},
				AnyOf: []Condition{
					{Feature: "q55", Op: OpGTE, Value: 2},
					{Feature: "q52", Op: OpGTE, Value: 2},
				},
			},
			{
				Name:   "q59_q60_q62_combo",
				Points: 30,
				Reason: "Multiple partners + substance + no contraception",
				All: []Condition{
					{Feature: "q59", Op: OpGTE, Value: 3},
					{Feature: "q60", Op: OpEq, Value: 2},
					{Feature: "q62", Op: OpIn, Set: []int{2, 8}},
				},
			},
			{
				Name:   "q29_substance_combo",
				Points: 25,
				Reason: "Suicide attempts + substance",
				All: []Condition{
					{Feature: "q29", Op: OpGTE, Value: 2},
				},
				AnyOf: []Condition{
					{Feature: "q44", Op: OpGTE, Value: 5},
					{Feature: "q52", Op: OpGTE, Value: 2},
				},
			},
		},
	}
}
