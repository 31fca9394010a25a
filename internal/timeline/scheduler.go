package timeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahanw/arogya-backend/internal/domain/assessment"
)

// SchedulerConfig holds the duration model constants. Zero values fall back
// to the clinical defaults.
type SchedulerConfig struct {
	CategoryWeeks       map[assessment.Category]int
	BaseWeeks           int
	MinWeeks            int
	MaxWeeks            int
	HighImpactThreshold float64
	HighImpactBonus     int
}

// DefaultSchedulerConfig returns the evidence-based per-category week
// estimates.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		CategoryWeeks: map[assessment.Category]int{
			assessment.CategorySexualBehavior: 4,
			assessment.CategorySubstanceUse:   3,
			assessment.CategoryViolence:       6,
			assessment.CategoryMentalHealth:   4,
			assessment.CategorySocialFactors:  3,
			assessment.CategoryProtective:     2,
			assessment.CategoryGeneral:        2,
			assessment.CategoryUnknown:        2,
		},
		BaseWeeks:           2,
		MinWeeks:            4,
		MaxWeeks:            16,
		HighImpactThreshold: 10,
		HighImpactBonus:     2,
	}
}

// Scheduler estimates how long an intervention plan should run based on how
// many distinct problem areas it must cover and how severe they are.
type Scheduler struct {
	cfg SchedulerConfig
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	def := DefaultSchedulerConfig()
	if cfg.CategoryWeeks == nil {
		cfg.CategoryWeeks = def.CategoryWeeks
	}
	if cfg.BaseWeeks == 0 {
		cfg.BaseWeeks = def.BaseWeeks
	}
	if cfg.MinWeeks == 0 {
		cfg.MinWeeks = def.MinWeeks
	}
	if cfg.MaxWeeks == 0 {
		cfg.MaxWeeks = def.MaxWeeks
	}
	if cfg.HighImpactThreshold == 0 {
		cfg.HighImpactThreshold = def.HighImpactThreshold
	}
	if cfg.HighImpactBonus == 0 {
		cfg.HighImpactBonus = def.HighImpactBonus
	}
	return &Scheduler{cfg: cfg}
}

func NewDefaultScheduler() *Scheduler {
	return NewScheduler(DefaultSchedulerConfig())
}

// PlanGuide converts ranked risk factors into a bounded duration estimate and
// a guidance string for the text generator. Only positive-point factors
// participate; the result is always within [MinWeeks, MaxWeeks].
func (s *Scheduler) PlanGuide(factors []assessment.ScoredFactor) assessment.TimelinePlanGuide {
	seen := map[assessment.Category]bool{}
	highImpact := 0
	for _, f := range factors {
		if f.Points <= 0 {
			continue
		}
		cat := f.Category
		if cat == "" {
			cat = assessment.CategoryGeneral
		}
		seen[cat] = true
		if f.Points >= s.cfg.HighImpactThreshold {
			highImpact++
		}
	}

	categories := make([]assessment.Category, 0, len(seen))
	for cat := range seen {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	weeks := s.cfg.BaseWeeks
	for _, cat := range categories {
		if w, ok := s.cfg.CategoryWeeks[cat]; ok {
			weeks += w
		} else {
			weeks += s.cfg.CategoryWeeks[assessment.CategoryUnknown]
		}
	}

	if highImpact >= 3 {
		weeks += s.cfg.HighImpactBonus
	} else if highImpact == 0 && len(categories) > 0 {
		if weeks < s.cfg.MinWeeks {
			weeks = s.cfg.MinWeeks
		}
	}

	if weeks < s.cfg.MinWeeks {
		weeks = s.cfg.MinWeeks
	}
	if weeks > s.cfg.MaxWeeks {
		weeks = s.cfg.MaxWeeks
	}

	return assessment.TimelinePlanGuide{
		TotalWeeks:      weeks,
		Categories:      categories,
		HighImpactCount: highImpact,
		Guidance:        guidance(weeks, categories, highImpact),
	}
}

func guidance(weeks int, categories []assessment.Category, highImpact int) string {
	focus := "general risk education"
	if len(categories) > 0 {
		names := make([]string, len(categories))
		for i, c := range categories {
			names[i] = string(c)
		}
		focus = strings.Join(names, ", ")
	}
	return fmt.Sprintf(
		"STRUCTURE THE PLAN AS FOLLOWS:\n"+
			"- Total duration: %d weeks\n"+
			"- Focus areas: %s\n"+
			"- High-impact factors to address: %d\n"+
			"- Format: Create sequential phases, each focusing on one primary area.\n"+
			"- First phase should address the highest-scoring risk factor.",
		weeks, focus, highImpact)
}
