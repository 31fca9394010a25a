package timeline

import (
	"strings"
	"testing"

	"github.com/sahanw/arogya-backend/internal/domain/assessment"
)

func TestPlanGuideEmptyFactors(t *testing.T) {
	s := NewDefaultScheduler()

	guide := s.PlanGuide(nil)
	if guide.TotalWeeks != 4 {
		t.Fatalf("no factors should clamp to the minimum 4 weeks, got %d", guide.TotalWeeks)
	}
	if len(guide.Categories) != 0 {
		t.Fatalf("no factors means no categories, got %v", guide.Categories)
	}
	if !strings.Contains(guide.Guidance, "general risk education") {
		t.Fatalf("empty plans fall back to general guidance, got %q", guide.Guidance)
	}
}

func TestPlanGuideSumsCategoryWeeks(t *testing.T) {
	s := NewDefaultScheduler()

	guide := s.PlanGuide([]assessment.ScoredFactor{
		{Feature: "q58", Points: 15, Category: assessment.CategorySexualBehavior},
		{Feature: "q61", Points: 12, Category: assessment.CategorySexualBehavior},
		{Feature: "q20", Points: 14, Category: assessment.CategoryViolence},
	})

	// base 2 + sexual_behavior 4 + violence 6 + high-impact bonus 2
	if guide.TotalWeeks != 14 {
		t.Fatalf("expected 14 weeks, got %d", guide.TotalWeeks)
	}
	if guide.HighImpactCount != 3 {
		t.Fatalf("expected 3 high-impact factors, got %d", guide.HighImpactCount)
	}
	if len(guide.Categories) != 2 {
		t.Fatalf("expected 2 distinct categories, got %v", guide.Categories)
	}
}

func TestPlanGuideHighImpactBonus(t *testing.T) {
	s := NewDefaultScheduler()

	base := s.PlanGuide([]assessment.ScoredFactor{
		{Points: 6, Category: assessment.CategoryMentalHealth},
	})
	bonus := s.PlanGuide([]assessment.ScoredFactor{
		{Points: 15, Category: assessment.CategoryMentalHealth},
		{Points: 12, Category: assessment.CategoryMentalHealth},
		{Points: 10, Category: assessment.CategoryMentalHealth},
	})
	if bonus.TotalWeeks != base.TotalWeeks+2 {
		t.Fatalf("3+ high-impact factors should add 2 weeks: base %d, bonus %d", base.TotalWeeks, bonus.TotalWeeks)
	}
}

func TestPlanGuideClampsToMaximum(t *testing.T) {
	s := NewDefaultScheduler()

	factors := []assessment.ScoredFactor{
		{Points: 15, Category: assessment.CategorySexualBehavior},
		{Points: 20, Category: assessment.CategorySubstanceUse},
		{Points: 14, Category: assessment.CategoryViolence},
		{Points: 10, Category: assessment.CategoryMentalHealth},
		{Points: 7, Category: assessment.CategorySocialFactors},
		{Points: 3, Category: assessment.CategoryDemographics},
	}
	guide := s.PlanGuide(factors)
	if guide.TotalWeeks != 16 {
		t.Fatalf("duration must clamp at 16 weeks, got %d", guide.TotalWeeks)
	}
}

func TestPlanGuideHighImpactBonusClamps(t *testing.T) {
	s := NewDefaultScheduler()

	// 2 base + 3 + 6 + 4 = 15, plus the 2-week bonus for three
	// high-impact factors, clamped back to 16.
	guide := s.PlanGuide([]assessment.ScoredFactor{
		{Points: 20, Category: assessment.CategorySubstanceUse},
		{Points: 15, Category: assessment.CategoryViolence},
		{Points: 12, Category: assessment.CategoryMentalHealth},
	})
	if guide.HighImpactCount != 3 {
		t.Fatalf("expected 3 high-impact factors, got %d", guide.HighImpactCount)
	}
	if guide.TotalWeeks != 16 {
		t.Fatalf("17 estimated weeks must clamp to 16, got %d", guide.TotalWeeks)
	}
	if len(guide.Categories) != 3 {
		t.Fatalf("expected 3 categories, got %v", guide.Categories)
	}
}

func TestPlanGuideIgnoresProtectiveFactors(t *testing.T) {
	s := NewDefaultScheduler()

	guide := s.PlanGuide([]assessment.ScoredFactor{
		{Points: -12, Category: assessment.CategoryProtective},
		{Points: 0, Category: assessment.CategoryGeneral},
	})
	if len(guide.Categories) != 0 {
		t.Fatalf("non-positive factors must not contribute categories, got %v", guide.Categories)
	}
}

func TestPlanGuideUncategorizedCountsAsGeneral(t *testing.T) {
	s := NewDefaultScheduler()

	guide := s.PlanGuide([]assessment.ScoredFactor{{Points: 8}})
	if len(guide.Categories) != 1 || guide.Categories[0] != assessment.CategoryGeneral {
		t.Fatalf("uncategorized factors should fall into general, got %v", guide.Categories)
	}
	// base 2 + general 2, clamped to the minimum
	if guide.TotalWeeks != 4 {
		t.Fatalf("expected 4 weeks, got %d", guide.TotalWeeks)
	}
}
