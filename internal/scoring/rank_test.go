package scoring

import (
	"testing"

	"github.com/sahanw/arogya-backend/internal/catalog"
	"github.com/sahanw/arogya-backend/internal/domain/assessment"
)

func testRanker(t *testing.T) *Ranker {
	t.Helper()
	cat, err := catalog.Default(nil)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return NewRanker(cat)
}

func TestRankFiltersToActionableFactors(t *testing.T) {
	ranker := testRanker(t)

	factors := []assessment.ScoredFactor{
		{Feature: "q61", Points: 12, Kind: assessment.KindRule},
		{Feature: "q81", Points: -12, Kind: assessment.KindRule},
		{Feature: "q82_q61_combo", Points: 25, Kind: assessment.KindCombination},
		{Feature: "never_had_sex", Points: 0, Kind: assessment.KindInformational},
		{Feature: "stage_summary", Points: 37, Kind: assessment.KindSummary},
		{Feature: "q55", Points: 999, Kind: assessment.KindOverride},
	}

	ranked := ranker.Rank(factors, DefaultTopN)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 actionable factors, got %d", len(ranked))
	}
	if ranked[0].Feature != "q55" || ranked[1].Feature != "q61" {
		t.Fatalf("expected [q55 q61], got [%s %s]", ranked[0].Feature, ranked[1].Feature)
	}
}

func TestRankOrderAndTruncation(t *testing.T) {
	ranker := testRanker(t)

	factors := []assessment.ScoredFactor{
		{Feature: "a", Points: 5, Kind: assessment.KindRule},
		{Feature: "b", Points: 20, Kind: assessment.KindRule},
		{Feature: "c", Points: 8, Kind: assessment.KindRule},
		{Feature: "d", Points: 8, Kind: assessment.KindRule},
		{Feature: "e", Points: 12, Kind: assessment.KindRule},
		{Feature: "f", Points: 3, Kind: assessment.KindRule},
		{Feature: "g", Points: 15, Kind: assessment.KindRule},
	}

	ranked := ranker.Rank(factors, 5)
	if len(ranked) != 5 {
		t.Fatalf("expected top 5, got %d", len(ranked))
	}
	want := []string{"b", "g", "e", "c", "d"}
	for i, feature := range want {
		if ranked[i].Feature != feature {
			t.Fatalf("position %d: expected %s, got %s", i, feature, ranked[i].Feature)
		}
	}
}

func TestRankEnrichesFromCatalog(t *testing.T) {
	ranker := testRanker(t)

	ranked := ranker.Rank([]assessment.ScoredFactor{
		{Feature: "q58", Points: 20, Kind: assessment.KindRule},
		{Feature: "not_in_catalog", Points: 4, Kind: assessment.KindRule},
	}, 5)

	if ranked[0].Question == "" || ranked[0].Question == "q58" {
		t.Fatalf("q58 should resolve a catalog prompt, got %q", ranked[0].Question)
	}
	if ranked[0].Category != assessment.CategorySexualBehavior {
		t.Fatalf("q58 should be sexual_behavior, got %s", ranked[0].Category)
	}
	if ranked[1].Question != "not_in_catalog" {
		t.Fatalf("unknown codes fall back to themselves, got %q", ranked[1].Question)
	}
	if ranked[1].Category != assessment.CategoryUnknown {
		t.Fatalf("unknown codes get the unknown category, got %s", ranked[1].Category)
	}
}

func TestRankDefaultsTopN(t *testing.T) {
	ranker := testRanker(t)

	factors := make([]assessment.ScoredFactor, 0, 8)
	for i := 0; i < 8; i++ {
		factors = append(factors, assessment.ScoredFactor{
			Feature: "q58",
			Points:  float64(i + 1),
			Kind:    assessment.KindRule,
		})
	}
	if got := len(ranker.Rank(factors, 0)); got != DefaultTopN {
		t.Fatalf("non-positive topN should use the default %d, got %d", DefaultTopN, got)
	}
}
