package scoring

import (
	"sort"

	"github.com/sahanw/arogya-backend/internal/catalog"
	"github.com/sahanw/arogya-backend/internal/domain/assessment"
)

// DefaultTopN bounds the ranked factor list shown to participants.
const DefaultTopN = 5

// Ranker filters triggered factors down to the actionable risk factors and
// enriches them with catalog metadata.
type Ranker struct {
	catalog *catalog.Catalog
}

func NewRanker(cat *catalog.Catalog) *Ranker {
	return &Ranker{catalog: cat}
}

// Rank keeps strictly positive, individually actionable factors (combination,
// informational and summary entries are dropped), sorts them by points
// descending with rule-evaluation order breaking ties, truncates to topN and
// attaches the catalog prompt and category.
func (r *Ranker) Rank(factors []assessment.ScoredFactor, topN int) []assessment.ScoredFactor {
	if topN <= 0 {
		topN = DefaultTopN
	}
	ranked := make([]assessment.ScoredFactor, 0, len(factors))
	for _, f := range factors {
		if f.Points <= 0 {
			continue
		}
		if f.Kind != assessment.KindRule && f.Kind != assessment.KindOverride {
			continue
		}
		ranked = append(ranked, f)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	for i := range ranked {
		ranked[i].Question = r.catalog.Question(ranked[i].Feature)
		ranked[i].Category = r.catalog.Category(ranked[i].Feature)
	}
	return ranked
}
