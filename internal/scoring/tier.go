package scoring

import "github.com/sahanw/arogya-backend/internal/domain/assessment"

// TierFor derives a priority tier from a point delta's sign and magnitude.
// Positive deltas are risks to reduce, negative deltas are protective factors
// to maintain.
func TierFor(points float64) assessment.PriorityTier {
	switch {
	case points >= 20:
		return assessment.TierCriticalRisk
	case points >= 10:
		return assessment.TierHighRisk
	case points >= 5:
		return assessment.TierMediumRisk
	case points > 0:
		return assessment.TierLowRisk
	case points <= -10:
		return assessment.TierStrongProtective
	case points <= -5:
		return assessment.TierModerateProtective
	case points < 0:
		return assessment.TierWeakProtective
	default:
		return assessment.TierNeutral
	}
}

// StageEstimate bins a continuous score into a coarse 0-3 stage. The
// classifier owns the authoritative stage; this estimate is kept as a debug
// cross-check and as a fallback when the classifier is unreachable.
func StageEstimate(score float64) int {
	switch {
	case score <= 25:
		return 0
	case score <= 60:
		return 1
	case score <= 100:
		return 2
	default:
		return 3
	}
}
