package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sahanw/arogya-backend/internal/catalog"
	apperrors "github.com/sahanw/arogya-backend/internal/pkg/errors"
	"github.com/sahanw/arogya-backend/internal/scoring"
)

func testAssessments(t *testing.T) *assessmentService {
	t.Helper()
	cat, err := catalog.Default(nil)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return &assessmentService{
		normalizer: scoring.NewNormalizer(),
		engine:     scoring.NewDefaultEngine(),
		ranker:     scoring.NewRanker(cat),
	}
}

func TestScoreResponsesLocalEstimate(t *testing.T) {
	svc := testAssessments(t)

	profile, err := svc.ScoreResponses(context.Background(), map[string]interface{}{
		"q14": 1.0, // 4+ partners
		"q61": 3.0, // no condom
		"q82": 1.0, // STD testing
	})
	if err != nil {
		t.Fatalf("score responses: %v", err)
	}
	if profile.Score != 60 {
		t.Fatalf("expected score 60, got %.1f", profile.Score)
	}
	if profile.StageSource != "local_estimate" {
		t.Fatalf("without a classifier the stage source is local_estimate, got %s", profile.StageSource)
	}
	if profile.Stage != profile.LocalStageEstimate {
		t.Fatalf("stage %d should equal the local estimate %d", profile.Stage, profile.LocalStageEstimate)
	}
	if profile.CriticalOverride {
		t.Fatalf("no override should fire here")
	}
	if len(profile.TopFactors) == 0 {
		t.Fatalf("expected ranked top factors")
	}
	if profile.TopFactors[0].Points < profile.TopFactors[len(profile.TopFactors)-1].Points {
		t.Fatalf("top factors must be sorted by points descending")
	}
}

func TestScoreResponsesCriticalOverride(t *testing.T) {
	svc := testAssessments(t)

	profile, err := svc.ScoreResponses(context.Background(), map[string]interface{}{"q55": 4.0})
	if err != nil {
		t.Fatalf("score responses: %v", err)
	}
	if !profile.CriticalOverride {
		t.Fatalf("q55=4 must trigger the escalation override")
	}
	if profile.Stage != 3 {
		t.Fatalf("critical overrides pin stage 3, got %d", profile.Stage)
	}
	if profile.StageConfidence != 1.0 {
		t.Fatalf("critical overrides carry full confidence, got %.2f", profile.StageConfidence)
	}
	if profile.StageSource != "critical_override" {
		t.Fatalf("unexpected stage source %s", profile.StageSource)
	}
	if profile.Score != scoring.SentinelScore {
		t.Fatalf("expected the sentinel score, got %.1f", profile.Score)
	}
}

func TestScoreResponsesEmptyRejected(t *testing.T) {
	svc := testAssessments(t)

	if _, err := svc.ScoreResponses(context.Background(), nil); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestScoreCacheKeyDeterministic(t *testing.T) {
	a, okA := scoreCacheKey(map[string]interface{}{"q58": 5.0, "q61": 3.0})
	b, okB := scoreCacheKey(map[string]interface{}{"q61": 3.0, "q58": 5.0})
	if !okA || !okB {
		t.Fatalf("cache keys should derive for plain maps")
	}
	if a != b {
		t.Fatalf("equal submissions must share a cache key: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "score:") {
		t.Fatalf("cache keys carry the score: prefix, got %q", a)
	}

	c, _ := scoreCacheKey(map[string]interface{}{"q58": 6.0})
	if a == c {
		t.Fatalf("different submissions must not share a key on these inputs")
	}
}
