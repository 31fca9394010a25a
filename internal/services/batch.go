package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sahanw/arogya-backend/internal/domain/assessment"
	"github.com/sahanw/arogya-backend/internal/observability"
	apperrors "github.com/sahanw/arogya-backend/internal/pkg/errors"
	"github.com/sahanw/arogya-backend/internal/platform/env"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

// BatchUserResult is the full pipeline output for one submission.
type BatchUserResult struct {
	UserID         string                 `json:"user_id"`
	Timestamp      time.Time              `json:"timestamp"`
	RiskPrediction assessment.RiskProfile `json:"risk_prediction"`
	Plan           assessment.Plan        `json:"intervention_plan"`
}

// BatchComparison contrasts two submissions' outputs. Two participants at
// the same stage should still receive mostly different interventions when
// their contributing factors differ.
type BatchComparison struct {
	User1ID                string `json:"user1_id"`
	User2ID                string `json:"user2_id"`
	SameRiskStage          bool   `json:"same_risk_stage"`
	CommonInterventions    int    `json:"common_interventions"`
	DifferentInterventions int    `json:"different_interventions"`
	CommonRiskFactors      int    `json:"common_risk_factors"`
	IsTrulyPersonalized    bool   `json:"is_truly_personalized"`
}

// PersonalizationAnalysis aggregates the pairwise comparisons.
type PersonalizationAnalysis struct {
	TotalComparisons     int     `json:"total_comparisons"`
	SameStageComparisons int     `json:"same_stage_comparisons"`
	TrulyPersonalized    int     `json:"truly_personalized"`
	PersonalizationRate  float64 `json:"personalization_rate"`
	Analysis             string  `json:"analysis"`
}

type BatchResult struct {
	Results                 []BatchUserResult       `json:"results"`
	Comparisons             []BatchComparison       `json:"comparisons"`
	PersonalizationAnalysis PersonalizationAnalysis `json:"personalization_analysis"`
}

// BatchService runs the scoring and planning pipeline over many
// submissions and measures how personalized the resulting plans are.
type BatchService interface {
	Process(ctx context.Context, submissions []map[string]interface{}) (*BatchResult, error)
}

type batchService struct {
	assessments AssessmentService
	planner     PlannerService
	log         *logger.Logger
	concurrency int
}

func NewBatchService(assessments AssessmentService, planner PlannerService, baseLog *logger.Logger) BatchService {
	log := baseLog.With("service", "Batch")
	concurrency := env.GetEnvAsInt("BATCH_CONCURRENCY", 4, log)
	if concurrency < 1 {
		concurrency = 1
	}
	return &batchService{
		assessments: assessments,
		planner:     planner,
		log:         log,
		concurrency: concurrency,
	}
}

func (s *batchService) Process(ctx context.Context, submissions []map[string]interface{}) (*BatchResult, error) {
	if len(submissions) == 0 {
		return nil, fmt.Errorf("%w: no submissions provided", apperrors.ErrInvalidArgument)
	}
	s.log.Info("Batch processing started", "submissions", len(submissions))

	results := make([]BatchUserResult, len(submissions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range submissions {
		idx := i
		submission := submissions[i]
		g.Go(func() error {
			profile, err := s.assessments.ScoreResponses(gctx, submission)
			if err != nil {
				return fmt.Errorf("submission %d: %w", idx, err)
			}
			plan := s.planner.BuildPlan(gctx, profile, submission)
			results[idx] = BatchUserResult{
				UserID:         batchUserID(submission),
				Timestamp:      time.Now().UTC(),
				RiskPrediction: profile,
				Plan:           plan,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var comparisons []BatchComparison
	for i := 0; i < len(results); i++ {
		for j := i + 1; j < len(results); j++ {
			comparisons = append(comparisons, compareResults(results[i], results[j]))
		}
	}

	if m := observability.Current(); m != nil {
		m.ObserveBatch(len(submissions))
	}

	analysis := analyzePersonalization(comparisons)
	s.log.Info("Batch processing complete",
		"submissions", len(submissions),
		"comparisons", len(comparisons),
		"personalization_rate", analysis.PersonalizationRate)
	return &BatchResult{
		Results:                 results,
		Comparisons:             comparisons,
		PersonalizationAnalysis: analysis,
	}, nil
}

func compareResults(a, b BatchUserResult) BatchComparison {
	sameStage := a.RiskPrediction.Stage == b.RiskPrediction.Stage

	names1 := phaseNameSet(a.Plan.Phases)
	names2 := phaseNameSet(b.Plan.Phases)
	common, different := 0, 0
	for name := range names1 {
		if names2[name] {
			common++
		} else {
			different++
		}
	}
	for name := range names2 {
		if !names1[name] {
			different++
		}
	}

	commonFactors := 0
	top1 := topFactorSet(a.RiskPrediction.TopFactors, 3)
	for _, f := range topFactorsPrefix(b.RiskPrediction.TopFactors, 3) {
		if top1[f.Feature] {
			commonFactors++
		}
	}

	personalized := true
	if sameStage {
		personalized = different > common
	}
	return BatchComparison{
		User1ID:                a.UserID,
		User2ID:                b.UserID,
		SameRiskStage:          sameStage,
		CommonInterventions:    common,
		DifferentInterventions: different,
		CommonRiskFactors:      commonFactors,
		IsTrulyPersonalized:    personalized,
	}
}

func analyzePersonalization(comparisons []BatchComparison) PersonalizationAnalysis {
	if len(comparisons) == 0 {
		return PersonalizationAnalysis{Analysis: "No comparisons available"}
	}
	sameStage, personalized := 0, 0
	for _, c := range comparisons {
		if !c.SameRiskStage {
			continue
		}
		sameStage++
		if c.IsTrulyPersonalized {
			personalized++
		}
	}
	rate := 0.0
	if sameStage > 0 {
		rate = float64(personalized) / float64(sameStage)
	}
	return PersonalizationAnalysis{
		TotalComparisons:     len(comparisons),
		SameStageComparisons: sameStage,
		TrulyPersonalized:    personalized,
		PersonalizationRate:  rate,
		Analysis:             fmt.Sprintf("%d/%d same-stage users got different plans", personalized, sameStage),
	}
}

func phaseNameSet(phases []assessment.InterventionPhase) map[string]bool {
	names := make(map[string]bool, len(phases))
	for _, p := range phases {
		names[p.Name] = true
	}
	return names
}

func topFactorSet(factors []assessment.ScoredFactor, n int) map[string]bool {
	set := make(map[string]bool, n)
	for _, f := range topFactorsPrefix(factors, n) {
		set[f.Feature] = true
	}
	return set
}

func topFactorsPrefix(factors []assessment.ScoredFactor, n int) []assessment.ScoredFactor {
	if len(factors) > n {
		return factors[:n]
	}
	return factors
}

// batchUserID derives a stable anonymous identifier from the submission.
// Map keys are sorted by encoding/json, so equal inputs share an ID.
func batchUserID(submission map[string]interface{}) string {
	raw, err := json.Marshal(submission)
	if err != nil {
		return "unknown"
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:4])
}
