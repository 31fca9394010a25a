package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/sahanw/arogya-backend/internal/clients/classifier"
	"github.com/sahanw/arogya-backend/internal/clients/rediscache"
	assessmentrepo "github.com/sahanw/arogya-backend/internal/data/repos/assessment"
	"github.com/sahanw/arogya-backend/internal/domain/assessment"
	"github.com/sahanw/arogya-backend/internal/observability"
	"github.com/sahanw/arogya-backend/internal/pkg/dbctx"
	apperrors "github.com/sahanw/arogya-backend/internal/pkg/errors"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
	"github.com/sahanw/arogya-backend/internal/scoring"
)

const (
	stageSourceModel    = "model"
	stageSourceLocal    = "local_estimate"
	stageSourceOverride = "critical_override"
)

// AssessmentService scores questionnaire submissions and persists the results.
type AssessmentService interface {
	Submit(ctx context.Context, participantID uuid.UUID, responses map[string]interface{}, language string) (*assessment.Record, error)
	Get(ctx context.Context, id uuid.UUID) (*assessment.Record, error)
	Latest(ctx context.Context, participantID uuid.UUID) (*assessment.Record, error)
	List(ctx context.Context, participantID uuid.UUID, limit int) ([]assessment.Record, error)

	// ScoreResponses runs the full scoring pipeline without touching storage.
	ScoreResponses(ctx context.Context, responses map[string]interface{}) (assessment.RiskProfile, error)
}

type assessmentService struct {
	records    assessmentrepo.RecordRepo
	normalizer *scoring.Normalizer
	engine     *scoring.Engine
	ranker     *scoring.Ranker
	classifier classifier.Client
	cache      rediscache.Cache
	log        *logger.Logger

	featureMu    sync.Mutex
	featureNames []string
}

// NewAssessmentService wires the scoring pipeline. The classifier and cache
// are optional; pass nil to fall back to local stage estimation and
// uncached scoring.
func NewAssessmentService(
	records assessmentrepo.RecordRepo,
	normalizer *scoring.Normalizer,
	engine *scoring.Engine,
	ranker *scoring.Ranker,
	stageClassifier classifier.Client,
	cache rediscache.Cache,
	baseLog *logger.Logger,
) AssessmentService {
	return &assessmentService{
		records:    records,
		normalizer: normalizer,
		engine:     engine,
		ranker:     ranker,
		classifier: stageClassifier,
		cache:      cache,
		log:        baseLog.With("service", "Assessment"),
	}
}

func (s *assessmentService) ScoreResponses(ctx context.Context, responses map[string]interface{}) (assessment.RiskProfile, error) {
	if len(responses) == 0 {
		return assessment.RiskProfile{}, fmt.Errorf("%w: responses must not be empty", apperrors.ErrInvalidArgument)
	}

	cacheKey, haveKey := scoreCacheKey(responses)
	if s.cache != nil && haveKey {
		var cached assessment.RiskProfile
		found, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			s.log.Warn("Score cache lookup failed", "error", err)
		} else if found {
			return cached, nil
		}
	}

	normalized := s.normalizer.Normalize(responses)
	score, factors := s.engine.Score(normalized)
	topFactors := s.ranker.Rank(factors, scoring.DefaultTopN)

	critical := false
	for _, f := range factors {
		if f.Kind == assessment.KindOverride {
			critical = true
			break
		}
	}

	profile := assessment.RiskProfile{
		Score:              score,
		LocalStageEstimate: scoring.StageEstimate(score),
		CriticalOverride:   critical,
		Factors:            factors,
		TopFactors:         topFactors,
	}
	s.assignStage(ctx, &profile, responses)

	if m := observability.Current(); m != nil {
		m.ObserveAssessment(profile.Score, profile.StageSource, profile.CriticalOverride)
	}

	if s.cache != nil && haveKey {
		if err := s.cache.SetJSON(ctx, cacheKey, profile); err != nil {
			s.log.Warn("Score cache write failed", "error", err)
		}
	}
	return profile, nil
}

// assignStage fills Stage, StageConfidence and StageSource. Critical
// overrides pin the stage to the maximum; otherwise the external
// classifier is consulted, with the score-band estimate as fallback.
func (s *assessmentService) assignStage(ctx context.Context, profile *assessment.RiskProfile, responses map[string]interface{}) {
	if profile.CriticalOverride {
		profile.Stage = 3
		profile.StageConfidence = 1.0
		profile.StageSource = stageSourceOverride
		return
	}

	if s.classifier != nil {
		names, err := s.modelFeatureNames(ctx)
		if err == nil {
			vector := s.normalizer.ModelVector(responses, names)
			pred, err := s.classifier.Predict(ctx, vector)
			if err == nil {
				profile.Stage = pred.Stage
				profile.StageConfidence = pred.Confidence
				profile.StageSource = stageSourceModel
				if pred.Stage != profile.LocalStageEstimate {
					s.log.Debug("Classifier stage differs from local estimate",
						"model_stage", pred.Stage, "local_stage", profile.LocalStageEstimate)
				}
				return
			}
			s.log.Warn("Stage prediction failed, using local estimate", "error", err)
		} else {
			s.log.Warn("Could not fetch model feature names, using local estimate", "error", err)
		}
	}

	profile.Stage = profile.LocalStageEstimate
	profile.StageConfidence = 0
	profile.StageSource = stageSourceLocal
}

func (s *assessmentService) modelFeatureNames(ctx context.Context) ([]string, error) {
	s.featureMu.Lock()
	defer s.featureMu.Unlock()
	if len(s.featureNames) > 0 {
		return s.featureNames, nil
	}
	names, err := s.classifier.FeatureNames(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: classifier returned no feature names", apperrors.ErrUnavailable)
	}
	s.featureNames = names
	return names, nil
}

func (s *assessmentService) Submit(ctx context.Context, participantID uuid.UUID, responses map[string]interface{}, language string) (*assessment.Record, error) {
	profile, err := s.ScoreResponses(ctx, responses)
	if err != nil {
		return nil, err
	}

	rawJSON, err := json.Marshal(responses)
	if err != nil {
		return nil, fmt.Errorf("failed to encode responses: %w", err)
	}
	factorsJSON, err := json.Marshal(profile.Factors)
	if err != nil {
		return nil, fmt.Errorf("failed to encode factors: %w", err)
	}
	topJSON, err := json.Marshal(profile.TopFactors)
	if err != nil {
		return nil, fmt.Errorf("failed to encode top factors: %w", err)
	}

	if language == "" {
		language = "en"
	}
	record := &assessment.Record{
		ParticipantID:    participantID,
		Responses:        rawJSON,
		Score:            profile.Score,
		Stage:            profile.Stage,
		StageConfidence:  profile.StageConfidence,
		StageSource:      profile.StageSource,
		CriticalOverride: profile.CriticalOverride,
		Factors:          factorsJSON,
		TopFactors:       topJSON,
		Language:         language,
	}
	if err := s.records.Create(dbctx.Context{Ctx: ctx}, record); err != nil {
		return nil, err
	}

	s.log.Info("Assessment recorded",
		"assessment_id", record.ID,
		"participant_id", participantID,
		"score", profile.Score,
		"stage", profile.Stage,
		"stage_source", profile.StageSource,
		"critical_override", profile.CriticalOverride)
	return record, nil
}

func (s *assessmentService) Get(ctx context.Context, id uuid.UUID) (*assessment.Record, error) {
	record, err := s.records.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: assessment %s", apperrors.ErrNotFound, id)
	}
	return record, nil
}

func (s *assessmentService) Latest(ctx context.Context, participantID uuid.UUID) (*assessment.Record, error) {
	record, err := s.records.GetLatestByParticipant(dbctx.Context{Ctx: ctx}, participantID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: no assessments for participant %s", apperrors.ErrNotFound, participantID)
	}
	return record, nil
}

func (s *assessmentService) List(ctx context.Context, participantID uuid.UUID, limit int) ([]assessment.Record, error) {
	return s.records.ListByParticipant(dbctx.Context{Ctx: ctx}, participantID, limit)
}

// scoreCacheKey derives a deterministic key from the raw responses.
// Map keys are sorted by encoding/json, so equal submissions share a key.
func scoreCacheKey(responses map[string]interface{}) (string, bool) {
	raw, err := json.Marshal(responses)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(raw)
	return "score:" + hex.EncodeToString(sum[:]), true
}
