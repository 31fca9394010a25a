package app

import (
	"fmt"

	"github.com/sahanw/arogya-backend/internal/catalog"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
	"github.com/sahanw/arogya-backend/internal/scoring"
	"github.com/sahanw/arogya-backend/internal/services"
	"github.com/sahanw/arogya-backend/internal/timeline"
)

type Services struct {
	Auth       services.AuthService
	Assessment services.AssessmentService
	Planner    services.PlannerService
	Adaptation services.AdaptationService
	Batch      services.BatchService

	Catalog *catalog.Catalog
}

func wireServices(log *logger.Logger, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	cat, err := catalog.Default(log)
	if err != nil {
		return Services{}, fmt.Errorf("load feature catalog: %w", err)
	}

	normalizer := scoring.NewNormalizer()
	engine := scoring.NewDefaultEngine()
	ranker := scoring.NewRanker(cat)
	scheduler := timeline.NewDefaultScheduler()
	assembler := timeline.NewAssembler()

	authService, err := services.NewAuthService(repos.Participant, log)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	assessmentService := services.NewAssessmentService(
		repos.Record,
		normalizer,
		engine,
		ranker,
		clients.Classifier,
		clients.Cache,
		log,
	)
	plannerService := services.NewPlannerService(
		repos.Record,
		repos.Plan,
		cat,
		scheduler,
		assembler,
		clients.TextGen,
		log,
	)
	adaptationService := services.NewAdaptationService(
		repos.Plan,
		repos.Participant,
		clients.TextGen,
		log,
	)
	batchService := services.NewBatchService(assessmentService, plannerService, log)

	return Services{
		Auth:       authService,
		Assessment: assessmentService,
		Planner:    plannerService,
		Adaptation: adaptationService,
		Batch:      batchService,
		Catalog:    cat,
	}, nil
}
