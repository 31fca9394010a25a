package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apphttp "github.com/sahanw/arogya-backend/internal/http"
	httpH "github.com/sahanw/arogya-backend/internal/http/handlers"
	httpMW "github.com/sahanw/arogya-backend/internal/http/middleware"
	"github.com/sahanw/arogya-backend/internal/observability"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Auth       *httpH.AuthHandler
	Assessment *httpH.AssessmentHandler
	Plan       *httpH.PlanHandler
	Batch      *httpH.BatchHandler
	Feature    *httpH.FeatureHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(db),
		Auth:       httpH.NewAuthHandler(services.Auth),
		Assessment: httpH.NewAssessmentHandler(services.Assessment),
		Plan:       httpH.NewPlanHandler(services.Assessment, services.Planner, services.Adaptation),
		Batch:      httpH.NewBatchHandler(services.Batch),
		Feature:    httpH.NewFeatureHandler(services.Catalog),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		HealthHandler:     handlers.Health,
		AuthHandler:       handlers.Auth,
		AuthMiddleware:    middleware.Auth,
		AssessmentHandler: handlers.Assessment,
		PlanHandler:       handlers.Plan,
		BatchHandler:      handlers.Batch,
		FeatureHandler:    handlers.Feature,
	})
}
