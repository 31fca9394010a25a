package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/sahanw/arogya-backend/internal/http/handlers"
	httpMW "github.com/sahanw/arogya-backend/internal/http/middleware"
	"github.com/sahanw/arogya-backend/internal/observability"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	AssessmentHandler *httpH.AssessmentHandler
	PlanHandler       *httpH.PlanHandler
	BatchHandler      *httpH.BatchHandler
	FeatureHandler    *httpH.FeatureHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("arogya-backend"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Assessments
		if cfg.AssessmentHandler != nil {
			protected.POST("/assessments", cfg.AssessmentHandler.Submit)
			protected.GET("/assessments", cfg.AssessmentHandler.List)
			protected.GET("/assessments/latest", cfg.AssessmentHandler.Latest)
			protected.GET("/assessments/:id", cfg.AssessmentHandler.Get)
		}

		// Plans
		if cfg.PlanHandler != nil {
			protected.POST("/assessments/:id/plan", cfg.PlanHandler.Generate)
			protected.GET("/assessments/:id/plan", cfg.PlanHandler.Latest)
			protected.GET("/plans/:id", cfg.PlanHandler.Get)
			protected.POST("/plans/:id/adapt", cfg.PlanHandler.Adapt)
		}

		// Batch analytics
		if cfg.BatchHandler != nil {
			protected.POST("/batch/process", cfg.BatchHandler.Process)
		}

		// Questionnaire dictionary
		if cfg.FeatureHandler != nil {
			protected.GET("/features", cfg.FeatureHandler.List)
		}
	}

	return r
}
