package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sahanw/arogya-backend/internal/http/middleware"
	"github.com/sahanw/arogya-backend/internal/http/response"
	apperrors "github.com/sahanw/arogya-backend/internal/pkg/errors"
	"github.com/sahanw/arogya-backend/internal/services"
)

type PlanHandler struct {
	assessments services.AssessmentService
	planner     services.PlannerService
	adaptation  services.AdaptationService
}

func NewPlanHandler(assessments services.AssessmentService, planner services.PlannerService, adaptation services.AdaptationService) *PlanHandler {
	return &PlanHandler{
		assessments: assessments,
		planner:     planner,
		adaptation:  adaptation,
	}
}

// Generate builds a new plan for one of the caller's assessments.
func (h *PlanHandler) Generate(c *gin.Context) {
	participantID, ok := middleware.ParticipantID(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", apperrors.ErrUnauthorized)
		return
	}
	assessmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	record, err := h.assessments.Get(c.Request.Context(), assessmentID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if record.ParticipantID != participantID {
		response.RespondError(c, http.StatusNotFound, "not_found",
			fmt.Errorf("%w: assessment %s", apperrors.ErrNotFound, assessmentID))
		return
	}

	planRecord, plan, err := h.planner.GeneratePlan(c.Request.Context(), assessmentID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"plan_id": planRecord.ID,
		"plan":    plan,
	})
}

func (h *PlanHandler) Get(c *gin.Context) {
	participantID, ok := middleware.ParticipantID(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", apperrors.ErrUnauthorized)
		return
	}
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	plan, err := h.planner.GetPlan(c.Request.Context(), planID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if plan.ParticipantID != participantID {
		response.RespondError(c, http.StatusNotFound, "not_found",
			fmt.Errorf("%w: plan %s", apperrors.ErrNotFound, planID))
		return
	}
	response.RespondOK(c, plan)
}

// Latest returns the most recent plan for one of the caller's assessments.
func (h *PlanHandler) Latest(c *gin.Context) {
	participantID, ok := middleware.ParticipantID(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", apperrors.ErrUnauthorized)
		return
	}
	assessmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	plan, err := h.planner.LatestPlanForAssessment(c.Request.Context(), assessmentID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if plan.ParticipantID != participantID {
		response.RespondError(c, http.StatusNotFound, "not_found",
			fmt.Errorf("%w: plan for assessment %s", apperrors.ErrNotFound, assessmentID))
		return
	}
	response.RespondOK(c, plan)
}

// Adapt rewrites a plan's narrative text for a language and culture.
func (h *PlanHandler) Adapt(c *gin.Context) {
	participantID, ok := middleware.ParticipantID(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", apperrors.ErrUnauthorized)
		return
	}
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Language string `json:"language"`
		Culture  string `json:"culture"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	existing, err := h.planner.GetPlan(c.Request.Context(), planID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if existing.ParticipantID != participantID {
		response.RespondError(c, http.StatusNotFound, "not_found",
			fmt.Errorf("%w: plan %s", apperrors.ErrNotFound, planID))
		return
	}

	plan, phases, err := h.adaptation.AdaptPlan(c.Request.Context(), planID, req.Language, req.Culture)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"plan_id":  plan.ID,
		"language": plan.Language,
		"phases":   phases,
	})
}
