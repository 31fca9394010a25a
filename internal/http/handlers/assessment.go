package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sahanw/arogya-backend/internal/http/middleware"
	"github.com/sahanw/arogya-backend/internal/http/response"
	apperrors "github.com/sahanw/arogya-backend/internal/pkg/errors"
	"github.com/sahanw/arogya-backend/internal/services"
)

type AssessmentHandler struct {
	assessments services.AssessmentService
}

func NewAssessmentHandler(assessments services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

func (h *AssessmentHandler) Submit(c *gin.Context) {
	participantID, ok := middleware.ParticipantID(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", apperrors.ErrUnauthorized)
		return
	}
	var req struct {
		Responses map[string]interface{} `json:"responses"`
		Language  string                 `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	record, err := h.assessments.Submit(c.Request.Context(), participantID, req.Responses, req.Language)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, record)
}

func (h *AssessmentHandler) Get(c *gin.Context) {
	participantID, ok := middleware.ParticipantID(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", apperrors.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	record, err := h.assessments.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if record.ParticipantID != participantID {
		response.RespondError(c, http.StatusNotFound, "not_found",
			fmt.Errorf("%w: assessment %s", apperrors.ErrNotFound, id))
		return
	}
	response.RespondOK(c, record)
}

func (h *AssessmentHandler) Latest(c *gin.Context) {
	participantID, ok := middleware.ParticipantID(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", apperrors.ErrUnauthorized)
		return
	}
	record, err := h.assessments.Latest(c.Request.Context(), participantID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, record)
}

func (h *AssessmentHandler) List(c *gin.Context) {
	participantID, ok := middleware.ParticipantID(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", apperrors.ErrUnauthorized)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit",
				fmt.Errorf("%w: limit must be a positive integer", apperrors.ErrInvalidArgument))
			return
		}
		limit = n
	}
	records, err := h.assessments.List(c.Request.Context(), participantID, limit)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assessments": records})
}
