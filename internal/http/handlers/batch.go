package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahanw/arogya-backend/internal/http/response"
	"github.com/sahanw/arogya-backend/internal/services"
)

type BatchHandler struct {
	batch services.BatchService
}

func NewBatchHandler(batch services.BatchService) *BatchHandler {
	return &BatchHandler{batch: batch}
}

// Process scores a set of submissions and reports how personalized the
// resulting plans are across participants.
func (h *BatchHandler) Process(c *gin.Context) {
	var req struct {
		Users []map[string]interface{} `json:"users"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := h.batch.Process(c.Request.Context(), req.Users)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, result)
}
