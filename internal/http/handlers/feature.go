package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sahanw/arogya-backend/internal/catalog"
	"github.com/sahanw/arogya-backend/internal/http/response"
)

type FeatureHandler struct {
	catalog *catalog.Catalog
}

func NewFeatureHandler(cat *catalog.Catalog) *FeatureHandler {
	return &FeatureHandler{catalog: cat}
}

// List returns the questionnaire feature dictionary so clients can render
// prompts and answer options.
func (h *FeatureHandler) List(c *gin.Context) {
	defs := h.catalog.Definitions()
	response.RespondOK(c, gin.H{
		"features": defs,
		"count":    len(defs),
	})
}
