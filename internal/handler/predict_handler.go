package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"vertexadapters/internal/service"
)

// PredictHandler exposes the adapter pipelines over HTTP, one route parameter
// per configured provider.
type PredictHandler struct {
	services map[string]*service.PredictService
}

// NewPredictHandler creates a PredictHandler over the configured pipelines.
func NewPredictHandler(services map[string]*service.PredictService) *PredictHandler {
	return &PredictHandler{services: services}
}

type predictRequest struct {
	ItemIDs []string `json:"item_ids" binding:"required,min=1"`
}

// Predict handles POST /api/v1/models/:provider/predict
func (h *PredictHandler) Predict(c *gin.Context) {
	svc, ok := h.services[c.Param("provider")]
	if !ok {
		RespondError(c, http.StatusNotFound, "UNKNOWN_PROVIDER", "unknown model provider")
		return
	}

	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "item_ids is required and must be non-empty")
		return
	}

	collections, err := svc.PredictItems(c.Request.Context(), req.ItemIDs)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, collections)
}

// Providers handles GET /api/v1/providers
func (h *PredictHandler) Providers(c *gin.Context) {
	names := make([]string, 0, len(h.services))
	for name := range h.services {
		names = append(names, name)
	}
	sort.Strings(names)
	RespondOK(c, names)
}
