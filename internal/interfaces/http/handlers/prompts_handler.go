package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printstarter/printstarter/internal/application/dto"
	"github.com/printstarter/printstarter/internal/application/service"
	"github.com/printstarter/printstarter/pkg/logger"
)

// PromptsHandler serves prompt suggestions for the ideation form.
type PromptsHandler struct {
	svc *service.SuggestionService
	log logger.Logger
}

// NewPromptsHandler creates the handler.
func NewPromptsHandler(svc *service.SuggestionService, log logger.Logger) *PromptsHandler {
	return &PromptsHandler{svc: svc, log: log}
}

// Suggest handles POST /api/prompts.
func (h *PromptsHandler) Suggest(c *gin.Context) {
	var req dto.PromptRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	out, err := h.svc.Suggest(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	setCacheMeta(c, out.CacheHit)
	c.JSON(http.StatusOK, out.Payload)
}
