package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printstarter/printstarter/internal/application/dto"
	"github.com/printstarter/printstarter/internal/application/service"
	"github.com/printstarter/printstarter/pkg/logger"
)

// GenerateHandler serves product-idea generation.
type GenerateHandler struct {
	svc *service.IdeaService
	log logger.Logger
}

// NewGenerateHandler creates the handler.
func NewGenerateHandler(svc *service.IdeaService, log logger.Logger) *GenerateHandler {
	return &GenerateHandler{svc: svc, log: log}
}

// Generate handles POST /api/generate.
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	out, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	setCacheMeta(c, out.CacheHit)
	c.JSON(http.StatusOK, out.Payload)
}
