package handler

import (
	"compliance-coursegen/internal/config"
	"compliance-coursegen/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports liveness and the configured generation backend.
type HealthHandler struct {
	llm config.LLMConfig
}

func NewHealthHandler(llm config.LLMConfig) *HealthHandler {
	return &HealthHandler{llm: llm}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:   "ok",
		Provider: h.llm.Provider,
		Model:    h.llm.Model,
	})
}
