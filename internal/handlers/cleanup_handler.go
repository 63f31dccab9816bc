package handlers

import (
	"time"

	"github.com/AugusDogus/whisp-sub001/internal/httpx"
	"github.com/AugusDogus/whisp-sub001/internal/service"
	"github.com/gofiber/fiber/v2"
)

type CleanupHandler struct {
	cleanupService *service.CleanupService
}

func NewCleanupHandler(cleanupService *service.CleanupService) *CleanupHandler {
	return &CleanupHandler{cleanupService: cleanupService}
}

// Sweep runs the retention sweep. Invoked by the external scheduler behind
// the cron secret middleware.
func (h *CleanupHandler) Sweep(c *fiber.Ctx) error {
	result, err := h.cleanupService.Sweep(c.Context(), time.Now().UTC())
	if err != nil {
		return httpx.Internal(c, "sweep_failed")
	}
	return c.JSON(result)
}
