package handlers

import (
	"github.com/AugusDogus/whisp-sub001/internal/httpx"
	"github.com/AugusDogus/whisp-sub001/internal/service"
	"github.com/gofiber/fiber/v2"
)

type WaitlistHandler struct {
	waitlistService *service.WaitlistService
}

func NewWaitlistHandler(waitlistService *service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlistService: waitlistService}
}

// Join adds the caller to the waitlist. Joining twice is fine.
func (h *WaitlistHandler) Join(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	if err := h.waitlistService.Join(userID); err != nil {
		return httpx.Internal(c, "waitlist_join_failed")
	}

	status, err := h.waitlistService.Status(userID)
	if err != nil {
		return httpx.Internal(c, "waitlist_status_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(status)
}

func (h *WaitlistHandler) Status(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	status, err := h.waitlistService.Status(userID)
	if err != nil {
		return httpx.Internal(c, "waitlist_status_failed")
	}
	return c.JSON(status)
}
