package handlers

import (
	"errors"

	"github.com/AugusDogus/whisp-sub001/internal/httpx"
	"github.com/AugusDogus/whisp-sub001/internal/models"
	"github.com/AugusDogus/whisp-sub001/internal/service"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

type registerTokenInput struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func (h *NotificationHandler) RegisterToken(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input registerTokenInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	token, err := h.notificationService.RegisterToken(userID, input.Token, models.PushPlatform(input.Platform))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingToken):
			return httpx.BadRequest(c, "missing_token", "token is required")
		case errors.Is(err, service.ErrInvalidPlatform):
			return httpx.BadRequest(c, "invalid_platform", "platform must be ios, android or web")
		}
		return httpx.Internal(c, "register_token_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(token.ToResponse())
}

type removeTokenInput struct {
	Token string `json:"token"`
}

func (h *NotificationHandler) RemoveToken(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input removeTokenInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if err := h.notificationService.RemoveToken(userID, input.Token); err != nil {
		if errors.Is(err, service.ErrMissingToken) {
			return httpx.BadRequest(c, "missing_token", "token is required")
		}
		return httpx.Internal(c, "remove_token_failed")
	}
	return c.JSON(fiber.Map{"status": "removed"})
}

func (h *NotificationHandler) ListTokens(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	tokens, err := h.notificationService.ListTokens(userID)
	if err != nil {
		return httpx.Internal(c, "list_tokens_failed")
	}

	responses := make([]models.PushTokenResponse, len(tokens))
	for i := range tokens {
		responses[i] = tokens[i].ToResponse()
	}
	return c.JSON(fiber.Map{
		"tokens": responses,
		"count":  len(responses),
	})
}

func (h *NotificationHandler) GetPreferences(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	prefs, err := h.notificationService.GetPreferences(userID)
	if err != nil {
		return httpx.Internal(c, "get_preferences_failed")
	}
	return c.JSON(prefs)
}

func (h *NotificationHandler) UpdatePreferences(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var prefs models.NotificationPreferences
	if err := c.BodyParser(&prefs); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	updated, err := h.notificationService.UpdatePreferences(userID, prefs)
	if err != nil {
		return httpx.Internal(c, "update_preferences_failed")
	}
	return c.JSON(updated)
}
