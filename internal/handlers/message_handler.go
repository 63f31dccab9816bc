package handlers

import (
	"errors"

	"github.com/AugusDogus/whisp-sub001/internal/httpx"
	"github.com/AugusDogus/whisp-sub001/internal/service"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send fans an uploaded media item out to the given recipients. The media
// itself was already uploaded through the presign flow; the body carries only
// its key and metadata.
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.SendInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	message, err := h.messageService.Send(c.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFile):
			return httpx.BadRequest(c, "missing_file", "file_url and file_key are required")
		case errors.Is(err, service.ErrUnsupportedMedia):
			return httpx.BadRequest(c, "unsupported_media_type", "Unsupported media type")
		case errors.Is(err, service.ErrNoRecipients):
			return httpx.BadRequest(c, "missing_recipients", "At least one recipient is required")
		case errors.Is(err, service.ErrNotFriends):
			return httpx.Forbidden(c, "not_friends", "All recipients must be friends")
		}
		return httpx.Internal(c, "send_message_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(message.ToOutboxItem())
}

func (h *MessageHandler) Inbox(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	limit := c.QueryInt("limit", 50)
	items, err := h.messageService.Inbox(userID, limit)
	if err != nil {
		return httpx.Internal(c, "list_inbox_failed")
	}

	return c.JSON(fiber.Map{
		"messages": items,
		"count":    len(items),
	})
}

func (h *MessageHandler) Outbox(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	limit := c.QueryInt("limit", 50)
	items, err := h.messageService.Outbox(userID, limit)
	if err != nil {
		return httpx.Internal(c, "list_outbox_failed")
	}

	return c.JSON(fiber.Map{
		"messages": items,
		"count":    len(items),
	})
}

func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	count, err := h.messageService.UnreadCount(userID)
	if err != nil {
		return httpx.Internal(c, "unread_count_failed")
	}
	return c.JSON(fiber.Map{"unread": count})
}

// MarkRead stamps the caller's delivery as read. Idempotent: a second call
// reports changed=false.
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	deliveryID, err := c.ParamsInt("id")
	if err != nil || deliveryID <= 0 {
		return httpx.BadRequest(c, "invalid_delivery_id", "Invalid delivery id")
	}

	result, err := h.messageService.MarkRead(uint(deliveryID), userID)
	if err != nil {
		return httpx.Internal(c, "mark_read_failed")
	}
	return c.JSON(result)
}

type cleanupInput struct {
	FileKey string `json:"file_key"`
}

// Cleanup finalizes a fully read message: deletes the stored media and
// soft-deletes the row. Callable by any participant.
func (h *MessageHandler) Cleanup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	messageID, err := c.ParamsInt("id")
	if err != nil || messageID <= 0 {
		return httpx.BadRequest(c, "invalid_message_id", "Invalid message id")
	}

	var input cleanupInput
	_ = c.BodyParser(&input)

	if err := h.messageService.CleanupIfAllRead(c.Context(), uint(messageID), input.FileKey, userID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, service.ErrNotParticipant):
			return httpx.NotFound(c, "message_not_found", "Message not found")
		case errors.Is(err, service.ErrUnreadRemaining):
			return httpx.Conflict(c, "unread_remaining", "Message still has unread deliveries")
		}
		return httpx.Internal(c, "cleanup_failed")
	}

	return c.JSON(fiber.Map{"status": "deleted"})
}

// SendStatus reports the in-flight upload states for the caller's recent
// sends. Purely ephemeral; entries age out on their own.
func (h *MessageHandler) SendStatus(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	entries := h.messageService.SendStatus(userID)
	return c.JSON(fiber.Map{
		"statuses": entries,
		"count":    len(entries),
	})
}
