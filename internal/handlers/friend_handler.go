package handlers

import (
	"errors"

	"github.com/AugusDogus/whisp-sub001/internal/httpx"
	"github.com/AugusDogus/whisp-sub001/internal/models"
	"github.com/AugusDogus/whisp-sub001/internal/service"
	"github.com/gofiber/fiber/v2"
)

type FriendHandler struct {
	friendService *service.FriendService
}

func NewFriendHandler(friendService *service.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// ListFriends returns the caller's confirmed friends.
func (h *FriendHandler) ListFriends(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	friends, err := h.friendService.ListFriends(userID)
	if err != nil {
		return httpx.Internal(c, "list_friends_failed")
	}

	responses := make([]models.UserResponse, len(friends))
	for i := range friends {
		responses[i] = friends[i].ToResponse()
	}
	return c.JSON(fiber.Map{
		"friends": responses,
		"count":   len(responses),
	})
}

// IncomingRequests returns pending requests addressed to the caller.
func (h *FriendHandler) IncomingRequests(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	requests, err := h.friendService.IncomingRequests(userID)
	if err != nil {
		return httpx.Internal(c, "list_requests_failed")
	}

	responses := make([]models.FriendRequestResponse, len(requests))
	for i := range requests {
		responses[i] = requests[i].ToResponse()
	}
	return c.JSON(fiber.Map{
		"requests": responses,
		"count":    len(responses),
	})
}

type sendRequestInput struct {
	ToUserID uint `json:"to_user_id"`
}

func (h *FriendHandler) SendRequest(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input sendRequestInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if input.ToUserID == 0 {
		return httpx.BadRequest(c, "missing_to_user", "to_user_id is required")
	}

	request, err := h.friendService.SendRequest(c.Context(), userID, input.ToUserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfRequest):
			return httpx.BadRequest(c, "self_request", "Cannot send a friend request to yourself")
		case errors.Is(err, service.ErrUserNotFound):
			return httpx.NotFound(c, "user_not_found", "User not found")
		case errors.Is(err, service.ErrAlreadyFriends):
			return httpx.Conflict(c, "already_friends", "Already friends")
		case errors.Is(err, service.ErrRequestExists):
			return httpx.Conflict(c, "request_exists", "A pending request already exists")
		}
		return httpx.Internal(c, "send_request_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(request.ToResponse())
}

func (h *FriendHandler) AcceptRequest(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	requestID, err := c.ParamsInt("id")
	if err != nil || requestID <= 0 {
		return httpx.BadRequest(c, "invalid_request_id", "Invalid request id")
	}

	request, err := h.friendService.AcceptRequest(uint(requestID), userID)
	if err != nil {
		return friendRequestError(c, err, "accept_request_failed")
	}
	return c.JSON(request.ToResponse())
}

func (h *FriendHandler) DeclineRequest(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	requestID, err := c.ParamsInt("id")
	if err != nil || requestID <= 0 {
		return httpx.BadRequest(c, "invalid_request_id", "Invalid request id")
	}

	if err := h.friendService.DeclineRequest(uint(requestID), userID); err != nil {
		return friendRequestError(c, err, "decline_request_failed")
	}
	return c.JSON(fiber.Map{"status": string(models.RequestDeclined)})
}

func (h *FriendHandler) CancelRequest(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	requestID, err := c.ParamsInt("id")
	if err != nil || requestID <= 0 {
		return httpx.BadRequest(c, "invalid_request_id", "Invalid request id")
	}

	if err := h.friendService.CancelRequest(uint(requestID), userID); err != nil {
		return friendRequestError(c, err, "cancel_request_failed")
	}
	return c.JSON(fiber.Map{"status": string(models.RequestCancelled)})
}

// SearchUsers returns candidates annotated with relationship flags.
func (h *FriendHandler) SearchUsers(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	query := c.Query("q")
	if query == "" {
		return httpx.BadRequest(c, "missing_query", "Search query is required")
	}

	limit := c.QueryInt("limit", 20)
	results, err := h.friendService.SearchUsers(userID, query, limit)
	if err != nil {
		return httpx.Internal(c, "search_users_failed")
	}

	return c.JSON(fiber.Map{
		"users": results,
		"count": len(results),
	})
}

func friendRequestError(c *fiber.Ctx, err error, fallbackCode string) error {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		return httpx.NotFound(c, "request_not_found", "Friend request not found")
	case errors.Is(err, service.ErrNotYourRequest):
		return httpx.NotFound(c, "request_not_found", "Friend request not found")
	case errors.Is(err, service.ErrRequestResolved):
		return httpx.Conflict(c, "request_resolved", "Friend request already resolved")
	}
	return httpx.Internal(c, fallbackCode)
}
