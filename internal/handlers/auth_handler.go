package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"time"

	"github.com/AugusDogus/whisp-sub001/internal/httpx"
	"github.com/AugusDogus/whisp-sub001/internal/service"
	"github.com/AugusDogus/whisp-sub001/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

const (
	accessCookieName  = "whisp_access"
	refreshCookieName = "whisp_refresh"
	csrfCookieName    = "whisp_csrf"
)

func cookieSecure() bool {
	return os.Getenv("COOKIE_SECURE") != "false"
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, result *service.AuthResult) {
	c.Cookie(&fiber.Cookie{
		Name:     accessCookieName,
		Value:    result.AccessToken,
		Path:     "/",
		MaxAge:   int(time.Hour / time.Second),
		HTTPOnly: true,
		Secure:   cookieSecure(),
		SameSite: "Lax",
	})
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    result.RefreshToken,
		Path:     "/api/auth",
		MaxAge:   int((30 * 24 * time.Hour) / time.Second),
		HTTPOnly: true,
		Secure:   cookieSecure(),
		SameSite: "Lax",
	})
}

func clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{accessCookieName, csrfCookieName} {
		c.Cookie(&fiber.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HTTPOnly: name != csrfCookieName})
	}
	c.Cookie(&fiber.Cookie{Name: refreshCookieName, Value: "", Path: "/api/auth", MaxAge: -1, HTTPOnly: true})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	input.Email = validation.NormalizeEmail(input.Email)
	input.Username = validation.NormalizeUsername(input.Username)

	if !validation.ValidateEmail(input.Email) {
		return httpx.BadRequest(c, "invalid_email", "Invalid email address")
	}
	if !validation.ValidateUsername(input.Username) {
		return httpx.BadRequest(c, "invalid_username", "Username must be 3-32 characters (letters, digits, underscore)")
	}
	if !validation.ValidatePassword(input.Password) {
		return httpx.BadRequest(c, "weak_password", "Password is too short")
	}
	input.DisplayName = validation.TrimAndLimit(input.DisplayName, 64)

	result, err := h.authService.Register(input)
	if err != nil {
		return httpx.BadRequest(c, "registration_failed", err.Error())
	}

	h.setAuthCookies(c, result)
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	input.Email = validation.NormalizeEmail(input.Email)
	if input.Email == "" || input.Password == "" {
		return httpx.BadRequest(c, "missing_credentials", "Email and password are required")
	}

	result, err := h.authService.Login(input)
	if err != nil {
		return httpx.Unauthorized(c, "invalid_credentials", "Invalid email or password")
	}

	h.setAuthCookies(c, result)
	return c.JSON(result)
}

type refreshInput struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates the refresh token. The token can arrive in the body (native
// clients) or the refresh cookie (browsers).
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input refreshInput
	_ = c.BodyParser(&input)
	if input.RefreshToken == "" {
		input.RefreshToken = c.Cookies(refreshCookieName)
	}
	if input.RefreshToken == "" {
		return httpx.Unauthorized(c, "missing_refresh_token", "Missing refresh token")
	}

	result, err := h.authService.Refresh(input.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			clearAuthCookies(c)
			return httpx.Unauthorized(c, "invalid_refresh_token", "Invalid or expired refresh token")
		}
		return httpx.Internal(c, "refresh_failed")
	}

	h.setAuthCookies(c, result)
	return c.JSON(result)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input refreshInput
	_ = c.BodyParser(&input)
	if input.RefreshToken == "" {
		input.RefreshToken = c.Cookies(refreshCookieName)
	}

	if err := h.authService.Logout(input.RefreshToken); err != nil {
		return httpx.Internal(c, "logout_failed")
	}

	clearAuthCookies(c)
	return c.JSON(fiber.Map{"status": "logged_out"})
}

// CSRF mints a double-submit token readable by the browser client.
func (h *AuthHandler) CSRF(c *fiber.Ctx) error {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return httpx.Internal(c, "csrf_mint_failed")
	}
	token := hex.EncodeToString(buf)

	c.Cookie(&fiber.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int((12 * time.Hour) / time.Second),
		HTTPOnly: false,
		Secure:   cookieSecure(),
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{"csrf_token": token})
}
