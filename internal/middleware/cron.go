package middleware

import (
	"crypto/subtle"
	"os"
	"strings"

	"github.com/AugusDogus/whisp-sub001/internal/httpx"
	"github.com/gofiber/fiber/v2"
)

// CronSecretRequired guards the scheduled endpoints with a shared secret.
// The external scheduler sends "Authorization: Bearer <CRON_SECRET>".
func CronSecretRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := strings.TrimSpace(os.Getenv("CRON_SECRET"))
		if secret == "" {
			return httpx.Unauthorized(c, "cron_not_configured", "Cron secret not configured")
		}

		presented := strings.TrimSpace(strings.TrimPrefix(c.Get("Authorization"), "Bearer "))
		if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			return httpx.Unauthorized(c, "invalid_cron_secret", "Invalid cron secret")
		}

		return c.Next()
	}
}
