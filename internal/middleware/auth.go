package middleware

import (
	"strings"

	"taskboard/internal/auth"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserIDKey adalah key Locals untuk user sesi (juga dibaca oleh koneksi WebSocket).
const UserIDKey = "userID"

// RequireSession menerima token dari cookie sesi atau header "Authorization: Bearer".
// Tanpa token yang valid request ditolak dengan 401.
func RequireSession(issuer *auth.Issuer, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if token == "" {
			authHeader := c.Get(fiber.HeaderAuthorization)
			if authHeader == "" {
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid token format")
			}
			token = parts[1]
		}

		userID, err := issuer.Parse(token)
		if err != nil {
			logger.SecurityLogger.Warn("Rejected session token",
				zap.String("ip", c.IP()), zap.String("url", c.OriginalURL()))
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired session")
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID mengembalikan user sesi yang diset RequireSession.
func UserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(UserIDKey).(uuid.UUID)
	return id
}
