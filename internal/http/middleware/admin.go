package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"agencysite/internal/auth"
)

// AdminTokenHeader carries the admin credential.
const AdminTokenHeader = "X-Admin-Token"

// AdminGate rejects requests whose credential is not accepted by a.
// The credential is read from X-Admin-Token, falling back to an
// "Authorization: Bearer" header. Rejections return auth.ErrUnauthorized,
// which the error handler turns into a 401 envelope.
func AdminGate(a auth.Authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Authorize(Credential(c)); err != nil {
			return err
		}
		return c.Next()
	}
}

// Credential extracts the admin credential from the request headers.
func Credential(c *fiber.Ctx) string {
	if v := c.Get(AdminTokenHeader); v != "" {
		return v
	}
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
