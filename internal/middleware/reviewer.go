package middleware

import (
	"coinfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ReviewKeyHeader carries the reviewer key on mutating routes.
const ReviewKeyHeader = "X-Review-Key"

// RequireReviewer checks the X-Review-Key header against a bcrypt hash.
// An empty hash disables the check.
func RequireReviewer(hash string) fiber.Handler {
	if hash == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	h := []byte(hash)
	return func(c *fiber.Ctx) error {
		key := c.Get(ReviewKeyHeader)
		if key == "" {
			return response.Unauthorized(c, "Unauthorized")
		}
		if err := bcrypt.CompareHashAndPassword(h, []byte(key)); err != nil {
			log.Warn().Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Msg("reviewer key rejected")
			return response.Error(c, "Reviewer key is not valid", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}
