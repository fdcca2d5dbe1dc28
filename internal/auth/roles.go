package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/pequemaths/pequemaths-api/pkg/util"
)

// AdminChecker answers whether a uid holds the admin role.
type AdminChecker interface {
	IsAdmin(ctx context.Context, uid string) bool
}

// RequireSession ensures a session user is attached to the request.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserFromContext(c); !ok {
			return apperrors.NewUnauthorized(apperrors.CodeNotAuthenticated, "authentication required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the session user holds the admin role.
func RequireAdmin(roles AdminChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(apperrors.CodeNotAuthenticated, "authentication required")
		}
		if !roles.IsAdmin(c.UserContext(), user.UID) {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}
