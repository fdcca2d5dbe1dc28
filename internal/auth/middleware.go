package auth

import (
	"context"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pequemaths/pequemaths-api/internal/domain"
)

const sessionUserKey = "session_user"

// SessionResolver recovers the caller identity from a session cookie value.
type SessionResolver interface {
	Current(ctx context.Context, cookie string) (*domain.SessionUser, bool)
}

// SessionMiddleware attaches the session user, if any, to the request.
type SessionMiddleware struct {
	resolver   SessionResolver
	cookieName string
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(resolver SessionResolver, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{resolver: resolver, cookieName: cookieName}
}

// Handle resolves the session cookie. It never rejects a request; handlers
// that need an identity use RequireSession.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	if user, ok := m.resolver.Current(c.UserContext(), c.Cookies(m.cookieName)); ok {
		c.Locals(sessionUserKey, user)
	}
	return c.Next()
}

// UserFromContext retrieves the authenticated session user.
func UserFromContext(c *fiber.Ctx) (*domain.SessionUser, bool) {
	val := c.Locals(sessionUserKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.SessionUser)
	return user, ok && user != nil
}

// RouteGuard redirects cookie-less requests for protected page prefixes to
// the login page. Only cookie presence is checked.
func RouteGuard(cookieName, loginPath string, prefixes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if !isProtectedPath(path, prefixes) || c.Cookies(cookieName) != "" {
			return c.Next()
		}

		target := loginPath + "?" + url.Values{"redirect": []string{path}}.Encode()
		return c.Redirect(target, fiber.StatusFound)
	}
}

func isProtectedPath(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
