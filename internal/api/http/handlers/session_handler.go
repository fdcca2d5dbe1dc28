package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pequemaths/pequemaths-api/internal/api/dto"
	"github.com/pequemaths/pequemaths-api/internal/service"
	apperrors "github.com/pequemaths/pequemaths-api/pkg/util"
)

// SessionIssuer issues and revokes session cookies.
type SessionIssuer interface {
	IssueSession(ctx context.Context, idToken string, remember bool) (*service.IssuedSession, error)
	RevokeSession(ctx context.Context, cookie string) error
}

// CookieSettings controls the session cookie attributes.
type CookieSettings struct {
	Name   string
	Secure bool
}

// SessionHandler exposes login and logout.
type SessionHandler struct {
	sessions SessionIssuer
	cookie   CookieSettings
	logger   *zap.Logger
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions SessionIssuer, cookie CookieSettings, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, cookie: cookie, logger: logger}
}

// Login handles POST /api/sessionLogin.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.SessionLoginRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError(apperrors.CodeInvalidPayload, "invalid payload")
		}
	}

	issued, err := h.sessions.IssueSession(c.UserContext(), req.IDToken, req.RememberMe())
	if err != nil {
		return serviceError(err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    issued.Session.Token,
		Path:     "/",
		MaxAge:   int(issued.MaxAge / time.Second),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.Acknowledge())
}

// Logout handles POST /api/sessionLogout. It always clears the cookie and
// succeeds; a failed revocation is only logged.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.RevokeSession(c.UserContext(), c.Cookies(h.cookie.Name)); err != nil {
		h.logger.Warn("session revocation failed", zap.Error(err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationForm) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.JSON(dto.Acknowledge())
}
