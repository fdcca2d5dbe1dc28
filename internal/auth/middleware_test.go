package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pequemaths/pequemaths-api/internal/domain"
	apperrors "github.com/pequemaths/pequemaths-api/pkg/util"
)

type stubResolver struct {
	users map[string]*domain.SessionUser
}

func (s stubResolver) Current(_ context.Context, cookie string) (*domain.SessionUser, bool) {
	user, ok := s.users[cookie]
	return user, ok
}

type stubAdmins map[string]bool

func (s stubAdmins) IsAdmin(_ context.Context, uid string) bool { return s[uid] }

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": de.Code})
		},
	})
}

func TestRouteGuard(t *testing.T) {
	app := newTestApp()
	app.Use(RouteGuard("__session", "/log-in", []string{"/profile", "/admin"}))
	app.Get("/*", func(c *fiber.Ctx) error { return c.SendString("page") })

	tests := []struct {
		name         string
		path         string
		cookie       string
		wantStatus   int
		wantLocation string
	}{
		{"protected without cookie", "/profile", "", http.StatusFound, "/log-in?redirect=%2Fprofile"},
		{"nested protected without cookie", "/admin/users", "", http.StatusFound, "/log-in?redirect=%2Fadmin%2Fusers"},
		{"protected with garbage cookie", "/profile", "garbage", http.StatusOK, ""},
		{"public without cookie", "/juegos/suma-saltarina", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "__session", Value: tt.cookie})
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantLocation, resp.Header.Get("Location"))
		})
	}
}

func TestSessionMiddleware_RequireSession(t *testing.T) {
	resolver := stubResolver{users: map[string]*domain.SessionUser{"good": {UID: "U1"}}}

	app := newTestApp()
	app.Use(NewSessionMiddleware(resolver, "__session").Handle)
	app.Get("/me", RequireSession(), func(c *fiber.Ctx) error {
		user, _ := UserFromContext(c)
		return c.SendString(user.UID)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: "good"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: "bad"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAdmin(t *testing.T) {
	resolver := stubResolver{users: map[string]*domain.SessionUser{
		"admin": {UID: "A1"},
		"user":  {UID: "U1"},
	}}

	app := newTestApp()
	app.Use(NewSessionMiddleware(resolver, "__session").Handle)
	app.Get("/admin-only", RequireAdmin(stubAdmins{"A1": true}), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	cases := map[string]int{
		"admin": http.StatusNoContent,
		"user":  http.StatusForbidden,
		"":      http.StatusUnauthorized,
	}
	for cookie, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: "__session", Value: cookie})
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, "cookie %q", cookie)
	}
}
