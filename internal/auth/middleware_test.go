package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarchuk/accountd/internal/logging"
	"github.com/dmarchuk/accountd/internal/store"
)

func newMiddlewareApp(t *testing.T) (*fiber.App, *TokenService, *store.MemoryUsers) {
	t.Helper()

	users := store.NewMemoryUsers()
	tokens := newTestTokenService()
	mw := NewMiddleware(tokens, users, WithMiddlewareLogger(logging.Nop()))

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(statusOf(err))
		},
	})
	app.Get("/protected", mw.Protect(), func(c *fiber.Ctx) error {
		user := IdentityFromCtx(c)
		require.NotNil(t, user)
		return c.SendString(user.ID)
	})
	app.Get("/admin", mw.Protect(), RequireRoles(store.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return app, tokens, users
}

func statusOf(err error) int {
	switch err {
	case ErrMissingToken, ErrInvalidToken, ErrTokenExpired, ErrUserNotFound:
		return fiber.StatusUnauthorized
	case ErrForbidden:
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

func seedUser(t *testing.T, users *store.MemoryUsers, role store.Role) *store.User {
	t.Helper()
	user := &store.User{
		ID:     "user-" + string(role),
		Name:   "Test User",
		Email:  string(role) + "@example.com",
		Role:   role,
		Active: true,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestProtect(t *testing.T) {
	app, tokens, users := newMiddlewareApp(t)
	user := seedUser(t, users, store.RoleUser)

	access, err := tokens.IssueAccess(user.ID)
	require.NoError(t, err)

	expiredIssuer := NewTokenService("access-secret", "refresh-secret", 15*time.Minute,
		WithClock(func() time.Time { return time.Now().Add(-time.Hour) }))
	expired, err := expiredIssuer.IssueAccess(user.ID)
	require.NoError(t, err)

	foreignIssuer := NewTokenService("other-secret", "refresh-secret", 15*time.Minute)
	foreign, err := foreignIssuer.IssueAccess(user.ID)
	require.NoError(t, err)

	orphan, err := tokens.IssueAccess("no-such-user")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + access, fiber.StatusOK},
		{"no header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic " + access, fiber.StatusUnauthorized},
		{"bare token", access, fiber.StatusUnauthorized},
		{"garbage token", "Bearer garbage", fiber.StatusUnauthorized},
		{"expired token", "Bearer " + expired, fiber.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, fiber.StatusUnauthorized},
		{"unknown subject", "Bearer " + orphan, fiber.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}

func TestProtectRejectsRefreshToken(t *testing.T) {
	app, tokens, users := newMiddlewareApp(t)
	user := seedUser(t, users, store.RoleUser)

	refresh, err := tokens.IssueRefresh(user.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+refresh)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProtectDeactivatedUser(t *testing.T) {
	app, tokens, users := newMiddlewareApp(t)
	user := seedUser(t, users, store.RoleUser)

	access, err := tokens.IssueAccess(user.ID)
	require.NoError(t, err)
	require.NoError(t, users.Deactivate(context.Background(), user.ID))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+access)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRoles(t *testing.T) {
	app, tokens, users := newMiddlewareApp(t)
	admin := seedUser(t, users, store.RoleAdmin)
	regular := seedUser(t, users, store.RoleUser)

	adminToken, err := tokens.IssueAccess(admin.ID)
	require.NoError(t, err)
	userToken, err := tokens.IssueAccess(regular.ID)
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"admin allowed", adminToken, fiber.StatusOK},
		{"user forbidden", userToken, fiber.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tc.token)

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"standard", "Bearer token123", "token123", false},
		{"lowercase scheme", "bearer token123", "token123", false},
		{"extra spaces", "Bearer   token123", "token123", false},
		{"empty header", "", "", true},
		{"scheme only", "Bearer ", "", true},
		{"wrong scheme", "Basic token123", "", true},
		{"no separator", "Bearertoken123", "", true},
		{"bare token", "token123", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TokenFromHeader(tc.header)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMissingToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
