package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/testutil"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
				"status":  domainErr.Code,
				"message": domainErr.Message,
			})
		},
	})
}

func seedUser(t *testing.T, users *testutil.MemoryUserRepository, email string, role domain.UserRole) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		Role:         role,
		Verified:     true,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestAuthMiddleware(t *testing.T) {
	users := testutil.NewMemoryUserRepository()
	user := seedUser(t, users, "a@x.com", domain.RoleUser)

	tm := NewTokenManager(testSecret, time.Hour)
	middleware := NewAuthMiddleware(tm, users, zap.NewNop())

	app := newTestApp()
	app.Get("/protected", middleware.Handle, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"email": principal.User.Email})
	})

	validToken, _, err := tm.Generate(user.ID, user.Email)
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		resp := doRequest(t, app, "")
		assertError(t, resp, http.StatusUnauthorized, apperrors.MsgTokenNotProvided)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		resp := doRequest(t, app, "Basic abc")
		assertError(t, resp, http.StatusUnauthorized, apperrors.MsgInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := doRequest(t, app, "Bearer garbage")
		assertError(t, resp, http.StatusUnauthorized, apperrors.MsgInvalidToken)
	})

	t.Run("valid token", func(t *testing.T) {
		resp := doRequest(t, app, "Bearer "+validToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "a@x.com", body["email"])
	})

	t.Run("deleted user", func(t *testing.T) {
		users.Delete(user.ID)
		resp := doRequest(t, app, "Bearer "+validToken)
		assertError(t, resp, http.StatusUnauthorized, apperrors.MsgUserNoLongerExists)
	})
}

func doRequest(t *testing.T, app *fiber.App, authorization string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func assertError(t *testing.T, resp *http.Response, status int, message string) {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, message, body["message"])
}
