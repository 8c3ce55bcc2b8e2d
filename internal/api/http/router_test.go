package http_test

import (
	"bytes"
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

	httptransport "github.com/spec-kit/auth-service/internal/api/http"
	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/persistence"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/service"
	"github.com/spec-kit/auth-service/internal/testutil"
	"github.com/spec-kit/auth-service/internal/worker"
)

type testServer struct {
	app    *fiber.App
	users  *testutil.MemoryUserRepository
	tokens *testutil.MemoryActionTokenRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := testutil.NewMemoryUserRepository()
	tokens := testutil.NewMemoryActionTokenRepository()
	logger := zap.NewNop()

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, config.MailConfig{
		EmailFrom:     "noreply@example.com",
		VerifyBaseURL: "http://localhost:8000/auth/verify",
		ResetBaseURL:  "http://localhost:8000/reset-password",
	}))

	tokenManager := auth.NewTokenManager("test-secret", time.Hour)
	authService := service.NewAuthService(config.AuthConfig{ActionTokenTTLMinutes: 30}, service.AuthDependencies{
		UserRepo:        users,
		ActionTokenRepo: tokens,
		Hasher:          auth.NewPasswordHasher(auth.PasswordParams{Time: 1, MemoryKiB: 1024, Threads: 1}),
		TokenManager:    tokenManager,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("auth-service", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(service.NewUserService(users), authService),
		AuthMiddleware: auth.NewAuthMiddleware(tokenManager, users, logger),
	})

	return &testServer{app: app, users: users, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, 10000)
	require.NoError(t, err)

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	decoded := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func (s *testServer) register(t *testing.T, name, email, password string) {
	t.Helper()
	resp, _ := s.do(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"name":            name,
		"email":           email,
		"password":        password,
		"passwordConfirm": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/auth/login", "", fiber.Map{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, ok := body["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func (s *testServer) promoteToAdmin(t *testing.T, email string) {
	t.Helper()
	user, err := s.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	_, err = s.users.UpdateRole(context.Background(), user.ID, domain.RoleAdmin)
	require.NoError(t, err)
}

func TestRegisterLoginAndMe(t *testing.T) {
	s := newTestServer(t)

	s.register(t, "Alice", "a@x.com", "password1")

	resp, body := s.do(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"name":            "Alice Again",
		"email":           "a@x.com",
		"password":        "password1",
		"passwordConfirm": "password1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Email already exists", body["message"])

	resp, body = s.do(t, http.MethodPost, "/auth/login", "", fiber.Map{
		"email":    "a@x.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Wrong credentials", body["message"])

	token := s.login(t, "a@x.com", "password1")

	resp, body = s.do(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, "user", user["role"])

	resp, body = s.do(t, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token not provided", body["message"])
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"name":            "Alice",
		"email":           "a@x.com",
		"password":        "short",
		"passwordConfirm": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	details := body["details"].(map[string]any)
	assert.Contains(t, details, "password")
}

func TestUserListRequiresAdmin(t *testing.T) {
	s := newTestServer(t)

	s.register(t, "Alice", "a@x.com", "password1")
	s.register(t, "Bob", "b@x.com", "password1")

	userToken := s.login(t, "a@x.com", "password1")
	resp, body := s.do(t, http.MethodGet, "/users/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Permission denied", body["message"])

	s.promoteToAdmin(t, "b@x.com")
	adminToken := s.login(t, "b@x.com", "password1")
	resp, body = s.do(t, http.MethodGet, "/users/users", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["result"])
	assert.Len(t, body["users"], 2)
}

func TestRoleUpdateRequiresAdmin(t *testing.T) {
	s := newTestServer(t)

	s.register(t, "Alice", "a@x.com", "password1")
	userToken := s.login(t, "a@x.com", "password1")

	resp, _ := s.do(t, http.MethodPut, "/users/role", userToken, fiber.Map{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	s.promoteToAdmin(t, "a@x.com")
	adminToken := s.login(t, "a@x.com", "password1")
	resp, body := s.do(t, http.MethodPut, "/users/role", adminToken, fiber.Map{"role": "user"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "user", user["role"])
}

func TestNameAndPasswordUpdates(t *testing.T) {
	s := newTestServer(t)

	s.register(t, "Alice", "a@x.com", "password1")
	token := s.login(t, "a@x.com", "password1")

	resp, body := s.do(t, http.MethodPut, "/users/name", token, fiber.Map{"name": "Alice B"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "Alice B", user["name"])

	resp, body = s.do(t, http.MethodPut, "/users/password", token, fiber.Map{
		"old_password":         "not-the-password",
		"new_password":         "password2",
		"new_password_confirm": "password2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Old password is incorrect", body["message"])

	resp, _ = s.do(t, http.MethodPut, "/users/password", token, fiber.Map{
		"old_password":         "password1",
		"new_password":         "password2",
		"new_password_confirm": "password2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	s.login(t, "a@x.com", "password2")
}

func TestEmailVerificationFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	s.register(t, "Alice", "a@x.com", "password1")
	user, err := s.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.False(t, user.Verified)

	verifyToken, ok := s.tokens.LastTokenFor(user.ID, repository.PurposeEmailVerification)
	require.True(t, ok)

	resp, _ := s.do(t, http.MethodGet, "/auth/verify?token="+verifyToken, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	verified, err := s.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, verified.Verified)

	resp, _ = s.do(t, http.MethodGet, "/auth/verify?token="+verifyToken, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestForgotAndResetPasswordFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	s.register(t, "Alice", "a@x.com", "password1")

	// Same response whether or not the email exists.
	resp, unknownBody := s.do(t, http.MethodPost, "/auth/forgot-password", "", fiber.Map{"email": "nobody@x.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, knownBody := s.do(t, http.MethodPost, "/auth/forgot-password", "", fiber.Map{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, unknownBody["message"], knownBody["message"])

	user, err := s.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	resetToken, ok := s.tokens.LastTokenFor(user.ID, repository.PurposePasswordReset)
	require.True(t, ok)

	resp, _ = s.do(t, http.MethodPost, "/auth/reset-password", "", fiber.Map{
		"token":                resetToken,
		"new_password":         "password2",
		"new_password_confirm": "password2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	s.login(t, "a@x.com", "password2")
}

func TestHealthLive(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])
}
