package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/service"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// AuthHandler exposes the public authentication endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if violations := req.Validate(); len(violations) > 0 {
		return apperrors.NewValidationError("validation failed", violations)
	}

	if _, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{
		Status:  "success",
		Message: "Registration successful! Please check your email to verify your account.",
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if violations := req.Validate(); len(violations) > 0 {
		return apperrors.NewValidationError("validation failed", violations)
	}

	token, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{Status: "success", Token: token})
}

// VerifyEmail handles GET /auth/verify.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	req := dto.VerifyEmailRequest{Token: c.Query("token")}
	if violations := req.Validate(); len(violations) > 0 {
		return apperrors.NewValidationError("validation failed", violations)
	}

	if err := h.auth.VerifyEmail(c.Context(), req.Token); err != nil {
		return err
	}

	return c.JSON(dto.MessageResponse{Status: "success", Message: "Email verified successfully"})
}

// ForgotPassword handles POST /auth/forgot-password. The response does not
// reveal whether the email is registered.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if violations := req.Validate(); len(violations) > 0 {
		return apperrors.NewValidationError("validation failed", violations)
	}

	if err := h.auth.ForgotPassword(c.Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(dto.MessageResponse{
		Status:  "success",
		Message: "If the email exists, a password reset link has been sent",
	})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if violations := req.Validate(); len(violations) > 0 {
		return apperrors.NewValidationError("validation failed", violations)
	}

	if err := h.auth.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(dto.MessageResponse{Status: "success", Message: "Password reset successfully"})
}
