package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/service"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// UsersHandler exposes the protected account endpoints.
type UsersHandler struct {
	users *service.UserService
	auth  *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService, authService *service.AuthService) *UsersHandler {
	return &UsersHandler{users: userService, auth: authService}
}

// Me handles GET /users/me. The principal was loaded by the auth
// middleware; no second lookup is needed.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.MsgUserNotAuthenticated)
	}

	return c.JSON(dto.UserResponse{
		Status: "success",
		User:   dto.UserData{User: dto.NewFilterUser(principal.User)},
	})
}

// List handles GET /users/users (admin only).
func (h *UsersHandler) List(c *fiber.Ctx) error {
	var req dto.ListUsersRequest
	if err := c.QueryParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid query")
	}
	if violations := req.Normalize(); len(violations) > 0 {
		return apperrors.NewValidationError("validation failed", violations)
	}

	users, total, err := h.users.ListUsers(c.Context(), req.Page, req.Limit)
	if err != nil {
		return err
	}

	return c.JSON(dto.UserListResponse{
		Status: "success",
		Users:  dto.NewFilterUsers(users),
		Result: total,
	})
}

// UpdateName handles PUT /users/name.
func (h *UsersHandler) UpdateName(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.MsgUserNotAuthenticated)
	}

	var req dto.NameUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if violations := req.Validate(); len(violations) > 0 {
		return apperrors.NewValidationError("validation failed", violations)
	}

	user, err := h.users.UpdateName(c.Context(), principal.User.ID, req.Name)
	if err != nil {
		return err
	}

	return c.JSON(dto.UserResponse{
		Status: "success",
		User:   dto.UserData{User: dto.NewFilterUser(user)},
	})
}

// UpdateRole handles PUT /users/role (admin only).
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.MsgUserNotAuthenticated)
	}

	var req dto.RoleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if violations := req.Validate(); len(violations) > 0 {
		return apperrors.NewValidationError("validation failed", violations)
	}

	user, err := h.users.UpdateRole(c.Context(), principal.User.ID, domain.UserRole(req.Role))
	if err != nil {
		return err
	}

	return c.JSON(dto.UserResponse{
		Status: "success",
		User:   dto.UserData{User: dto.NewFilterUser(user)},
	})
}

// UpdatePassword handles PUT /users/password.
func (h *UsersHandler) UpdatePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.MsgUserNotAuthenticated)
	}

	var req dto.PasswordUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if violations := req.Validate(); len(violations) > 0 {
		return apperrors.NewValidationError("validation failed", violations)
	}

	if err := h.auth.ChangePassword(c.Context(), principal.User.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(dto.MessageResponse{Status: "success", Message: "Password updated Successfully"})
}
