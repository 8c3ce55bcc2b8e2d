package dto

import (
	"net/mail"
	"time"

	"github.com/spec-kit/auth-service/internal/domain"
)

// FilterUser is the outward shape of an account; the password hash never
// leaves the service.
type FilterUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewFilterUser maps a domain user to its response shape.
func NewFilterUser(user *domain.User) FilterUser {
	return FilterUser{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Verified:  user.Verified,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// NewFilterUsers maps a slice of users.
func NewFilterUsers(users []*domain.User) []FilterUser {
	filtered := make([]FilterUser, 0, len(users))
	for _, user := range users {
		filtered = append(filtered, NewFilterUser(user))
	}
	return filtered
}

// UserResponse wraps a single account.
type UserResponse struct {
	Status string   `json:"status"`
	User   UserData `json:"user"`
}

// UserData nests the filtered user.
type UserData struct {
	User FilterUser `json:"user"`
}

// UserListResponse wraps a page of accounts.
type UserListResponse struct {
	Status string       `json:"status"`
	Users  []FilterUser `json:"users"`
	Result int64        `json:"result"`
}

// ListUsersRequest carries pagination query values.
type ListUsersRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Normalize applies defaults and returns field-level violations.
func (r *ListUsersRequest) Normalize() map[string]any {
	violations := map[string]any{}
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Limit == 0 {
		r.Limit = 10
	}
	if r.Page < 1 {
		violations["page"] = "Page must be at least 1"
	}
	if r.Limit < 1 || r.Limit > 50 {
		violations["limit"] = "Limit must be between 1 and 50"
	}
	return violations
}

// NameUpdateRequest payload for PUT /users/name.
type NameUpdateRequest struct {
	Name string `json:"name"`
}

// Validate returns field-level violations.
func (r NameUpdateRequest) Validate() map[string]any {
	violations := map[string]any{}
	if r.Name == "" {
		violations["name"] = "Name is required"
	}
	return violations
}

// RoleUpdateRequest payload for PUT /users/role.
type RoleUpdateRequest struct {
	Role string `json:"role"`
}

// Validate returns field-level violations.
func (r RoleUpdateRequest) Validate() map[string]any {
	violations := map[string]any{}
	if !domain.UserRole(r.Role).Valid() {
		violations["role"] = "Invalid role"
	}
	return violations
}

// PasswordUpdateRequest payload for PUT /users/password.
type PasswordUpdateRequest struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// Validate returns field-level violations.
func (r PasswordUpdateRequest) Validate() map[string]any {
	violations := map[string]any{}
	checkPassword(violations, "old_password", r.OldPassword, 8)
	checkPassword(violations, "new_password", r.NewPassword, 8)
	if r.NewPasswordConfirm != r.NewPassword {
		violations["new_password_confirm"] = "New passwords do not match"
	}
	return violations
}

func checkEmail(violations map[string]any, field, value string) {
	if value == "" {
		violations[field] = "Email is required"
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		violations[field] = "Email is invalid"
	}
}
