package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequestValidate(t *testing.T) {
	valid := RegisterRequest{Name: "Alice", Email: "a@x.com", Password: "password1", PasswordConfirm: "password1"}
	assert.Empty(t, valid.Validate())

	tests := []struct {
		name  string
		req   RegisterRequest
		field string
	}{
		{"missing name", RegisterRequest{Email: "a@x.com", Password: "password1", PasswordConfirm: "password1"}, "name"},
		{"missing email", RegisterRequest{Name: "Alice", Password: "password1", PasswordConfirm: "password1"}, "email"},
		{"invalid email", RegisterRequest{Name: "Alice", Email: "not-an-email", Password: "password1", PasswordConfirm: "password1"}, "email"},
		{"short password", RegisterRequest{Name: "Alice", Email: "a@x.com", Password: "short", PasswordConfirm: "short"}, "password"},
		{"long password", RegisterRequest{Name: "Alice", Email: "a@x.com", Password: strings.Repeat("a", 65), PasswordConfirm: strings.Repeat("a", 65)}, "password"},
		{"mismatched confirm", RegisterRequest{Name: "Alice", Email: "a@x.com", Password: "password1", PasswordConfirm: "password2"}, "passwordConfirm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := tt.req.Validate()
			assert.Contains(t, violations, tt.field)
		})
	}
}

func TestLoginRequestValidate(t *testing.T) {
	assert.Empty(t, LoginRequest{Email: "a@x.com", Password: "secret1"}.Validate())
	assert.Contains(t, LoginRequest{Password: "secret1"}.Validate(), "email")
	assert.Contains(t, LoginRequest{Email: "a@x.com", Password: "short"}.Validate(), "password")
}

func TestPasswordUpdateRequestValidate(t *testing.T) {
	valid := PasswordUpdateRequest{OldPassword: "password1", NewPassword: "password2", NewPasswordConfirm: "password2"}
	assert.Empty(t, valid.Validate())

	mismatch := PasswordUpdateRequest{OldPassword: "password1", NewPassword: "password2", NewPasswordConfirm: "password3"}
	assert.Contains(t, mismatch.Validate(), "new_password_confirm")
}

func TestRoleUpdateRequestValidate(t *testing.T) {
	assert.Empty(t, RoleUpdateRequest{Role: "admin"}.Validate())
	assert.Empty(t, RoleUpdateRequest{Role: "user"}.Validate())
	assert.Contains(t, RoleUpdateRequest{Role: "superuser"}.Validate(), "role")
}

func TestListUsersRequestNormalize(t *testing.T) {
	req := ListUsersRequest{}
	assert.Empty(t, req.Normalize())
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 10, req.Limit)

	over := ListUsersRequest{Page: 1, Limit: 100}
	assert.Contains(t, over.Normalize(), "limit")

	negative := ListUsersRequest{Page: -1, Limit: 10}
	assert.Contains(t, negative.Normalize(), "page")
}
