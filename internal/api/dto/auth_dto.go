package dto

import "github.com/spec-kit/auth-service/internal/auth"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Validate returns field-level violations, empty when the payload is valid.
func (r RegisterRequest) Validate() map[string]any {
	violations := map[string]any{}
	if r.Name == "" {
		violations["name"] = "Name is required"
	}
	checkEmail(violations, "email", r.Email)
	checkPassword(violations, "password", r.Password, 8)
	if r.PasswordConfirm != r.Password {
		violations["passwordConfirm"] = "Passwords do not match"
	}
	return violations
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate returns field-level violations.
func (r LoginRequest) Validate() map[string]any {
	violations := map[string]any{}
	checkEmail(violations, "email", r.Email)
	checkPassword(violations, "password", r.Password, 6)
	return violations
}

// VerifyEmailRequest is the query payload for GET /auth/verify.
type VerifyEmailRequest struct {
	Token string `query:"token"`
}

// Validate returns field-level violations.
func (r VerifyEmailRequest) Validate() map[string]any {
	violations := map[string]any{}
	if r.Token == "" {
		violations["token"] = "Token is required"
	}
	return violations
}

// ForgotPasswordRequest payload.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate returns field-level violations.
func (r ForgotPasswordRequest) Validate() map[string]any {
	violations := map[string]any{}
	checkEmail(violations, "email", r.Email)
	return violations
}

// ResetPasswordRequest payload.
type ResetPasswordRequest struct {
	Token              string `json:"token"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// Validate returns field-level violations.
func (r ResetPasswordRequest) Validate() map[string]any {
	violations := map[string]any{}
	if r.Token == "" {
		violations["token"] = "Token is required"
	}
	checkPassword(violations, "new_password", r.NewPassword, 8)
	if r.NewPasswordConfirm != r.NewPassword {
		violations["new_password_confirm"] = "New passwords do not match"
	}
	return violations
}

// LoginResponse is returned from POST /auth/login.
type LoginResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

// MessageResponse is the generic {status, message} body.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func checkPassword(violations map[string]any, field, value string, minLen int) {
	switch {
	case value == "":
		violations[field] = "Password is required"
	case len(value) < minLen:
		violations[field] = "Password is too short"
	case len(value) > auth.MaxPasswordLength:
		violations[field] = "Password is too long"
	}
}
