package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventEmailVerified          EventType = "email_verified"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordChanged        EventType = "password_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload carries the data needed for the verification email.
type UserRegisteredPayload struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	VerificationToken string `json:"verification_token"`
}

// EmailVerifiedPayload payload.
type EmailVerifiedPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PasswordResetRequestedPayload carries the data needed for the reset email.
type PasswordResetRequestedPayload struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

// PasswordChangedPayload payload.
type PasswordChangedPayload struct {
	Email string `json:"email"`
}
