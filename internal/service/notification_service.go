package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/events"
)

// NotificationService turns account lifecycle events into outbound mail.
// Actual delivery is an external concern; this builds the links and hands
// the message to the (stubbed) transport.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.MailConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.MailConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventEmailVerified, n.handleEmailVerified)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return nil
	}
	link := fmt.Sprintf("%s?token=%s", n.cfg.VerifyBaseURL, payload.VerificationToken)
	n.sendEmailStub(payload.Email, "Email Verification", map[string]string{
		"username":          payload.Name,
		"verification_link": link,
	})
	return nil
}

func (n *NotificationService) handleEmailVerified(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.EmailVerifiedPayload)
	if !ok {
		return nil
	}
	n.sendEmailStub(payload.Email, "Welcome!", map[string]string{
		"username": payload.Name,
	})
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return nil
	}
	link := fmt.Sprintf("%s?token=%s", n.cfg.ResetBaseURL, payload.ResetToken)
	n.sendEmailStub(payload.Email, "Reset Your Password", map[string]string{
		"username":   payload.Name,
		"reset_link": link,
	})
	return nil
}

func (n *NotificationService) sendEmailStub(to, subject string, placeholders map[string]string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Info("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Any("placeholders", placeholders),
	)
}
