package worker

import (
	"github.com/spec-kit/auth-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to the domain
// events it delivers mail for. Called once during startup.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
