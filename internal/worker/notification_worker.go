package worker

import (
	"github.com/yafi/support-backend/internal/service"
)

// StartNotificationWorker registers the lifecycle event handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
