package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-roster/internal/service"
)

// StartNotificationWorker registers notification handlers and sends queued
// webhooks until ctx is cancelled. The returned channel closes on exit.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if notificationService == nil {
		close(done)
		return done
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	notificationService.RegisterHandlers()

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-notificationService.Deliveries():
				if err := notificationService.Deliver(ctx, event); err != nil {
					logger.Warn("webhook delivery failed", zap.String("event_id", event.ID), zap.Error(err))
				}
			}
		}
	}()
	return done
}
