package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-roster/internal/config"
	"github.com/spec-kit/staff-roster/internal/events"
	"github.com/spec-kit/staff-roster/internal/service"
)

func TestWorkerDeliversQueuedWebhooks(t *testing.T) {
	hits := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- struct{}{}
	}))
	defer srv.Close()

	dispatcher := events.NewInMemoryDispatcher()
	svc := service.NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{WebhookURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	done := StartNotificationWorker(ctx, svc, zap.NewNop())

	if err := dispatcher.Publish(ctx, events.NewEvent(events.EventStaffReplaced, events.StaffReplacedPayload{Count: 2})); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case <-hits:
	case <-time.After(5 * time.Second):
		t.Fatalf("webhook was not delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("worker did not stop")
	}
}

func TestWorkerWithoutService(t *testing.T) {
	select {
	case <-StartNotificationWorker(context.Background(), nil, nil):
	default:
		t.Fatalf("expected closed channel for nil service")
	}
}
