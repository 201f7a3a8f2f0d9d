package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-roster/internal/config"
	"github.com/spec-kit/staff-roster/internal/events"
)

const (
	webhookQueueSize = 32
	webhookTimeout   = 5 * time.Second
)

// NotificationService handles emitting notifications for domain events.
// Webhook deliveries are queued and sent by the notification worker.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	client     *http.Client
	queue      chan events.Event
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		client:     &http.Client{Timeout: webhookTimeout},
		queue:      make(chan events.Event, webhookQueueSize),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventStaffReplaced, n.handleStaffReplaced)
}

// Deliveries yields events waiting for webhook delivery.
func (n *NotificationService) Deliveries() <-chan events.Event {
	return n.queue
}

func (n *NotificationService) handleStaffReplaced(ctx context.Context, event events.Event) error {
	n.logger.Info("StaffReplaced", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return nil
	}
	select {
	case n.queue <- event:
	default:
		n.logger.Warn("webhook queue full; dropping notification", zap.String("event_id", event.ID))
	}
	return nil
}

// Deliver posts event as JSON to the configured webhook.
func (n *NotificationService) Deliver(ctx context.Context, event events.Event) error {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	n.logger.Debug("webhook delivered",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
	return nil
}
