package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/intranet-portal/internal/config"
	"github.com/spec-kit/intranet-portal/internal/events"
)

const defaultAuditQueueSize = 64

// AuditService records session lifecycle events in the log and, when a
// webhook URL is configured, forwards them as JSON. Delivery happens on the
// Run goroutine so publishers never wait on the sink.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AuditConfig
	http       *http.Client
	queue      chan events.Event
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.AuditConfig) *AuditService {
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultAuditQueueSize
	}
	cfg.WebhookURL = strings.TrimSpace(cfg.WebhookURL)
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		cfg:        cfg,
		http:       &http.Client{},
		queue:      make(chan events.Event, size),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSessionRestored, a.handleSessionEvent)
	a.dispatcher.Subscribe(events.EventSessionStarted, a.handleSessionEvent)
	a.dispatcher.Subscribe(events.EventSessionEnded, a.handleSessionEvent)
	a.dispatcher.Subscribe(events.EventSessionInvalidated, a.handleSessionInvalidated)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
	a.dispatcher.Subscribe(events.EventDisplayNameChanged, a.handleSessionEvent)
}

func (a *AuditService) handleSessionEvent(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.Int64("user_id", event.UserID),
		zap.String("role", string(event.Role)),
		zap.Any("payload", event.Payload))
	a.enqueue(event)
	return nil
}

func (a *AuditService) handleSessionInvalidated(_ context.Context, event events.Event) error {
	a.logger.Warn(string(event.Type), zap.String("event_id", event.ID), zap.Int64("user_id", event.UserID))
	a.enqueue(event)
	return nil
}

func (a *AuditService) handleLoginFailed(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	a.enqueue(event)
	return nil
}

// enqueue never blocks; a full queue drops the event with a warning.
func (a *AuditService) enqueue(event events.Event) {
	if a.cfg.WebhookURL == "" {
		return
	}
	select {
	case a.queue <- event:
	default:
		a.logger.Warn("audit queue full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
}

// Run delivers queued events until ctx is done.
func (a *AuditService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-a.queue:
			if err := a.Deliver(ctx, event); err != nil {
				a.logger.Warn("audit webhook delivery failed",
					zap.String("event_id", event.ID),
					zap.String("event_type", string(event.Type)),
					zap.Error(err))
			}
		}
	}
}

// Deliver POSTs event to the webhook as JSON, bounded by the configured
// timeout. Any non-2xx answer is an error. It is a no-op without a URL.
func (a *AuditService) Deliver(ctx context.Context, event events.Event) error {
	if a.cfg.WebhookURL == "" {
		return nil
	}
	if timeout := a.cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Audit-Event", string(event.Type))

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook answered %d", resp.StatusCode)
	}
	a.logger.Debug("audit event delivered", zap.String("event_id", event.ID))
	return nil
}
