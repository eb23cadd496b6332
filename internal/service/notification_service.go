package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/restaurant-portal/internal/config"
	"github.com/spec-kit/restaurant-portal/internal/events"
)

// NotificationService emits notifications for account lifecycle events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
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
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRestaurantRegistered, n.handleRestaurantRegistered)
	n.dispatcher.Subscribe(events.EventVerificationReviewed, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventAccountSuspended, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventAccountReinstated, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventStaffCreated, n.handleStaffCreated)
}

func (n *NotificationService) handleRestaurantRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("RestaurantRegistered", zap.String("restaurant_id", event.RestaurantID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// handleStatusChanged tells the owner their review outcome or suspension changed.
func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("RestaurantStatusChanged",
		zap.String("type", string(event.Type)),
		zap.String("restaurant_id", event.RestaurantID),
		zap.String("actor_id", event.Actor.ID),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStaffCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("StaffCreated", zap.String("restaurant_id", event.RestaurantID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("restaurant_id", event.RestaurantID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("restaurant_id", event.RestaurantID),
		zap.String("event_type", string(event.Type)))
}
