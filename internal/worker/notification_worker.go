package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/restaurant-portal/internal/events"
	"github.com/spec-kit/restaurant-portal/internal/service"
)

// ErrQueueFull is returned by Publish when the buffer cannot take another event.
var ErrQueueFull = errors.New("notification queue full")

// NotificationWorker moves event delivery off the request path. Services publish into
// its buffer and a single goroutine hands events to the wrapped dispatcher in order.
type NotificationWorker struct {
	target events.Dispatcher
	logger *zap.Logger
	queue  chan events.Event

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

// NewNotificationWorker wraps target with a buffer of the given size.
func NewNotificationWorker(target events.Dispatcher, logger *zap.Logger, buffer int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &NotificationWorker{
		target: target,
		logger: logger,
		queue:  make(chan events.Event, buffer),
		done:   make(chan struct{}),
	}
}

// StartNotificationWorker registers notification handlers on dispatcher and starts
// delivering. The returned worker is the dispatcher services should publish to.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, logger *zap.Logger) *NotificationWorker {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	w := NewNotificationWorker(dispatcher, logger, 0)
	go w.run()
	return w
}

// Publish enqueues the event without blocking. The event is dropped when the worker is
// stopped or its buffer is full.
func (w *NotificationWorker) Publish(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return errors.New("notification worker stopped")
	}
	select {
	case w.queue <- event:
		return nil
	default:
		w.logger.Warn("dropping event", zap.String("type", string(event.Type)), zap.String("restaurant_id", event.RestaurantID))
		return ErrQueueFull
	}
}

// Subscribe registers the handler on the wrapped dispatcher.
func (w *NotificationWorker) Subscribe(eventType events.EventType, handler events.EventHandler) {
	w.target.Subscribe(eventType, handler)
}

// Stop drains queued events and waits for delivery to finish or ctx to end.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *NotificationWorker) run() {
	defer close(w.done)
	for event := range w.queue {
		if err := w.target.Publish(context.Background(), event); err != nil {
			w.logger.Warn("notification delivery failed",
				zap.String("type", string(event.Type)),
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}
}
