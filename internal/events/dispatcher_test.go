package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventAccountSuspended, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.RestaurantID)
		return errors.New("webhook down")
	})
	d.Subscribe(EventAccountSuspended, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.RestaurantID)
		return nil
	})
	d.Subscribe(EventAccountReinstated, func(_ context.Context, _ Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventAccountSuspended, RestaurantID: "r1"})
	if err == nil {
		t.Fatal("Publish() should report the failing handler")
	}
	if len(calls) != 2 || calls[0] != "first:r1" || calls[1] != "second:r1" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventStaffCreated}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
}
