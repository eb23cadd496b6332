package events

import (
	"time"

	"github.com/spec-kit/restaurant-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRestaurantRegistered EventType = "restaurant_registered"
	EventVerificationReviewed EventType = "verification_reviewed"
	EventAccountSuspended     EventType = "account_suspended"
	EventAccountReinstated    EventType = "account_reinstated"
	EventStaffCreated         EventType = "staff_created"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	RestaurantID string      `json:"restaurant_id"`
	Actor        Actor       `json:"actor"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// RestaurantRegisteredPayload payload.
type RestaurantRegisteredPayload struct {
	Name       string `json:"name"`
	OwnerEmail string `json:"owner_email"`
}

// StatusChangedPayload is shared by review, suspension and reinstatement events.
type StatusChangedPayload struct {
	Field  string `json:"field"`
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
}

// StaffCreatedPayload payload.
type StaffCreatedPayload struct {
	StaffID string `json:"staff_id"`
	Email   string `json:"email"`
}
