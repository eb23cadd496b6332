package domain

import (
	"strings"
	"time"
)

// VerificationStatus is the outcome of the onboarding document review.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
	VerificationUnknown  VerificationStatus = "unknown"
)

// ParseVerificationStatus maps stored values onto the closed set, falling back to VerificationUnknown.
func ParseVerificationStatus(s string) VerificationStatus {
	switch v := VerificationStatus(strings.ToLower(strings.TrimSpace(s))); v {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return v
	}
	return VerificationUnknown
}

// AccountStatus is the operational enable/disable flag of a restaurant.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountUnknown   AccountStatus = "unknown"
)

// ParseAccountStatus maps stored values onto the closed set, falling back to AccountUnknown.
func ParseAccountStatus(s string) AccountStatus {
	switch v := AccountStatus(strings.ToLower(strings.TrimSpace(s))); v {
	case AccountActive, AccountSuspended:
		return v
	}
	return AccountUnknown
}

// RestaurantAccount is the tenant record whose statuses gate the portal.
type RestaurantAccount struct {
	ID                 string
	Name               string
	VerificationStatus VerificationStatus
	AccountStatus      AccountStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewRestaurantAccount returns a freshly signed-up account.
func NewRestaurantAccount(name string) *RestaurantAccount {
	return &RestaurantAccount{
		Name:               name,
		VerificationStatus: VerificationPending,
		AccountStatus:      AccountActive,
	}
}

// Destination is the single canonical page an account status resolves to.
type Destination string

const (
	DestinationDashboard            Destination = "dashboard"
	DestinationVerificationPending  Destination = "verification_pending"
	DestinationVerificationRejected Destination = "verification_rejected"
	DestinationAccountSuspended     Destination = "account_suspended"
	DestinationAccessDenied         Destination = "access_denied"
)

// ResolveDestination decides where the account holder belongs. Suspension wins over
// any verification state; anything unrecognised, including a nil account, is denied.
func ResolveDestination(acc *RestaurantAccount) Destination {
	if acc == nil {
		return DestinationAccessDenied
	}
	if acc.AccountStatus == AccountSuspended {
		return DestinationAccountSuspended
	}
	if acc.AccountStatus != AccountActive {
		return DestinationAccessDenied
	}
	switch acc.VerificationStatus {
	case VerificationPending:
		return DestinationVerificationPending
	case VerificationRejected:
		return DestinationVerificationRejected
	case VerificationApproved:
		return DestinationDashboard
	default:
		return DestinationAccessDenied
	}
}
