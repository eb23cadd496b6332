package dto

import (
	"time"

	"github.com/spec-kit/restaurant-portal/internal/domain"
)

// RestaurantResponse is the superadmin view of a restaurant.
type RestaurantResponse struct {
	ID                 string                    `json:"id"`
	Name               string                    `json:"name"`
	VerificationStatus domain.VerificationStatus `json:"verification_status"`
	AccountStatus      domain.AccountStatus      `json:"account_status"`
	Destination        domain.Destination        `json:"destination"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

// StatusReasonRequest carries an optional reason for rejections and suspensions.
type StatusReasonRequest struct {
	Reason string `json:"reason"`
}

// RestaurantListQuery captures list filters.
type RestaurantListQuery struct {
	VerificationStatus *domain.VerificationStatus
	AccountStatus      *domain.AccountStatus
	Page               int
	PageSize           int
}

// NewRestaurantResponse maps an account together with the page its owner resolves to.
func NewRestaurantResponse(account *domain.RestaurantAccount) RestaurantResponse {
	return RestaurantResponse{
		ID:                 account.ID,
		Name:               account.Name,
		VerificationStatus: account.VerificationStatus,
		AccountStatus:      account.AccountStatus,
		Destination:        domain.ResolveDestination(account),
		CreatedAt:          account.CreatedAt,
		UpdatedAt:          account.UpdatedAt,
	}
}
