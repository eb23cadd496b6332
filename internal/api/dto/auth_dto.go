package dto

import (
	"time"

	"github.com/spec-kit/restaurant-portal/internal/domain"
)

// SignupRequest payload for restaurant onboarding.
type SignupRequest struct {
	RestaurantName string `json:"restaurant_name"`
	OwnerName      string `json:"owner_name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
}

// LoginRequest payload shared by the role-specific login endpoints.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of a login identity.
type UserResponse struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         domain.Role `json:"role"`
	RestaurantID *string     `json:"restaurant_id,omitempty"`
}

// SessionResponse reports token lifetimes. The tokens themselves travel only in cookies.
type SessionResponse struct {
	AccessExpiresAt  time.Time  `json:"access_expires_at"`
	RefreshExpiresAt *time.Time `json:"refresh_expires_at,omitempty"`
}

// RestaurantInfo is the status summary shown to the client.
type RestaurantInfo struct {
	Name               string                    `json:"name"`
	VerificationStatus domain.VerificationStatus `json:"verificationStatus"`
	AccountStatus      domain.AccountStatus      `json:"accountStatus"`
}

// ClientHint mirrors what the browser needs to render navigation. It is advisory:
// every page request is still decided by the server-side guard.
type ClientHint struct {
	UserType       domain.Role        `json:"userType"`
	RestaurantInfo *RestaurantInfo    `json:"restaurantInfo,omitempty"`
	Destination    domain.Destination `json:"destination,omitempty"`
	Redirect       string             `json:"redirect,omitempty"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		RestaurantID: user.RestaurantID,
	}
}

// NewSessionResponse maps a freshly issued session.
func NewSessionResponse(session *domain.Session) SessionResponse {
	refresh := session.RefreshExpiresAt
	return SessionResponse{AccessExpiresAt: session.AccessExpiresAt, RefreshExpiresAt: &refresh}
}

// NewRestaurantInfo maps an account, returning nil when there is none.
func NewRestaurantInfo(account *domain.RestaurantAccount) *RestaurantInfo {
	if account == nil {
		return nil
	}
	return &RestaurantInfo{
		Name:               account.Name,
		VerificationStatus: account.VerificationStatus,
		AccountStatus:      account.AccountStatus,
	}
}
