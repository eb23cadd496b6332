package domain

import "time"

// Role identifies which portal an identity belongs to.
type Role string

const (
	RoleRestaurant Role = "restaurant"
	RoleStaff      Role = "staff"
	RoleSuperadmin Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleRestaurant, RoleStaff, RoleSuperadmin:
		return true
	}
	return false
}

// Identity is the authenticated principal carried by session tokens.
type Identity struct {
	ID           string
	Role         Role
	RestaurantID string
}

// TokenKind distinguishes access from refresh tokens.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Session is a pair of tokens bound to one identity.
type Session struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
