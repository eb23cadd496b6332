package domain

import "time"

// User is a stored login for any role.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	RestaurantID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the session principal for the user.
func (u *User) Identity() Identity {
	id := Identity{ID: u.ID, Role: u.Role}
	if u.RestaurantID != nil {
		id.RestaurantID = *u.RestaurantID
	}
	return id
}
