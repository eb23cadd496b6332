package dto

// CreateStaffRequest payload for adding a staff login.
type CreateStaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
