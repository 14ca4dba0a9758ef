package models

import "strings"

type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleReceptionist Role = "Receptionist"
	RoleGuest        Role = "Guest"
)

func ParseRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin":
		return RoleAdmin, true
	case "receptionist", "reception":
		return RoleReceptionist, true
	case "guest":
		return RoleGuest, true
	default:
		return "", false
	}
}

// User is the authenticated principal as returned by the backend login.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	BranchID int64  `json:"branch_id,omitempty"`
	GuestID  int64  `json:"guest_id,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
