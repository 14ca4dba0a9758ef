package auth

import (
	"fmt"

	"skynest/internal/domain"
	"skynest/internal/models"
)

type Permission string

const (
	PermBookingsRead   Permission = "bookings:read"
	PermBookingsCreate Permission = "bookings:create"
	PermBookingsStatus Permission = "bookings:status"
	PermBookingsCancel Permission = "bookings:cancel"
	PermGuestsRead     Permission = "guests:read"
	PermGuestsWrite    Permission = "guests:write"
	PermRoomsRead      Permission = "rooms:read"
	PermRoomsWrite     Permission = "rooms:write"
	PermRoomsStatus    Permission = "rooms:status"
	PermBranchesRead   Permission = "branches:read"
	PermBranchesWrite  Permission = "branches:write"
	PermServicesRead   Permission = "services:read"
	PermServicesWrite  Permission = "services:write"
	PermUsageRead      Permission = "usage:read"
	PermUsageWrite     Permission = "usage:write"
	PermRequestsRead   Permission = "requests:read"
	PermRequestsCreate Permission = "requests:create"
	PermRequestsReview Permission = "requests:review"
	PermPaymentsRead   Permission = "payments:read"
	PermPaymentsWrite  Permission = "payments:write"
	PermTicketsRead    Permission = "tickets:read"
	PermTicketsCreate  Permission = "tickets:create"
	PermTicketsRespond Permission = "tickets:respond"
	PermTicketsStatus  Permission = "tickets:status"
	PermDashAdmin      Permission = "dashboard:admin"
	PermDashReception  Permission = "dashboard:reception"
	PermDashGuest      Permission = "dashboard:guest"
	PermReportsRead    Permission = "reports:read"
	PermReportsExport  Permission = "reports:export"
	PermActivityRead   Permission = "activity:read"
)

func set(perms ...Permission) map[Permission]bool {
	m := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		m[p] = true
	}
	return m
}

// Admin holds every permission and is not listed.
var rolePermissions = map[models.Role]map[Permission]bool{
	models.RoleReceptionist: set(
		PermBookingsRead, PermBookingsCreate, PermBookingsStatus, PermBookingsCancel,
		PermGuestsRead, PermGuestsWrite,
		PermRoomsRead, PermRoomsStatus,
		PermBranchesRead,
		PermServicesRead,
		PermUsageRead, PermUsageWrite,
		PermRequestsRead, PermRequestsReview,
		PermPaymentsRead, PermPaymentsWrite,
		PermTicketsRead, PermTicketsRespond, PermTicketsStatus,
		PermDashReception,
		PermActivityRead,
	),
	models.RoleGuest: set(
		PermBookingsRead, PermBookingsCreate, PermBookingsCancel,
		PermBranchesRead,
		PermServicesRead,
		PermUsageRead,
		PermRequestsRead, PermRequestsCreate,
		PermPaymentsRead,
		PermTicketsRead, PermTicketsCreate, PermTicketsRespond, PermTicketsStatus,
		PermDashGuest,
	),
}

// Authorize checks the static role table.
func Authorize(role models.Role, perm Permission) error {
	if role == models.RoleAdmin {
		return nil
	}
	if rolePermissions[role][perm] {
		return nil
	}
	return fmt.Errorf("%w: %s may not %s", domain.ErrForbidden, role, perm)
}

// CheckScope denies a receptionist acting outside their branch and a guest
// acting on another guest's resource. A zero branch id is not checked.
func CheckScope(user models.User, branchID, guestID int64) error {
	switch user.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleReceptionist:
		if branchID != 0 && branchID != user.BranchID {
			return fmt.Errorf("%w: resource belongs to another branch", domain.ErrForbidden)
		}
		return nil
	case models.RoleGuest:
		if guestID != user.GuestID {
			return fmt.Errorf("%w: resource belongs to another guest", domain.ErrForbidden)
		}
		return nil
	default:
		return domain.ErrForbidden
	}
}

// ScopeQuery narrows a list query to what user may see.
func ScopeQuery(user models.User, q models.ListQuery) models.ListQuery {
	switch user.Role {
	case models.RoleReceptionist:
		q.BranchID = user.BranchID
	case models.RoleGuest:
		q.GuestID = user.GuestID
	}
	return q
}
