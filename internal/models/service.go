package models

import "time"

// Service is a catalog entry of a branch (spa, laundry, airport pickup...).
type Service struct {
	ID          int64   `json:"id"`
	BranchID    int64   `json:"branch_id" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required,max=128"`
	Category    string  `json:"category,omitempty" validate:"max=64"`
	Price       float64 `json:"price" validate:"gte=0"`
	Unit        string  `json:"unit,omitempty" validate:"max=32"`
	IsAvailable bool    `json:"is_available"`
}

// ServiceUsage is a billed add-on attached to a booking.
type ServiceUsage struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"booking_id" validate:"required,gt=0"`
	ServiceID   int64     `json:"service_id" validate:"required,gt=0"`
	ServiceName string    `json:"service_name,omitempty"`
	Quantity    int       `json:"quantity" validate:"required,min=1,max=100"`
	UnitPrice   float64   `json:"unit_price"`
	UsedAt      time.Time `json:"used_at"`
	RequestID   int64     `json:"request_id,omitempty"`
}

func (u *ServiceUsage) Total() float64 {
	return u.UnitPrice * float64(u.Quantity)
}

type ServiceRequestStatus string

const (
	RequestPending  ServiceRequestStatus = "Pending"
	RequestApproved ServiceRequestStatus = "Approved"
	RequestRejected ServiceRequestStatus = "Rejected"
)

var ServiceRequestStatuses = []ServiceRequestStatus{RequestPending, RequestApproved, RequestRejected}

func ParseServiceRequestStatus(raw string) (ServiceRequestStatus, bool) {
	key := normalizeStatus(raw)
	for _, s := range ServiceRequestStatuses {
		if normalizeStatus(string(s)) == key {
			return s, true
		}
	}
	return "", false
}

// ServiceRequest is raised by a guest and needs staff approval before billing.
type ServiceRequest struct {
	ID           int64                `json:"id"`
	BookingID    int64                `json:"booking_id" validate:"required,gt=0"`
	GuestID      int64                `json:"guest_id"`
	GuestName    string               `json:"guest_name,omitempty"`
	BranchID     int64                `json:"branch_id"`
	ServiceID    int64                `json:"service_id" validate:"required,gt=0"`
	ServiceName  string               `json:"service_name,omitempty"`
	Quantity     int                  `json:"quantity" validate:"required,min=1,max=100"`
	Notes        string               `json:"notes,omitempty" validate:"max=500"`
	Status       ServiceRequestStatus `json:"status"`
	ReviewedBy   int64                `json:"reviewed_by,omitempty"`
	RejectReason string               `json:"reject_reason,omitempty"`
	UsageID      int64                `json:"usage_id,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ServiceRequestStatusUpdate is the body of PUT /api/service-requests/{id}/status.
type ServiceRequestStatusUpdate struct {
	Status       ServiceRequestStatus `json:"status"`
	ReviewedBy   int64                `json:"reviewed_by"`
	RejectReason string               `json:"reject_reason,omitempty"`
	UsageID      int64                `json:"usage_id,omitempty"`
}
