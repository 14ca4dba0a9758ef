package models

import "time"

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "Cash"
	PaymentCard   PaymentMethod = "Card"
	PaymentOnline PaymentMethod = "Online"
)

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "Completed"
	PaymentPending   PaymentStatus = "Pending"
	PaymentRefunded  PaymentStatus = "Refunded"
)

var PaymentStatuses = []PaymentStatus{PaymentCompleted, PaymentPending, PaymentRefunded}

func ParsePaymentStatus(raw string) (PaymentStatus, bool) {
	key := normalizeStatus(raw)
	for _, s := range PaymentStatuses {
		if normalizeStatus(string(s)) == key {
			return s, true
		}
	}
	return "", false
}

type Payment struct {
	ID          int64         `json:"id"`
	BookingID   int64         `json:"booking_id" validate:"required,gt=0"`
	BranchID    int64         `json:"branch_id"`
	GuestID     int64         `json:"guest_id"`
	Amount      float64       `json:"amount" validate:"gt=0"`
	Method      PaymentMethod `json:"method" validate:"required,oneof=Cash Card Online"`
	Status      PaymentStatus `json:"status"`
	Reference   string        `json:"reference,omitempty" validate:"max=128"`
	ReceivedBy  int64         `json:"received_by,omitempty"`
	PaidAt      time.Time     `json:"paid_at"`
	Description string        `json:"description,omitempty" validate:"max=256"`
}
