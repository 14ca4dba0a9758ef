package models

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingBooked     BookingStatus = "Booked"
	BookingCheckedIn  BookingStatus = "Checked-In"
	BookingCheckedOut BookingStatus = "Checked-Out"
	BookingCancelled  BookingStatus = "Cancelled"
)

// BookingStatuses lists statuses in lifecycle order.
var BookingStatuses = []BookingStatus{BookingBooked, BookingCheckedIn, BookingCheckedOut, BookingCancelled}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingBooked:    {BookingCheckedIn, BookingCancelled},
	BookingCheckedIn: {BookingCheckedOut},
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsActive() bool {
	return s == BookingBooked || s == BookingCheckedIn
}

// ParseBookingStatus accepts "checked_in", "Checked-In", "CHECKED IN" and so on.
func ParseBookingStatus(raw string) (BookingStatus, bool) {
	key := normalizeStatus(raw)
	for _, s := range BookingStatuses {
		if normalizeStatus(string(s)) == key {
			return s, true
		}
	}
	return "", false
}

type Booking struct {
	ID          int64         `json:"id"`
	BranchID    int64         `json:"branch_id"`
	BranchName  string        `json:"branch_name,omitempty"`
	GuestID     int64         `json:"guest_id"`
	GuestName   string        `json:"guest_name,omitempty"`
	RoomID      int64         `json:"room_id"`
	RoomNumber  string        `json:"room_number,omitempty"`
	CheckIn     time.Time     `json:"check_in"`
	CheckOut    time.Time     `json:"check_out"`
	Guests      int           `json:"number_of_guests"`
	Status      BookingStatus `json:"status"`
	RoomRate    float64       `json:"room_rate"`
	Notes       string        `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	CancelledBy string        `json:"cancelled_by,omitempty"`
}

// Nights returns whole nights of the stay, never less than one.
func (b *Booking) Nights() int {
	return NightsBetween(b.CheckIn, b.CheckOut)
}

// NightsBetween counts calendar nights between two dates.
func NightsBetween(checkIn, checkOut time.Time) int {
	in := DateOnly(checkIn)
	out := DateOnly(checkOut)
	n := int(out.Sub(in).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreateBookingRequest is the body of POST /api/bookings.
type CreateBookingRequest struct {
	BranchID int64     `json:"branch_id" validate:"required,gt=0"`
	GuestID  int64     `json:"guest_id" validate:"required,gt=0"`
	RoomID   int64     `json:"room_id" validate:"required,gt=0"`
	CheckIn  time.Time `json:"check_in" validate:"required"`
	CheckOut time.Time `json:"check_out" validate:"required,gtfield=CheckIn"`
	Guests   int       `json:"number_of_guests" validate:"required,min=1"`
	Notes    string    `json:"notes,omitempty" validate:"max=500"`
}

func normalizeStatus(raw string) string {
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(raw)))
}

// NormalizeStatus folds case and drops separators so "checked_in" equals "Checked-In".
func NormalizeStatus(raw string) string {
	return normalizeStatus(raw)
}
