package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	assert.True(t, BookingBooked.CanTransitionTo(BookingCheckedIn))
	assert.True(t, BookingBooked.CanTransitionTo(BookingCancelled))
	assert.True(t, BookingCheckedIn.CanTransitionTo(BookingCheckedOut))

	assert.False(t, BookingBooked.CanTransitionTo(BookingCheckedOut))
	assert.False(t, BookingCheckedIn.CanTransitionTo(BookingCancelled))
	assert.False(t, BookingCheckedOut.CanTransitionTo(BookingBooked))
	assert.False(t, BookingCancelled.CanTransitionTo(BookingBooked))
	assert.False(t, BookingBooked.CanTransitionTo(BookingBooked))
}

func TestParseStatuses(t *testing.T) {
	for _, raw := range []string{"checked_in", "Checked-In", "CHECKED IN", " checkedin "} {
		s, ok := ParseBookingStatus(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, BookingCheckedIn, s)
	}
	_, ok := ParseBookingStatus("archived")
	assert.False(t, ok)

	ts, ok := ParseTicketStatus("in_progress")
	assert.True(t, ok)
	assert.Equal(t, TicketInProgress, ts)

	rs, ok := ParseRoomStatus("maintenance")
	assert.True(t, ok)
	assert.Equal(t, RoomMaintenance, rs)

	role, ok := ParseRole("Reception")
	assert.True(t, ok)
	assert.Equal(t, RoleReceptionist, role)
}

func TestTicketStatusTransitions(t *testing.T) {
	assert.True(t, TicketOpen.CanTransitionTo(TicketInProgress))
	assert.True(t, TicketResolved.CanTransitionTo(TicketOpen))
	assert.True(t, TicketResolved.CanTransitionTo(TicketClosed))
	assert.False(t, TicketClosed.CanTransitionTo(TicketOpen))
	assert.False(t, TicketClosed.CanTransitionTo(TicketInProgress))
}

func TestNights(t *testing.T) {
	in := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC)
	b := &Booking{CheckIn: in, CheckOut: out}
	assert.Equal(t, 3, b.Nights())

	sameDay := &Booking{CheckIn: in, CheckOut: in}
	assert.Equal(t, 1, sameDay.Nights())
}

func TestWizardStateEstimate(t *testing.T) {
	state := &WizardState{
		CheckIn:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		RoomRate: 100,
		Services: []ServiceSelection{
			{ServiceID: 1, UnitPrice: 25, Quantity: 2},
			{ServiceID: 2, UnitPrice: 10, Quantity: 1},
		},
	}

	est := state.Estimate()
	assert.Equal(t, 2, est.Nights)
	assert.Equal(t, 200.0, est.RoomTotal)
	assert.Equal(t, 60.0, est.ServicesTotal)
	assert.Equal(t, 260.0, est.Total)
	assert.True(t, est.IsEstimate)

	empty := &WizardState{}
	assert.Equal(t, 0, empty.Nights())
	assert.False(t, empty.HasGuest())
}

func TestWizardStepIndex(t *testing.T) {
	assert.Equal(t, 0, StepBranch.Index())
	assert.Equal(t, 5, StepReview.Index())
	assert.Equal(t, -1, WizardStep("nope").Index())
}

func TestTicketLastActivity(t *testing.T) {
	created := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	ticket := &SupportTicket{
		CreatedAt: created,
		Responses: []TicketResponse{
			{CreatedAt: created.Add(time.Hour)},
			{CreatedAt: created.Add(30 * time.Minute)},
		},
	}
	assert.Equal(t, created.Add(time.Hour), ticket.LastActivity())
}
