package validation

import (
	"testing"
	"time"

	"skynest/internal/domain"
	"skynest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGuest(t *testing.T) {
	v := New()

	err := v.Validate(&models.Guest{FirstName: "Nimal", LastName: "Perera", Email: "nimal@example.com", Phone: "0771234567"})
	assert.NoError(t, err)

	err = v.Validate(&models.Guest{FirstName: "Nimal", Email: "not-an-email", Phone: "1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["last_name"])
	assert.Equal(t, "must be a valid email address", verr.Fields["email"])
	assert.Equal(t, "must be at least 6 characters", verr.Fields["phone"])
}

func TestValidatePaymentAndBooking(t *testing.T) {
	v := New()

	err := v.Validate(&models.Payment{BookingID: 1, Amount: 0, Method: "Cheque"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "amount")
	assert.Equal(t, "must be one of Cash, Card, Online", verr.Fields["method"])

	in := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	err = v.Validate(&models.CreateBookingRequest{BranchID: 1, GuestID: 2, RoomID: 3, CheckIn: in, CheckOut: in, Guests: 1})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be after checkin", verr.Fields["check_out"])
}
