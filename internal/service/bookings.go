package service

import (
	"context"
	"fmt"

	"skynest/internal/auth"
	"skynest/internal/domain"
	"skynest/internal/events"
	"skynest/internal/filter"
	"skynest/internal/models"
	"skynest/internal/reports"
)

// BookingDetail is the booking card with its folio.
type BookingDetail struct {
	Booking *models.Booking `json:"booking"`
	Room    *models.Room    `json:"room,omitempty"`
	Folio   models.Folio    `json:"folio"`
}

type BookingService struct {
	base
}

func NewBookingService(d Deps) *BookingService {
	return &BookingService{base: newBase(d)}
}

// scopeCriteria pins the filter to what the user may see, whatever the query asked for.
func scopeCriteria(user models.User, c filter.Criteria) filter.Criteria {
	switch user.Role {
	case models.RoleReceptionist:
		c.BranchID = user.BranchID
	case models.RoleGuest:
		c.GuestID = user.GuestID
	}
	return c
}

func (s *BookingService) List(ctx context.Context, user models.User, c filter.Criteria) (filter.Page[models.Booking], error) {
	if err := auth.Authorize(user.Role, auth.PermBookingsRead); err != nil {
		return filter.Page[models.Booking]{}, err
	}

	c = scopeCriteria(user, c)
	q := auth.ScopeQuery(user, models.ListQuery{BranchID: c.BranchID, GuestID: c.GuestID})
	items, err := s.backend.ListBookings(ctx, q)
	if err != nil {
		return filter.Page[models.Booking]{}, fmt.Errorf("list bookings: %w", err)
	}
	return filter.Paginate(filter.Bookings(items, c), c.Page, c.PageSize), nil
}

// load fetches a booking the user is allowed to act on.
func (s *BookingService) load(ctx context.Context, user models.User, id int64) (*models.Booking, error) {
	return loadBooking(ctx, s.backend, user, id)
}

func loadBooking(ctx context.Context, api domain.Backend, user models.User, id int64) (*models.Booking, error) {
	booking, err := api.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	if err := auth.CheckScope(user, booking.BranchID, booking.GuestID); err != nil {
		return nil, err
	}
	return booking, nil
}

// Get returns the booking with its folio. Usage and payment lookups are
// best effort so the card still renders when one of them fails.
func (s *BookingService) Get(ctx context.Context, user models.User, id int64) (*BookingDetail, error) {
	if err := auth.Authorize(user.Role, auth.PermBookingsRead); err != nil {
		return nil, err
	}
	booking, err := s.load(ctx, user, id)
	if err != nil {
		return nil, err
	}

	room, err := s.backend.GetRoom(ctx, booking.RoomID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("room_id", booking.RoomID).Msg("folio room lookup failed")
	}
	usages, err := s.backend.ListServiceUsage(ctx, booking.ID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("booking_id", booking.ID).Msg("folio usage lookup failed")
	}
	payments, err := s.backend.ListPayments(ctx, models.ListQuery{BookingID: booking.ID})
	if err != nil {
		s.logger.Warn().Err(err).Int64("booking_id", booking.ID).Msg("folio payment lookup failed")
	}

	return &BookingDetail{
		Booking: booking,
		Room:    room,
		Folio:   reports.Folio(booking, room, usages, payments),
	}, nil
}

func (s *BookingService) CheckIn(ctx context.Context, user models.User, id int64) (*models.Booking, models.Notice, error) {
	return s.transition(ctx, user, id, models.BookingCheckedIn, auth.PermBookingsStatus, events.EventBookingCheckedIn)
}

func (s *BookingService) CheckOut(ctx context.Context, user models.User, id int64) (*models.Booking, models.Notice, error) {
	return s.transition(ctx, user, id, models.BookingCheckedOut, auth.PermBookingsStatus, events.EventBookingCheckedOut)
}

// Cancel is allowed only while the booking is still Booked.
func (s *BookingService) Cancel(ctx context.Context, user models.User, id int64) (*models.Booking, models.Notice, error) {
	return s.transition(ctx, user, id, models.BookingCancelled, auth.PermBookingsCancel, events.EventBookingCancelled)
}

func (s *BookingService) transition(ctx context.Context, user models.User, id int64, next models.BookingStatus, perm auth.Permission, eventType string) (*models.Booking, models.Notice, error) {
	if err := auth.Authorize(user.Role, perm); err != nil {
		return nil, models.Notice{}, err
	}
	booking, err := s.load(ctx, user, id)
	if err != nil {
		return nil, models.Notice{}, err
	}
	if !booking.Status.CanTransitionTo(next) {
		return nil, models.Notice{}, fmt.Errorf("%w: booking %d is %s, cannot become %s", domain.ErrInvalidTransition, id, booking.Status, next)
	}

	updated, err := s.backend.UpdateBookingStatus(ctx, id, next)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("update booking %d: %w", id, err)
	}
	if updated.Status == "" {
		updated.Status = next
	}

	s.publish(eventType, actor(user, events.Payload{
		EntityType: "booking",
		EntityID:   updated.ID,
		BranchID:   updated.BranchID,
		GuestID:    updated.GuestID,
		Status:     string(updated.Status),
		Summary:    fmt.Sprintf("%s, room %s", updated.GuestName, updated.RoomNumber),
		Booking:    updated,
	}))
	s.logger.Info().Int64("booking_id", id).Str("status", string(next)).Int64("actor_id", user.ID).Msg("booking status changed")

	return updated, models.Success(bookingNotice(updated.ID, next)), nil
}

func bookingNotice(id int64, status models.BookingStatus) string {
	switch status {
	case models.BookingCheckedIn:
		return fmt.Sprintf("Booking #%d checked in", id)
	case models.BookingCheckedOut:
		return fmt.Sprintf("Booking #%d checked out", id)
	case models.BookingCancelled:
		return fmt.Sprintf("Booking #%d cancelled", id)
	default:
		return fmt.Sprintf("Booking #%d updated", id)
	}
}
