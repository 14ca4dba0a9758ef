package service

import (
	"context"
	"fmt"

	"skynest/internal/auth"
	"skynest/internal/domain"
	"skynest/internal/events"
	"skynest/internal/filter"
	"skynest/internal/models"
)

type PaymentService struct {
	base
}

func NewPaymentService(d Deps) *PaymentService {
	return &PaymentService{base: newBase(d)}
}

func (s *PaymentService) List(ctx context.Context, user models.User, bookingID int64, c filter.Criteria) (filter.Page[models.Payment], error) {
	if err := auth.Authorize(user.Role, auth.PermPaymentsRead); err != nil {
		return filter.Page[models.Payment]{}, err
	}
	if bookingID > 0 {
		if _, err := loadBooking(ctx, s.backend, user, bookingID); err != nil {
			return filter.Page[models.Payment]{}, err
		}
	}
	c = scopeCriteria(user, c)
	q := auth.ScopeQuery(user, models.ListQuery{BranchID: c.BranchID, GuestID: c.GuestID, BookingID: bookingID})

	items, err := s.backend.ListPayments(ctx, q)
	if err != nil {
		return filter.Page[models.Payment]{}, fmt.Errorf("list payments: %w", err)
	}
	return filter.Paginate(filter.Payments(items, c), c.Page, c.PageSize), nil
}

// Record registers a payment against a booking. Balances are settled by the backend.
func (s *PaymentService) Record(ctx context.Context, user models.User, p *models.Payment) (*models.Payment, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermPaymentsWrite); err != nil {
		return nil, models.Notice{}, err
	}
	if p.Amount <= 0 {
		return nil, models.Notice{}, domain.NewValidationError("amount", "must be greater than zero")
	}
	if err := s.validator.Validate(p); err != nil {
		return nil, models.Notice{}, err
	}
	booking, err := loadBooking(ctx, s.backend, user, p.BookingID)
	if err != nil {
		return nil, models.Notice{}, err
	}
	if booking.Status == models.BookingCancelled {
		return nil, models.Notice{}, fmt.Errorf("%w: booking %d is cancelled", domain.ErrInvalidTransition, booking.ID)
	}

	p.BranchID = booking.BranchID
	p.GuestID = booking.GuestID
	p.ReceivedBy = user.ID
	if p.Status == "" {
		p.Status = models.PaymentCompleted
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = s.now()
	}

	created, err := s.backend.CreatePayment(ctx, p)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("record payment: %w", err)
	}

	s.publish(events.EventPaymentRecorded, actor(user, events.Payload{
		EntityType: "payment",
		EntityID:   created.ID,
		BranchID:   booking.BranchID,
		GuestID:    booking.GuestID,
		Status:     string(created.Status),
		Summary:    fmt.Sprintf("%.2f %s for booking #%d", created.Amount, created.Method, booking.ID),
	}))
	s.logger.Info().Int64("booking_id", booking.ID).Float64("amount", created.Amount).Str("method", string(created.Method)).Msg("payment recorded")

	return created, models.Success(fmt.Sprintf("Payment of %.2f recorded for booking #%d", created.Amount, booking.ID)), nil
}
