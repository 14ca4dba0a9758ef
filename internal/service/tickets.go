package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"skynest/internal/auth"
	"skynest/internal/domain"
	"skynest/internal/events"
	"skynest/internal/filter"
	"skynest/internal/models"
)

type TicketService struct {
	base
}

func NewTicketService(d Deps) *TicketService {
	return &TicketService{base: newBase(d)}
}

// List returns tickets ordered by latest activity first.
func (s *TicketService) List(ctx context.Context, user models.User, c filter.Criteria) (filter.Page[models.SupportTicket], error) {
	if err := auth.Authorize(user.Role, auth.PermTicketsRead); err != nil {
		return filter.Page[models.SupportTicket]{}, err
	}
	c = scopeCriteria(user, c)
	q := auth.ScopeQuery(user, models.ListQuery{BranchID: c.BranchID, GuestID: c.GuestID})

	items, err := s.backend.ListTickets(ctx, q)
	if err != nil {
		return filter.Page[models.SupportTicket]{}, fmt.Errorf("list tickets: %w", err)
	}
	items = filter.Tickets(items, c)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LastActivity().After(items[j].LastActivity())
	})
	return filter.Paginate(items, c.Page, c.PageSize), nil
}

func (s *TicketService) Get(ctx context.Context, user models.User, id int64) (*models.SupportTicket, error) {
	if err := auth.Authorize(user.Role, auth.PermTicketsRead); err != nil {
		return nil, err
	}
	return s.load(ctx, user, id)
}

func (s *TicketService) load(ctx context.Context, user models.User, id int64) (*models.SupportTicket, error) {
	ticket, err := s.backend.GetTicket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ticket %d: %w", id, err)
	}
	if err := auth.CheckScope(user, ticket.BranchID, ticket.GuestID); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Create opens a ticket. A guest always opens it for themselves; when a
// booking is referenced the ticket inherits its branch.
func (s *TicketService) Create(ctx context.Context, user models.User, t *models.SupportTicket) (*models.SupportTicket, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermTicketsCreate); err != nil {
		return nil, models.Notice{}, err
	}
	t.Subject = strings.TrimSpace(t.Subject)
	t.Description = strings.TrimSpace(t.Description)
	if err := s.validator.Validate(t); err != nil {
		return nil, models.Notice{}, err
	}

	if user.Role == models.RoleGuest {
		t.GuestID = user.GuestID
	}
	if t.BookingID > 0 {
		booking, err := loadBooking(ctx, s.backend, user, t.BookingID)
		if err != nil {
			return nil, models.Notice{}, err
		}
		t.BranchID = booking.BranchID
		t.GuestID = booking.GuestID
	}
	if t.GuestID == 0 {
		return nil, models.Notice{}, domain.NewValidationError("guest_id", "is required")
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	t.Status = models.TicketOpen
	t.Responses = nil

	created, err := s.backend.CreateTicket(ctx, t)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("create ticket: %w", err)
	}

	s.publish(events.EventTicketCreated, actor(user, events.Payload{
		EntityType: "ticket",
		EntityID:   created.ID,
		BranchID:   created.BranchID,
		GuestID:    created.GuestID,
		Status:     string(created.Status),
		Summary:    created.Subject,
	}))
	return created, models.Success(fmt.Sprintf("Ticket #%d opened. Our staff will get back to you shortly", created.ID)), nil
}

// Respond appends a message to the thread. A staff reply on an Open ticket
// moves it to In Progress.
func (s *TicketService) Respond(ctx context.Context, user models.User, ticketID int64, message string) (*models.TicketResponse, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermTicketsRespond); err != nil {
		return nil, models.Notice{}, err
	}
	resp := &models.TicketResponse{
		TicketID:   ticketID,
		AuthorID:   user.ID,
		AuthorName: user.Name,
		AuthorRole: user.Role,
		Message:    strings.TrimSpace(message),
	}
	if err := s.validator.Validate(resp); err != nil {
		return nil, models.Notice{}, err
	}
	ticket, err := s.load(ctx, user, ticketID)
	if err != nil {
		return nil, models.Notice{}, err
	}
	if ticket.Status == models.TicketClosed {
		return nil, models.Notice{}, fmt.Errorf("%w: ticket %d is closed", domain.ErrInvalidTransition, ticketID)
	}

	created, err := s.backend.AddTicketResponse(ctx, ticketID, resp)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("respond to ticket %d: %w", ticketID, err)
	}

	s.publish(events.EventTicketResponded, actor(user, events.Payload{
		EntityType: "ticket",
		EntityID:   ticketID,
		BranchID:   ticket.BranchID,
		GuestID:    ticket.GuestID,
		Status:     string(ticket.Status),
	}))

	if user.Role != models.RoleGuest && ticket.Status == models.TicketOpen {
		if _, err := s.backend.UpdateTicketStatus(ctx, ticketID, models.TicketInProgress); err != nil {
			s.logger.Warn().Err(err).Int64("ticket_id", ticketID).Msg("reply sent but ticket stayed open")
			return created, models.Warning("Reply sent, but the ticket status could not be updated"), nil
		}
		s.publishStatus(user, ticket, models.TicketInProgress)
	}
	return created, models.Success("Reply sent"), nil
}

// ChangeStatus moves the ticket along its lifecycle. Guests may only reopen
// a resolved ticket or close one.
func (s *TicketService) ChangeStatus(ctx context.Context, user models.User, ticketID int64, raw string) (*models.SupportTicket, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermTicketsStatus); err != nil {
		return nil, models.Notice{}, err
	}
	next, ok := models.ParseTicketStatus(raw)
	if !ok {
		return nil, models.Notice{}, domain.NewValidationError("status", fmt.Sprintf("unknown ticket status %q", raw))
	}
	ticket, err := s.load(ctx, user, ticketID)
	if err != nil {
		return nil, models.Notice{}, err
	}
	if !ticket.Status.CanTransitionTo(next) {
		return nil, models.Notice{}, fmt.Errorf("%w: ticket %d is %s, cannot become %s", domain.ErrInvalidTransition, ticketID, ticket.Status, next)
	}
	if user.Role == models.RoleGuest && !guestMayMove(ticket.Status, next) {
		return nil, models.Notice{}, fmt.Errorf("%w: guests may only reopen a resolved ticket or close it", domain.ErrForbidden)
	}

	updated, err := s.backend.UpdateTicketStatus(ctx, ticketID, next)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("update ticket %d: %w", ticketID, err)
	}
	if updated.Status == "" {
		updated.Status = next
	}
	s.publishStatus(user, ticket, next)
	return updated, models.Success(fmt.Sprintf("Ticket #%d is now %s", ticketID, next)), nil
}

func guestMayMove(from, to models.TicketStatus) bool {
	if to == models.TicketClosed {
		return true
	}
	return from == models.TicketResolved && to == models.TicketOpen
}

func (s *TicketService) publishStatus(user models.User, t *models.SupportTicket, status models.TicketStatus) {
	s.publish(events.EventTicketStatusChanged, actor(user, events.Payload{
		EntityType: "ticket",
		EntityID:   t.ID,
		BranchID:   t.BranchID,
		GuestID:    t.GuestID,
		Status:     string(status),
		Summary:    fmt.Sprintf("%s -> %s", t.Status, status),
	}))
}
