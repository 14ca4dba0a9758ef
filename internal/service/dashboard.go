package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"skynest/internal/auth"
	"skynest/internal/domain"
	"skynest/internal/models"
	"skynest/internal/reports"
)

const dashboardActivityLimit = 10

type RoomCounts struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	Occupied    int `json:"occupied"`
	Maintenance int `json:"maintenance"`
}

func countRooms(rooms []models.Room) RoomCounts {
	c := RoomCounts{Total: len(rooms)}
	for _, r := range rooms {
		switch r.Status {
		case models.RoomAvailable:
			c.Available++
		case models.RoomOccupied:
			c.Occupied++
		case models.RoomMaintenance:
			c.Maintenance++
		}
	}
	return c
}

type AdminDashboard struct {
	Branches        int                   `json:"branches"`
	Rooms           RoomCounts            `json:"rooms"`
	ActiveBookings  int                   `json:"active_bookings"`
	ArrivalsToday   int                   `json:"arrivals_today"`
	DeparturesToday int                   `json:"departures_today"`
	PendingRequests int                   `json:"pending_requests"`
	OpenTickets     int                   `json:"open_tickets"`
	Occupancy       []models.OccupancyRow `json:"occupancy"`
	RecentActivity  []models.Activity     `json:"recent_activity"`
}

type ReceptionDashboard struct {
	BranchID        int64                   `json:"branch_id"`
	Rooms           RoomCounts              `json:"rooms"`
	Arrivals        []models.Booking        `json:"arrivals"`
	Departures      []models.Booking        `json:"departures"`
	InHouse         int                     `json:"in_house"`
	PendingRequests []models.ServiceRequest `json:"pending_requests"`
	OpenTickets     []models.SupportTicket  `json:"open_tickets"`
}

type GuestDashboard struct {
	CurrentStay     *models.Booking         `json:"current_stay,omitempty"`
	CurrentFolio    *models.Folio           `json:"current_folio,omitempty"`
	Upcoming        []models.Booking        `json:"upcoming"`
	PastStays       int                     `json:"past_stays"`
	PendingRequests []models.ServiceRequest `json:"pending_requests"`
	OpenTickets     []models.SupportTicket  `json:"open_tickets"`
}

// Dashboard is the landing screen of the signed-in user. Exactly one of the
// role sections is set.
type Dashboard struct {
	Role      models.Role         `json:"role"`
	Admin     *AdminDashboard     `json:"admin,omitempty"`
	Reception *ReceptionDashboard `json:"reception,omitempty"`
	Guest     *GuestDashboard     `json:"guest,omitempty"`
}

type DashboardService struct {
	base
	activity domain.ActivityStore
}

func NewDashboardService(d Deps) *DashboardService {
	return &DashboardService{base: newBase(d), activity: d.Activity}
}

// For builds the dashboard matching the user's role.
func (s *DashboardService) For(ctx context.Context, user models.User) (*Dashboard, error) {
	d := &Dashboard{Role: user.Role}
	var err error
	switch user.Role {
	case models.RoleAdmin:
		d.Admin, err = s.Admin(ctx, user)
	case models.RoleReceptionist:
		d.Reception, err = s.Reception(ctx, user)
	case models.RoleGuest:
		d.Guest, err = s.Guest(ctx, user)
	default:
		err = fmt.Errorf("%w: unknown role %q", domain.ErrForbidden, user.Role)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DashboardService) Admin(ctx context.Context, user models.User) (*AdminDashboard, error) {
	if err := auth.Authorize(user.Role, auth.PermDashAdmin); err != nil {
		return nil, err
	}
	branches, err := s.backend.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	rooms, err := s.backend.ListRooms(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	bookings, err := s.backend.ListBookings(ctx, models.ListQuery{})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	requests, err := s.backend.ListServiceRequests(ctx, models.ListQuery{Status: string(models.RequestPending)})
	if err != nil {
		return nil, fmt.Errorf("list service requests: %w", err)
	}
	tickets, err := s.backend.ListTickets(ctx, models.ListQuery{})
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	today := models.DateOnly(s.now())
	arrivals, departures := movementsOn(bookings, today)
	d := &AdminDashboard{
		Branches:        len(branches),
		Rooms:           countRooms(rooms),
		ArrivalsToday:   len(arrivals),
		DeparturesToday: len(departures),
		PendingRequests: len(pendingRequests(requests)),
		OpenTickets:     len(openTickets(tickets)),
		Occupancy:       reports.Occupancy(branches, rooms, bookings, today, today),
		RecentActivity:  s.recent(ctx, 0),
	}
	for _, b := range bookings {
		if b.Status.IsActive() {
			d.ActiveBookings++
		}
	}
	return d, nil
}

func (s *DashboardService) Reception(ctx context.Context, user models.User) (*ReceptionDashboard, error) {
	if err := auth.Authorize(user.Role, auth.PermDashReception); err != nil {
		return nil, err
	}
	q := auth.ScopeQuery(user, models.ListQuery{})

	rooms, err := s.backend.ListRooms(ctx, q.BranchID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	bookings, err := s.backend.ListBookings(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	requests, err := s.backend.ListServiceRequests(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list service requests: %w", err)
	}
	tickets, err := s.backend.ListTickets(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	arrivals, departures := movementsOn(bookings, models.DateOnly(s.now()))
	d := &ReceptionDashboard{
		BranchID:        q.BranchID,
		Rooms:           countRooms(rooms),
		Arrivals:        arrivals,
		Departures:      departures,
		PendingRequests: pendingRequests(requests),
		OpenTickets:     openTickets(tickets),
	}
	for _, b := range bookings {
		if b.Status == models.BookingCheckedIn {
			d.InHouse++
		}
	}
	return d, nil
}

func (s *DashboardService) Guest(ctx context.Context, user models.User) (*GuestDashboard, error) {
	if err := auth.Authorize(user.Role, auth.PermDashGuest); err != nil {
		return nil, err
	}
	q := auth.ScopeQuery(user, models.ListQuery{})

	bookings, err := s.backend.ListBookings(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	requests, err := s.backend.ListServiceRequests(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list service requests: %w", err)
	}
	tickets, err := s.backend.ListTickets(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	d := &GuestDashboard{
		Upcoming:        []models.Booking{},
		PendingRequests: pendingRequests(requests),
		OpenTickets:     openTickets(tickets),
	}
	for i := range bookings {
		b := bookings[i]
		switch b.Status {
		case models.BookingCheckedIn:
			d.CurrentStay = &b
		case models.BookingBooked:
			d.Upcoming = append(d.Upcoming, b)
		case models.BookingCheckedOut:
			d.PastStays++
		}
	}
	sort.Slice(d.Upcoming, func(i, j int) bool { return d.Upcoming[i].CheckIn.Before(d.Upcoming[j].CheckIn) })

	if d.CurrentStay != nil {
		d.CurrentFolio = s.folio(ctx, d.CurrentStay)
	}
	return d, nil
}

// folio is best effort; the dashboard renders without it.
func (s *DashboardService) folio(ctx context.Context, b *models.Booking) *models.Folio {
	usages, err := s.backend.ListServiceUsage(ctx, b.ID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("booking_id", b.ID).Msg("dashboard folio usage lookup failed")
		return nil
	}
	payments, err := s.backend.ListPayments(ctx, models.ListQuery{BookingID: b.ID})
	if err != nil {
		s.logger.Warn().Err(err).Int64("booking_id", b.ID).Msg("dashboard folio payment lookup failed")
		return nil
	}
	f := reports.Folio(b, nil, usages, payments)
	return &f
}

// Activity returns the latest audit entries. Receptionists only see their branch.
func (s *DashboardService) Activity(ctx context.Context, user models.User, limit int) ([]models.Activity, error) {
	if err := auth.Authorize(user.Role, auth.PermActivityRead); err != nil {
		return nil, err
	}
	if s.activity == nil {
		return nil, domain.ErrUnavailable
	}
	if limit <= 0 || limit > models.MaxPageSize {
		limit = models.DefaultPageSize
	}
	var branchID int64
	if user.Role == models.RoleReceptionist {
		branchID = user.BranchID
	}
	items, err := s.activity.RecentActivity(ctx, branchID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	if items == nil {
		items = []models.Activity{}
	}
	return items, nil
}

func (s *DashboardService) recent(ctx context.Context, branchID int64) []models.Activity {
	if s.activity == nil {
		return []models.Activity{}
	}
	items, err := s.activity.RecentActivity(ctx, branchID, dashboardActivityLimit)
	if err != nil {
		s.logger.Warn().Err(err).Msg("dashboard activity lookup failed")
		return []models.Activity{}
	}
	if items == nil {
		items = []models.Activity{}
	}
	return items
}

func movementsOn(bookings []models.Booking, day time.Time) (arrivals, departures []models.Booking) {
	arrivals, departures = []models.Booking{}, []models.Booking{}
	for _, b := range bookings {
		switch {
		case b.Status == models.BookingBooked && models.DateOnly(b.CheckIn).Equal(day):
			arrivals = append(arrivals, b)
		case b.Status == models.BookingCheckedIn && models.DateOnly(b.CheckOut).Equal(day):
			departures = append(departures, b)
		}
	}
	return arrivals, departures
}

func pendingRequests(items []models.ServiceRequest) []models.ServiceRequest {
	out := []models.ServiceRequest{}
	for _, r := range items {
		if r.Status == models.RequestPending {
			out = append(out, r)
		}
	}
	return out
}

func openTickets(items []models.SupportTicket) []models.SupportTicket {
	out := []models.SupportTicket{}
	for _, t := range items {
		if t.Status == models.TicketOpen || t.Status == models.TicketInProgress {
			out = append(out, t)
		}
	}
	return out
}
