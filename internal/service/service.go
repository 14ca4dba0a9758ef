// Package service implements the portal screens: each method fetches from the
// backend, enforces the caller's role and scope, and returns a view-model or
// a toast notice.
package service

import (
	"time"

	"skynest/internal/auth"
	"skynest/internal/domain"
	"skynest/internal/events"
	"skynest/internal/models"
	"skynest/internal/validation"

	"github.com/rs/zerolog"
)

// Deps are shared by every screen service. Activity, Sync and Events may be nil.
type Deps struct {
	Backend   domain.Backend
	Events    domain.EventPublisher
	Activity  domain.ActivityStore
	Sync      domain.SyncWorker
	Sessions  *auth.SessionManager
	ExportDir string
	Logger    *zerolog.Logger
}

type base struct {
	backend   domain.Backend
	eventBus  domain.EventPublisher
	validator *validation.Validator
	logger    *zerolog.Logger
	now       func() time.Time
}

func newBase(d Deps) base {
	logger := d.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return base{
		backend:   d.Backend,
		eventBus:  d.Events,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

func (b *base) publish(eventType string, payload events.Payload) {
	if b.eventBus == nil {
		return
	}
	if err := b.eventBus.PublishJSON(eventType, payload); err != nil {
		b.logger.Error().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

// Services groups every screen service of the portal.
type Services struct {
	Auth      *AuthService
	Bookings  *BookingService
	Rooms     *RoomService
	Guests    *GuestService
	Branches  *BranchService
	Catalog   *CatalogService
	Requests  *ServiceRequestService
	Payments  *PaymentService
	Tickets   *TicketService
	Dashboard *DashboardService
	Reports   *ReportService
}

func New(d Deps) *Services {
	return &Services{
		Auth:      NewAuthService(d),
		Bookings:  NewBookingService(d),
		Rooms:     NewRoomService(d),
		Guests:    NewGuestService(d),
		Branches:  NewBranchService(d),
		Catalog:   NewCatalogService(d),
		Requests:  NewServiceRequestService(d),
		Payments:  NewPaymentService(d),
		Tickets:   NewTicketService(d),
		Dashboard: NewDashboardService(d),
		Reports:   NewReportService(d),
	}
}

func actor(user models.User, p events.Payload) events.Payload {
	p.ActorID = user.ID
	p.ActorRole = user.Role
	return p
}
