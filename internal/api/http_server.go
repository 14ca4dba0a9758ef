package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"skynest/internal/auth"
	"skynest/internal/config"
	"skynest/internal/domain"
	"skynest/internal/service"
	"skynest/internal/wizard"

	"github.com/rs/zerolog"
)

// HTTPDeps are the collaborators of the portal HTTP server.
type HTTPDeps struct {
	Services *service.Services
	Wizard   *wizard.Wizard
	Sessions *auth.SessionManager
	Limits   domain.StateRepository
	Logger   *zerolog.Logger
}

// HTTPServer is the portal: JSON view-models for the browser client.
type HTTPServer struct {
	cfg      config.PortalConfig
	svc      *service.Services
	wizard   *wizard.Wizard
	sessions *auth.SessionManager
	limits   domain.StateRepository
	server   *http.Server
	log      zerolog.Logger
}

func NewHTTPServer(cfg config.PortalConfig, deps HTTPDeps) *HTTPServer {
	logger := zerolog.Nop()
	if deps.Logger != nil {
		logger = deps.Logger.With().Str("component", "http").Logger()
	}

	srv := &HTTPServer{
		cfg:      cfg,
		svc:      deps.Services,
		wizard:   deps.Wizard,
		sessions: deps.Sessions,
		limits:   deps.Limits,
		log:      logger,
	}

	mux := http.NewServeMux()
	srv.routes(mux)

	var handler http.Handler = mux
	handler = clientLimit(newRateLimiter(cfg.RateLimit))(handler)
	handler = corsMiddleware(cfg.HTTP.CORSOrigins)(handler)
	handler = recoverMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = requestContext(&srv.log)(handler)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return srv
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handle(mux *http.ServeMux, pattern, route string, h http.Handler) {
	mux.Handle(pattern, instrument(route, h))
}

// user registers a read route behind the session check.
func (s *HTTPServer) user(mux *http.ServeMux, pattern, route string, h userHandler) {
	s.handle(mux, pattern, route, s.authed(h))
}

// write registers a mutation route: session check plus the per-user write limit.
func (s *HTTPServer) write(mux *http.ServeMux, pattern, route string, h userHandler) {
	s.handle(mux, pattern, route, s.authed(s.mutation(h)))
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	s.handle(mux, "GET /healthz", "healthz", http.HandlerFunc(s.handleHealth))
	s.handle(mux, "POST /api/auth/login", "auth.login", http.HandlerFunc(s.handleLogin))
	s.user(mux, "GET /api/me", "auth.me", s.handleMe)

	s.user(mux, "GET /api/dashboard", "dashboard", s.handleDashboard)
	s.user(mux, "GET /api/activity", "activity", s.handleActivity)

	s.user(mux, "GET /api/bookings", "bookings.list", s.handleListBookings)
	s.user(mux, "GET /api/bookings/{id}", "bookings.get", s.handleGetBooking)
	s.write(mux, "POST /api/bookings/{id}/check-in", "bookings.check_in", s.handleCheckIn)
	s.write(mux, "POST /api/bookings/{id}/check-out", "bookings.check_out", s.handleCheckOut)
	s.write(mux, "POST /api/bookings/{id}/cancel", "bookings.cancel", s.handleCancel)
	s.user(mux, "GET /api/bookings/{id}/usage", "usage.list", s.handleListUsage)
	s.write(mux, "POST /api/bookings/{id}/usage", "usage.add", s.handleAddUsage)

	s.write(mux, "POST /api/wizard", "wizard.start", requirePerm(auth.PermBookingsCreate, s.handleWizardStart))
	s.user(mux, "GET /api/wizard/{id}", "wizard.get", s.handleWizardGet)
	s.user(mux, "GET /api/wizard/{id}/rooms", "wizard.rooms", s.handleWizardRooms)
	s.write(mux, "PUT /api/wizard/{id}/branch", "wizard.branch", s.handleWizardBranch)
	s.write(mux, "PUT /api/wizard/{id}/dates", "wizard.dates", s.handleWizardDates)
	s.write(mux, "PUT /api/wizard/{id}/room", "wizard.room", s.handleWizardRoom)
	s.write(mux, "PUT /api/wizard/{id}/guest", "wizard.guest", s.handleWizardGuest)
	s.write(mux, "PUT /api/wizard/{id}/services", "wizard.services", s.handleWizardServices)
	s.write(mux, "POST /api/wizard/{id}/back", "wizard.back", s.handleWizardBack)
	s.write(mux, "POST /api/wizard/{id}/review", "wizard.review", s.handleWizardReview)
	s.write(mux, "POST /api/wizard/{id}/submit", "wizard.submit", requirePerm(auth.PermBookingsCreate, s.handleWizardSubmit))
	s.write(mux, "DELETE /api/wizard/{id}", "wizard.cancel", s.handleWizardCancel)

	s.user(mux, "GET /api/rooms", "rooms.list", s.handleListRooms)
	s.write(mux, "POST /api/rooms", "rooms.create", s.handleCreateRoom)
	s.write(mux, "PUT /api/rooms/{id}", "rooms.update", s.handleUpdateRoom)
	s.write(mux, "PUT /api/rooms/{id}/status", "rooms.status", s.handleRoomStatus)

	s.user(mux, "GET /api/guests", "guests.list", s.handleListGuests)
	s.user(mux, "GET /api/guests/{id}", "guests.get", s.handleGetGuest)
	s.write(mux, "POST /api/guests", "guests.create", s.handleCreateGuest)
	s.write(mux, "PUT /api/guests/{id}", "guests.update", s.handleUpdateGuest)

	s.user(mux, "GET /api/branches", "branches.list", s.handleListBranches)
	s.write(mux, "POST /api/branches", "branches.create", s.handleCreateBranch)
	s.write(mux, "PUT /api/branches/{id}", "branches.update", s.handleUpdateBranch)

	s.user(mux, "GET /api/services", "services.list", s.handleListServices)
	s.write(mux, "POST /api/services", "services.create", s.handleCreateService)
	s.write(mux, "PUT /api/services/{id}", "services.update", s.handleUpdateService)

	s.user(mux, "GET /api/service-requests", "requests.list", s.handleListRequests)
	s.write(mux, "POST /api/service-requests", "requests.create", s.handleCreateRequest)
	s.write(mux, "POST /api/service-requests/{id}/approve", "requests.approve", s.handleApproveRequest)
	s.write(mux, "POST /api/service-requests/{id}/reject", "requests.reject", s.handleRejectRequest)

	s.user(mux, "GET /api/payments", "payments.list", s.handleListPayments)
	s.write(mux, "POST /api/payments", "payments.record", s.handleRecordPayment)

	s.user(mux, "GET /api/tickets", "tickets.list", s.handleListTickets)
	s.user(mux, "GET /api/tickets/{id}", "tickets.get", s.handleGetTicket)
	s.write(mux, "POST /api/tickets", "tickets.create", s.handleCreateTicket)
	s.write(mux, "POST /api/tickets/{id}/responses", "tickets.respond", s.handleRespondTicket)
	s.write(mux, "PUT /api/tickets/{id}/status", "tickets.status", s.handleTicketStatus)

	s.user(mux, "GET /api/reports", "reports.build", s.handleReport)
	s.user(mux, "GET /api/reports/export.xlsx", "reports.download", s.handleReportDownload)
	s.write(mux, "POST /api/reports/export", "reports.export", s.handleReportExport)
	s.write(mux, "POST /api/reports/snapshot", "reports.snapshot", s.handleReportSnapshot)
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("portal HTTP listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
