package domain

import (
	"context"
	"time"

	"skynest/internal/models"
)

// Backend is the SkyNest REST backend as seen by the portal.
type Backend interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)

	ListBranches(ctx context.Context) ([]models.Branch, error)
	GetBranch(ctx context.Context, id int64) (*models.Branch, error)
	CreateBranch(ctx context.Context, branch *models.Branch) (*models.Branch, error)
	UpdateBranch(ctx context.Context, branch *models.Branch) (*models.Branch, error)

	ListRooms(ctx context.Context, branchID int64) ([]models.Room, error)
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
	AvailableRooms(ctx context.Context, branchID int64, checkIn, checkOut time.Time) ([]models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error)
	UpdateRoom(ctx context.Context, room *models.Room) (*models.Room, error)
	SetRoomStatus(ctx context.Context, id int64, status models.RoomStatus) (*models.Room, error)

	ListGuests(ctx context.Context, search string) ([]models.Guest, error)
	GetGuest(ctx context.Context, id int64) (*models.Guest, error)
	CreateGuest(ctx context.Context, guest *models.Guest) (*models.Guest, error)
	UpdateGuest(ctx context.Context, guest *models.Guest) (*models.Guest, error)

	ListBookings(ctx context.Context, q models.ListQuery) ([]models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) (*models.Booking, error)

	ListServices(ctx context.Context, branchID int64) ([]models.Service, error)
	CreateService(ctx context.Context, svc *models.Service) (*models.Service, error)
	UpdateService(ctx context.Context, svc *models.Service) (*models.Service, error)

	ListServiceUsage(ctx context.Context, bookingID int64) ([]models.ServiceUsage, error)
	AddServiceUsage(ctx context.Context, usage *models.ServiceUsage) (*models.ServiceUsage, error)

	ListServiceRequests(ctx context.Context, q models.ListQuery) ([]models.ServiceRequest, error)
	GetServiceRequest(ctx context.Context, id int64) (*models.ServiceRequest, error)
	CreateServiceRequest(ctx context.Context, req *models.ServiceRequest) (*models.ServiceRequest, error)
	UpdateServiceRequestStatus(ctx context.Context, id int64, upd models.ServiceRequestStatusUpdate) (*models.ServiceRequest, error)

	ListPayments(ctx context.Context, q models.ListQuery) ([]models.Payment, error)
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)

	ListTickets(ctx context.Context, q models.ListQuery) ([]models.SupportTicket, error)
	GetTicket(ctx context.Context, id int64) (*models.SupportTicket, error)
	CreateTicket(ctx context.Context, ticket *models.SupportTicket) (*models.SupportTicket, error)
	UpdateTicketStatus(ctx context.Context, id int64, status models.TicketStatus) (*models.SupportTicket, error)
	AddTicketResponse(ctx context.Context, ticketID int64, resp *models.TicketResponse) (*models.TicketResponse, error)
}

type StateRepository interface {
	GetWizard(ctx context.Context, id string) (*models.WizardState, error)
	SaveWizard(ctx context.Context, state *models.WizardState) error
	DeleteWizard(ctx context.Context, id string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ActivityStore is the portal's local audit log.
type ActivityStore interface {
	RecordActivity(ctx context.Context, a *models.Activity) error
	RecentActivity(ctx context.Context, branchID int64, limit int) ([]models.Activity, error)
}

type SheetsWriter interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
	ReplaceReportSheet(ctx context.Context, report *models.Report) error
}

type SyncWorker interface {
	EnqueueBooking(ctx context.Context, booking *models.Booking) error
	EnqueueBookingStatus(ctx context.Context, bookingID int64, status string) error
	EnqueueReport(ctx context.Context, report *models.Report) error
}

// Notifier delivers short staff notifications.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
