package service

import (
	"context"
	"testing"

	"skynest/internal/domain"
	"skynest/internal/events"
	"skynest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func room(id, branchID int64, status models.RoomStatus) *models.Room {
	return &models.Room{ID: id, BranchID: branchID, Number: "101", Type: "Deluxe", Rate: 120, Capacity: 2, Status: status}
}

func TestRoomSetStatus(t *testing.T) {
	tests := []struct {
		name      string
		user      models.User
		raw       string
		setup     func(f *fixture)
		wantErr   error
		wantLevel models.NoticeLevel
		published []string
	}{
		{
			name:    "guest forbidden",
			user:    guest,
			raw:     "Maintenance",
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "unknown status",
			user:    admin,
			raw:     "broken",
			wantErr: domain.ErrValidation,
		},
		{
			name: "other branch",
			user: reception,
			raw:  "maintenance",
			setup: func(f *fixture) {
				f.api.On("GetRoom", mock.Anything, int64(7)).Return(room(7, 11, models.RoomAvailable), nil).Once()
			},
			wantErr: domain.ErrForbidden,
		},
		{
			name: "same status is informational",
			user: reception,
			raw:  "available",
			setup: func(f *fixture) {
				f.api.On("GetRoom", mock.Anything, int64(7)).Return(room(7, 10, models.RoomAvailable), nil).Once()
			},
			wantLevel: models.NoticeInfo,
		},
		{
			name: "status parsed loosely",
			user: reception,
			raw:  "MAINTENANCE",
			setup: func(f *fixture) {
				f.api.On("GetRoom", mock.Anything, int64(7)).Return(room(7, 10, models.RoomAvailable), nil).Once()
				f.api.On("SetRoomStatus", mock.Anything, int64(7), models.RoomMaintenance).
					Return(room(7, 10, models.RoomMaintenance), nil).Once()
			},
			wantLevel: models.NoticeSuccess,
			published: []string{events.EventRoomChanged},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			_, notice, err := f.svc.Rooms.SetStatus(context.Background(), tt.user, 7, tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.published)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, notice.Level)
			assert.Equal(t, tt.published, f.published)
		})
	}
}

func TestRoomCreate(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Rooms.Create(context.Background(), reception, room(0, 10, ""))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.api.On("CreateRoom", mock.Anything, mock.MatchedBy(func(r *models.Room) bool {
		return r.Status == models.RoomAvailable
	})).Return(room(8, 10, models.RoomAvailable), nil).Once()

	created, notice, err := f.svc.Rooms.Create(context.Background(), admin, room(0, 10, ""))
	require.NoError(t, err)
	assert.Equal(t, int64(8), created.ID)
	assert.Equal(t, "Room 101 created", notice.Message)
	assert.Equal(t, []string{events.EventRoomChanged}, f.published)
}

func guestRecord(id int64) *models.Guest {
	return &models.Guest{ID: id, FirstName: "Gus", LastName: "Guest", Email: "gus@example.com", Phone: "+94771234567"}
}

func TestGuestUpdate(t *testing.T) {
	tests := []struct {
		name    string
		user    models.User
		guest   *models.Guest
		backend bool
		wantErr error
	}{
		{name: "own profile", user: guest, guest: guestRecord(77), backend: true},
		{name: "someone else's profile", user: guest, guest: guestRecord(78), wantErr: domain.ErrForbidden},
		{name: "receptionist edits any guest", user: reception, guest: guestRecord(78), backend: true},
		{name: "missing id", user: reception, guest: guestRecord(0), wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.backend {
				f.api.On("UpdateGuest", mock.Anything, tt.guest).Return(tt.guest, nil).Once()
			}
			_, notice, err := f.svc.Guests.Update(context.Background(), tt.user, tt.guest)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.published)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Guest details saved", notice.Message)
			assert.Equal(t, []string{events.EventGuestChanged}, f.published)
		})
	}
}

func TestBranchWritesAdminOnly(t *testing.T) {
	f := newFixture(t)
	colombo := &models.Branch{ID: 10, Name: "Colombo", City: "Colombo"}

	_, _, err := f.svc.Branches.Create(context.Background(), reception, colombo)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, _, err = f.svc.Branches.Update(context.Background(), reception, colombo)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, _, err = f.svc.Branches.Create(context.Background(), guest, colombo)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, f.published)

	_, _, err = f.svc.Branches.Update(context.Background(), admin, &models.Branch{Name: "Kandy", City: "Kandy"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	f.api.On("UpdateBranch", mock.Anything, colombo).Return(colombo, nil).Once()
	_, notice, err := f.svc.Branches.Update(context.Background(), admin, colombo)
	require.NoError(t, err)
	assert.Equal(t, "Branch Colombo updated", notice.Message)
	assert.Equal(t, []string{events.EventBranchChanged}, f.published)
}

func TestAddUsage(t *testing.T) {
	spa := models.Service{ID: 9, BranchID: 10, Name: "Spa", Price: 40, IsAvailable: true}

	tests := []struct {
		name    string
		status  models.BookingStatus
		offered []models.Service
		wantErr error
	}{
		{name: "cancelled booking", status: models.BookingCancelled, wantErr: domain.ErrInvalidTransition},
		{name: "checked-out booking", status: models.BookingCheckedOut, wantErr: domain.ErrInvalidTransition},
		{
			name:    "service from another branch",
			status:  models.BookingCheckedIn,
			offered: []models.Service{{ID: 4, BranchID: 10, Name: "Laundry", IsAvailable: true}},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unavailable service",
			status:  models.BookingCheckedIn,
			offered: []models.Service{{ID: 9, BranchID: 10, Name: "Spa", Price: 40}},
			wantErr: domain.ErrValidation,
		},
		{name: "billed at catalog price", status: models.BookingCheckedIn, offered: []models.Service{spa}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.api.On("GetBooking", mock.Anything, int64(1)).Return(booking(1, tt.status), nil).Once()
			if tt.offered != nil {
				f.api.On("ListServices", mock.Anything, int64(10)).Return(tt.offered, nil).Once()
			}
			if tt.wantErr == nil {
				f.api.On("AddServiceUsage", mock.Anything, mock.MatchedBy(func(u *models.ServiceUsage) bool {
					return u.UnitPrice == 40 && u.ServiceName == "Spa"
				})).Return(&models.ServiceUsage{ID: 3, BookingID: 1, ServiceID: 9, Quantity: 2, UnitPrice: 40}, nil).Once()
			}

			usage := &models.ServiceUsage{BookingID: 1, ServiceID: 9, Quantity: 2}
			created, notice, err := f.svc.Catalog.AddUsage(context.Background(), reception, usage)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.published)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Spa", created.ServiceName)
			assert.Equal(t, "2 × Spa added to booking #1", notice.Message)
			assert.Equal(t, []string{events.EventServiceUsageAdded}, f.published)
		})
	}
}

func TestGuestCannotAddUsage(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Catalog.AddUsage(context.Background(), guest, &models.ServiceUsage{BookingID: 1, ServiceID: 9, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCheckOut(t *testing.T) {
	t.Run("from booked rejected", func(t *testing.T) {
		f := newFixture(t)
		f.api.On("GetBooking", mock.Anything, int64(1)).Return(booking(1, models.BookingBooked), nil).Once()

		_, _, err := f.svc.Bookings.CheckOut(context.Background(), reception, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Empty(t, f.published)
	})

	t.Run("from checked in", func(t *testing.T) {
		f := newFixture(t)
		f.api.On("GetBooking", mock.Anything, int64(1)).Return(booking(1, models.BookingCheckedIn), nil).Once()
		f.api.On("UpdateBookingStatus", mock.Anything, int64(1), models.BookingCheckedOut).
			Return(booking(1, models.BookingCheckedOut), nil).Once()

		b, notice, err := f.svc.Bookings.CheckOut(context.Background(), reception, 1)
		require.NoError(t, err)
		assert.Equal(t, models.BookingCheckedOut, b.Status)
		assert.Equal(t, "Booking #1 checked out", notice.Message)
		assert.Equal(t, []string{events.EventBookingCheckedOut}, f.published)
	})
}
