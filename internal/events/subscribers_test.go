package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"skynest/internal/domain/mocks"
	"skynest/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterActivityLog(t *testing.T) {
	bus := NewEventBus()
	store := new(mocks.ActivityStore)
	logger := zerolog.Nop()
	RegisterActivityLog(context.Background(), bus, store, &logger)

	store.On("RecordActivity", mock.Anything, mock.MatchedBy(func(a *models.Activity) bool {
		return a.Action == EventPaymentRecorded && a.ActorID == 3 && a.EntityID == 11 && a.Details == "Card 50.00"
	})).Return(nil).Once()

	require.NoError(t, bus.PublishJSON(EventPaymentRecorded, Payload{
		EntityType: "payment", EntityID: 11, BranchID: 1, Summary: "Card 50.00", ActorID: 3, ActorRole: models.RoleReceptionist,
	}))
	// Events without an actor are not audited.
	require.NoError(t, bus.PublishJSON(EventPaymentRecorded, Payload{EntityType: "payment", EntityID: 12}))

	store.AssertExpectations(t)
}

func TestRegisterSheetsSync(t *testing.T) {
	bus := NewEventBus()
	worker := new(mocks.SyncWorker)
	logger := zerolog.Nop()
	RegisterSheetsSync(context.Background(), bus, worker, &logger)

	booking := &models.Booking{ID: 9, Status: models.BookingBooked}
	worker.On("EnqueueBooking", mock.Anything, mock.MatchedBy(func(b *models.Booking) bool { return b.ID == 9 })).Return(nil).Once()
	worker.On("EnqueueBookingStatus", mock.Anything, int64(9), "Checked-In").Return(nil).Once()
	worker.On("EnqueueBookingStatus", mock.Anything, int64(9), "Cancelled").Return(errors.New("queue down")).Once()

	require.NoError(t, bus.PublishJSON(EventBookingCreated, Payload{EntityType: "booking", EntityID: 9, Booking: booking}))
	require.NoError(t, bus.PublishJSON(EventBookingCheckedIn, Payload{EntityType: "booking", EntityID: 9, Status: "Checked-In"}))
	require.NoError(t, bus.PublishJSON(EventBookingCancelled, Payload{
		EntityType: "booking", EntityID: 9, Booking: &models.Booking{ID: 9, Status: models.BookingCancelled},
	}))
	// No snapshot, nothing to upsert.
	require.NoError(t, bus.PublishJSON(EventBookingCreated, Payload{EntityType: "booking", EntityID: 10}))

	worker.AssertExpectations(t)
}

func TestRegisterNotifier(t *testing.T) {
	bus := NewEventBus()
	n := new(mocks.Notifier)
	logger := zerolog.Nop()
	RegisterNotifier(context.Background(), bus, n, &logger)

	sent := make(chan string, 1)
	n.On("Notify", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent <- args.String(1)
	}).Return(nil)

	require.NoError(t, bus.PublishJSON(EventTicketCreated, Payload{EntityType: "ticket", EntityID: 5, BranchID: 2, Summary: "No hot water"}))
	require.NoError(t, bus.PublishJSON(EventPaymentRecorded, Payload{EntityType: "payment", EntityID: 1}))

	select {
	case text := <-sent:
		assert.Equal(t, "New support ticket #5 (branch 2)\nNo hot water", text)
	case <-time.After(time.Second):
		t.Fatal("notification not sent")
	}
}

func TestStaffMessage(t *testing.T) {
	tests := []struct {
		eventType string
		payload   Payload
		want      string
		ok        bool
	}{
		{EventServiceRequested, Payload{EntityID: 3}, "New service request awaiting approval #3", true},
		{EventBookingCancelled, Payload{EntityID: 8, BranchID: 1}, "Booking cancelled #8 (branch 1)", true},
		{EventBookingCreated, Payload{EntityID: 8}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			ev, err := NewJSONEvent(tt.eventType, tt.payload)
			require.NoError(t, err)
			got, ok := StaffMessage(&ev)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegisterMetrics(t *testing.T) {
	bus := NewEventBus()
	RegisterMetrics(bus)
	assert.NotPanics(t, func() {
		_ = bus.PublishJSON(EventRoomChanged, Payload{EntityType: "room", EntityID: 1})
	})
}

func TestRegisterAllWaitsForNotifications(t *testing.T) {
	bus := NewEventBus()
	store := new(mocks.ActivityStore)
	n := new(mocks.Notifier)
	logger := zerolog.Nop()
	wait := RegisterAll(context.Background(), bus, Sinks{Activity: store, Notifier: n}, &logger)

	store.On("RecordActivity", mock.Anything, mock.MatchedBy(func(a *models.Activity) bool {
		return a.Action == EventBookingCancelled && a.EntityID == 30
	})).Return(nil).Once()
	n.On("Notify", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		time.Sleep(20 * time.Millisecond)
	}).Return(nil).Once()

	require.NoError(t, bus.PublishJSON(EventBookingCancelled, Payload{
		EntityType: "booking", EntityID: 30, BranchID: 1, ActorID: 4, ActorRole: models.RoleReceptionist,
	}))
	wait()

	store.AssertExpectations(t)
	n.AssertExpectations(t)
}

func TestRegisterAllSkipsMissingSinks(t *testing.T) {
	bus := NewEventBus()
	logger := zerolog.Nop()
	wait := RegisterAll(context.Background(), bus, Sinks{}, &logger)
	assert.NotPanics(t, func() {
		_ = bus.PublishJSON(EventBookingCheckedIn, Payload{EntityType: "booking", EntityID: 1, ActorID: 2})
		wait()
	})
}
