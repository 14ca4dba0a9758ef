package events

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"skynest/internal/domain"
	"skynest/internal/metrics"
	"skynest/internal/models"

	"github.com/rs/zerolog"
)

// bookingStatusEvents are mirrored into the Sheets ledger as status updates.
var bookingStatusEvents = []string{EventBookingCheckedIn, EventBookingCheckedOut, EventBookingCancelled}

// RegisterMetrics counts every published event.
func RegisterMetrics(bus *EventBus) {
	bus.SubscribeAll(func(ev *Event) error {
		metrics.IncEvent(ev.Type)
		return nil
	})
}

// RegisterActivityLog writes every event carrying an actor into the audit log.
func RegisterActivityLog(ctx context.Context, bus *EventBus, store domain.ActivityStore, logger *zerolog.Logger) {
	bus.SubscribeAll(func(ev *Event) error {
		p, err := ev.Decode()
		if err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		if p.ActorID == 0 {
			return nil
		}

		entry := &models.Activity{
			ActorID:    p.ActorID,
			ActorRole:  p.ActorRole,
			BranchID:   p.BranchID,
			Action:     ev.Type,
			EntityType: p.EntityType,
			EntityID:   p.EntityID,
			Details:    p.Summary,
			CreatedAt:  ev.CreatedAt,
		}
		if err := store.RecordActivity(ctx, entry); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: record activity")
		}
		return nil
	})
}

// RegisterSheetsSync enqueues ledger updates for booking events.
func RegisterSheetsSync(ctx context.Context, bus *EventBus, worker domain.SyncWorker, logger *zerolog.Logger) {
	upsert := func(ev *Event) error {
		p, err := ev.Decode()
		if err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		if p.Booking == nil {
			logger.Warn().Int64("booking_id", p.EntityID).Msg("event bus: booking snapshot missing")
			return nil
		}
		if err := worker.EnqueueBooking(ctx, p.Booking); err != nil {
			logger.Error().Err(err).Int64("booking_id", p.Booking.ID).Msg("event bus: enqueue upsert")
		}
		return nil
	}

	status := func(ev *Event) error {
		p, err := ev.Decode()
		if err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		s := p.Status
		if s == "" && p.Booking != nil {
			s = string(p.Booking.Status)
		}
		if s == "" {
			logger.Error().Int64("booking_id", p.EntityID).Msg("event bus: missing status")
			return nil
		}
		if err := worker.EnqueueBookingStatus(ctx, p.EntityID, s); err != nil {
			logger.Error().Err(err).Int64("booking_id", p.EntityID).Msg("event bus: enqueue status")
		}
		return nil
	}

	bus.Subscribe(EventBookingCreated, upsert)
	for _, t := range bookingStatusEvents {
		bus.Subscribe(t, status)
	}
}

// StaffMessage renders the staff notification for an event, if it warrants one.
func StaffMessage(ev *Event) (string, bool) {
	p, err := ev.Decode()
	if err != nil {
		return "", false
	}

	var b strings.Builder
	switch ev.Type {
	case EventServiceRequested:
		b.WriteString("New service request awaiting approval")
	case EventTicketCreated:
		b.WriteString("New support ticket")
	case EventBookingCancelled:
		b.WriteString("Booking cancelled")
	default:
		return "", false
	}

	if p.EntityID > 0 {
		b.WriteString(" #")
		b.WriteString(strconv.FormatInt(p.EntityID, 10))
	}
	if p.BranchID > 0 {
		b.WriteString(" (branch ")
		b.WriteString(strconv.FormatInt(p.BranchID, 10))
		b.WriteString(")")
	}
	if p.Summary != "" {
		b.WriteString("\n")
		b.WriteString(p.Summary)
	}
	return b.String(), true
}

// RegisterNotifier forwards staff-relevant events to the notifier without
// blocking the publisher. The returned func waits for sends in flight.
func RegisterNotifier(ctx context.Context, bus *EventBus, n domain.Notifier, logger *zerolog.Logger) (wait func()) {
	var inflight sync.WaitGroup
	handler := func(ev *Event) error {
		text, ok := StaffMessage(ev)
		if !ok {
			return nil
		}
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			if err := n.Notify(ctx, text); err != nil {
				logger.Warn().Err(err).Str("event", ev.Type).Msg("staff notification failed")
			}
		}()
		return nil
	}

	for _, t := range []string{EventServiceRequested, EventTicketCreated, EventBookingCancelled} {
		bus.Subscribe(t, handler)
	}
	return inflight.Wait
}

// Sinks are the consumers a bus feeds. Nil sinks are skipped.
type Sinks struct {
	Activity domain.ActivityStore
	Notifier domain.Notifier
	Sync     domain.SyncWorker
}

// RegisterAll subscribes metrics and every configured sink. The returned func
// waits for staff notifications still being sent.
func RegisterAll(ctx context.Context, bus *EventBus, sinks Sinks, logger *zerolog.Logger) (wait func()) {
	RegisterMetrics(bus)
	if sinks.Activity != nil {
		RegisterActivityLog(ctx, bus, sinks.Activity, logger)
	}
	if sinks.Sync != nil {
		RegisterSheetsSync(ctx, bus, sinks.Sync, logger)
	}
	if sinks.Notifier == nil {
		return func() {}
	}
	return RegisterNotifier(ctx, bus, sinks.Notifier, logger)
}
