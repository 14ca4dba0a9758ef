package events

import (
	"encoding/json"
	"errors"
	"testing"

	"skynest/internal/models"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	err := bus.PublishJSON(EventBookingCreated, Payload{EntityType: "booking", EntityID: 42, Status: "Booked"})
	if err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
	if received.Type != EventBookingCreated {
		t.Errorf("expected type %s, got %s", EventBookingCreated, received.Type)
	}

	payload, err := received.Decode()
	if err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.EntityID != 42 || payload.Status != "Booked" {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2, all int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })
	bus.SubscribeAll(func(_ *Event) error { all++; return nil })

	bus.Publish(&Event{Type: "event"})
	bus.Publish(&Event{Type: "other"})

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both handlers to be called once, got %d and %d", count1, count2)
	}
	if all != 2 {
		t.Errorf("expected wildcard handler to see 2 events, got %d", all)
	}
}

func TestEventBusHandlerErrors(t *testing.T) {
	bus := NewEventBus()
	var reported error
	var secondCalled bool

	bus.OnError(func(_ *Event, err error) { reported = err })
	bus.Subscribe("event", func(_ *Event) error { return errors.New("sink down") })
	bus.Subscribe("event", func(_ *Event) error { secondCalled = true; return nil })

	bus.Publish(&Event{Type: "event"})

	if reported == nil || reported.Error() != "sink down" {
		t.Errorf("expected handler error to be reported, got %v", reported)
	}
	if !secondCalled {
		t.Error("a failing handler must not stop the next one")
	}
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	bus.Publish(&Event{Type: "unknown"})
	if err := bus.PublishJSON("unknown", nil); err != nil {
		t.Errorf("PublishJSON failed: %v", err)
	}

	var nilBus *EventBus
	if err := nilBus.PublishJSON("unknown", nil); err != nil {
		t.Errorf("nil bus must be a no-op, got %v", err)
	}
}

func TestNewJSONEvent(t *testing.T) {
	payload := Payload{EntityID: 123, Booking: &models.Booking{ID: 123, Status: models.BookingBooked}}
	event, err := NewJSONEvent("type", payload)
	if err != nil {
		t.Fatalf("NewJSONEvent failed: %v", err)
	}

	if event.CreatedAt.IsZero() {
		t.Errorf("expected CreatedAt to be set")
	}

	var decoded Payload
	if err := json.Unmarshal(event.Payload, &decoded); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if decoded.Booking == nil || decoded.Booking.Status != models.BookingBooked {
		t.Errorf("expected embedded booking, got %+v", decoded.Booking)
	}
}
