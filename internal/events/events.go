package events

import (
	"encoding/json"
	"sync"
	"time"

	"skynest/internal/models"
)

const (
	EventBookingCreated    = "booking.created"
	EventBookingCheckedIn  = "booking.checked_in"
	EventBookingCheckedOut = "booking.checked_out"
	EventBookingCancelled  = "booking.cancelled"

	EventServiceRequested       = "service_request.created"
	EventServiceRequestApproved = "service_request.approved"
	EventServiceRequestRejected = "service_request.rejected"
	EventServiceUsageAdded      = "service_usage.added"

	EventPaymentRecorded = "payment.recorded"

	EventTicketCreated       = "ticket.created"
	EventTicketResponded     = "ticket.responded"
	EventTicketStatusChanged = "ticket.status_changed"

	EventRoomChanged    = "room.changed"
	EventGuestChanged   = "guest.changed"
	EventBranchChanged  = "branch.changed"
	EventServiceChanged = "service.changed"

	EventReportExported = "report.exported"
)

// Payload describes the minimal snapshot of a change for event consumers.
type Payload struct {
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	BranchID   int64           `json:"branch_id,omitempty"`
	GuestID    int64           `json:"guest_id,omitempty"`
	Status     string          `json:"status,omitempty"`
	Summary    string          `json:"summary,omitempty"`
	ActorID    int64           `json:"actor_id,omitempty"`
	ActorRole  models.Role     `json:"actor_role,omitempty"`
	Booking    *models.Booking `json:"booking,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the event payload.
func (e *Event) Decode() (Payload, error) {
	var p Payload
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	wildcard    []EventHandler
	onError     func(event *Event, err error)
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers a handler that receives every event.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = append(b.wildcard, handler)
}

// OnError sets the callback for handler failures.
func (b *EventBus) OnError(fn func(event *Event, err error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onError = fn
}

// Publish notifies subscribers of the event type, then wildcard subscribers.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	handlers = append(handlers, b.wildcard...)
	onError := b.onError
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil && onError != nil {
			onError(event, err)
		}
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	event, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}

	b.Publish(&event)
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
