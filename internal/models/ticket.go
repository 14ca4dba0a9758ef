package models

import "time"

type TicketStatus string

const (
	TicketOpen       TicketStatus = "Open"
	TicketInProgress TicketStatus = "In Progress"
	TicketResolved   TicketStatus = "Resolved"
	TicketClosed     TicketStatus = "Closed"
)

var TicketStatuses = []TicketStatus{TicketOpen, TicketInProgress, TicketResolved, TicketClosed}

var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketOpen:       {TicketInProgress, TicketResolved, TicketClosed},
	TicketInProgress: {TicketResolved, TicketClosed, TicketOpen},
	TicketResolved:   {TicketClosed, TicketOpen},
}

func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	for _, allowed := range ticketTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseTicketStatus(raw string) (TicketStatus, bool) {
	key := normalizeStatus(raw)
	for _, s := range TicketStatuses {
		if normalizeStatus(string(s)) == key {
			return s, true
		}
	}
	return "", false
}

type TicketPriority string

const (
	PriorityLow    TicketPriority = "Low"
	PriorityMedium TicketPriority = "Medium"
	PriorityHigh   TicketPriority = "High"
	PriorityUrgent TicketPriority = "Urgent"
)

type SupportTicket struct {
	ID          int64            `json:"id"`
	GuestID     int64            `json:"guest_id"`
	GuestName   string           `json:"guest_name,omitempty"`
	BranchID    int64            `json:"branch_id"`
	BookingID   int64            `json:"booking_id,omitempty"`
	Subject     string           `json:"subject" validate:"required,max=200"`
	Description string           `json:"description" validate:"required,max=4000"`
	Category    string           `json:"category,omitempty" validate:"max=64"`
	Priority    TicketPriority   `json:"priority" validate:"omitempty,oneof=Low Medium High Urgent"`
	Status      TicketStatus     `json:"status"`
	AssignedTo  int64            `json:"assigned_to,omitempty"`
	Responses   []TicketResponse `json:"responses,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// LastActivity is the time of the newest response, or of the ticket itself.
func (t *SupportTicket) LastActivity() time.Time {
	last := t.UpdatedAt
	if last.IsZero() {
		last = t.CreatedAt
	}
	for _, r := range t.Responses {
		if r.CreatedAt.After(last) {
			last = r.CreatedAt
		}
	}
	return last
}

type TicketResponse struct {
	ID         int64     `json:"id"`
	TicketID   int64     `json:"ticket_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	AuthorRole Role      `json:"author_role"`
	Message    string    `json:"message" validate:"required,max=4000"`
	CreatedAt  time.Time `json:"created_at"`
}
