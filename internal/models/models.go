package models

import "time"

type WizardStep string

const (
	StepBranch    WizardStep = "branch"
	StepDates     WizardStep = "dates"
	StepRoom      WizardStep = "room"
	StepGuest     WizardStep = "guest"
	StepServices  WizardStep = "services"
	StepReview    WizardStep = "review"
	StepSubmitted WizardStep = "submitted"
)

// WizardSteps lists the booking wizard steps in order.
var WizardSteps = []WizardStep{StepBranch, StepDates, StepRoom, StepGuest, StepServices, StepReview, StepSubmitted}

// Index returns the position of the step, -1 for an unknown step.
func (s WizardStep) Index() int {
	for i, step := range WizardSteps {
		if step == s {
			return i
		}
	}
	return -1
}

type ServiceSelection struct {
	ServiceID int64   `json:"service_id" validate:"required,gt=0"`
	Name      string  `json:"name,omitempty"`
	UnitPrice float64 `json:"unit_price,omitempty"`
	Quantity  int     `json:"quantity" validate:"required,min=1,max=100"`
}

// WizardState is the persisted draft of a booking being created step by step.
type WizardState struct {
	ID        string     `json:"id"`
	OwnerID   int64      `json:"owner_id"`
	OwnerRole Role       `json:"owner_role"`
	Step      WizardStep `json:"step"`

	BranchID     int64  `json:"branch_id,omitempty"`
	BranchName   string `json:"branch_name,omitempty"`
	BranchLocked bool   `json:"branch_locked,omitempty"`

	CheckIn  time.Time `json:"check_in,omitempty"`
	CheckOut time.Time `json:"check_out,omitempty"`
	Guests   int       `json:"number_of_guests,omitempty"`

	RoomID       int64   `json:"room_id,omitempty"`
	RoomNumber   string  `json:"room_number,omitempty"`
	RoomType     string  `json:"room_type,omitempty"`
	RoomRate     float64 `json:"room_rate,omitempty"`
	RoomCapacity int     `json:"room_capacity,omitempty"`

	GuestID     int64  `json:"guest_id,omitempty"`
	GuestLocked bool   `json:"guest_locked,omitempty"`
	NewGuest    *Guest `json:"new_guest,omitempty"`

	Services         []ServiceSelection `json:"services,omitempty"`
	ServicesReviewed bool               `json:"services_reviewed,omitempty"`

	BookingID int64     `json:"booking_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *WizardState) HasDates() bool {
	return !s.CheckIn.IsZero() && !s.CheckOut.IsZero()
}

func (s *WizardState) HasGuest() bool {
	return s.GuestID > 0 || s.NewGuest != nil
}

func (s *WizardState) Nights() int {
	if !s.HasDates() {
		return 0
	}
	return NightsBetween(s.CheckIn, s.CheckOut)
}

// Estimate is the displayed pre-booking total; billing happens server-side.
type Estimate struct {
	Nights        int     `json:"nights"`
	RoomRate      float64 `json:"room_rate"`
	RoomTotal     float64 `json:"room_total"`
	ServicesTotal float64 `json:"services_total"`
	Total         float64 `json:"total"`
	IsEstimate    bool    `json:"is_estimate"`
}

func (s *WizardState) Estimate() Estimate {
	nights := s.Nights()
	est := Estimate{
		Nights:     nights,
		RoomRate:   s.RoomRate,
		RoomTotal:  s.RoomRate * float64(nights),
		IsEstimate: true,
	}
	for _, sel := range s.Services {
		est.ServicesTotal += sel.UnitPrice * float64(sel.Quantity)
	}
	est.Total = est.RoomTotal + est.ServicesTotal
	return est
}

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is the toast shown to the user after an action.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

func Success(msg string) Notice { return Notice{Level: NoticeSuccess, Message: msg} }
func Warning(msg string) Notice { return Notice{Level: NoticeWarning, Message: msg} }

// Activity is an entry of the portal's local audit log.
type Activity struct {
	ID         int64     `json:"id"`
	ActorID    int64     `json:"actor_id"`
	ActorRole  Role      `json:"actor_role"`
	BranchID   int64     `json:"branch_id,omitempty"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
