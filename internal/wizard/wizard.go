// Package wizard drives the step-by-step booking creation flow.
package wizard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"skynest/internal/backend"
	"skynest/internal/domain"
	"skynest/internal/events"
	"skynest/internal/metrics"
	"skynest/internal/models"
	"skynest/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Wizard struct {
	repo      domain.StateRepository
	backend   domain.Backend
	eventBus  domain.EventPublisher
	validator *validation.Validator
	maxNights int
	logger    *zerolog.Logger

	now   func() time.Time
	newID func() string
}

func New(repo domain.StateRepository, api domain.Backend, eventBus domain.EventPublisher, maxNights int, logger *zerolog.Logger) *Wizard {
	if maxNights <= 0 {
		maxNights = models.DefaultMaxNights
	}
	return &Wizard{
		repo:      repo,
		backend:   api,
		eventBus:  eventBus,
		validator: validation.New(),
		maxNights: maxNights,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// GuestInput picks an existing guest or describes a new one. Exactly one is set.
type GuestInput struct {
	GuestID int64         `json:"guest_id,omitempty"`
	New     *models.Guest `json:"new_guest,omitempty"`
}

// SubmitResult is the outcome of Submit. Partial is set when the booking
// exists but some of its service usages could not be added.
type SubmitResult struct {
	State    *models.WizardState `json:"state"`
	Booking  *models.Booking     `json:"booking"`
	Partial  bool                `json:"partial"`
	Failures []string            `json:"failures,omitempty"`
	Notice   models.Notice       `json:"notice"`
}

// Start opens a new draft for owner. Receptionists are bound to their branch,
// guests to their own guest record.
func (w *Wizard) Start(ctx context.Context, owner models.User) (*models.WizardState, error) {
	now := w.now()
	state := &models.WizardState{
		ID:        w.newID(),
		OwnerID:   owner.ID,
		OwnerRole: owner.Role,
		Step:      models.StepBranch,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch owner.Role {
	case models.RoleReceptionist:
		if owner.BranchID <= 0 {
			return nil, fmt.Errorf("%w: receptionist has no branch", domain.ErrForbidden)
		}
		state.BranchID = owner.BranchID
		state.BranchLocked = true
		if branch, err := w.backend.GetBranch(ctx, owner.BranchID); err == nil {
			state.BranchName = branch.Name
		} else {
			w.logger.Warn().Err(err).Int64("branch_id", owner.BranchID).Msg("branch lookup failed")
		}
	case models.RoleGuest:
		if owner.GuestID <= 0 {
			return nil, fmt.Errorf("%w: account has no guest profile", domain.ErrForbidden)
		}
		state.GuestID = owner.GuestID
		state.GuestLocked = true
	case models.RoleAdmin:
	default:
		return nil, domain.ErrForbidden
	}

	state.Step = nextStep(state)
	if err := w.save(ctx, state); err != nil {
		return nil, err
	}
	w.logger.Info().Str("wizard_id", state.ID).Int64("owner_id", owner.ID).Str("role", string(owner.Role)).Msg("booking wizard started")
	return state, nil
}

func (w *Wizard) Get(ctx context.Context, id string, owner models.User) (*models.WizardState, error) {
	return w.load(ctx, id, owner)
}

func (w *Wizard) SetBranch(ctx context.Context, id string, owner models.User, branchID int64) (*models.WizardState, error) {
	state, err := w.loadOpen(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if state.BranchLocked && branchID != state.BranchID {
		return nil, fmt.Errorf("%w: branch is fixed for this account", domain.ErrForbidden)
	}
	if branchID <= 0 {
		return nil, domain.NewValidationError("branch_id", "is required")
	}

	branch, err := w.backend.GetBranch(ctx, branchID)
	if err != nil {
		if backend.StatusOf(err) == http.StatusNotFound {
			return nil, domain.NewValidationError("branch_id", "unknown branch")
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}

	if branchID != state.BranchID {
		clearDates(state)
		clearRoom(state)
		clearServices(state)
	}
	state.BranchID = branch.ID
	state.BranchName = branch.Name

	return w.advance(ctx, state, models.StepBranch)
}

func (w *Wizard) SetDates(ctx context.Context, id string, owner models.User, checkIn, checkOut time.Time, guests int) (*models.WizardState, error) {
	state, err := w.loadOpen(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if err := requireBefore(state, models.StepDates); err != nil {
		return nil, err
	}

	checkIn, checkOut = models.DateOnly(checkIn), models.DateOnly(checkOut)
	if err := w.validateDates(checkIn, checkOut, guests); err != nil {
		return nil, err
	}

	if !checkIn.Equal(state.CheckIn) || !checkOut.Equal(state.CheckOut) {
		clearRoom(state)
	} else if state.RoomID > 0 && guests > state.RoomCapacity {
		return nil, domain.NewValidationError("number_of_guests", fmt.Sprintf("room %s fits at most %d guests", state.RoomNumber, state.RoomCapacity))
	}
	state.CheckIn = checkIn
	state.CheckOut = checkOut
	state.Guests = guests

	return w.advance(ctx, state, models.StepDates)
}

func (w *Wizard) validateDates(checkIn, checkOut time.Time, guests int) error {
	verr := &domain.ValidationError{Fields: map[string]string{}}

	if checkIn.IsZero() {
		verr.Fields["check_in"] = "is required"
	} else if checkIn.Before(models.DateOnly(w.now())) {
		verr.Fields["check_in"] = "cannot be in the past"
	}
	if checkOut.IsZero() {
		verr.Fields["check_out"] = "is required"
	} else if !checkOut.After(checkIn) {
		verr.Fields["check_out"] = "must be after check-in"
	} else if nights := models.NightsBetween(checkIn, checkOut); nights > w.maxNights {
		verr.Fields["check_out"] = fmt.Sprintf("stay is limited to %d nights", w.maxNights)
	}
	if guests < 1 {
		verr.Fields["number_of_guests"] = "must be at least 1"
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// AvailableRooms lists rooms that can take the draft's dates and party size.
func (w *Wizard) AvailableRooms(ctx context.Context, id string, owner models.User) ([]models.Room, error) {
	state, err := w.loadOpen(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if err := requireBefore(state, models.StepRoom); err != nil {
		return nil, err
	}

	rooms, err := w.backend.AvailableRooms(ctx, state.BranchID, state.CheckIn, state.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("available rooms: %w", err)
	}
	out := make([]models.Room, 0, len(rooms))
	for _, r := range rooms {
		if r.Capacity >= state.Guests {
			out = append(out, r)
		}
	}
	return out, nil
}

func (w *Wizard) SelectRoom(ctx context.Context, id string, owner models.User, roomID int64) (*models.WizardState, error) {
	state, err := w.loadOpen(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if err := requireBefore(state, models.StepRoom); err != nil {
		return nil, err
	}

	rooms, err := w.backend.AvailableRooms(ctx, state.BranchID, state.CheckIn, state.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("available rooms: %w", err)
	}

	var room *models.Room
	for i := range rooms {
		if rooms[i].ID == roomID {
			room = &rooms[i]
			break
		}
	}
	if room == nil {
		return nil, domain.ErrRoomUnavailable
	}
	if state.Guests > room.Capacity {
		return nil, domain.NewValidationError("number_of_guests", fmt.Sprintf("room %s fits at most %d guests", room.Number, room.Capacity))
	}

	state.RoomID = room.ID
	state.RoomNumber = room.Number
	state.RoomType = room.Type
	state.RoomRate = room.Rate
	state.RoomCapacity = room.Capacity

	return w.advance(ctx, state, models.StepRoom)
}

func (w *Wizard) SetGuest(ctx context.Context, id string, owner models.User, in GuestInput) (*models.WizardState, error) {
	state, err := w.loadOpen(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if err := requireBefore(state, models.StepGuest); err != nil {
		return nil, err
	}
	if state.GuestLocked {
		if in.New != nil || (in.GuestID != 0 && in.GuestID != state.GuestID) {
			return nil, fmt.Errorf("%w: guest is fixed for this account", domain.ErrForbidden)
		}
		return w.advance(ctx, state, models.StepGuest)
	}

	switch {
	case in.GuestID > 0 && in.New != nil:
		return nil, domain.NewValidationError("guest", "choose an existing guest or enter a new one, not both")
	case in.GuestID > 0:
		guest, err := w.backend.GetGuest(ctx, in.GuestID)
		if err != nil {
			if backend.StatusOf(err) == http.StatusNotFound {
				return nil, domain.NewValidationError("guest_id", "unknown guest")
			}
			return nil, fmt.Errorf("get guest: %w", err)
		}
		state.GuestID = guest.ID
		state.NewGuest = nil
	case in.New != nil:
		if err := w.validator.Validate(in.New); err != nil {
			return nil, err
		}
		g := *in.New
		g.ID = 0
		state.NewGuest = &g
		state.GuestID = 0
	default:
		return nil, domain.NewValidationError("guest", "is required")
	}

	return w.advance(ctx, state, models.StepGuest)
}

func (w *Wizard) SetServices(ctx context.Context, id string, owner models.User, selections []models.ServiceSelection) (*models.WizardState, error) {
	state, err := w.loadOpen(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if err := requireBefore(state, models.StepServices); err != nil {
		return nil, err
	}

	catalog := map[int64]models.Service{}
	if len(selections) > 0 {
		services, err := w.backend.ListServices(ctx, state.BranchID)
		if err != nil {
			return nil, fmt.Errorf("list services: %w", err)
		}
		for _, svc := range services {
			catalog[svc.ID] = svc
		}
	}

	seen := make(map[int64]bool, len(selections))
	picked := make([]models.ServiceSelection, 0, len(selections))
	for i, sel := range selections {
		field := fmt.Sprintf("services[%d]", i)
		if err := w.validator.Validate(&sel); err != nil {
			return nil, err
		}
		if seen[sel.ServiceID] {
			return nil, domain.NewValidationError(field, "service selected twice")
		}
		seen[sel.ServiceID] = true

		svc, ok := catalog[sel.ServiceID]
		if !ok || svc.BranchID != state.BranchID {
			return nil, domain.NewValidationError(field, "service is not offered at this branch")
		}
		if !svc.IsAvailable {
			return nil, domain.NewValidationError(field, svc.Name+" is currently unavailable")
		}
		picked = append(picked, models.ServiceSelection{
			ServiceID: svc.ID,
			Name:      svc.Name,
			UnitPrice: svc.Price,
			Quantity:  sel.Quantity,
		})
	}

	state.Services = picked
	state.ServicesReviewed = true

	return w.advance(ctx, state, models.StepServices)
}

// Back moves the cursor one step back without clearing anything.
func (w *Wizard) Back(ctx context.Context, id string, owner models.User) (*models.WizardState, error) {
	state, err := w.loadOpen(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	idx := state.Step.Index() - 1
	first := 0
	if state.BranchLocked {
		first = models.StepDates.Index()
	}
	if idx < first {
		idx = first
	}
	if models.WizardSteps[idx] == models.StepGuest && state.GuestLocked {
		idx--
	}
	state.Step = models.WizardSteps[idx]

	if err := w.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Review moves to the review step once every earlier step is complete.
func (w *Wizard) Review(ctx context.Context, id string, owner models.User) (*models.WizardState, models.Estimate, error) {
	state, err := w.loadOpen(ctx, id, owner)
	if err != nil {
		return nil, models.Estimate{}, err
	}
	if err := requireBefore(state, models.StepReview); err != nil {
		return nil, models.Estimate{}, err
	}

	state.Step = models.StepReview
	metrics.IncWizardStep(string(models.StepReview))
	if err := w.save(ctx, state); err != nil {
		return nil, models.Estimate{}, err
	}
	return state, state.Estimate(), nil
}

// Submit creates the guest when new, then the booking, then one service usage
// per selection. Failures after the booking exists yield a partial result.
func (w *Wizard) Submit(ctx context.Context, id string, owner models.User) (*SubmitResult, error) {
	state, err := w.loadOpen(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if state.Step != models.StepReview {
		return nil, fmt.Errorf("%w: review the booking before submitting", domain.ErrStepOrder)
	}
	if err := requireBefore(state, models.StepReview); err != nil {
		return nil, err
	}

	if state.NewGuest != nil {
		guest, err := w.backend.CreateGuest(ctx, state.NewGuest)
		if err != nil {
			return nil, fmt.Errorf("create guest: %w", err)
		}
		state.GuestID = guest.ID
		state.NewGuest = nil
		if err := w.save(ctx, state); err != nil {
			w.logger.Warn().Err(err).Str("wizard_id", state.ID).Msg("failed to persist created guest")
		}
		w.publish(events.EventGuestChanged, events.Payload{
			EntityType: "guest",
			EntityID:   guest.ID,
			GuestID:    guest.ID,
			Summary:    "guest registered: " + guest.FullName(),
			ActorID:    owner.ID,
			ActorRole:  owner.Role,
		})
	}

	req := models.CreateBookingRequest{
		BranchID: state.BranchID,
		GuestID:  state.GuestID,
		RoomID:   state.RoomID,
		CheckIn:  state.CheckIn,
		CheckOut: state.CheckOut,
		Guests:   state.Guests,
	}
	if err := w.validator.Validate(&req); err != nil {
		return nil, err
	}

	booking, err := w.backend.CreateBooking(ctx, req)
	if err != nil {
		if backend.StatusOf(err) == http.StatusConflict {
			return nil, fmt.Errorf("%w: %v", domain.ErrRoomUnavailable, err)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}
	state.BookingID = booking.ID
	state.Step = models.StepSubmitted

	result := &SubmitResult{State: state, Booking: booking}
	for _, sel := range state.Services {
		usage := &models.ServiceUsage{
			BookingID: booking.ID,
			ServiceID: sel.ServiceID,
			Quantity:  sel.Quantity,
			UnitPrice: sel.UnitPrice,
			UsedAt:    w.now(),
		}
		if _, err := w.backend.AddServiceUsage(ctx, usage); err != nil {
			w.logger.Error().Err(err).Int64("booking_id", booking.ID).Int64("service_id", sel.ServiceID).Msg("failed to add service usage")
			result.Failures = append(result.Failures, sel.Name)
		}
	}

	if len(result.Failures) > 0 {
		result.Partial = true
		result.Notice = models.Warning(fmt.Sprintf("Booking #%d created, but %d service(s) could not be added. Add them from the booking page.", booking.ID, len(result.Failures)))
	} else {
		result.Notice = models.Success(fmt.Sprintf("Booking #%d created.", booking.ID))
	}

	if err := w.save(ctx, state); err != nil {
		w.logger.Warn().Err(err).Str("wizard_id", state.ID).Msg("failed to persist submitted wizard")
	}
	metrics.IncWizardStep(string(models.StepSubmitted))

	w.publish(events.EventBookingCreated, events.Payload{
		EntityType: "booking",
		EntityID:   booking.ID,
		BranchID:   booking.BranchID,
		GuestID:    booking.GuestID,
		Status:     string(booking.Status),
		Summary:    fmt.Sprintf("room %s, %s to %s", state.RoomNumber, state.CheckIn.Format(models.DateLayout), state.CheckOut.Format(models.DateLayout)),
		ActorID:    owner.ID,
		ActorRole:  owner.Role,
		Booking:    booking,
	})

	w.logger.Info().
		Str("wizard_id", state.ID).
		Int64("booking_id", booking.ID).
		Bool("partial", result.Partial).
		Msg("booking wizard submitted")

	return result, nil
}

func (w *Wizard) Cancel(ctx context.Context, id string, owner models.User) error {
	if _, err := w.load(ctx, id, owner); err != nil {
		return err
	}
	return w.repo.DeleteWizard(ctx, id)
}

func (w *Wizard) load(ctx context.Context, id string, owner models.User) (*models.WizardState, error) {
	state, err := w.repo.GetWizard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load wizard: %w", err)
	}
	if state == nil {
		return nil, fmt.Errorf("%w: booking draft expired or does not exist", domain.ErrNotFound)
	}
	if state.OwnerID != owner.ID {
		return nil, domain.ErrForbidden
	}
	return state, nil
}

func (w *Wizard) loadOpen(ctx context.Context, id string, owner models.User) (*models.WizardState, error) {
	state, err := w.load(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if state.Step == models.StepSubmitted {
		return nil, fmt.Errorf("%w: booking #%d was already submitted", domain.ErrStepOrder, state.BookingID)
	}
	return state, nil
}

func (w *Wizard) advance(ctx context.Context, state *models.WizardState, done models.WizardStep) (*models.WizardState, error) {
	state.Step = nextStep(state)
	metrics.IncWizardStep(string(done))
	if err := w.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (w *Wizard) save(ctx context.Context, state *models.WizardState) error {
	state.UpdatedAt = w.now()
	if err := w.repo.SaveWizard(ctx, state); err != nil {
		return fmt.Errorf("save wizard: %w", err)
	}
	return nil
}

func (w *Wizard) publish(eventType string, payload events.Payload) {
	if w.eventBus == nil {
		return
	}
	if err := w.eventBus.PublishJSON(eventType, payload); err != nil {
		w.logger.Error().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

// nextStep is the first step whose data is still missing.
func nextStep(s *models.WizardState) models.WizardStep {
	switch {
	case s.BranchID <= 0:
		return models.StepBranch
	case !s.HasDates() || s.Guests < 1:
		return models.StepDates
	case s.RoomID <= 0:
		return models.StepRoom
	case !s.HasGuest():
		return models.StepGuest
	case !s.ServicesReviewed:
		return models.StepServices
	default:
		return models.StepReview
	}
}

// requireBefore fails unless every step before step is complete.
func requireBefore(s *models.WizardState, step models.WizardStep) error {
	if next := nextStep(s); next.Index() < step.Index() {
		return fmt.Errorf("%w: complete the %s step first", domain.ErrStepOrder, next)
	}
	return nil
}

func clearDates(s *models.WizardState) {
	s.CheckIn = time.Time{}
	s.CheckOut = time.Time{}
	s.Guests = 0
}

func clearRoom(s *models.WizardState) {
	s.RoomID = 0
	s.RoomNumber = ""
	s.RoomType = ""
	s.RoomRate = 0
	s.RoomCapacity = 0
}

func clearServices(s *models.WizardState) {
	s.Services = nil
	s.ServicesReviewed = false
}
