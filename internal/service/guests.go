package service

import (
	"context"
	"fmt"

	"skynest/internal/auth"
	"skynest/internal/domain"
	"skynest/internal/events"
	"skynest/internal/filter"
	"skynest/internal/models"
)

type GuestService struct {
	base
}

func NewGuestService(d Deps) *GuestService {
	return &GuestService{base: newBase(d)}
}

func (s *GuestService) List(ctx context.Context, user models.User, c filter.Criteria) (filter.Page[models.Guest], error) {
	if err := auth.Authorize(user.Role, auth.PermGuestsRead); err != nil {
		return filter.Page[models.Guest]{}, err
	}
	guests, err := s.backend.ListGuests(ctx, c.Search)
	if err != nil {
		return filter.Page[models.Guest]{}, fmt.Errorf("list guests: %w", err)
	}
	return filter.Paginate(filter.Guests(guests, c), c.Page, c.PageSize), nil
}

// ownProfile lets a guest read and edit their own record without guest permissions.
func ownProfile(user models.User, guestID int64) bool {
	return user.Role == models.RoleGuest && user.GuestID == guestID
}

func (s *GuestService) Get(ctx context.Context, user models.User, id int64) (*models.Guest, error) {
	if !ownProfile(user, id) {
		if err := auth.Authorize(user.Role, auth.PermGuestsRead); err != nil {
			return nil, err
		}
	}
	guest, err := s.backend.GetGuest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get guest %d: %w", id, err)
	}
	return guest, nil
}

func (s *GuestService) Create(ctx context.Context, user models.User, guest *models.Guest) (*models.Guest, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermGuestsWrite); err != nil {
		return nil, models.Notice{}, err
	}
	if err := s.validator.Validate(guest); err != nil {
		return nil, models.Notice{}, err
	}

	created, err := s.backend.CreateGuest(ctx, guest)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("create guest: %w", err)
	}
	s.changed(user, created, "registered")
	return created, models.Success(fmt.Sprintf("Guest %s registered", created.FullName())), nil
}

func (s *GuestService) Update(ctx context.Context, user models.User, guest *models.Guest) (*models.Guest, models.Notice, error) {
	if guest.ID <= 0 {
		return nil, models.Notice{}, domain.NewValidationError("id", "is required")
	}
	if !ownProfile(user, guest.ID) {
		if err := auth.Authorize(user.Role, auth.PermGuestsWrite); err != nil {
			return nil, models.Notice{}, err
		}
	}
	if err := s.validator.Validate(guest); err != nil {
		return nil, models.Notice{}, err
	}

	updated, err := s.backend.UpdateGuest(ctx, guest)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("update guest %d: %w", guest.ID, err)
	}
	s.changed(user, updated, "updated")
	return updated, models.Success("Guest details saved"), nil
}

func (s *GuestService) changed(user models.User, g *models.Guest, what string) {
	s.publish(events.EventGuestChanged, actor(user, events.Payload{
		EntityType: "guest",
		EntityID:   g.ID,
		GuestID:    g.ID,
		BranchID:   user.BranchID,
		Summary:    fmt.Sprintf("guest %s %s", g.FullName(), what),
	}))
}
