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

type RoomService struct {
	base
}

func NewRoomService(d Deps) *RoomService {
	return &RoomService{base: newBase(d)}
}

// List returns the rooms of a branch; zero means every branch (admin only).
func (s *RoomService) List(ctx context.Context, user models.User, c filter.Criteria) (filter.Page[models.Room], error) {
	if err := auth.Authorize(user.Role, auth.PermRoomsRead); err != nil {
		return filter.Page[models.Room]{}, err
	}
	c = scopeCriteria(user, c)

	rooms, err := s.backend.ListRooms(ctx, c.BranchID)
	if err != nil {
		return filter.Page[models.Room]{}, fmt.Errorf("list rooms: %w", err)
	}
	return filter.Paginate(filter.Rooms(rooms, c), c.Page, c.PageSize), nil
}

func (s *RoomService) Create(ctx context.Context, user models.User, room *models.Room) (*models.Room, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermRoomsWrite); err != nil {
		return nil, models.Notice{}, err
	}
	if err := auth.CheckScope(user, room.BranchID, 0); err != nil {
		return nil, models.Notice{}, err
	}
	if room.Status == "" {
		room.Status = models.RoomAvailable
	}
	if err := s.validator.Validate(room); err != nil {
		return nil, models.Notice{}, err
	}

	created, err := s.backend.CreateRoom(ctx, room)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("create room: %w", err)
	}
	s.changed(user, created, "created")
	return created, models.Success(fmt.Sprintf("Room %s created", created.Number)), nil
}

func (s *RoomService) Update(ctx context.Context, user models.User, room *models.Room) (*models.Room, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermRoomsWrite); err != nil {
		return nil, models.Notice{}, err
	}
	if _, err := s.load(ctx, user, room.ID); err != nil {
		return nil, models.Notice{}, err
	}
	if err := auth.CheckScope(user, room.BranchID, 0); err != nil {
		return nil, models.Notice{}, err
	}
	if err := s.validator.Validate(room); err != nil {
		return nil, models.Notice{}, err
	}

	updated, err := s.backend.UpdateRoom(ctx, room)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("update room %d: %w", room.ID, err)
	}
	s.changed(user, updated, "updated")
	return updated, models.Success(fmt.Sprintf("Room %s updated", updated.Number)), nil
}

// SetStatus switches a room between Available, Occupied and Maintenance.
func (s *RoomService) SetStatus(ctx context.Context, user models.User, id int64, raw string) (*models.Room, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermRoomsStatus); err != nil {
		return nil, models.Notice{}, err
	}
	status, ok := models.ParseRoomStatus(raw)
	if !ok {
		return nil, models.Notice{}, domain.NewValidationError("status", "must be one of Available, Occupied, Maintenance")
	}
	room, err := s.load(ctx, user, id)
	if err != nil {
		return nil, models.Notice{}, err
	}
	if room.Status == status {
		return room, models.Notice{Level: models.NoticeInfo, Message: fmt.Sprintf("Room %s is already %s", room.Number, status)}, nil
	}

	updated, err := s.backend.SetRoomStatus(ctx, id, status)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("set room %d status: %w", id, err)
	}
	s.changed(user, updated, "status "+string(status))
	return updated, models.Success(fmt.Sprintf("Room %s marked %s", updated.Number, status)), nil
}

func (s *RoomService) load(ctx context.Context, user models.User, id int64) (*models.Room, error) {
	room, err := s.backend.GetRoom(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get room %d: %w", id, err)
	}
	if err := auth.CheckScope(user, room.BranchID, 0); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *RoomService) changed(user models.User, room *models.Room, what string) {
	s.publish(events.EventRoomChanged, actor(user, events.Payload{
		EntityType: "room",
		EntityID:   room.ID,
		BranchID:   room.BranchID,
		Status:     string(room.Status),
		Summary:    fmt.Sprintf("room %s %s", room.Number, what),
	}))
}
