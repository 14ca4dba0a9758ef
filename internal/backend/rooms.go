package backend

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"skynest/internal/models"
)

func roomsKey(branchID int64) string {
	return fmt.Sprintf("%s%d", cacheKeyRooms, branchID)
}

// ListRooms returns the rooms of a branch, or of every branch for branchID 0.
func (c *Client) ListRooms(ctx context.Context, branchID int64) ([]models.Room, error) {
	key := roomsKey(branchID)
	var rooms []models.Room
	if c.readCache(ctx, key, &rooms) {
		return rooms, nil
	}
	q := url.Values{}
	setID(q, "branch_id", branchID)
	if err := c.get(ctx, "rooms.list", "/api/rooms", q, &rooms); err != nil {
		return nil, err
	}
	c.writeCache(ctx, key, rooms)
	return rooms, nil
}

func (c *Client) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	if err := c.get(ctx, "rooms.get", idPath("/api/rooms", id), nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// AvailableRooms is never cached: availability is the backend's call.
func (c *Client) AvailableRooms(ctx context.Context, branchID int64, checkIn, checkOut time.Time) ([]models.Room, error) {
	q := url.Values{}
	setID(q, "branch_id", branchID)
	q.Set("check_in", checkIn.Format(models.DateLayout))
	q.Set("check_out", checkOut.Format(models.DateLayout))

	var rooms []models.Room
	if err := c.get(ctx, "rooms.available", "/api/rooms/available", q, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *Client) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	var created models.Room
	if err := c.post(ctx, "rooms.create", "/api/rooms", room, &created); err != nil {
		return nil, err
	}
	c.invalidate(ctx, roomsKey(room.BranchID), roomsKey(0))
	return &created, nil
}

func (c *Client) UpdateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	var updated models.Room
	if err := c.put(ctx, "rooms.update", idPath("/api/rooms", room.ID), room, &updated); err != nil {
		return nil, err
	}
	c.invalidate(ctx, roomsKey(room.BranchID), roomsKey(updated.BranchID), roomsKey(0))
	return &updated, nil
}

func (c *Client) SetRoomStatus(ctx context.Context, id int64, status models.RoomStatus) (*models.Room, error) {
	var updated models.Room
	body := map[string]models.RoomStatus{"status": status}
	if err := c.put(ctx, "rooms.status", idPath("/api/rooms", id, "status"), body, &updated); err != nil {
		return nil, err
	}
	c.invalidate(ctx, roomsKey(updated.BranchID), roomsKey(0))
	return &updated, nil
}
