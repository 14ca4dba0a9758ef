package backend

import (
	"context"
	"net/url"

	"skynest/internal/models"
)

func listQuery(q models.ListQuery) url.Values {
	v := url.Values{}
	setID(v, "branch_id", q.BranchID)
	setID(v, "guest_id", q.GuestID)
	setID(v, "booking_id", q.BookingID)
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

func (c *Client) ListBookings(ctx context.Context, q models.ListQuery) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.get(ctx, "bookings.list", "/api/bookings", listQuery(q), &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	if err := c.get(ctx, "bookings.get", idPath("/api/bookings", id), nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error) {
	var created models.Booking
	if err := c.post(ctx, "bookings.create", "/api/bookings", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) (*models.Booking, error) {
	var updated models.Booking
	body := map[string]models.BookingStatus{"status": status}
	if err := c.put(ctx, "bookings.status", idPath("/api/bookings", id, "status"), body, &updated); err != nil {
		return nil, err
	}
	// Check-in and check-out move room occupancy on the backend.
	c.invalidate(ctx, roomsKey(updated.BranchID), roomsKey(0))
	return &updated, nil
}
