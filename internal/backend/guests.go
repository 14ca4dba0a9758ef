package backend

import (
	"context"
	"net/url"

	"skynest/internal/models"
)

func (c *Client) ListGuests(ctx context.Context, search string) ([]models.Guest, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	var guests []models.Guest
	if err := c.get(ctx, "guests.list", "/api/guests", q, &guests); err != nil {
		return nil, err
	}
	return guests, nil
}

func (c *Client) GetGuest(ctx context.Context, id int64) (*models.Guest, error) {
	var guest models.Guest
	if err := c.get(ctx, "guests.get", idPath("/api/guests", id), nil, &guest); err != nil {
		return nil, err
	}
	return &guest, nil
}

func (c *Client) CreateGuest(ctx context.Context, guest *models.Guest) (*models.Guest, error) {
	var created models.Guest
	if err := c.post(ctx, "guests.create", "/api/guests", guest, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateGuest(ctx context.Context, guest *models.Guest) (*models.Guest, error) {
	var updated models.Guest
	if err := c.put(ctx, "guests.update", idPath("/api/guests", guest.ID), guest, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
