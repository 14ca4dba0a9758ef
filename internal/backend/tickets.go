package backend

import (
	"context"

	"skynest/internal/models"
)

func (c *Client) ListTickets(ctx context.Context, q models.ListQuery) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	if err := c.get(ctx, "tickets.list", "/api/support/tickets", listQuery(q), &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *Client) GetTicket(ctx context.Context, id int64) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	if err := c.get(ctx, "tickets.get", idPath("/api/support/tickets", id), nil, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (c *Client) CreateTicket(ctx context.Context, ticket *models.SupportTicket) (*models.SupportTicket, error) {
	var created models.SupportTicket
	if err := c.post(ctx, "tickets.create", "/api/support/tickets", ticket, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateTicketStatus(ctx context.Context, id int64, status models.TicketStatus) (*models.SupportTicket, error) {
	var updated models.SupportTicket
	body := map[string]models.TicketStatus{"status": status}
	if err := c.put(ctx, "tickets.status", idPath("/api/support/tickets", id, "status"), body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) AddTicketResponse(ctx context.Context, ticketID int64, resp *models.TicketResponse) (*models.TicketResponse, error) {
	var created models.TicketResponse
	if err := c.post(ctx, "tickets.respond", idPath("/api/support/tickets", ticketID, "responses"), resp, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
