package backend

import (
	"context"

	"skynest/internal/models"
)

func (c *Client) ListPayments(ctx context.Context, q models.ListQuery) ([]models.Payment, error) {
	var payments []models.Payment
	if err := c.get(ctx, "payments.list", "/api/payments", listQuery(q), &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (c *Client) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	var created models.Payment
	if err := c.post(ctx, "payments.create", "/api/payments", payment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
