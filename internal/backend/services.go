package backend

import (
	"context"
	"fmt"
	"net/url"

	"skynest/internal/models"
)

func servicesKey(branchID int64) string {
	return fmt.Sprintf("%s%d", cacheKeyServices, branchID)
}

// ListServices returns the service catalog of a branch, or all of it for branchID 0.
func (c *Client) ListServices(ctx context.Context, branchID int64) ([]models.Service, error) {
	key := servicesKey(branchID)
	var services []models.Service
	if c.readCache(ctx, key, &services) {
		return services, nil
	}
	q := url.Values{}
	setID(q, "branch_id", branchID)
	if err := c.get(ctx, "services.list", "/api/services", q, &services); err != nil {
		return nil, err
	}
	c.writeCache(ctx, key, services)
	return services, nil
}

func (c *Client) CreateService(ctx context.Context, svc *models.Service) (*models.Service, error) {
	var created models.Service
	if err := c.post(ctx, "services.create", "/api/services", svc, &created); err != nil {
		return nil, err
	}
	c.invalidate(ctx, servicesKey(svc.BranchID), servicesKey(0))
	return &created, nil
}

func (c *Client) UpdateService(ctx context.Context, svc *models.Service) (*models.Service, error) {
	var updated models.Service
	if err := c.put(ctx, "services.update", idPath("/api/services", svc.ID), svc, &updated); err != nil {
		return nil, err
	}
	c.invalidate(ctx, servicesKey(svc.BranchID), servicesKey(updated.BranchID), servicesKey(0))
	return &updated, nil
}

func (c *Client) ListServiceUsage(ctx context.Context, bookingID int64) ([]models.ServiceUsage, error) {
	q := url.Values{}
	setID(q, "booking_id", bookingID)
	var usages []models.ServiceUsage
	if err := c.get(ctx, "usage.list", "/api/service-usage", q, &usages); err != nil {
		return nil, err
	}
	return usages, nil
}

func (c *Client) AddServiceUsage(ctx context.Context, usage *models.ServiceUsage) (*models.ServiceUsage, error) {
	var created models.ServiceUsage
	if err := c.post(ctx, "usage.create", "/api/service-usage", usage, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListServiceRequests(ctx context.Context, q models.ListQuery) ([]models.ServiceRequest, error) {
	var reqs []models.ServiceRequest
	if err := c.get(ctx, "requests.list", "/api/service-requests", listQuery(q), &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (c *Client) GetServiceRequest(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := c.get(ctx, "requests.get", idPath("/api/service-requests", id), nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) CreateServiceRequest(ctx context.Context, req *models.ServiceRequest) (*models.ServiceRequest, error) {
	var created models.ServiceRequest
	if err := c.post(ctx, "requests.create", "/api/service-requests", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateServiceRequestStatus(ctx context.Context, id int64, upd models.ServiceRequestStatusUpdate) (*models.ServiceRequest, error) {
	var updated models.ServiceRequest
	if err := c.put(ctx, "requests.status", idPath("/api/service-requests", id, "status"), upd, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
