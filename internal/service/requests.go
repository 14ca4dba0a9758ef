package service

import (
	"context"
	"fmt"
	"strings"

	"skynest/internal/auth"
	"skynest/internal/domain"
	"skynest/internal/events"
	"skynest/internal/filter"
	"skynest/internal/models"
)

// ServiceRequestService handles guest requests that staff approve into billed usage.
type ServiceRequestService struct {
	base
}

func NewServiceRequestService(d Deps) *ServiceRequestService {
	return &ServiceRequestService{base: newBase(d)}
}

func (s *ServiceRequestService) List(ctx context.Context, user models.User, c filter.Criteria) (filter.Page[models.ServiceRequest], error) {
	if err := auth.Authorize(user.Role, auth.PermRequestsRead); err != nil {
		return filter.Page[models.ServiceRequest]{}, err
	}
	c = scopeCriteria(user, c)
	q := auth.ScopeQuery(user, models.ListQuery{BranchID: c.BranchID, GuestID: c.GuestID})

	items, err := s.backend.ListServiceRequests(ctx, q)
	if err != nil {
		return filter.Page[models.ServiceRequest]{}, fmt.Errorf("list service requests: %w", err)
	}
	return filter.Paginate(filter.ServiceRequests(items, c), c.Page, c.PageSize), nil
}

// Create raises a request against one of the guest's active bookings.
func (s *ServiceRequestService) Create(ctx context.Context, user models.User, req *models.ServiceRequest) (*models.ServiceRequest, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermRequestsCreate); err != nil {
		return nil, models.Notice{}, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, models.Notice{}, err
	}
	booking, err := loadBooking(ctx, s.backend, user, req.BookingID)
	if err != nil {
		return nil, models.Notice{}, err
	}
	if !booking.Status.IsActive() {
		return nil, models.Notice{}, fmt.Errorf("%w: booking %d is %s", domain.ErrInvalidTransition, booking.ID, booking.Status)
	}

	req.GuestID = booking.GuestID
	req.BranchID = booking.BranchID
	req.Status = models.RequestPending

	created, err := s.backend.CreateServiceRequest(ctx, req)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("create service request: %w", err)
	}
	if created.BranchID == 0 {
		created.BranchID = booking.BranchID
	}

	s.publish(events.EventServiceRequested, actor(user, events.Payload{
		EntityType: "service_request",
		EntityID:   created.ID,
		BranchID:   created.BranchID,
		GuestID:    created.GuestID,
		Status:     string(created.Status),
		Summary:    fmt.Sprintf("%s × %d for booking #%d", created.ServiceName, created.Quantity, created.BookingID),
	}))
	return created, models.Success("Your request was sent to the front desk"), nil
}

func (s *ServiceRequestService) loadPending(ctx context.Context, user models.User, id int64) (*models.ServiceRequest, error) {
	if err := auth.Authorize(user.Role, auth.PermRequestsReview); err != nil {
		return nil, err
	}
	req, err := s.backend.GetServiceRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get service request %d: %w", id, err)
	}
	if err := auth.CheckScope(user, req.BranchID, req.GuestID); err != nil {
		return nil, err
	}
	if req.Status != models.RequestPending {
		return nil, fmt.Errorf("%w: request %d is already %s", domain.ErrInvalidTransition, id, req.Status)
	}
	return req, nil
}

// Approve bills the request first and only then marks it Approved, so an
// approved request always has its usage. If the status update fails the
// usage exists and the request stays Pending; the error says so.
func (s *ServiceRequestService) Approve(ctx context.Context, user models.User, id int64) (*models.ServiceRequest, models.Notice, error) {
	req, err := s.loadPending(ctx, user, id)
	if err != nil {
		return nil, models.Notice{}, err
	}
	booking, err := s.backend.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("get booking %d: %w", req.BookingID, err)
	}

	usage, err := addUsage(ctx, s.backend, booking, &models.ServiceUsage{
		BookingID: req.BookingID,
		ServiceID: req.ServiceID,
		Quantity:  req.Quantity,
		RequestID: req.ID,
		UsedAt:    s.now(),
	})
	if err != nil {
		return nil, models.Notice{}, err
	}

	updated, err := s.backend.UpdateServiceRequestStatus(ctx, id, models.ServiceRequestStatusUpdate{
		Status:     models.RequestApproved,
		ReviewedBy: user.ID,
		UsageID:    usage.ID,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("request_id", id).Int64("usage_id", usage.ID).Msg("usage created but request status not updated")
		return nil, models.Notice{}, fmt.Errorf("usage %d created, approving request %d: %w", usage.ID, id, err)
	}

	s.publish(events.EventServiceUsageAdded, actor(user, events.Payload{
		EntityType: "service_usage",
		EntityID:   usage.ID,
		BranchID:   booking.BranchID,
		GuestID:    booking.GuestID,
		Summary:    fmt.Sprintf("%s on booking #%d", usageName(usage), booking.ID),
	}))
	s.publish(events.EventServiceRequestApproved, actor(user, events.Payload{
		EntityType: "service_request",
		EntityID:   id,
		BranchID:   req.BranchID,
		GuestID:    req.GuestID,
		Status:     string(models.RequestApproved),
		Summary:    fmt.Sprintf("approved, usage #%d", usage.ID),
	}))
	return updated, models.Success(fmt.Sprintf("Request approved and %s billed", usageName(usage))), nil
}

func (s *ServiceRequestService) Reject(ctx context.Context, user models.User, id int64, reason string) (*models.ServiceRequest, models.Notice, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, models.Notice{}, domain.NewValidationError("reason", "is required")
	}
	if len(reason) > 500 {
		return nil, models.Notice{}, domain.NewValidationError("reason", "must be at most 500 characters")
	}
	req, err := s.loadPending(ctx, user, id)
	if err != nil {
		return nil, models.Notice{}, err
	}

	updated, err := s.backend.UpdateServiceRequestStatus(ctx, id, models.ServiceRequestStatusUpdate{
		Status:       models.RequestRejected,
		ReviewedBy:   user.ID,
		RejectReason: reason,
	})
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("reject request %d: %w", id, err)
	}

	s.publish(events.EventServiceRequestRejected, actor(user, events.Payload{
		EntityType: "service_request",
		EntityID:   id,
		BranchID:   req.BranchID,
		GuestID:    req.GuestID,
		Status:     string(models.RequestRejected),
		Summary:    reason,
	}))
	return updated, models.Success("Request rejected"), nil
}
