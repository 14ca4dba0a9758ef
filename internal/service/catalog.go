package service

import (
	"context"
	"fmt"

	"skynest/internal/auth"
	"skynest/internal/domain"
	"skynest/internal/events"
	"skynest/internal/models"
)

// CatalogService manages the per-branch service catalog and billed usage.
type CatalogService struct {
	base
}

func NewCatalogService(d Deps) *CatalogService {
	return &CatalogService{base: newBase(d)}
}

func (s *CatalogService) ListServices(ctx context.Context, user models.User, branchID int64) ([]models.Service, error) {
	if err := auth.Authorize(user.Role, auth.PermServicesRead); err != nil {
		return nil, err
	}
	if user.Role == models.RoleReceptionist {
		branchID = user.BranchID
	}
	services, err := s.backend.ListServices(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	if user.Role == models.RoleGuest {
		available := services[:0:0]
		for _, svc := range services {
			if svc.IsAvailable {
				available = append(available, svc)
			}
		}
		services = available
	}
	if services == nil {
		services = []models.Service{}
	}
	return services, nil
}

func (s *CatalogService) CreateService(ctx context.Context, user models.User, svc *models.Service) (*models.Service, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermServicesWrite); err != nil {
		return nil, models.Notice{}, err
	}
	if err := s.validator.Validate(svc); err != nil {
		return nil, models.Notice{}, err
	}

	created, err := s.backend.CreateService(ctx, svc)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("create service: %w", err)
	}
	s.changed(user, created)
	return created, models.Success(fmt.Sprintf("Service %s added to the catalog", created.Name)), nil
}

func (s *CatalogService) UpdateService(ctx context.Context, user models.User, svc *models.Service) (*models.Service, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermServicesWrite); err != nil {
		return nil, models.Notice{}, err
	}
	if svc.ID <= 0 {
		return nil, models.Notice{}, domain.NewValidationError("id", "is required")
	}
	if err := s.validator.Validate(svc); err != nil {
		return nil, models.Notice{}, err
	}

	updated, err := s.backend.UpdateService(ctx, svc)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("update service %d: %w", svc.ID, err)
	}
	s.changed(user, updated)
	return updated, models.Success(fmt.Sprintf("Service %s updated", updated.Name)), nil
}

func (s *CatalogService) ListUsage(ctx context.Context, user models.User, bookingID int64) ([]models.ServiceUsage, error) {
	if err := auth.Authorize(user.Role, auth.PermUsageRead); err != nil {
		return nil, err
	}
	if _, err := loadBooking(ctx, s.backend, user, bookingID); err != nil {
		return nil, err
	}
	usages, err := s.backend.ListServiceUsage(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list service usage: %w", err)
	}
	if usages == nil {
		usages = []models.ServiceUsage{}
	}
	return usages, nil
}

// AddUsage bills a service to an active booking.
func (s *CatalogService) AddUsage(ctx context.Context, user models.User, usage *models.ServiceUsage) (*models.ServiceUsage, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermUsageWrite); err != nil {
		return nil, models.Notice{}, err
	}
	if err := s.validator.Validate(usage); err != nil {
		return nil, models.Notice{}, err
	}
	booking, err := loadBooking(ctx, s.backend, user, usage.BookingID)
	if err != nil {
		return nil, models.Notice{}, err
	}

	created, err := addUsage(ctx, s.backend, booking, usage)
	if err != nil {
		return nil, models.Notice{}, err
	}
	s.publishUsage(user, booking, created)
	return created, models.Success(fmt.Sprintf("%s added to booking #%d", usageName(created), booking.ID)), nil
}

// addUsage checks the booking can still be billed and that the service
// belongs to its branch, then creates the usage.
func addUsage(ctx context.Context, api domain.Backend, booking *models.Booking, usage *models.ServiceUsage) (*models.ServiceUsage, error) {
	if !booking.Status.IsActive() {
		return nil, fmt.Errorf("%w: booking %d is %s", domain.ErrInvalidTransition, booking.ID, booking.Status)
	}

	services, err := api.ListServices(ctx, booking.BranchID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	var svc *models.Service
	for i := range services {
		if services[i].ID == usage.ServiceID {
			svc = &services[i]
			break
		}
	}
	if svc == nil {
		return nil, domain.NewValidationError("service_id", "not offered at this branch")
	}
	if !svc.IsAvailable {
		return nil, domain.NewValidationError("service_id", "is currently unavailable")
	}

	usage.ServiceName = svc.Name
	if usage.UnitPrice == 0 {
		usage.UnitPrice = svc.Price
	}
	created, err := api.AddServiceUsage(ctx, usage)
	if err != nil {
		return nil, fmt.Errorf("add service usage: %w", err)
	}
	if created.ServiceName == "" {
		created.ServiceName = svc.Name
	}
	return created, nil
}

func usageName(u *models.ServiceUsage) string {
	if u.Quantity > 1 {
		return fmt.Sprintf("%d × %s", u.Quantity, u.ServiceName)
	}
	return u.ServiceName
}

func (s *CatalogService) publishUsage(user models.User, booking *models.Booking, u *models.ServiceUsage) {
	s.publish(events.EventServiceUsageAdded, actor(user, events.Payload{
		EntityType: "service_usage",
		EntityID:   u.ID,
		BranchID:   booking.BranchID,
		GuestID:    booking.GuestID,
		Summary:    fmt.Sprintf("%s on booking #%d", usageName(u), booking.ID),
	}))
}

func (s *CatalogService) changed(user models.User, svc *models.Service) {
	s.publish(events.EventServiceChanged, actor(user, events.Payload{
		EntityType: "service",
		EntityID:   svc.ID,
		BranchID:   svc.BranchID,
		Summary:    fmt.Sprintf("service %s at %.2f", svc.Name, svc.Price),
	}))
}
