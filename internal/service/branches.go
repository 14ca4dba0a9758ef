package service

import (
	"context"
	"fmt"

	"skynest/internal/auth"
	"skynest/internal/domain"
	"skynest/internal/events"
	"skynest/internal/models"
)

type BranchService struct {
	base
}

func NewBranchService(d Deps) *BranchService {
	return &BranchService{base: newBase(d)}
}

func (s *BranchService) List(ctx context.Context, user models.User) ([]models.Branch, error) {
	if err := auth.Authorize(user.Role, auth.PermBranchesRead); err != nil {
		return nil, err
	}
	branches, err := s.backend.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	if branches == nil {
		branches = []models.Branch{}
	}
	return branches, nil
}

func (s *BranchService) Create(ctx context.Context, user models.User, branch *models.Branch) (*models.Branch, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermBranchesWrite); err != nil {
		return nil, models.Notice{}, err
	}
	if err := s.validator.Validate(branch); err != nil {
		return nil, models.Notice{}, err
	}

	created, err := s.backend.CreateBranch(ctx, branch)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("create branch: %w", err)
	}
	s.changed(user, created, "created")
	return created, models.Success(fmt.Sprintf("Branch %s created", created.Name)), nil
}

func (s *BranchService) Update(ctx context.Context, user models.User, branch *models.Branch) (*models.Branch, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermBranchesWrite); err != nil {
		return nil, models.Notice{}, err
	}
	if branch.ID <= 0 {
		return nil, models.Notice{}, domain.NewValidationError("id", "is required")
	}
	if err := s.validator.Validate(branch); err != nil {
		return nil, models.Notice{}, err
	}

	updated, err := s.backend.UpdateBranch(ctx, branch)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("update branch %d: %w", branch.ID, err)
	}
	s.changed(user, updated, "updated")
	return updated, models.Success(fmt.Sprintf("Branch %s updated", updated.Name)), nil
}

func (s *BranchService) changed(user models.User, b *models.Branch, what string) {
	s.publish(events.EventBranchChanged, actor(user, events.Payload{
		EntityType: "branch",
		EntityID:   b.ID,
		BranchID:   b.ID,
		Summary:    fmt.Sprintf("branch %s %s", b.Name, what),
	}))
}
