package backend

import (
	"context"

	"skynest/internal/models"
)

func (c *Client) ListBranches(ctx context.Context) ([]models.Branch, error) {
	var branches []models.Branch
	if c.readCache(ctx, cacheKeyBranches, &branches) {
		return branches, nil
	}
	if err := c.get(ctx, "branches.list", "/api/branches", nil, &branches); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKeyBranches, branches)
	return branches, nil
}

func (c *Client) GetBranch(ctx context.Context, id int64) (*models.Branch, error) {
	var branch models.Branch
	if err := c.get(ctx, "branches.get", idPath("/api/branches", id), nil, &branch); err != nil {
		return nil, err
	}
	return &branch, nil
}

func (c *Client) CreateBranch(ctx context.Context, branch *models.Branch) (*models.Branch, error) {
	var created models.Branch
	if err := c.post(ctx, "branches.create", "/api/branches", branch, &created); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cacheKeyBranches)
	return &created, nil
}

func (c *Client) UpdateBranch(ctx context.Context, branch *models.Branch) (*models.Branch, error) {
	var updated models.Branch
	if err := c.put(ctx, "branches.update", idPath("/api/branches", branch.ID), branch, &updated); err != nil {
		return nil, err
	}
	c.invalidate(ctx, cacheKeyBranches)
	return &updated, nil
}
