package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"skynest/internal/domain"
	"skynest/internal/models"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long the primary stays bypassed after a failure.
const recoveryInterval = time.Minute

// FailoverStateRepository prefers the primary store and degrades to the
// fallback while the primary is failing.
type FailoverStateRepository struct {
	primary  domain.StateRepository
	fallback domain.StateRepository
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverStateRepository(primary, fallback domain.StateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	return &FailoverStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// shouldTryPrimary reports whether the primary is up or due for a retry.
func (r *FailoverStateRepository) shouldTryPrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) > recoveryInterval {
		r.lastCheck = time.Now()
		return true
	}
	return false
}

func (r *FailoverStateRepository) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary state repository failed, falling back to memory")
	}
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

func (r *FailoverStateRepository) markUp() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary state repository recovered")
	}
}

func (r *FailoverStateRepository) GetWizard(ctx context.Context, id string) (*models.WizardState, error) {
	if r.shouldTryPrimary() {
		state, err := r.primary.GetWizard(ctx, id)
		if err == nil {
			r.markUp()
			if state != nil {
				return state, nil
			}
			return r.reclaim(ctx, id)
		}
		r.markDown(err)
	}
	return r.fallback.GetWizard(ctx, id)
}

// reclaim looks up a draft saved to the fallback during an outage and moves
// it back to the primary.
func (r *FailoverStateRepository) reclaim(ctx context.Context, id string) (*models.WizardState, error) {
	state, err := r.fallback.GetWizard(ctx, id)
	if err != nil || state == nil {
		return state, err
	}
	if err := r.primary.SaveWizard(ctx, state); err != nil {
		r.logger.Warn().Err(err).Str("wizard_id", id).Msg("Failed to move draft back to primary")
		return state, nil
	}
	_ = r.fallback.DeleteWizard(ctx, id)
	return state, nil
}

func (r *FailoverStateRepository) SaveWizard(ctx context.Context, state *models.WizardState) error {
	if r.shouldTryPrimary() {
		err := r.primary.SaveWizard(ctx, state)
		if err == nil {
			r.markUp()
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SaveWizard(ctx, state)
}

func (r *FailoverStateRepository) DeleteWizard(ctx context.Context, id string) error {
	if r.shouldTryPrimary() {
		err := r.primary.DeleteWizard(ctx, id)
		if err == nil {
			r.markUp()
			// Drafts saved during an outage live in the fallback.
			_ = r.fallback.DeleteWizard(ctx, id)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.DeleteWizard(ctx, id)
}

func (r *FailoverStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.shouldTryPrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			r.markUp()
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
