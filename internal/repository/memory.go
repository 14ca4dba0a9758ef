package repository

import (
	"context"
	"sync"
	"time"

	"skynest/internal/models"
)

type memoryEntry struct {
	state     *models.WizardState
	expiresAt time.Time
}

// rateLimitSweep is how often expired rate limit windows are dropped.
const rateLimitSweep = time.Minute

type MemoryStateRepository struct {
	states     sync.Map
	rateLimits sync.Map
	ttl        time.Duration
	now        func() time.Time

	sweepMu   sync.Mutex
	lastSweep time.Time
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{
		ttl: ttl,
		now: time.Now,
	}
}

func (r *MemoryStateRepository) GetWizard(ctx context.Context, id string) (*models.WizardState, error) {
	val, ok := r.states.Load(id)
	if !ok {
		return nil, nil
	}
	entry := val.(memoryEntry)
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		r.states.Delete(id)
		return nil, nil
	}
	copied := *entry.state
	return &copied, nil
}

func (r *MemoryStateRepository) SaveWizard(ctx context.Context, state *models.WizardState) error {
	entry := memoryEntry{state: cloneState(state)}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.states.Store(state.ID, entry)
	return nil
}

func (r *MemoryStateRepository) DeleteWizard(ctx context.Context, id string) error {
	r.states.Delete(id)
	return nil
}

type rateLimitEntry struct {
	mu        sync.Mutex
	count     int
	expiresAt time.Time
	removed   bool
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := r.now()
	r.sweepRateLimits(now)

	for {
		val, _ := r.rateLimits.LoadOrStore(key, &rateLimitEntry{expiresAt: now.Add(window)})
		entry := val.(*rateLimitEntry)

		entry.mu.Lock()
		if entry.removed {
			entry.mu.Unlock()
			continue
		}
		if now.After(entry.expiresAt) {
			entry.count = 0
			entry.expiresAt = now.Add(window)
		}
		entry.count++
		allowed := entry.count <= limit
		entry.mu.Unlock()
		return allowed, nil
	}
}

func (r *MemoryStateRepository) sweepRateLimits(now time.Time) {
	r.sweepMu.Lock()
	if now.Sub(r.lastSweep) < rateLimitSweep {
		r.sweepMu.Unlock()
		return
	}
	r.lastSweep = now
	r.sweepMu.Unlock()

	r.rateLimits.Range(func(key, val any) bool {
		entry := val.(*rateLimitEntry)
		entry.mu.Lock()
		if now.After(entry.expiresAt) {
			entry.removed = true
			r.rateLimits.CompareAndDelete(key, val)
		}
		entry.mu.Unlock()
		return true
	})
}

func cloneState(state *models.WizardState) *models.WizardState {
	copied := *state
	if state.Services != nil {
		copied.Services = append([]models.ServiceSelection(nil), state.Services...)
	}
	if state.NewGuest != nil {
		guest := *state.NewGuest
		copied.NewGuest = &guest
	}
	return &copied
}
