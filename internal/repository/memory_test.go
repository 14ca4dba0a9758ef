package repository

import (
	"context"
	"testing"
	"time"

	"skynest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateRepository(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	ctx := context.Background()

	t.Run("SaveAndGetWizard", func(t *testing.T) {
		state := &models.WizardState{ID: "w1", Step: models.StepDates, BranchID: 3}
		require.NoError(t, repo.SaveWizard(ctx, state))

		got, err := repo.GetWizard(ctx, "w1")
		require.NoError(t, err)
		assert.Equal(t, state, got)
	})

	t.Run("StoredCopyIsIsolated", func(t *testing.T) {
		state := &models.WizardState{ID: "w2", Services: []models.ServiceSelection{{ServiceID: 1, Quantity: 1}}}
		require.NoError(t, repo.SaveWizard(ctx, state))
		state.Services[0].Quantity = 99

		got, err := repo.GetWizard(ctx, "w2")
		require.NoError(t, err)
		assert.Equal(t, 1, got.Services[0].Quantity)
	})

	t.Run("DeleteWizard", func(t *testing.T) {
		require.NoError(t, repo.DeleteWizard(ctx, "w1"))
		got, err := repo.GetWizard(ctx, "w1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Expiry", func(t *testing.T) {
		now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		repo := NewMemoryStateRepository(time.Minute)
		repo.now = func() time.Time { return now }

		require.NoError(t, repo.SaveWizard(ctx, &models.WizardState{ID: "old"}))
		now = now.Add(2 * time.Minute)

		got, err := repo.GetWizard(ctx, "old")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		repo := NewMemoryStateRepository(time.Hour)
		repo.now = func() time.Time { return now }

		allowed, _ := repo.CheckRateLimit(ctx, "session-1", 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, "session-1", 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, "session-1", 2, time.Second)
		assert.False(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, "session-2", 2, time.Second)
		assert.True(t, allowed)

		now = now.Add(time.Second + 10*time.Millisecond)
		allowed, _ = repo.CheckRateLimit(ctx, "session-1", 2, time.Second)
		assert.True(t, allowed)
	})

	t.Run("RateLimitSweepsExpiredWindows", func(t *testing.T) {
		now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		repo := NewMemoryStateRepository(time.Hour)
		repo.now = func() time.Time { return now }

		for _, key := range []string{"a", "b", "c"} {
			_, _ = repo.CheckRateLimit(ctx, key, 5, time.Second)
		}
		now = now.Add(2 * time.Minute)
		allowed, _ := repo.CheckRateLimit(ctx, "d", 5, time.Second)
		assert.True(t, allowed)

		keys := 0
		repo.rateLimits.Range(func(_, _ any) bool {
			keys++
			return true
		})
		assert.Equal(t, 1, keys)
	})
}
