package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"skynest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityLog(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	entries := []*models.Activity{
		{ActorID: 1, ActorRole: models.RoleAdmin, BranchID: 1, Action: "booking.created", EntityType: "booking", EntityID: 10, CreatedAt: base},
		{ActorID: 2, ActorRole: models.RoleReceptionist, BranchID: 2, Action: "booking.checked_in", EntityType: "booking", EntityID: 11, CreatedAt: base.Add(time.Minute)},
		{ActorID: 2, ActorRole: models.RoleReceptionist, BranchID: 1, Action: "payment.recorded", EntityType: "payment", EntityID: 12, Details: "Card 120.00", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, a := range entries {
		require.NoError(t, db.RecordActivity(ctx, a))
		assert.NotZero(t, a.ID)
	}

	all, err := db.RecentActivity(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "payment.recorded", all[0].Action)
	assert.Equal(t, "Card 120.00", all[0].Details)
	assert.Equal(t, models.RoleReceptionist, all[0].ActorRole)

	branch1, err := db.RecentActivity(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, branch1, 2)

	limited, err := db.RecentActivity(ctx, 0, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	purged, err := db.PurgeActivity(ctx, base.Add(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
}

func TestActivityConcurrentWrites(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			errs <- db.RecordActivity(ctx, &models.Activity{ActorID: int64(id), Action: "ticket.created", EntityType: "ticket", EntityID: int64(id)})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	got, err := db.RecentActivity(ctx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, got, writers)
}
