package database

import (
	"context"
	"testing"
	"time"

	"skynest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncQueueCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{
		TaskType: "upsert",
		EntityID: 100,
		Payload:  `{"id": 100}`,
	}

	require.NoError(t, db.CreateSyncTask(ctx, task))
	assert.Equal(t, models.SyncPending, task.Status)

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(100), tasks[0].EntityID)
	assert.Equal(t, `{"id": 100}`, tasks[0].Payload)

	require.NoError(t, db.UpdateSyncTaskStatus(ctx, tasks[0].ID, models.SyncCompleted, "", nil))

	tasks, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	errMsg := "some error"
	require.NoError(t, db.CreateSyncTask(ctx, &models.SyncTask{TaskType: "report", EntityID: 0, Status: models.SyncFailed, LastError: &errMsg}))
	failed, err := db.GetFailedSyncTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "some error", *failed[0].LastError)

	counts, err := db.CountSyncTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.SyncCompleted])
	assert.Equal(t, 1, counts[models.SyncFailed])

	n, err := db.RequeueFailedSyncTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	tasks, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestSyncQueueRetry(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{TaskType: "update_status", EntityID: 102}
	require.NoError(t, db.CreateSyncTask(ctx, task))

	nextRetry := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncRetry, "temporary error", &nextRetry))

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks, "task with future retry should not be due")

	pastRetry := time.Now().Add(-time.Hour)
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncRetry, "temporary error", &pastRetry))

	tasks, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 2, tasks[0].RetryCount)
	assert.Equal(t, "temporary error", *tasks[0].LastError)
}
