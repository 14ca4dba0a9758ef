package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"skynest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, backendURL string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`backend:
  base_url: %s
portal:
  session:
    secret: 0123456789abcdef
database:
  path: %s
exports:
  path: %s
logging:
  level: error
`, backendURL, filepath.Join(dir, "portal.db"), filepath.Join(dir, "exports"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func TestEnvMutationsReachAuditAndQueue(t *testing.T) {
	booking := models.Booking{ID: 5, BranchID: 1, GuestID: 9, GuestName: "Nimal Perera", RoomNumber: "101", Status: models.BookingBooked}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/bookings/5":
			_ = json.NewEncoder(w).Encode(booking)
		case r.Method == http.MethodPut && r.URL.Path == "/api/bookings/5/status":
			updated := booking
			updated.Status = models.BookingCheckedIn
			_ = json.NewEncoder(w).Encode(updated)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	e, err := newEnv(writeTestConfig(t, srv.URL))
	require.NoError(t, err)
	defer e.close()

	clerk := models.User{ID: 3, Role: models.RoleReceptionist, BranchID: 1}
	_, _, err = e.services.Bookings.CheckIn(context.Background(), clerk, 5)
	require.NoError(t, err)

	activity, err := e.db.RecentActivity(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, int64(3), activity[0].ActorID)
	assert.Equal(t, int64(5), activity[0].EntityID)

	counts, err := e.db.CountSyncTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.SyncPending])
}
