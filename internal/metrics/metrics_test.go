package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("/api/bookings", 200)
		ObserveBackend("bookings.list", nil, 15*time.Millisecond)
		ObserveBackend("bookings.list", errors.New("boom"), time.Millisecond)
		IncWizardStep("dates")
		IncSyncTask("upsert_booking", "completed")
	})
}

func TestIncEvent(t *testing.T) {
	before := testutil.ToFloat64(eventsPublished.WithLabelValues("booking.created"))
	IncEvent("booking.created")
	IncEvent("booking.created")
	after := testutil.ToFloat64(eventsPublished.WithLabelValues("booking.created"))
	assert.Equal(t, before+2, after)
}
