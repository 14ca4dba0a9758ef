package commands

import (
	"path/filepath"
	"testing"
	"time"

	"skynest/internal/auth"
	"skynest/internal/config"
	"skynest/internal/domain"
	"skynest/internal/filter"
	"skynest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFlagsCriteria(t *testing.T) {
	f := listFlags{status: "booked, checked_in", from: "2026-05-01", to: "2026-05-31", search: "gus", branchID: 4, page: 2, pageSize: 10}
	c, err := f.criteria()
	require.NoError(t, err)
	assert.Equal(t, []string{"booked", "checked_in"}, c.Statuses)
	assert.Empty(t, c.DateField)
	assert.Equal(t, int64(4), c.BranchID)
	assert.Equal(t, "gus", c.Search)
	assert.Equal(t, 2, c.Page)
	assert.Equal(t, 10, c.PageSize)

	_, err = (&listFlags{from: "2026-05-10", to: "2026-05-01", page: 1, pageSize: 10}).criteria()
	assert.ErrorIs(t, err, filter.ErrInvalidQuery)
}

func TestSessionRoundTrip(t *testing.T) {
	sessions := auth.NewSessionManager(config.SessionConfig{Secret: "0123456789abcdef", TTL: time.Hour, Issuer: "test"})
	path := filepath.Join(t.TempDir(), "nested", "session")

	_, err := loadSession(path, sessions)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	user := models.User{ID: 2, Name: "Rita", Role: models.RoleReceptionist, BranchID: 10}
	token, _, err := sessions.Issue(user, "backend-token")
	require.NoError(t, err)
	require.NoError(t, saveSession(path, token))

	s, err := loadSession(path, sessions)
	require.NoError(t, err)
	assert.Equal(t, user.ID, s.User.ID)
	assert.Equal(t, int64(10), s.User.BranchID)
	assert.Equal(t, "backend-token", s.BackendToken)
}

func TestReportRange(t *testing.T) {
	req, err := reportRange("2026-05-01", "2026-05-07", 3)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), req.From)
	assert.Equal(t, time.Date(2026, 5, 7, 0, 0, 0, 0, time.UTC), req.To)
	assert.Equal(t, int64(3), req.BranchID)

	req, err = reportRange("", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, req.From.Day())
	assert.False(t, req.To.Before(req.From))

	_, err = reportRange("05/01/2026", "", 0)
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"0", "-1", "x"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}
