package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skynest/internal/auth"
	"skynest/internal/backend"
	"skynest/internal/config"
	"skynest/internal/domain/mocks"
	"skynest/internal/events"
	"skynest/internal/models"
	"skynest/internal/repository"
	"skynest/internal/service"
	"skynest/internal/wizard"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testAdmin = models.User{ID: 1, Name: "Ada", Role: models.RoleAdmin}
	testGuest = models.User{ID: 3, Name: "Gus", Role: models.RoleGuest, GuestID: 77}
)

type testPortal struct {
	api      *mocks.Backend
	sessions *auth.SessionManager
	ts       *httptest.Server
}

func newTestPortal(t *testing.T, mutations int) *testPortal {
	t.Helper()
	logger := zerolog.Nop()
	api := new(mocks.Backend)
	bus := events.NewEventBus()
	sessions := auth.NewSessionManager(config.SessionConfig{Secret: "0123456789abcdef", TTL: time.Hour, Issuer: "test"})
	repo := repository.NewMemoryStateRepository(time.Hour)

	svc := service.New(service.Deps{
		Backend:   api,
		Events:    bus,
		Sessions:  sessions,
		ExportDir: t.TempDir(),
		Logger:    &logger,
	})
	cfg := config.PortalConfig{
		RateLimit: config.RateLimitConfig{Mutations: mutations, Window: time.Minute},
	}
	srv := NewHTTPServer(cfg, HTTPDeps{
		Services: svc,
		Wizard:   wizard.New(repo, api, bus, 30, &logger),
		Sessions: sessions,
		Limits:   repo,
		Logger:   &logger,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(func() { api.AssertExpectations(t) })
	return &testPortal{api: api, sessions: sessions, ts: ts}
}

func (p *testPortal) token(t *testing.T, user models.User) string {
	t.Helper()
	token, _, err := p.sessions.Issue(user, "backend-token")
	require.NoError(t, err)
	return token
}

func (p *testPortal) do(t *testing.T, method, path, token string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, p.ts.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func TestHealthz(t *testing.T) {
	p := newTestPortal(t, 0)
	resp, _ := p.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginAndMe(t *testing.T) {
	p := newTestPortal(t, 0)
	p.api.On("Login", mock.Anything, "gus@example.com", "secret1").
		Return(&models.LoginResponse{Token: "backend-token", User: testGuest}, nil).Once()

	resp, env := p.do(t, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "gus@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Notice)
	assert.Equal(t, models.NoticeSuccess, env.Notice.Level)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	resp, env = p.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.NotNil(t, me["user"])
}

func TestLoginValidation(t *testing.T) {
	p := newTestPortal(t, 0)
	resp, env := p.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nope", "password": "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Notice)
	assert.Equal(t, models.NoticeError, env.Notice.Level)
	assert.NotEmpty(t, env.Fields)
}

func TestUnknownFieldsRejected(t *testing.T) {
	p := newTestPortal(t, 0)
	resp, env := p.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "gus@example.com", "pwd": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Fields, "body")
}

func TestRequiresSession(t *testing.T) {
	p := newTestPortal(t, 0)

	resp, env := p.do(t, http.MethodGet, "/api/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NotNil(t, env.Notice)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, _ = p.do(t, http.MethodGet, "/api/bookings", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGuestCannotCheckIn(t *testing.T) {
	p := newTestPortal(t, 0)
	resp, env := p.do(t, http.MethodPost, "/api/bookings/1/check-in", p.token(t, testGuest), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.NotNil(t, env.Notice)
	assert.Equal(t, "You are not allowed to do that", env.Notice.Message)
}

func TestBadPathID(t *testing.T) {
	p := newTestPortal(t, 0)
	resp, env := p.do(t, http.MethodGet, "/api/bookings/abc", p.token(t, testAdmin), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Fields, "id")
}

func TestBackendOutageMapsToBadGateway(t *testing.T) {
	p := newTestPortal(t, 0)
	p.api.On("ListBookings", mock.Anything, mock.Anything).
		Return(nil, &backend.APIError{Status: http.StatusServiceUnavailable, Message: "down"}).Once()

	resp, env := p.do(t, http.MethodGet, "/api/bookings", p.token(t, testAdmin), nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.NotNil(t, env.Notice)
	assert.NotEmpty(t, env.RequestID)
}

func TestMutationRateLimit(t *testing.T) {
	p := newTestPortal(t, 1)
	token := p.token(t, testGuest)

	resp, env := p.do(t, http.MethodPost, "/api/wizard", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, env.Data)

	resp, env = p.do(t, http.MethodPost, "/api/wizard", token, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotNil(t, env.Notice)

	// reads are not counted
	resp, _ = p.do(t, http.MethodGet, "/api/wizard/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReportRangeValidation(t *testing.T) {
	p := newTestPortal(t, 0)
	resp, env := p.do(t, http.MethodGet, "/api/reports?from=2026-05-10&to=2026-05-01", p.token(t, testAdmin), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, env.Fields)

	resp, _ = p.do(t, http.MethodGet, "/api/reports?from=yesterday&to=2026-05-01", p.token(t, testAdmin), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReportsForbiddenForGuest(t *testing.T) {
	p := newTestPortal(t, 0)
	resp, _ := p.do(t, http.MethodGet, "/api/reports/export.xlsx?from=2026-05-01&to=2026-05-10", p.token(t, testGuest), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}
