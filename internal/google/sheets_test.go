package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"skynest/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func setupMockServer(t *testing.T) (*http.ServeMux, *SheetsService) {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	srv, err := sheets.NewService(context.Background(), option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)

	logger := zerolog.Nop()
	s := newSheetsService(srv, "ledger_id", "reports_id", &logger)
	s.now = func() time.Time { return time.Date(2026, 5, 2, 10, 30, 0, 0, time.UTC) }
	return mux, s
}

func sampleBooking(id int64) *models.Booking {
	return &models.Booking{
		ID:         id,
		BranchName: "Colombo",
		GuestName:  "Nimal Perera",
		RoomNumber: "101",
		CheckIn:    time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC),
		Guests:     2,
		Status:     models.BookingBooked,
		RoomRate:   120,
		CreatedAt:  time.Date(2026, 4, 20, 9, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 4, 21, 9, 0, 0, 0, time.UTC),
	}
}

func TestSheetsService_TestConnection(t *testing.T) {
	mux, s := setupMockServer(t)
	mux.HandleFunc("/v4/spreadsheets/ledger_id/values/Bookings!A1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"ID"}}})
	})

	assert.NoError(t, s.TestConnection(context.Background()))
}

func TestSheetsService_WarmUpCache(t *testing.T) {
	mux, s := setupMockServer(t)
	mux.HandleFunc("/v4/spreadsheets/ledger_id/values/Bookings!A:A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{
			Values: [][]interface{}{{"ID"}, {"123"}, {}, {456.0}},
		})
	})

	require.NoError(t, s.WarmUpCache(context.Background()))

	row, ok := s.getCachedRow(123)
	assert.True(t, ok)
	assert.Equal(t, 2, row)
	row, _ = s.getCachedRow(456)
	assert.Equal(t, 4, row)
}

func TestSheetsService_UpsertBooking_Appends(t *testing.T) {
	mux, s := setupMockServer(t)
	mux.HandleFunc("/v4/spreadsheets/ledger_id/values/Bookings!A:A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"ID"}}})
	})
	var appended sheets.ValueRange
	mux.HandleFunc("/v4/spreadsheets/ledger_id/values/Bookings!A:A:append", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&appended)
		_ = json.NewEncoder(w).Encode(sheets.AppendValuesResponse{
			Updates: &sheets.UpdateValuesResponse{UpdatedRange: "Bookings!A10:K10"},
		})
	})

	require.NoError(t, s.UpsertBooking(context.Background(), sampleBooking(789)))

	row, ok := s.getCachedRow(789)
	assert.True(t, ok)
	assert.Equal(t, 10, row)
	require.Len(t, appended.Values, 1)
	assert.Equal(t, "Nimal Perera", appended.Values[0][2])
}

func TestSheetsService_UpsertBooking_Updates(t *testing.T) {
	mux, s := setupMockServer(t)
	s.setCachedRow(123, 2)
	called := false
	mux.HandleFunc("/v4/spreadsheets/ledger_id/values/Bookings!A2:K2", func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPut, r.Method)
		_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
	})

	require.NoError(t, s.UpsertBooking(context.Background(), sampleBooking(123)))
	assert.True(t, called)
	assert.Error(t, s.UpsertBooking(context.Background(), nil))
}

func TestSheetsService_UpdateBookingStatus(t *testing.T) {
	mux, s := setupMockServer(t)
	s.setCachedRow(5, 7)

	var req sheets.BatchUpdateValuesRequest
	mux.HandleFunc("/v4/spreadsheets/ledger_id/values:batchUpdate", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(sheets.BatchUpdateValuesResponse{})
	})

	require.NoError(t, s.UpdateBookingStatus(context.Background(), 5, "Checked-In"))
	require.Len(t, req.Data, 2)
	assert.Equal(t, "Bookings!H7", req.Data[0].Range)
	assert.Equal(t, "Checked-In", req.Data[0].Values[0][0])
	assert.Equal(t, "Bookings!K7", req.Data[1].Range)
	assert.Equal(t, "2026-05-02 10:30:00", req.Data[1].Values[0][0])
}

func TestSheetsService_FindBookingRow_NotFound(t *testing.T) {
	mux, s := setupMockServer(t)
	mux.HandleFunc("/v4/spreadsheets/ledger_id/values/Bookings!A:A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"ID"}, {"1"}}})
	})

	_, err := s.FindBookingRow(context.Background(), 99)
	assert.ErrorIs(t, err, errRowNotFound)

	_, err = s.FindBookingRow(context.Background(), 0)
	assert.Error(t, err)
}

func TestSheetsService_ReplaceLedger(t *testing.T) {
	mux, s := setupMockServer(t)
	mux.HandleFunc("/v4/spreadsheets/ledger_id/values/Bookings!A:Z:clear", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ClearValuesResponse{})
	})
	var written sheets.ValueRange
	mux.HandleFunc("/v4/spreadsheets/ledger_id/values/Bookings!A1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&written)
		_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
	})

	bookings := []models.Booking{*sampleBooking(10), *sampleBooking(11)}
	require.NoError(t, s.ReplaceLedger(context.Background(), bookings))

	assert.Len(t, written.Values, 3)
	row, _ := s.getCachedRow(11)
	assert.Equal(t, 3, row)
}

func TestSheetsService_ReplaceReportSheet_CreatesSheet(t *testing.T) {
	mux, s := setupMockServer(t)

	var mu sync.Mutex
	var calls []string
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()

		switch {
		case r.URL.Path == "/v4/spreadsheets/reports_id":
			_ = json.NewEncoder(w).Encode(sheets.Spreadsheet{
				Sheets: []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: "Sheet1", SheetId: 0}}},
			})
		case strings.HasSuffix(r.URL.Path, ":batchUpdate"):
			_ = json.NewEncoder(w).Encode(sheets.BatchUpdateSpreadsheetResponse{})
		case strings.HasSuffix(r.URL.Path, ":clear"):
			_ = json.NewEncoder(w).Encode(sheets.ClearValuesResponse{})
		default:
			_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
		}
	})

	report := &models.Report{
		From:          time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		To:            time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		BookingStatus: []models.StatusCount{{Status: "Booked", Count: 3}},
	}
	require.NoError(t, s.ReplaceReportSheet(context.Background(), report))

	require.Len(t, calls, 4)
	assert.Equal(t, "POST /v4/spreadsheets/reports_id:batchUpdate", calls[1])
	assert.Contains(t, calls[3], "Report 2026-05-01..2026-05-31")
}

func TestReportSheetTitle(t *testing.T) {
	r := &models.Report{
		From:     time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 5, 7, 0, 0, 0, 0, time.UTC),
		BranchID: 3,
	}
	assert.Equal(t, "Report 2026-05-01..2026-05-07 #3", ReportSheetTitle(r))
}

func TestBookingRowValues(t *testing.T) {
	values := bookingRowValues(sampleBooking(123))

	expected := []interface{}{
		int64(123), "Colombo", "Nimal Perera", "101", "2026-05-01", "2026-05-03", 2, "Booked", 120.0,
		"2026-04-20 09:00:00", "2026-04-21 09:00:00",
	}
	assert.Equal(t, expected, values)
	assert.Len(t, ledgerHeaders, len(values))
}

func TestFirstRow(t *testing.T) {
	assert.Equal(t, 10, firstRow("Bookings!A10:K10"))
	assert.Equal(t, 0, firstRow("garbage"))
}

func TestServiceAccountEmail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"client_email":"sync@skynest.iam.gserviceaccount.com"}`), 0o600))

	email, err := ServiceAccountEmail(path)
	require.NoError(t, err)
	assert.Equal(t, "sync@skynest.iam.gserviceaccount.com", email)

	_, err = ServiceAccountEmail(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCacheOperations(t *testing.T) {
	logger := zerolog.Nop()
	s := newSheetsService(nil, "ledger", "", &logger)
	assert.Equal(t, "ledger", s.reportsID)

	s.setCachedRow(1, 5)
	row, ok := s.getCachedRow(1)
	assert.True(t, ok)
	assert.Equal(t, 5, row)

	s.ClearCache()
	_, ok = s.getCachedRow(1)
	assert.False(t, ok)
}
