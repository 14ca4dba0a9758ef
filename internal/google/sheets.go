package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"skynest/internal/config"
	"skynest/internal/domain"
	"skynest/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	ledgerSheet   = "Bookings"
	ledgerColumns = "A%d:K%d"
	statusColumn  = "H"
	updatedColumn = "K"
	timeLayout    = "2006-01-02 15:04:05"
)

var ledgerHeaders = []interface{}{
	"ID", "Branch", "Guest", "Room", "Check-in", "Check-out", "Guests", "Status", "Rate", "Created At", "Updated At",
}

var errRowNotFound = errors.New("booking row not found")

// SheetsService mirrors bookings into a ledger spreadsheet and writes report snapshots.
type SheetsService struct {
	service   *sheets.Service
	ledgerID  string
	reportsID string
	logger    *zerolog.Logger
	rowCache  map[int64]int
	cacheMu   sync.RWMutex
	now       func() time.Time
}

var _ domain.SheetsWriter = (*SheetsService)(nil)

func NewSheetsService(ctx context.Context, cfg config.GoogleConfig, logger *zerolog.Logger) (*SheetsService, error) {
	credentialsJSON, err := os.ReadFile(cfg.GoogleCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return newSheetsService(srv, cfg.LedgerSpreadsheetID, cfg.ReportsSpreadsheetID, logger), nil
}

func newSheetsService(srv *sheets.Service, ledgerID, reportsID string, logger *zerolog.Logger) *SheetsService {
	if reportsID == "" {
		reportsID = ledgerID
	}
	return &SheetsService{
		service:   srv,
		ledgerID:  ledgerID,
		reportsID: reportsID,
		logger:    logger,
		rowCache:  make(map[int64]int),
		now:       time.Now,
	}
}

// TestConnection reads the ledger header cell.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.ledgerID, ledgerSheet+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// ServiceAccountEmail returns the address the spreadsheets must be shared with.
func ServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}
	return creds.ClientEmail, nil
}

// StartCacheRefresh rebuilds the row index now and then on every tick until ctx ends.
func (s *SheetsService) StartCacheRefresh(ctx context.Context, interval time.Duration) {
	refresh := func() {
		rctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := s.WarmUpCache(rctx); err != nil {
			s.logger.Warn().Err(err).Msg("ledger row cache refresh failed")
		}
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

// WarmUpCache populates the row index by reading the whole ID column.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.ledgerID, ledgerSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return err
	}

	cache := make(map[int64]int, len(resp.Values))
	for i, row := range resp.Values {
		if id := cellID(row); id > 0 {
			cache[id] = i + 1
		}
	}

	s.cacheMu.Lock()
	s.rowCache = cache
	s.cacheMu.Unlock()
	return nil
}

// AppendBooking adds a ledger row and remembers where it landed.
func (s *SheetsService) AppendBooking(ctx context.Context, booking *models.Booking) error {
	valueRange := &sheets.ValueRange{Values: [][]interface{}{bookingRowValues(booking)}}

	resp, err := s.service.Spreadsheets.Values.Append(s.ledgerID, ledgerSheet+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	if resp.Updates != nil {
		if row := firstRow(resp.Updates.UpdatedRange); row > 0 {
			s.setCachedRow(booking.ID, row)
		}
	}
	return nil
}

// UpsertBooking rewrites the booking's ledger row, appending it when absent.
func (s *SheetsService) UpsertBooking(ctx context.Context, booking *models.Booking) error {
	if booking == nil {
		return fmt.Errorf("booking is nil")
	}

	rowIdx, err := s.FindBookingRow(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, errRowNotFound) {
			return s.AppendBooking(ctx, booking)
		}
		return err
	}

	rangeData := ledgerSheet + "!" + fmt.Sprintf(ledgerColumns, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.ledgerID, rangeData, &sheets.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// UpdateBookingStatus writes the status and updated-at cells of a booking row.
func (s *SheetsService) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	rowIdx, err := s.FindBookingRow(ctx, bookingID)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data: []*sheets.ValueRange{
			{
				Range:  fmt.Sprintf("%s!%s%d", ledgerSheet, statusColumn, rowIdx),
				Values: [][]interface{}{{status}},
			},
			{
				Range:  fmt.Sprintf("%s!%s%d", ledgerSheet, updatedColumn, rowIdx),
				Values: [][]interface{}{{s.now().Format(timeLayout)}},
			},
		},
	}
	_, err = s.service.Spreadsheets.Values.BatchUpdate(s.ledgerID, req).Context(ctx).Do()
	return err
}

// FindBookingRow returns the 1-based ledger row of a booking.
func (s *SheetsService) FindBookingRow(ctx context.Context, bookingID int64) (int, error) {
	if bookingID == 0 {
		return 0, fmt.Errorf("booking id is required")
	}

	if row, ok := s.getCachedRow(bookingID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.ledgerID, ledgerSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if cellID(row) == bookingID {
			s.setCachedRow(bookingID, i+1)
			return i + 1, nil
		}
	}
	return 0, errRowNotFound
}

// ReplaceLedger rewrites the whole ledger with headers and rebuilds the row index.
func (s *SheetsService) ReplaceLedger(ctx context.Context, bookings []models.Booking) error {
	_, err := s.service.Spreadsheets.Values.Clear(s.ledgerID, ledgerSheet+"!A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}

	values := make([][]interface{}, 0, len(bookings)+1)
	values = append(values, ledgerHeaders)
	for i := range bookings {
		values = append(values, bookingRowValues(&bookings[i]))
	}

	_, err = s.service.Spreadsheets.Values.Update(s.ledgerID, ledgerSheet+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}

	cache := make(map[int64]int, len(bookings))
	for i, b := range bookings {
		cache[b.ID] = i + 2
	}
	s.cacheMu.Lock()
	s.rowCache = cache
	s.cacheMu.Unlock()
	return nil
}

// ReplaceReportSheet writes the report into a sheet named after its range,
// creating the sheet on first use.
func (s *SheetsService) ReplaceReportSheet(ctx context.Context, report *models.Report) error {
	title := ReportSheetTitle(report)
	a1 := "'" + title + "'"

	if _, err := s.sheetID(ctx, s.reportsID, title); err != nil {
		if !errors.Is(err, errSheetNotFound) {
			return err
		}
		if err := s.addSheet(ctx, s.reportsID, title); err != nil {
			return err
		}
	}

	_, err := s.service.Spreadsheets.Values.Clear(s.reportsID, a1+"!A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear report sheet: %w", err)
	}

	_, err = s.service.Spreadsheets.Values.Update(s.reportsID, a1+"!A1", &sheets.ValueRange{Values: reportValues(report)}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write report sheet: %w", err)
	}
	return nil
}

func ReportSheetTitle(r *models.Report) string {
	title := fmt.Sprintf("Report %s..%s", r.From.Format(models.DateLayout), r.To.Format(models.DateLayout))
	if r.BranchID > 0 {
		title += fmt.Sprintf(" #%d", r.BranchID)
	}
	return title
}

var errSheetNotFound = errors.New("sheet not found")

func (s *SheetsService) sheetID(ctx context.Context, spreadsheetID, title string) (int64, error) {
	spreadsheet, err := s.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to get spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, errSheetNotFound
}

func (s *SheetsService) addSheet(ctx context.Context, spreadsheetID, title string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}},
		}},
	}
	if _, err := s.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to add sheet %q: %w", title, err)
	}
	return nil
}

func (s *SheetsService) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

// ClearCache drops the row index.
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)
}

func bookingRowValues(b *models.Booking) []interface{} {
	return []interface{}{
		b.ID,
		b.BranchName,
		b.GuestName,
		b.RoomNumber,
		b.CheckIn.Format(models.DateLayout),
		b.CheckOut.Format(models.DateLayout),
		b.Guests,
		string(b.Status),
		b.RoomRate,
		b.CreatedAt.Format(timeLayout),
		b.UpdatedAt.Format(timeLayout),
	}
}

func reportValues(r *models.Report) [][]interface{} {
	values := [][]interface{}{
		{"Period", r.From.Format(models.DateLayout), r.To.Format(models.DateLayout)},
		{"Generated at", r.GeneratedAt.Format(timeLayout)},
		{},
		{"Occupancy"},
		{"Branch", "Rooms", "Room nights", "Booked nights", "Rate"},
	}
	for _, o := range r.Occupancy {
		values = append(values, []interface{}{o.BranchName, o.Rooms, o.RoomNights, o.BookedNights, o.Rate})
	}

	values = append(values, []interface{}{}, []interface{}{"Revenue"},
		[]interface{}{"Branch", "Cash", "Card", "Online", "Refunded", "Net"})
	for _, v := range r.Revenue {
		values = append(values, []interface{}{v.BranchName, v.Cash, v.Card, v.Online, v.Refunded, v.Net})
	}

	values = append(values, []interface{}{}, []interface{}{"Services"},
		[]interface{}{"Service", "Quantity", "Revenue"})
	for _, u := range r.ServiceUsage {
		values = append(values, []interface{}{u.ServiceName, u.Quantity, u.Revenue})
	}

	values = append(values, []interface{}{}, []interface{}{"Booking status"})
	for _, c := range r.BookingStatus {
		values = append(values, []interface{}{c.Status, c.Count})
	}
	return values
}

func cellID(row []interface{}) int64 {
	if len(row) == 0 {
		return 0
	}
	switch v := row[0].(type) {
	case float64:
		return int64(v)
	case string:
		id, _ := strconv.ParseInt(v, 10, 64)
		return id
	}
	return 0
}

var rangeRowRe = regexp.MustCompile(`![A-Z]+(\d+)`)

// firstRow extracts 10 from "Bookings!A10:K10".
func firstRow(a1 string) int {
	m := rangeRowRe.FindStringSubmatch(a1)
	if m == nil {
		return 0
	}
	row, _ := strconv.Atoi(m[1])
	return row
}
