package reports

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"skynest/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary   = "Summary"
	SheetOccupancy = "Occupancy"
	SheetRevenue   = "Revenue"
	SheetServices  = "Services"
	SheetStatuses  = "Booking Status"
)

// FileName is the export file name for the report range.
func FileName(r *models.Report) string {
	return fmt.Sprintf("report_%s_to_%s.xlsx", r.From.Format(models.DateLayout), r.To.Format(models.DateLayout))
}

// ExportXLSX saves the report under dir and returns the file path.
func ExportXLSX(r *models.Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(dir, FileName(r))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer out.Close()

	if err := WriteXLSX(r, out); err != nil {
		return "", err
	}
	return path, nil
}

// WriteXLSX streams the workbook, one sheet per report section.
func WriteXLSX(r *models.Report, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{SheetSummary, []string{"Field", "Value"}, summaryRows(r)},
		{SheetOccupancy, []string{"Branch", "Rooms", "Room nights", "Booked nights", "Occupancy"}, occupancyRows(r)},
		{SheetRevenue, []string{"Branch", "Cash", "Card", "Online", "Refunded", "Net"}, revenueRows(r)},
		{SheetServices, []string{"Service", "Quantity", "Revenue"}, serviceRows(r)},
		{SheetStatuses, []string{"Status", "Bookings"}, statusRows(r)},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeTable(f, s.name, s.headers, s.rows, header); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, headers []string, rows [][]interface{}, headerStyle int) error {
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write %s header: %w", sheet, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(sheet, "A", "A", 28)
	if len(headers) > 1 {
		_ = f.SetColWidth(sheet, "B", lastCol, 16)
	}
	return nil
}

func summaryRows(r *models.Report) [][]interface{} {
	scope := "All branches"
	if r.BranchID > 0 {
		scope = fmt.Sprintf("Branch %d", r.BranchID)
	}
	return [][]interface{}{
		{"From", r.From.Format(models.DateLayout)},
		{"To", r.To.Format(models.DateLayout)},
		{"Scope", scope},
		{"Generated at", r.GeneratedAt.Format("2006-01-02 15:04")},
	}
}

func occupancyRows(r *models.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(r.Occupancy))
	for _, o := range r.Occupancy {
		rows = append(rows, []interface{}{o.BranchName, o.Rooms, o.RoomNights, o.BookedNights, o.Rate})
	}
	return rows
}

func revenueRows(r *models.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(r.Revenue))
	for _, v := range r.Revenue {
		rows = append(rows, []interface{}{v.BranchName, v.Cash, v.Card, v.Online, v.Refunded, v.Net})
	}
	return rows
}

func serviceRows(r *models.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(r.ServiceUsage))
	for _, s := range r.ServiceUsage {
		rows = append(rows, []interface{}{s.ServiceName, s.Quantity, s.Revenue})
	}
	return rows
}

func statusRows(r *models.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(r.BookingStatus))
	for _, s := range r.BookingStatus {
		rows = append(rows, []interface{}{s.Status, s.Count})
	}
	return rows
}
