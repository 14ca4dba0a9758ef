package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"skynest/internal/auth"
	"skynest/internal/domain"
	"skynest/internal/events"
	"skynest/internal/models"
	"skynest/internal/reports"
)

// maxReportDays bounds the range of a single report.
const maxReportDays = 366

// ReportRequest is the date range of a report. BranchID 0 means all branches.
type ReportRequest struct {
	From     time.Time
	To       time.Time
	BranchID int64
}

type ReportService struct {
	base
	sync      domain.SyncWorker
	exportDir string
}

func NewReportService(d Deps) *ReportService {
	dir := d.ExportDir
	if dir == "" {
		dir = "exports"
	}
	return &ReportService{base: newBase(d), sync: d.Sync, exportDir: dir}
}

func (r ReportRequest) validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return domain.NewValidationError("range", "from and to are required")
	}
	if r.To.Before(r.From) {
		return domain.NewValidationError("to", "must not be before from")
	}
	if models.NightsBetween(r.From, r.To) > maxReportDays {
		return domain.NewValidationError("range", fmt.Sprintf("must not exceed %d days", maxReportDays))
	}
	return nil
}

// Build fetches the data for the range and computes every section.
func (s *ReportService) Build(ctx context.Context, user models.User, req ReportRequest) (*models.Report, error) {
	if err := auth.Authorize(user.Role, auth.PermReportsRead); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	if user.Role == models.RoleReceptionist {
		req.BranchID = user.BranchID
	}
	q := models.ListQuery{BranchID: req.BranchID}

	branches, err := s.backend.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	rooms, err := s.backend.ListRooms(ctx, req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	bookings, err := s.backend.ListBookings(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	payments, err := s.backend.ListPayments(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	from, to := models.DateOnly(req.From), models.DateOnly(req.To)
	var usages []models.ServiceUsage
	for _, b := range bookings {
		if b.Status == models.BookingCancelled {
			continue
		}
		if models.DateOnly(b.CheckOut).Before(from) || models.DateOnly(b.CheckIn).After(to) {
			continue
		}
		u, err := s.backend.ListServiceUsage(ctx, b.ID)
		if err != nil {
			return nil, fmt.Errorf("list service usage of booking %d: %w", b.ID, err)
		}
		usages = append(usages, u...)
	}

	report := reports.Build(reports.Input{
		From:     from,
		To:       to,
		BranchID: req.BranchID,
		Branches: branches,
		Rooms:    rooms,
		Bookings: bookings,
		Payments: payments,
		Usages:   usages,
	}, s.now())

	s.logger.Debug().
		Str("from", from.Format(models.DateLayout)).
		Str("to", to.Format(models.DateLayout)).
		Int64("branch_id", req.BranchID).
		Int("bookings", len(bookings)).
		Msg("report built")
	return report, nil
}

// Export writes the workbook to the export directory.
func (s *ReportService) Export(ctx context.Context, user models.User, req ReportRequest) (string, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermReportsExport); err != nil {
		return "", models.Notice{}, err
	}
	report, err := s.Build(ctx, user, req)
	if err != nil {
		return "", models.Notice{}, err
	}
	path, err := reports.ExportXLSX(report, s.exportDir)
	if err != nil {
		return "", models.Notice{}, fmt.Errorf("export report: %w", err)
	}

	s.publish(events.EventReportExported, actor(user, events.Payload{
		EntityType: "report",
		BranchID:   report.BranchID,
		Summary:    reports.FileName(report),
	}))
	return path, models.Success("Report exported to " + reports.FileName(report)), nil
}

// WriteXLSX streams the workbook for download and returns its file name.
func (s *ReportService) WriteXLSX(ctx context.Context, user models.User, req ReportRequest, w io.Writer) (string, error) {
	if err := auth.Authorize(user.Role, auth.PermReportsExport); err != nil {
		return "", err
	}
	report, err := s.Build(ctx, user, req)
	if err != nil {
		return "", err
	}
	if err := reports.WriteXLSX(report, w); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	s.publish(events.EventReportExported, actor(user, events.Payload{
		EntityType: "report",
		BranchID:   report.BranchID,
		Summary:    reports.FileName(report),
	}))
	return reports.FileName(report), nil
}

// QueueSnapshot builds the report and hands it to the Sheets sync worker.
func (s *ReportService) QueueSnapshot(ctx context.Context, user models.User, req ReportRequest) (*models.Report, models.Notice, error) {
	if err := auth.Authorize(user.Role, auth.PermReportsExport); err != nil {
		return nil, models.Notice{}, err
	}
	if s.sync == nil {
		return nil, models.Notice{}, fmt.Errorf("%w: google sheets sync", domain.ErrUnavailable)
	}
	report, err := s.Build(ctx, user, req)
	if err != nil {
		return nil, models.Notice{}, err
	}
	if err := s.sync.EnqueueReport(ctx, report); err != nil {
		return nil, models.Notice{}, fmt.Errorf("queue report snapshot: %w", err)
	}
	return report, models.Success("Report snapshot queued for Google Sheets"), nil
}
