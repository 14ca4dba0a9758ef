package mocks

import (
	"context"

	"skynest/internal/models"

	"github.com/stretchr/testify/mock"
)

type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type SheetsWriter struct {
	mock.Mock
}

func (m *SheetsWriter) UpsertBooking(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *SheetsWriter) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	return m.Called(ctx, bookingID, status).Error(0)
}

func (m *SheetsWriter) ReplaceReportSheet(ctx context.Context, report *models.Report) error {
	return m.Called(ctx, report).Error(0)
}

type SyncWorker struct {
	mock.Mock
}

func (m *SyncWorker) EnqueueBooking(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *SyncWorker) EnqueueBookingStatus(ctx context.Context, bookingID int64, status string) error {
	return m.Called(ctx, bookingID, status).Error(0)
}

func (m *SyncWorker) EnqueueReport(ctx context.Context, report *models.Report) error {
	return m.Called(ctx, report).Error(0)
}

type Notifier struct {
	mock.Mock
}

func (m *Notifier) Notify(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

type ActivityStore struct {
	mock.Mock
}

func (m *ActivityStore) RecordActivity(ctx context.Context, a *models.Activity) error {
	return m.Called(ctx, a).Error(0)
}

func (m *ActivityStore) RecentActivity(ctx context.Context, branchID int64, limit int) ([]models.Activity, error) {
	args := m.Called(ctx, branchID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Activity), args.Error(1)
}
