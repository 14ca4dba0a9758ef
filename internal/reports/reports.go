// Package reports computes display-only figures from data already fetched
// from the backend. Nothing here is used for billing.
package reports

import (
	"math"
	"sort"
	"time"

	"skynest/internal/models"
)

// Input is everything a report needs, already scoped to the caller.
type Input struct {
	From     time.Time
	To       time.Time
	BranchID int64
	Branches []models.Branch
	Rooms    []models.Room
	Bookings []models.Booking
	Payments []models.Payment
	Usages   []models.ServiceUsage
}

// Build assembles every report section for the range [From, To].
func Build(in Input, now time.Time) *models.Report {
	branches := in.Branches
	if in.BranchID > 0 {
		branches = nil
		for _, b := range in.Branches {
			if b.ID == in.BranchID {
				branches = append(branches, b)
			}
		}
	}

	return &models.Report{
		From:          models.DateOnly(in.From),
		To:            models.DateOnly(in.To),
		GeneratedAt:   now,
		BranchID:      in.BranchID,
		Occupancy:     Occupancy(branches, in.Rooms, in.Bookings, in.From, in.To),
		Revenue:       Revenue(branches, in.Payments, in.From, in.To),
		ServiceUsage:  ServiceUsageSummary(usagesInRange(in.Usages, in.From, in.To)),
		BookingStatus: StatusBreakdown(bookingsInRange(in.Bookings, in.From, in.To)),
	}
}

// Folio totals the charges and payments of one booking.
func Folio(booking *models.Booking, room *models.Room, usages []models.ServiceUsage, payments []models.Payment) models.Folio {
	f := models.Folio{
		BookingID: booking.ID,
		Nights:    booking.Nights(),
		Usages:    usages,
		Payments:  payments,
	}

	rate := booking.RoomRate
	if rate == 0 && room != nil {
		rate = room.Rate
	}
	f.RoomCharges = round2(rate * float64(f.Nights))

	for i := range usages {
		f.ServiceCharges += usages[i].Total()
	}
	f.ServiceCharges = round2(f.ServiceCharges)
	f.TotalCharges = round2(f.RoomCharges + f.ServiceCharges)

	for _, p := range payments {
		switch p.Status {
		case models.PaymentCompleted:
			f.Paid += p.Amount
		case models.PaymentRefunded:
			f.Refunded += p.Amount
		}
	}
	f.Paid = round2(f.Paid)
	f.Refunded = round2(f.Refunded)
	f.BalanceDue = round2(f.TotalCharges - f.Paid + f.Refunded)

	if f.Usages == nil {
		f.Usages = []models.ServiceUsage{}
	}
	if f.Payments == nil {
		f.Payments = []models.Payment{}
	}
	return f
}

// Occupancy divides booked room-nights by available room-nights per branch.
// Both range ends are inclusive nights; cancelled bookings are ignored.
func Occupancy(branches []models.Branch, rooms []models.Room, bookings []models.Booking, from, to time.Time) []models.OccupancyRow {
	from, to = models.DateOnly(from), models.DateOnly(to)
	nights := int(to.Sub(from).Hours()/24) + 1
	if nights < 0 {
		nights = 0
	}

	roomCount := make(map[int64]int)
	for _, r := range rooms {
		roomCount[r.BranchID]++
	}

	booked := make(map[int64]int)
	for i := range bookings {
		b := &bookings[i]
		if b.Status == models.BookingCancelled {
			continue
		}
		booked[b.BranchID] += overlapNights(models.DateOnly(b.CheckIn), models.DateOnly(b.CheckOut), from, to)
	}

	rows := make([]models.OccupancyRow, 0, len(branches))
	for _, br := range branches {
		row := models.OccupancyRow{
			BranchID:     br.ID,
			BranchName:   br.Name,
			Rooms:        roomCount[br.ID],
			RoomNights:   roomCount[br.ID] * nights,
			BookedNights: booked[br.ID],
		}
		if row.RoomNights > 0 {
			row.Rate = math.Round(float64(row.BookedNights)/float64(row.RoomNights)*10000) / 10000
		}
		rows = append(rows, row)
	}
	return rows
}

// overlapNights counts nights d with checkIn <= d < checkOut and from <= d <= to.
func overlapNights(checkIn, checkOut, from, to time.Time) int {
	start := checkIn
	if from.After(start) {
		start = from
	}
	end := checkOut
	if last := to.AddDate(0, 0, 1); last.Before(end) {
		end = last
	}
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}

// Revenue sums completed payments per method and subtracts refunds per branch.
func Revenue(branches []models.Branch, payments []models.Payment, from, to time.Time) []models.RevenueRow {
	index := make(map[int64]int, len(branches))
	rows := make([]models.RevenueRow, 0, len(branches))
	for _, br := range branches {
		index[br.ID] = len(rows)
		rows = append(rows, models.RevenueRow{BranchID: br.ID, BranchName: br.Name})
	}

	for _, p := range payments {
		if !inRange(p.PaidAt, from, to) {
			continue
		}
		i, ok := index[p.BranchID]
		if !ok {
			continue
		}
		row := &rows[i]
		switch p.Status {
		case models.PaymentCompleted:
			switch p.Method {
			case models.PaymentCash:
				row.Cash += p.Amount
			case models.PaymentCard:
				row.Card += p.Amount
			case models.PaymentOnline:
				row.Online += p.Amount
			}
		case models.PaymentRefunded:
			row.Refunded += p.Amount
		}
	}

	for i := range rows {
		r := &rows[i]
		r.Cash, r.Card, r.Online, r.Refunded = round2(r.Cash), round2(r.Card), round2(r.Online), round2(r.Refunded)
		r.Net = round2(r.Cash + r.Card + r.Online - r.Refunded)
	}
	return rows
}

// ServiceUsageSummary groups usages by service, highest revenue first.
func ServiceUsageSummary(usages []models.ServiceUsage) []models.ServiceUsageRow {
	byService := make(map[int64]*models.ServiceUsageRow)
	for i := range usages {
		u := &usages[i]
		row, ok := byService[u.ServiceID]
		if !ok {
			row = &models.ServiceUsageRow{ServiceID: u.ServiceID, ServiceName: u.ServiceName}
			byService[u.ServiceID] = row
		}
		if row.ServiceName == "" {
			row.ServiceName = u.ServiceName
		}
		row.Quantity += u.Quantity
		row.Revenue += u.Total()
	}

	rows := make([]models.ServiceUsageRow, 0, len(byService))
	for _, row := range byService {
		row.Revenue = round2(row.Revenue)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Revenue != rows[j].Revenue {
			return rows[i].Revenue > rows[j].Revenue
		}
		return rows[i].ServiceID < rows[j].ServiceID
	})
	return rows
}

// StatusBreakdown counts bookings per lifecycle status, in lifecycle order.
func StatusBreakdown(bookings []models.Booking) []models.StatusCount {
	counts := make(map[models.BookingStatus]int)
	for i := range bookings {
		counts[bookings[i].Status]++
	}

	rows := make([]models.StatusCount, 0, len(models.BookingStatuses))
	for _, s := range models.BookingStatuses {
		rows = append(rows, models.StatusCount{Status: string(s), Count: counts[s]})
	}
	return rows
}

func bookingsInRange(bookings []models.Booking, from, to time.Time) []models.Booking {
	from, to = models.DateOnly(from), models.DateOnly(to)
	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if overlapNights(models.DateOnly(b.CheckIn), models.DateOnly(b.CheckOut), from, to) > 0 {
			out = append(out, b)
		}
	}
	return out
}

func usagesInRange(usages []models.ServiceUsage, from, to time.Time) []models.ServiceUsage {
	out := make([]models.ServiceUsage, 0, len(usages))
	for _, u := range usages {
		if u.UsedAt.IsZero() || inRange(u.UsedAt, from, to) {
			out = append(out, u)
		}
	}
	return out
}

func inRange(t, from, to time.Time) bool {
	d := models.DateOnly(t)
	return !d.Before(models.DateOnly(from)) && !d.After(models.DateOnly(to))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
