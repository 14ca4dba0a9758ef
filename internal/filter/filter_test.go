package filter

import (
	"errors"
	"math"
	"net/url"
	"testing"
	"time"

	"skynest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func sampleBookings() []models.Booking {
	return []models.Booking{
		{ID: 1, BranchID: 1, GuestID: 10, GuestName: "Kamala Silva", RoomNumber: "101", Status: models.BookingBooked, CheckIn: day(1), CheckOut: day(3)},
		{ID: 2, BranchID: 2, GuestID: 11, GuestName: "John Doe", RoomNumber: "202", Status: models.BookingCheckedIn, CheckIn: day(5), CheckOut: day(7)},
		{ID: 3, BranchID: 1, GuestID: 12, GuestName: "Jane Roe", RoomNumber: "103", Status: models.BookingCancelled, CheckIn: day(10), CheckOut: day(12)},
		{ID: 4, BranchID: 1, GuestID: 10, GuestName: "Kamala Silva", RoomNumber: "104", Status: models.BookingCheckedOut, CheckIn: day(15), CheckOut: day(16)},
	}
}

func ids(items []models.Booking) []int64 {
	out := make([]int64, 0, len(items))
	for _, b := range items {
		out = append(out, b.ID)
	}
	return out
}

func TestBookings(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []int64
	}{
		{name: "no criteria", c: Criteria{}, want: []int64{1, 2, 3, 4}},
		{name: "status set", c: Criteria{Statuses: []string{"checked_in", "CANCELLED"}}, want: []int64{2, 3}},
		{name: "branch", c: Criteria{BranchID: 1}, want: []int64{1, 3, 4}},
		{name: "inclusive range", c: Criteria{From: day(5), To: day(10)}, want: []int64{2, 3}},
		{name: "open start", c: Criteria{To: day(5)}, want: []int64{1, 2}},
		{name: "open end on check-out", c: Criteria{DateField: DateCheckOut, From: day(12)}, want: []int64{3, 4}},
		{name: "search room number", c: Criteria{Search: "20"}, want: []int64{2}},
		{name: "search is case-insensitive", c: Criteria{Search: "kamala"}, want: []int64{1, 4}},
		{name: "and of criteria", c: Criteria{BranchID: 1, Search: "kamala", Statuses: []string{"Booked"}}, want: []int64{1}},
		{name: "nothing matches", c: Criteria{GuestID: 99}, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Bookings(sampleBookings(), tt.c)))
		})
	}
}

func TestTicketsAndRequests(t *testing.T) {
	tickets := []models.SupportTicket{
		{ID: 1, Subject: "Air conditioner broken", Status: models.TicketOpen, CreatedAt: day(2)},
		{ID: 2, Subject: "Late checkout", Status: models.TicketInProgress, CreatedAt: day(4)},
		{ID: 3, Subject: "Wifi", Status: models.TicketClosed, CreatedAt: day(6)},
	}
	got := Tickets(tickets, Criteria{Statuses: []string{"in progress", "open"}})
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)

	got = Tickets(tickets, Criteria{DateField: DateCreated, From: day(3)})
	assert.Len(t, got, 2)

	reqs := []models.ServiceRequest{
		{ID: 1, ServiceName: "Spa", Status: models.RequestPending},
		{ID: 2, ServiceName: "Laundry", Status: models.RequestApproved},
	}
	assert.Len(t, ServiceRequests(reqs, Criteria{Statuses: []string{"pending"}}), 1)
	assert.Len(t, ServiceRequests(reqs, Criteria{Search: "laun"}), 1)
}

func TestMissingDateFieldExcludedFromRange(t *testing.T) {
	rooms := []models.Room{{ID: 1, Number: "101"}}
	assert.Empty(t, Rooms(rooms, Criteria{From: day(1)}))
	assert.Len(t, Rooms(rooms, Criteria{Search: "101"}), 1)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := Paginate(items, 1, 2)
	assert.Equal(t, []int{1, 2}, p.Items)
	assert.Equal(t, 5, p.Total)
	assert.Equal(t, 3, p.Pages)

	p = Paginate(items, 3, 2)
	assert.Equal(t, []int{5}, p.Items)

	p = Paginate(items, 4, 2)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.Equal(t, 5, p.Total)

	p = Paginate(items, 0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, models.DefaultPageSize, p.PageSize)
	assert.Len(t, p.Items, 5)

	p = Paginate(items, 1, 10_000)
	assert.Equal(t, models.MaxPageSize, p.PageSize)

	p = Paginate(make([]int, 50), math.MaxInt, 20)
	assert.Empty(t, p.Items)
	assert.Equal(t, 3, p.Pages)

	p = Paginate([]int{}, 1, 20)
	assert.Empty(t, p.Items)
	assert.Equal(t, 0, p.Pages)
}

func TestQueryRangeUsesEachListsDate(t *testing.T) {
	c, err := ParseQuery(url.Values{"from": {"2026-01-01"}, "to": {"2026-12-31"}})
	require.NoError(t, err)

	created := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	tickets := []models.SupportTicket{{ID: 1, Subject: "Noise", CreatedAt: created}}
	assert.Len(t, Tickets(tickets, c), 1)

	reqs := []models.ServiceRequest{{ID: 1, ServiceName: "Spa", CreatedAt: created}}
	assert.Len(t, ServiceRequests(reqs, c), 1)

	payments := []models.Payment{{ID: 1, PaidAt: created}}
	assert.Len(t, Payments(payments, c), 1)

	guests := []models.Guest{{ID: 1, CreatedAt: created}}
	assert.Len(t, Guests(guests, c), 1)

	bookings := []models.Booking{
		{ID: 1, CheckIn: created, CreatedAt: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, CheckIn: time.Date(2027, 1, 5, 0, 0, 0, 0, time.UTC), CreatedAt: created},
	}
	assert.Equal(t, []int64{1}, ids(Bookings(bookings, c)))

	c.DateField = DateCheckIn
	assert.Empty(t, Tickets(tickets, c))
}

func TestParseQuery(t *testing.T) {
	v := url.Values{}
	v.Set("status", "Booked, Checked-In")
	v.Set("from", "2026-03-01")
	v.Set("to", "2026-03-31")
	v.Set("q", " silva ")
	v.Set("branch_id", "2")
	v.Set("page", "3")
	v.Set("page_size", "50")

	c, err := ParseQuery(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"Booked", "Checked-In"}, c.Statuses)
	assert.Equal(t, day(1), c.From)
	assert.Equal(t, day(31), c.To)
	assert.Empty(t, c.DateField)
	assert.Equal(t, "silva", c.Search)
	assert.Equal(t, int64(2), c.BranchID)
	assert.Equal(t, 3, c.Page)
	assert.Equal(t, 50, c.PageSize)
}

func TestParseQueryErrors(t *testing.T) {
	cases := map[string]url.Values{
		"bad date":     {"from": {"03/01/2026"}},
		"reversed":     {"from": {"2026-03-10"}, "to": {"2026-03-01"}},
		"bad branch":   {"branch_id": {"abc"}},
		"negative":     {"page": {"-1"}},
		"huge page":    {"page": {"1000001"}},
		"unknown date": {"date_field": {"paid"}},
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQuery(v)
			assert.True(t, errors.Is(err, ErrInvalidQuery))
		})
	}
}
