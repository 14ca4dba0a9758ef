// Package filter narrows and pages lists already fetched from the backend.
package filter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"skynest/internal/models"
)

var ErrInvalidQuery = errors.New("invalid filter query")

type DateField string

const (
	DateCheckIn  DateField = "check_in"
	DateCheckOut DateField = "check_out"
	DateCreated  DateField = "created"
)

// Criteria are combined with AND. Zero values match anything.
type Criteria struct {
	Statuses  []string
	DateField DateField
	From      time.Time
	To        time.Time
	Search    string
	BranchID  int64
	GuestID   int64
	Page      int
	PageSize  int
}

// maxPage bounds the page number accepted from a query string.
const maxPage = 1_000_000

// record is the filterable view of one list item. primary is the date
// field a range applies to when the criteria name none.
type record struct {
	status   string
	branchID int64
	guestID  int64
	primary  DateField
	dates    map[DateField]time.Time
	text     []string
}

func (c Criteria) match(r record) bool {
	if len(c.Statuses) > 0 && !containsStatus(c.Statuses, r.status) {
		return false
	}
	if c.BranchID > 0 && r.branchID != c.BranchID {
		return false
	}
	if c.GuestID > 0 && r.guestID != c.GuestID {
		return false
	}
	if !c.From.IsZero() || !c.To.IsZero() {
		field := c.DateField
		if field == "" {
			field = r.primary
		}
		d, ok := r.dates[field]
		if !ok || d.IsZero() || !inRange(d, c.From, c.To) {
			return false
		}
	}
	if q := strings.TrimSpace(c.Search); q != "" && !containsText(r.text, q) {
		return false
	}
	return true
}

func containsStatus(statuses []string, status string) bool {
	key := models.NormalizeStatus(status)
	for _, s := range statuses {
		if models.NormalizeStatus(s) == key {
			return true
		}
	}
	return false
}

// inRange compares calendar dates, both ends inclusive.
func inRange(d, from, to time.Time) bool {
	day := models.DateOnly(d)
	if !from.IsZero() && day.Before(models.DateOnly(from)) {
		return false
	}
	if !to.IsZero() && day.After(models.DateOnly(to)) {
		return false
	}
	return true
}

func containsText(fields []string, q string) bool {
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func apply[T any](items []T, c Criteria, view func(*T) record) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if c.match(view(&items[i])) {
			out = append(out, items[i])
		}
	}
	return out
}

func Bookings(items []models.Booking, c Criteria) []models.Booking {
	return apply(items, c, func(b *models.Booking) record {
		return record{
			status:   string(b.Status),
			branchID: b.BranchID,
			guestID:  b.GuestID,
			primary:  DateCheckIn,
			dates: map[DateField]time.Time{
				DateCheckIn:  b.CheckIn,
				DateCheckOut: b.CheckOut,
				DateCreated:  b.CreatedAt,
			},
			text: []string{b.GuestName, b.RoomNumber, b.BranchName, strconv.FormatInt(b.ID, 10)},
		}
	})
}

func Tickets(items []models.SupportTicket, c Criteria) []models.SupportTicket {
	return apply(items, c, func(t *models.SupportTicket) record {
		return record{
			status:   string(t.Status),
			branchID: t.BranchID,
			guestID:  t.GuestID,
			primary:  DateCreated,
			dates:    map[DateField]time.Time{DateCreated: t.CreatedAt},
			text:     []string{t.Subject, t.GuestName, t.Category, string(t.Priority)},
		}
	})
}

func ServiceRequests(items []models.ServiceRequest, c Criteria) []models.ServiceRequest {
	return apply(items, c, func(r *models.ServiceRequest) record {
		return record{
			status:   string(r.Status),
			branchID: r.BranchID,
			guestID:  r.GuestID,
			primary:  DateCreated,
			dates:    map[DateField]time.Time{DateCreated: r.CreatedAt},
			text:     []string{r.ServiceName, r.GuestName, r.Notes},
		}
	})
}

func Payments(items []models.Payment, c Criteria) []models.Payment {
	return apply(items, c, func(p *models.Payment) record {
		return record{
			status:   string(p.Status),
			branchID: p.BranchID,
			guestID:  p.GuestID,
			primary:  DateCreated,
			dates:    map[DateField]time.Time{DateCreated: p.PaidAt},
			text:     []string{p.Reference, p.Description, string(p.Method), strconv.FormatInt(p.BookingID, 10)},
		}
	})
}

func Rooms(items []models.Room, c Criteria) []models.Room {
	return apply(items, c, func(r *models.Room) record {
		return record{
			status:   string(r.Status),
			branchID: r.BranchID,
			text:     []string{r.Number, r.Type, r.Description},
		}
	})
}

func Guests(items []models.Guest, c Criteria) []models.Guest {
	return apply(items, c, func(g *models.Guest) record {
		return record{
			guestID: g.ID,
			primary: DateCreated,
			dates:   map[DateField]time.Time{DateCreated: g.CreatedAt},
			text:    []string{g.FullName(), g.Email, g.Phone, g.NationalID},
		}
	})
}

// Page is one page of a filtered list.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Pages    int `json:"pages"`
}

// Paginate returns the 1-based page of items. Pages past the end are empty.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = models.DefaultPageSize
	}
	if size > models.MaxPageSize {
		size = models.MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	p := Page[T]{
		Items:    []T{},
		Total:    total,
		Page:     page,
		PageSize: size,
		Pages:    (total + size - 1) / size,
	}

	if page > p.Pages {
		return p
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	p.Items = items[start:end]
	return p
}

// ParseQuery reads status=a,b&from=&to=&date_field=&q=&branch_id=&guest_id=&page=&page_size=.
func ParseQuery(v url.Values) (Criteria, error) {
	var c Criteria

	if raw := v.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.Statuses = append(c.Statuses, s)
			}
		}
	}

	var err error
	if c.From, err = parseDate(v, "from"); err != nil {
		return c, err
	}
	if c.To, err = parseDate(v, "to"); err != nil {
		return c, err
	}
	if !c.From.IsZero() && !c.To.IsZero() && c.To.Before(c.From) {
		return c, fmt.Errorf("%w: to is before from", ErrInvalidQuery)
	}

	// An empty date field leaves the choice to each list.
	switch f := DateField(v.Get("date_field")); f {
	case "":
	case DateCheckIn, DateCheckOut, DateCreated:
		c.DateField = f
	default:
		return c, fmt.Errorf("%w: unknown date_field %q", ErrInvalidQuery, f)
	}

	c.Search = strings.TrimSpace(v.Get("q"))

	if c.BranchID, err = parseInt64(v, "branch_id"); err != nil {
		return c, err
	}
	if c.GuestID, err = parseInt64(v, "guest_id"); err != nil {
		return c, err
	}

	page, err := parseInt64(v, "page")
	if err != nil {
		return c, err
	}
	if page > maxPage {
		return c, fmt.Errorf("%w: page must be at most %d", ErrInvalidQuery, maxPage)
	}
	size, err := parseInt64(v, "page_size")
	if err != nil {
		return c, err
	}
	c.Page, c.PageSize = int(page), int(size)

	return c, nil
}

func parseDate(v url.Values, key string) (time.Time, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidQuery, key)
	}
	return t, nil
}

func parseInt64(v url.Values, key string) (int64, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalidQuery, key)
	}
	return n, nil
}
