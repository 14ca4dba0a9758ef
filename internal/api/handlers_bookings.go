package api

import (
	"context"
	"net/http"

	"skynest/internal/filter"
	"skynest/internal/models"
)

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request, user models.User) {
	c, err := filter.ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.svc.Bookings.List(r.Context(), user, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, page)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	detail, err := s.svc.Bookings.Get(r.Context(), user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, detail)
}

type bookingTransition func(ctx context.Context, user models.User, id int64) (*models.Booking, models.Notice, error)

func (s *HTTPServer) bookingAction(w http.ResponseWriter, r *http.Request, user models.User, do bookingTransition) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, notice, err := do(r.Context(), user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, b, notice)
}

func (s *HTTPServer) handleCheckIn(w http.ResponseWriter, r *http.Request, user models.User) {
	s.bookingAction(w, r, user, s.svc.Bookings.CheckIn)
}

func (s *HTTPServer) handleCheckOut(w http.ResponseWriter, r *http.Request, user models.User) {
	s.bookingAction(w, r, user, s.svc.Bookings.CheckOut)
}

func (s *HTTPServer) handleCancel(w http.ResponseWriter, r *http.Request, user models.User) {
	s.bookingAction(w, r, user, s.svc.Bookings.Cancel)
}

func (s *HTTPServer) handleListUsage(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	usages, err := s.svc.Catalog.ListUsage(r.Context(), user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, usages)
}

func (s *HTTPServer) handleAddUsage(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var usage models.ServiceUsage
	if err := decodeJSON(r, &usage); err != nil {
		writeError(w, r, err)
		return
	}
	usage.BookingID = id
	created, notice, err := s.svc.Catalog.AddUsage(r.Context(), user, &usage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, created, notice)
}
