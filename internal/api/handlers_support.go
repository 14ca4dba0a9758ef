package api

import (
	"net/http"

	"skynest/internal/filter"
	"skynest/internal/models"
)

func (s *HTTPServer) handleListRequests(w http.ResponseWriter, r *http.Request, user models.User) {
	c, err := filter.ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.svc.Requests.List(r.Context(), user, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, page)
}

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request, user models.User) {
	var req models.ServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, notice, err := s.svc.Requests.Create(r.Context(), user, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, created, notice)
}

func (s *HTTPServer) handleApproveRequest(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, notice, err := s.svc.Requests.Approve(r.Context(), user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, updated, notice)
}

func (s *HTTPServer) handleRejectRequest(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	updated, notice, err := s.svc.Requests.Reject(r.Context(), user, id, body.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, updated, notice)
}

func (s *HTTPServer) handleListPayments(w http.ResponseWriter, r *http.Request, user models.User) {
	c, err := filter.ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	bookingID, err := queryInt64(r, "booking_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.svc.Payments.List(r.Context(), user, bookingID, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, page)
}

func (s *HTTPServer) handleRecordPayment(w http.ResponseWriter, r *http.Request, user models.User) {
	var p models.Payment
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	created, notice, err := s.svc.Payments.Record(r.Context(), user, &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, created, notice)
}

func (s *HTTPServer) handleListTickets(w http.ResponseWriter, r *http.Request, user models.User) {
	c, err := filter.ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.svc.Tickets.List(r.Context(), user, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, page)
}

func (s *HTTPServer) handleGetTicket(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.Tickets.Get(r.Context(), user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, t)
}

func (s *HTTPServer) handleCreateTicket(w http.ResponseWriter, r *http.Request, user models.User) {
	var t models.SupportTicket
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, r, err)
		return
	}
	created, notice, err := s.svc.Tickets.Create(r.Context(), user, &t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, created, notice)
}

func (s *HTTPServer) handleRespondTicket(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	resp, notice, err := s.svc.Tickets.Respond(r.Context(), user, id, body.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, resp, notice)
}

func (s *HTTPServer) handleTicketStatus(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body statusBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	t, notice, err := s.svc.Tickets.ChangeStatus(r.Context(), user, id, body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, t, notice)
}
