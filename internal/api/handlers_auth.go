package api

import (
	"net/http"
	"strconv"

	"skynest/internal/auth"
	"skynest/internal/models"
)

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.svc.Auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, map[string]any{"token": res.Token, "session": res.Session}, res.Notice)
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request, user models.User) {
	session, _ := auth.SessionFromContext(r.Context())
	writeData(w, session)
}

func (s *HTTPServer) handleDashboard(w http.ResponseWriter, r *http.Request, user models.User) {
	d, err := s.svc.Dashboard.For(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, d)
}

func (s *HTTPServer) handleActivity(w http.ResponseWriter, r *http.Request, user models.User) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := s.svc.Dashboard.Activity(r.Context(), user, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, items)
}
