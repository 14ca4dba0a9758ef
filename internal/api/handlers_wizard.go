package api

import (
	"net/http"
	"strings"
	"time"

	"skynest/internal/domain"
	"skynest/internal/models"
	"skynest/internal/wizard"
)

type wizardView struct {
	State    *models.WizardState `json:"state"`
	Estimate models.Estimate     `json:"estimate"`
}

func view(state *models.WizardState) wizardView {
	return wizardView{State: state, Estimate: state.Estimate()}
}

func (s *HTTPServer) wizardResult(w http.ResponseWriter, r *http.Request, state *models.WizardState, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, view(state))
}

func (s *HTTPServer) handleWizardStart(w http.ResponseWriter, r *http.Request, user models.User) {
	state, err := s.wizard.Start(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Data: view(state)})
}

func (s *HTTPServer) handleWizardGet(w http.ResponseWriter, r *http.Request, user models.User) {
	state, err := s.wizard.Get(r.Context(), r.PathValue("id"), user)
	s.wizardResult(w, r, state, err)
}

func (s *HTTPServer) handleWizardBranch(w http.ResponseWriter, r *http.Request, user models.User) {
	var body struct {
		BranchID int64 `json:"branch_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	state, err := s.wizard.SetBranch(r.Context(), r.PathValue("id"), user, body.BranchID)
	s.wizardResult(w, r, state, err)
}

func parseDay(field, raw string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "must be YYYY-MM-DD")
	}
	return t, nil
}

func (s *HTTPServer) handleWizardDates(w http.ResponseWriter, r *http.Request, user models.User) {
	var body struct {
		CheckIn  string `json:"check_in"`
		CheckOut string `json:"check_out"`
		Guests   int    `json:"number_of_guests"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	checkIn, err := parseDay("check_in", body.CheckIn)
	if err != nil {
		writeError(w, r, err)
		return
	}
	checkOut, err := parseDay("check_out", body.CheckOut)
	if err != nil {
		writeError(w, r, err)
		return
	}
	state, err := s.wizard.SetDates(r.Context(), r.PathValue("id"), user, checkIn, checkOut, body.Guests)
	s.wizardResult(w, r, state, err)
}

func (s *HTTPServer) handleWizardRooms(w http.ResponseWriter, r *http.Request, user models.User) {
	rooms, err := s.wizard.AvailableRooms(r.Context(), r.PathValue("id"), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, rooms)
}

func (s *HTTPServer) handleWizardRoom(w http.ResponseWriter, r *http.Request, user models.User) {
	var body struct {
		RoomID int64 `json:"room_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	state, err := s.wizard.SelectRoom(r.Context(), r.PathValue("id"), user, body.RoomID)
	s.wizardResult(w, r, state, err)
}

func (s *HTTPServer) handleWizardGuest(w http.ResponseWriter, r *http.Request, user models.User) {
	var in wizard.GuestInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	state, err := s.wizard.SetGuest(r.Context(), r.PathValue("id"), user, in)
	s.wizardResult(w, r, state, err)
}

func (s *HTTPServer) handleWizardServices(w http.ResponseWriter, r *http.Request, user models.User) {
	var body struct {
		Services []models.ServiceSelection `json:"services"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	state, err := s.wizard.SetServices(r.Context(), r.PathValue("id"), user, body.Services)
	s.wizardResult(w, r, state, err)
}

func (s *HTTPServer) handleWizardBack(w http.ResponseWriter, r *http.Request, user models.User) {
	state, err := s.wizard.Back(r.Context(), r.PathValue("id"), user)
	s.wizardResult(w, r, state, err)
}

func (s *HTTPServer) handleWizardReview(w http.ResponseWriter, r *http.Request, user models.User) {
	state, estimate, err := s.wizard.Review(r.Context(), r.PathValue("id"), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, wizardView{State: state, Estimate: estimate})
}

func (s *HTTPServer) handleWizardSubmit(w http.ResponseWriter, r *http.Request, user models.User) {
	res, err := s.wizard.Submit(r.Context(), r.PathValue("id"), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, res, res.Notice)
}

func (s *HTTPServer) handleWizardCancel(w http.ResponseWriter, r *http.Request, user models.User) {
	if err := s.wizard.Cancel(r.Context(), r.PathValue("id"), user); err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, nil, models.Notice{Level: models.NoticeInfo, Message: "Booking draft discarded"})
}
