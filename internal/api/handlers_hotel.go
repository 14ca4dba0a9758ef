package api

import (
	"net/http"

	"skynest/internal/filter"
	"skynest/internal/models"
)

func (s *HTTPServer) handleListRooms(w http.ResponseWriter, r *http.Request, user models.User) {
	c, err := filter.ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.svc.Rooms.List(r.Context(), user, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, page)
}

func (s *HTTPServer) handleCreateRoom(w http.ResponseWriter, r *http.Request, user models.User) {
	var room models.Room
	if err := decodeJSON(r, &room); err != nil {
		writeError(w, r, err)
		return
	}
	created, notice, err := s.svc.Rooms.Create(r.Context(), user, &room)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, created, notice)
}

func (s *HTTPServer) handleUpdateRoom(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var room models.Room
	if err := decodeJSON(r, &room); err != nil {
		writeError(w, r, err)
		return
	}
	room.ID = id
	updated, notice, err := s.svc.Rooms.Update(r.Context(), user, &room)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, updated, notice)
}

type statusBody struct {
	Status string `json:"status"`
}

func (s *HTTPServer) handleRoomStatus(w http.ResponseWriter, r *http.Request, user models.User) {
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
	room, notice, err := s.svc.Rooms.SetStatus(r.Context(), user, id, body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, room, notice)
}

func (s *HTTPServer) handleListGuests(w http.ResponseWriter, r *http.Request, user models.User) {
	c, err := filter.ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.svc.Guests.List(r.Context(), user, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, page)
}

func (s *HTTPServer) handleGetGuest(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	guest, err := s.svc.Guests.Get(r.Context(), user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, guest)
}

func (s *HTTPServer) handleCreateGuest(w http.ResponseWriter, r *http.Request, user models.User) {
	var guest models.Guest
	if err := decodeJSON(r, &guest); err != nil {
		writeError(w, r, err)
		return
	}
	created, notice, err := s.svc.Guests.Create(r.Context(), user, &guest)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, created, notice)
}

func (s *HTTPServer) handleUpdateGuest(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var guest models.Guest
	if err := decodeJSON(r, &guest); err != nil {
		writeError(w, r, err)
		return
	}
	guest.ID = id
	updated, notice, err := s.svc.Guests.Update(r.Context(), user, &guest)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, updated, notice)
}

func (s *HTTPServer) handleListBranches(w http.ResponseWriter, r *http.Request, user models.User) {
	branches, err := s.svc.Branches.List(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, branches)
}

func (s *HTTPServer) handleCreateBranch(w http.ResponseWriter, r *http.Request, user models.User) {
	var branch models.Branch
	if err := decodeJSON(r, &branch); err != nil {
		writeError(w, r, err)
		return
	}
	created, notice, err := s.svc.Branches.Create(r.Context(), user, &branch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, created, notice)
}

func (s *HTTPServer) handleUpdateBranch(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var branch models.Branch
	if err := decodeJSON(r, &branch); err != nil {
		writeError(w, r, err)
		return
	}
	branch.ID = id
	updated, notice, err := s.svc.Branches.Update(r.Context(), user, &branch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, updated, notice)
}

func (s *HTTPServer) handleListServices(w http.ResponseWriter, r *http.Request, user models.User) {
	branchID, err := queryInt64(r, "branch_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	services, err := s.svc.Catalog.ListServices(r.Context(), user, branchID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, services)
}

func (s *HTTPServer) handleCreateService(w http.ResponseWriter, r *http.Request, user models.User) {
	var svc models.Service
	if err := decodeJSON(r, &svc); err != nil {
		writeError(w, r, err)
		return
	}
	created, notice, err := s.svc.Catalog.CreateService(r.Context(), user, &svc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, created, notice)
}

func (s *HTTPServer) handleUpdateService(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var svc models.Service
	if err := decodeJSON(r, &svc); err != nil {
		writeError(w, r, err)
		return
	}
	svc.ID = id
	updated, notice, err := s.svc.Catalog.UpdateService(r.Context(), user, &svc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusOK, updated, notice)
}
