package api

import (
	"bytes"
	"fmt"
	"net/http"

	"skynest/internal/models"
	"skynest/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func reportRequest(r *http.Request) (service.ReportRequest, error) {
	var req service.ReportRequest
	q := r.URL.Query()

	from, err := parseDay("from", q.Get("from"))
	if err != nil {
		return req, err
	}
	to, err := parseDay("to", q.Get("to"))
	if err != nil {
		return req, err
	}
	branchID, err := queryInt64(r, "branch_id")
	if err != nil {
		return req, err
	}
	return service.ReportRequest{From: from, To: to, BranchID: branchID}, nil
}

func (s *HTTPServer) handleReport(w http.ResponseWriter, r *http.Request, user models.User) {
	req, err := reportRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := s.svc.Reports.Build(r.Context(), user, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, report)
}

// handleReportDownload buffers the workbook so a failure still gets a JSON error.
func (s *HTTPServer) handleReportDownload(w http.ResponseWriter, r *http.Request, user models.User) {
	req, err := reportRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	name, err := s.svc.Reports.WriteXLSX(r.Context(), user, req, &buf)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *HTTPServer) handleReportExport(w http.ResponseWriter, r *http.Request, user models.User) {
	req, err := reportRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	path, notice, err := s.svc.Reports.Export(r.Context(), user, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusCreated, map[string]string{"path": path}, notice)
}

func (s *HTTPServer) handleReportSnapshot(w http.ResponseWriter, r *http.Request, user models.User) {
	req, err := reportRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, notice, err := s.svc.Reports.QueueSnapshot(r.Context(), user, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, http.StatusAccepted, report, notice)
}
