package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"skynest/internal/backend"
	"skynest/internal/domain"
	"skynest/internal/filter"
	"skynest/internal/models"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// envelope is the shape of every portal response.
type envelope struct {
	Data      any               `json:"data,omitempty"`
	Notice    *models.Notice    `json:"notice,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Data: data})
}

// writeResult answers a mutation with its result and toast.
func writeResult(w http.ResponseWriter, statusCode int, data any, notice models.Notice) {
	env := envelope{Data: data}
	if notice.Message != "" {
		env.Notice = &notice
	}
	writeJSON(w, statusCode, env)
}

// writeError maps err onto a status code and an error toast.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode, message := statusFor(err)
	env := envelope{
		Notice:    &models.Notice{Level: models.NoticeError, Message: message},
		RequestID: requestIDFrom(r.Context()),
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		env.Fields = verr.Fields
	}
	if statusCode >= http.StatusInternalServerError {
		loggerFrom(r.Context()).Error().Err(err).Int("status", statusCode).Msg("request failed")
	}
	writeJSON(w, statusCode, env)
}

func statusFor(err error) (int, string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "Please correct the highlighted fields"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, filter.ErrInvalidQuery):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "You are not allowed to do that"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrStepOrder),
		errors.Is(err, domain.ErrRoomUnavailable):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests, slow down"
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= http.StatusInternalServerError {
			return http.StatusBadGateway, "The hotel system is unavailable, try again later"
		}
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.Status)
		}
		return apiErr.Status, msg
	}
	return http.StatusInternalServerError, "Something went wrong"
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("body", "is required")
		}
		return domain.NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive number")
	}
	return id, nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative number")
	}
	return n, nil
}
