// internal/api/response.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "pawmatch-workers/internal/common/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
}

// decode reads a JSON request body into v. Unknown fields are tolerated so
// job payloads can be replayed against the API unchanged.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(body).Decode(v)
	if err == nil {
		return true
	}

	message := "request body is not valid JSON"
	status := http.StatusBadRequest
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		message = "request body is empty"
	case errors.As(err, &maxErr):
		message = fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)
		status = http.StatusRequestEntityTooLarge
	}
	s.writeJSON(w, status, errorBody{Error: errorDetail{Code: "PARSE_ERROR", Message: message, Details: err.Error()}})
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", map[string]interface{}{"error": err})
	}
}

func (s *Server) writeError(w http.ResponseWriter, stdErr *apperrors.StandardError) {
	status := statusFor(stdErr)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
	}
	s.writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
	}})
}

// statusFor maps error categories onto HTTP status codes.
func statusFor(stdErr *apperrors.StandardError) int {
	switch apperrors.GetErrorCategory(stdErr.Code) {
	case "VALIDATION":
		return http.StatusBadRequest
	case "SEARCH", "CACHE", "DATABASE", "NOTIFICATION", "WORKFLOW":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func toStandardError(err error) *apperrors.StandardError {
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return stdErr
	}
	return apperrors.NewInternalError(err)
}
