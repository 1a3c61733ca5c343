package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"khosta-backend-go/internal/services"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type ValidationResponse struct {
	Message    string               `json:"message"`
	Violations []services.Violation `json:"violations"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Message: message})
}

// writeServiceError maps a use-case error onto its response. Anything that
// is not a service or validation error is logged and reported as a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr services.ValidationError
	if errors.As(err, &verr) {
		WriteJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Message: verr.Message, Violations: verr.Violations})
		return
	}
	var serr services.ServiceError
	if errors.As(err, &serr) {
		WriteError(w, serr.Status, serr.Message)
		return
	}
	s.Logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}

// maxJSONBytes caps every JSON request body; uploads use their own limit.
const maxJSONBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBytes)
	return json.NewDecoder(body).Decode(dst) == nil
}
