package httpapi

import (
	"context"
	"net/http"
	"os"
	"time"

	"khosta-backend-go/internal/services"
)

// diskFullPercent marks the media volume as not ready.
const diskFullPercent = 95

type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func version() string {
	if v := os.Getenv("APP_VERSION"); v != "" {
		return v
	}
	return "unknown"
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Version:   version(),
		Checks:    map[string]Check{"process": {Status: "UP"}},
	})
}

func (s *Server) Live(w http.ResponseWriter, r *http.Request) {
	s.Health(w, r)
}

// Ready reports DOWN with 503 when the store cannot be reached or the
// media volume is nearly full.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{
		"store": s.checkStore(r.Context()),
		"disk":  s.checkDisk(),
	}
	status := "UP"
	httpStatus := http.StatusOK
	for _, check := range checks {
		if check.Status != "UP" {
			status = "DOWN"
			httpStatus = http.StatusServiceUnavailable
		}
	}
	WriteJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Version:   version(),
		Checks:    checks,
	})
}

func (s *Server) checkStore(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		return Check{Status: "DOWN", Message: "Cannot reach " + s.Config.StorageBackend + " store"}
	}
	return Check{Status: "UP"}
}

func (s *Server) checkDisk() Check {
	sample := services.CaptureHost(s.Config.MediaStoragePath)
	if sample.DiskUsedPercent >= diskFullPercent {
		return Check{Status: "DOWN", Message: "Media volume is nearly full"}
	}
	return Check{Status: "UP"}
}
