package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"

	"khosta-backend-go/internal/services"
)

type HostResponse struct {
	services.HostSample
	DashboardSubscribers int `json:"dashboardSubscribers"`
}

func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.Dashboard.Load(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dashboard)
}

// DashboardSocket subscribes an authenticated client to dashboard pushes.
// Browsers cannot set headers on websocket requests, so the access token
// travels in the token query parameter.
func (s *Server) DashboardSocket(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	if _, err := s.Tokens.ParseAccess(token); err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.Hub.Add(conn)
	s.Hub.Notify()
	defer func() {
		s.Hub.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) HostInfo(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HostResponse{
		HostSample:           services.CaptureHost(s.Config.MediaStoragePath),
		DashboardSubscribers: s.Hub.Subscribers(),
	})
}
