package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"khosta-backend-go/internal/services"
)

type VisitorRequest struct {
	FullName string `json:"fullName"`
	Document string `json:"document"`
	Relation string `json:"relation"`
	RecordID string `json:"recordId"`
	Photo    string `json:"photo"`
}

func (req VisitorRequest) input() services.VisitorInput {
	return services.VisitorInput{
		FullName: req.FullName,
		Document: req.Document,
		Relation: req.Relation,
		RecordID: req.RecordID,
		Photo:    req.Photo,
	}
}

type ActiveRequest struct {
	Active *bool `json:"active"`
}

type VisitRequest struct {
	VisitorID string `json:"visitorId"`
	VisitDate string `json:"visitDate"`
	VisitType string `json:"visitType"`
	Notes     string `json:"notes"`
}

// parseActive reads an optional true/false query flag.
func parseActive(raw string) (*bool, bool) {
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, false
	}
	return &value, true
}

func (s *Server) ListVisitors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	active, ok := parseActive(query.Get("active"))
	if !ok {
		WriteError(w, http.StatusBadRequest, "active must be true or false")
		return
	}
	created, err := services.ParseDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	visitors, err := s.Visitors.List(r.Context(), services.VisitorFilter{
		Query:   query.Get("q"),
		Active:  active,
		Created: created,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, listOf(visitors))
}

func (s *Server) RegisterVisitor(w http.ResponseWriter, r *http.Request) {
	var req VisitorRequest
	if !decodeJSON(w, r, &req) {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	visitor, err := s.Visitors.Register(r.Context(), req.input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, visitor)
}

func (s *Server) GetVisitor(w http.ResponseWriter, r *http.Request) {
	visitor, err := s.Visitors.Get(r.Context(), chi.URLParam(r, "visitorId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, visitor)
}

func (s *Server) UpdateVisitor(w http.ResponseWriter, r *http.Request) {
	var req VisitorRequest
	if !decodeJSON(w, r, &req) {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	visitor, err := s.Visitors.Update(r.Context(), chi.URLParam(r, "visitorId"), req.input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, visitor)
}

func (s *Server) SetVisitorActive(w http.ResponseWriter, r *http.Request) {
	var req ActiveRequest
	if !decodeJSON(w, r, &req) || req.Active == nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	visitor, err := s.Visitors.SetActive(r.Context(), chi.URLParam(r, "visitorId"), *req.Active)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, visitor)
}

func (s *Server) DeleteVisitor(w http.ResponseWriter, r *http.Request) {
	if err := s.Visitors.Delete(r.Context(), chi.URLParam(r, "visitorId")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListVisits(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	period, err := services.ParseDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	visits, err := s.Visits.History(r.Context(), services.VisitFilter{
		VisitorID: query.Get("visitorId"),
		RecordID:  query.Get("recordId"),
		Range:     period,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, listOf(visits))
}

func (s *Server) LogVisit(w http.ResponseWriter, r *http.Request) {
	var req VisitRequest
	if !decodeJSON(w, r, &req) {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	visit, err := s.Visits.Log(r.Context(), services.VisitInput{
		VisitorID: req.VisitorID,
		VisitDate: req.VisitDate,
		VisitType: req.VisitType,
		Notes:     req.Notes,
	}, CurrentUserID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, visit)
}
