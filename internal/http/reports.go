package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"khosta-backend-go/internal/export"
	"khosta-backend-go/internal/services"
)

func (s *Server) reportParams(w http.ResponseWriter, r *http.Request) (services.ReportParams, bool) {
	query := r.URL.Query()
	active, ok := parseActive(query.Get("active"))
	if !ok {
		WriteError(w, http.StatusBadRequest, "active must be true or false")
		return services.ReportParams{}, false
	}
	period, err := services.ParseDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return services.ReportParams{}, false
	}
	return services.ReportParams{Range: period, Active: active}, true
}

func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	params, ok := s.reportParams(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	var (
		payload interface{}
		err     error
	)
	switch kind := chi.URLParam(r, "kind"); kind {
	case services.ReportSummary:
		payload, err = s.Reports.Summary(ctx)
	case services.ReportEndingSoon:
		var items []services.EndingSoonView
		items, err = s.Reports.EndingSoon(ctx, params)
		payload = listOf(items)
	case services.ReportMovements:
		var items []services.Movement
		items, err = s.Reports.Movements(ctx, params)
		payload = listOf(items)
	case services.ReportVisitors:
		var items []services.VisitorView
		items, err = s.Reports.Visitors(ctx, params)
		payload = listOf(items)
	case services.ReportVisits:
		var items []services.VisitView
		items, err = s.Visits.History(ctx, services.VisitFilter{Range: params.Range})
		payload = listOf(items)
	default:
		err = services.ErrNotFound(fmt.Sprintf("Unknown report %q", kind))
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, payload)
}

// ExportReport streams a report as a PDF or XLSX download.
func (s *Server) ExportReport(w http.ResponseWriter, r *http.Request) {
	params, ok := s.reportParams(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatPDF
	}
	data, filename, err := s.Reports.Export(r.Context(), chi.URLParam(r, "kind"), format, params)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
