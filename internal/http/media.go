package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"khosta-backend-go/internal/services"
)

func (s *Server) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(services.MaxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "File is empty")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "File is empty")
		return
	}
	defer file.Close()
	asset, err := s.Media.SavePhoto(chi.URLParam(r, "bucket"), file)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, asset)
}

func (s *Server) PhotoContent(w http.ResponseWriter, r *http.Request) {
	file, err := s.Media.Open(chi.URLParam(r, "bucket"), chi.URLParam(r, "assetId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}

func (s *Server) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := s.Media.Delete(chi.URLParam(r, "bucket"), chi.URLParam(r, "assetId")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
