package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"khosta-backend-go/internal/services"
)

// formValue accepts a JSON string or number. Intake forms send the sentence
// either way and validation needs the raw text.
type formValue string

func (v *formValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = formValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = formValue(n.String())
	return nil
}

// RecordRequest is used for both intake and edit; on edit, absent fields
// keep their stored value.
type RecordRequest struct {
	FullName      *string    `json:"fullName"`
	BirthDate     *string    `json:"birthDate"`
	Gender        *string    `json:"gender"`
	ProcessNumber *string    `json:"processNumber"`
	Crime         *string    `json:"crime"`
	OtherCrime    *string    `json:"otherCrime"`
	EntryDate     *string    `json:"entryDate"`
	Sentence      *formValue `json:"sentence"`
	Status        *string    `json:"status"`
	Photo         *string    `json:"photo"`
}

func (req RecordRequest) patch() services.RecordPatch {
	var sentence *string
	if req.Sentence != nil {
		value := string(*req.Sentence)
		sentence = &value
	}
	return services.RecordPatch{
		FullName:      req.FullName,
		BirthDate:     req.BirthDate,
		Gender:        req.Gender,
		ProcessNumber: req.ProcessNumber,
		Crime:         req.Crime,
		OtherCrime:    req.OtherCrime,
		EntryDate:     req.EntryDate,
		Sentence:      sentence,
		Status:        req.Status,
		Photo:         req.Photo,
	}
}

type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func listOf[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: len(items)}
}

func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	entry, err := services.ParseDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	records, err := s.Records.List(r.Context(), services.RecordFilter{
		Query:  query.Get("q"),
		Status: query.Get("status"),
		Crime:  query.Get("crime"),
		Entry:  entry,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, listOf(records))
}

func (s *Server) RecentRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.Records.Recent(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, listOf(records))
}

func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	record, err := s.Records.Get(r.Context(), chi.URLParam(r, "recordId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, record)
}

func (s *Server) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if !decodeJSON(w, r, &req) {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	record, err := s.Records.Create(r.Context(), req.patch().Apply(services.RecordDraft{}))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, record)
}

func (s *Server) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if !decodeJSON(w, r, &req) {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	record, err := s.Records.Update(r.Context(), chi.URLParam(r, "recordId"), req.patch())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, record)
}

func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.Records.Delete(r.Context(), chi.URLParam(r, "recordId")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
