package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"khosta-backend-go/internal/services"
)

type UserRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (req UserRequest) input() services.UserInput {
	return services.UserInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Users.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, listOf(toUserDTOs(users)))
}

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !decodeJSON(w, r, &req) {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	user, err := s.Users.Create(r.Context(), req.input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toUserDTO(user))
}

func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.Users.Get(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserDTO(user))
}

func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !decodeJSON(w, r, &req) {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	user, err := s.Users.Update(r.Context(), chi.URLParam(r, "userId"), req.input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserDTO(user))
}

func (s *Server) SetUserActive(w http.ResponseWriter, r *http.Request) {
	var req ActiveRequest
	if !decodeJSON(w, r, &req) || req.Active == nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	user, err := s.Users.SetActive(r.Context(), CurrentUserID(r), chi.URLParam(r, "userId"), *req.Active)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserDTO(user))
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.Users.Delete(r.Context(), CurrentUserID(r), chi.URLParam(r, "userId")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
