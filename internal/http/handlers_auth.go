package http

import (
	"net/http"

	"ibms/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		UnprocessableEntityError("email and password are required").Write(w)
		return
	}

	res, err := s.deps.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, "login", err)
		return
	}
	NewJSONResponse().Message("logged in").Data(res).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFrom(r.Context())
	if err := s.deps.Auth.Logout(r.Context(), session); err != nil {
		writeError(w, r, "logout", err)
		return
	}
	NewJSONResponse().Message("logged out").Write(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFrom(r.Context())
	NewJSONResponse().Data(session).Write(w)
}
