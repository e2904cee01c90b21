package http

import (
	"net/http"

	"ibms/internal/core"
)

func (s *Server) handleListBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := s.deps.Admin.ListBanks(r.Context())
	if err != nil {
		writeError(w, r, "list admin banks", err)
		return
	}
	if banks == nil {
		banks = []core.BankAccount{}
	}
	NewJSONResponse().Data(banks).Write(w)
}

func (s *Server) handleCreateBank(w http.ResponseWriter, r *http.Request) {
	var b core.BankAccount
	if err := decodeJSON(w, r, &b); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	created, err := s.deps.Admin.CreateBank(r.Context(), b)
	if err != nil {
		writeError(w, r, "create admin bank", err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Message("bank account added").Data(created).Write(w)
}

func (s *Server) handleUpdateBank(w http.ResponseWriter, r *http.Request) {
	var b core.BankAccount
	if err := decodeJSON(w, r, &b); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	updated, err := s.deps.Admin.UpdateBank(r.Context(), pathVar(r, "id"), b)
	if err != nil {
		writeError(w, r, "update admin bank", err)
		return
	}
	NewJSONResponse().Message("bank account updated").Data(updated).Write(w)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Admin.Profile(r.Context())
	if err != nil {
		writeError(w, r, "get profile", err)
		return
	}
	NewJSONResponse().Data(p).Write(w)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p core.AdminProfile
	if err := decodeJSON(w, r, &p); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	updated, err := s.deps.Admin.UpdateProfile(r.Context(), p)
	if err != nil {
		writeError(w, r, "update profile", err)
		return
	}
	NewJSONResponse().Message("profile updated").Data(updated).Write(w)
}
