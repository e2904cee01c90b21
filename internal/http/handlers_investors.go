package http

import (
	"net/http"

	"ibms/internal/core"
)

func (s *Server) handleListInvestors(w http.ResponseWriter, r *http.Request) {
	investors, err := s.deps.Investors.List(r.Context())
	if err != nil {
		writeError(w, r, "list investors", err)
		return
	}
	NewJSONResponse().Data(investorTable.Apply(investors, listQuery(r))).Write(w)
}

func (s *Server) handleGetInvestor(w http.ResponseWriter, r *http.Request) {
	inv, err := s.deps.Investors.Get(r.Context(), pathVar(r, "id"))
	if err != nil {
		writeError(w, r, "get investor", err)
		return
	}
	NewJSONResponse().Data(inv).Write(w)
}

func (s *Server) handleCreateInvestor(w http.ResponseWriter, r *http.Request) {
	var inv core.Investor
	if err := decodeJSON(w, r, &inv); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	created, err := s.deps.Investors.Create(r.Context(), inv)
	if err != nil {
		writeError(w, r, "create investor", err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Message("investor created").
		Header("Location", "/api/investors/"+created.ID).
		Data(created).
		Write(w)
}

func (s *Server) handleUpdateInvestor(w http.ResponseWriter, r *http.Request) {
	var inv core.Investor
	if err := decodeJSON(w, r, &inv); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	updated, err := s.deps.Investors.Update(r.Context(), pathVar(r, "id"), inv)
	if err != nil {
		writeError(w, r, "update investor", err)
		return
	}
	NewJSONResponse().Message("investor updated").Data(updated).Write(w)
}

func (s *Server) handleDeleteInvestor(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Investors.Delete(r.Context(), pathVar(r, "id")); err != nil {
		writeError(w, r, "delete investor", err)
		return
	}
	NewJSONResponse().Message("investor deleted").Write(w)
}

func (s *Server) handleAddInvestment(w http.ResponseWriter, r *http.Request) {
	var deal core.Investment
	if err := decodeJSON(w, r, &deal); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	created, err := s.deps.Investors.AddInvestment(r.Context(), pathVar(r, "id"), deal)
	if err != nil {
		writeError(w, r, "add investment", err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Message("investment added").Data(created).Write(w)
}

func (s *Server) handleUpdateInvestment(w http.ResponseWriter, r *http.Request) {
	var deal core.Investment
	if err := decodeJSON(w, r, &deal); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	updated, err := s.deps.Investors.UpdateInvestment(r.Context(), pathVar(r, "id"), pathVar(r, "invId"), deal)
	if err != nil {
		writeError(w, r, "update investment", err)
		return
	}
	NewJSONResponse().Message("investment updated").Data(updated).Write(w)
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Investors.DeleteInvestment(r.Context(), pathVar(r, "id"), pathVar(r, "invId")); err != nil {
		writeError(w, r, "delete investment", err)
		return
	}
	NewJSONResponse().Message("investment deleted").Write(w)
}
