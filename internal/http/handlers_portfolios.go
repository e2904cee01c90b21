package http

import (
	"net/http"

	"ibms/internal/core"
)

func (s *Server) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	views, err := s.deps.Portfolios.List(r.Context())
	if err != nil {
		writeError(w, r, "list portfolios", err)
		return
	}
	NewJSONResponse().Data(portfolioTable.Apply(views, listQuery(r))).Write(w)
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Portfolios.Get(r.Context(), pathVar(r, "id"))
	if err != nil {
		writeError(w, r, "get portfolio", err)
		return
	}
	NewJSONResponse().Data(view).Write(w)
}

func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var p core.Portfolio
	if err := decodeJSON(w, r, &p); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	created, err := s.deps.Portfolios.Create(r.Context(), p)
	if err != nil {
		writeError(w, r, "create portfolio", err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Message("portfolio created").
		Header("Location", "/api/portfolios/"+created.ID).
		Data(created).
		Write(w)
}

func (s *Server) handleUpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	var p core.Portfolio
	if err := decodeJSON(w, r, &p); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	updated, err := s.deps.Portfolios.Update(r.Context(), pathVar(r, "id"), p)
	if err != nil {
		writeError(w, r, "update portfolio", err)
		return
	}
	NewJSONResponse().Message("portfolio updated").Data(updated).Write(w)
}

func (s *Server) handleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Portfolios.Delete(r.Context(), pathVar(r, "id")); err != nil {
		writeError(w, r, "delete portfolio", err)
		return
	}
	NewJSONResponse().Message("portfolio deleted").Write(w)
}

func (s *Server) handleAddSubMarketor(w http.ResponseWriter, r *http.Request) {
	var sm core.SubMarketor
	if err := decodeJSON(w, r, &sm); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	created, err := s.deps.Portfolios.AddSubMarketor(r.Context(), pathVar(r, "id"), sm)
	if err != nil {
		writeError(w, r, "add sub-marketor", err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Message("sub-marketor added").Data(created).Write(w)
}

func (s *Server) handleUpdateSubMarketor(w http.ResponseWriter, r *http.Request) {
	var sm core.SubMarketor
	if err := decodeJSON(w, r, &sm); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	updated, err := s.deps.Portfolios.UpdateSubMarketor(r.Context(), pathVar(r, "id"), pathVar(r, "subId"), sm)
	if err != nil {
		writeError(w, r, "update sub-marketor", err)
		return
	}
	NewJSONResponse().Message("sub-marketor updated").Data(updated).Write(w)
}

func (s *Server) handleDeleteSubMarketor(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Portfolios.DeleteSubMarketor(r.Context(), pathVar(r, "id"), pathVar(r, "subId")); err != nil {
		writeError(w, r, "delete sub-marketor", err)
		return
	}
	NewJSONResponse().Message("sub-marketor deleted").Write(w)
}

// handleListSubMarketors lists sub-marketors across portfolios, optionally
// filtered by ?portfolioId=.
func (s *Server) handleListSubMarketors(w http.ResponseWriter, r *http.Request) {
	subs, err := s.deps.Portfolios.ListSubMarketors(r.Context(), sanitizeInput(r.URL.Query().Get("portfolioId")))
	if err != nil {
		writeError(w, r, "list sub-marketors", err)
		return
	}
	NewJSONResponse().Data(subMarketorTable.Apply(subs, listQuery(r))).Write(w)
}
