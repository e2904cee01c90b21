package http

import (
	"net/http"
	"strings"
)

type ifscResponse struct {
	IFSC     string `json:"ifsc"`
	BankName string `json:"bankName"`
	Branch   string `json:"branch"`
	Found    bool   `json:"found"`
}

// handleIFSC never fails: an unknown code or an unreachable lookup service
// yields an empty result the client can fill in by hand.
func (s *Server) handleIFSC(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(sanitizeInput(pathVar(r, "code")))
	resp := ifscResponse{IFSC: code}
	if s.deps.IFSC != nil {
		d := s.deps.IFSC.Lookup(r.Context(), code)
		resp.BankName, resp.Branch, resp.Found = d.BankName, d.Branch, !d.Empty()
	}
	NewJSONResponse().Data(resp).Write(w)
}
