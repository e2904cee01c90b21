package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"ibms/internal/export"
	"ibms/internal/rollup"
)

// dashboardResponse pairs the raw figures with their display strings in the
// mode the client asked for with ?format=.
type dashboardResponse struct {
	Stats     rollup.DashboardStats `json:"stats"`
	Mode      rollup.Mode           `json:"mode"`
	Formatted map[string]string     `json:"formatted"`
}

type overallResponse struct {
	rollup.OverallStats
	Mode      rollup.Mode       `json:"mode"`
	Formatted map[string]string `json:"formatted"`
}

func formatAll(mode rollup.Mode, values map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = rollup.Format(v, mode)
	}
	return out
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Reports.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, "dashboard", err)
		return
	}
	mode := rollup.ParseMode(r.URL.Query().Get("format"))
	NewJSONResponse().Data(dashboardResponse{
		Stats: stats,
		Mode:  mode,
		Formatted: formatAll(mode, map[string]decimal.Decimal{
			"totalFunds":       stats.TotalFunds,
			"recentFunds":      stats.RecentFunds,
			"monthlyLiability": stats.Liability.TotalMonthly,
			"projectedAnnual":  stats.Liability.ProjectedAnnual,
		}),
	}).Write(w)
}

func (s *Server) handleOverallReport(w http.ResponseWriter, r *http.Request) {
	overall, err := s.deps.Reports.Overall(r.Context())
	if err != nil {
		writeError(w, r, "overall report", err)
		return
	}
	mode := rollup.ParseMode(r.URL.Query().Get("format"))
	NewJSONResponse().Data(overallResponse{
		OverallStats: overall,
		Mode:         mode,
		Formatted: formatAll(mode, map[string]decimal.Decimal{
			"totalCapital":     overall.TotalCapital,
			"averageTicket":    overall.AverageTicket,
			"monthlyLiability": overall.Liability.TotalMonthly,
			"projectedAnnual":  overall.Liability.ProjectedAnnual,
		}),
	}).Write(w)
}

func (s *Server) handleInvestmentReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.deps.Reports.Investments(r.Context())
	if err != nil {
		writeError(w, r, "investment report", err)
		return
	}
	NewJSONResponse().Data(investmentReportTable.Apply(rows, listQuery(r))).Write(w)
}

func (s *Server) handleMarketerReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.deps.Reports.Marketers(r.Context())
	if err != nil {
		writeError(w, r, "marketer report", err)
		return
	}
	NewJSONResponse().Data(marketerReportTable.Apply(rows, listQuery(r))).Write(w)
}

func (s *Server) handleSubMarketorReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.deps.Reports.SubMarketors(r.Context())
	if err != nil {
		writeError(w, r, "sub-marketor report", err)
		return
	}
	NewJSONResponse().Data(subMarketorReportTable.Apply(rows, listQuery(r))).Write(w)
}

// handleExportXLSX renders the workbook in memory so a failure can still be
// answered with a JSON error.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	rep, err := s.deps.Reports.Full(r.Context())
	if err != nil {
		writeError(w, r, "export xlsx", err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, rep); err != nil {
		writeError(w, r, "export xlsx", err)
		return
	}

	name := fmt.Sprintf("ibms-report-%s.xlsx", rep.GeneratedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
