package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ibms/internal/auth"
	"ibms/internal/cache"
	"ibms/internal/core"
	"ibms/internal/ifsc"
	"ibms/internal/middleware/trace"
	"ibms/internal/ports/memory"
	"ibms/internal/services"
)

type fakeIFSC map[string]ifsc.Details

func (f fakeIFSC) Lookup(_ context.Context, code string) ifsc.Details { return f[code] }

type testEnv struct {
	srv    *Server
	store  *memory.Store
	admin  string
	viewer string
}

func newTestEnv(t *testing.T, rateLimit int) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	gen := &services.Generation{}

	authSvc := auth.NewService(store, auth.NewTokens(strings.Repeat("k", 32), time.Hour), nil)
	if _, err := authSvc.EnsureBootstrapAdmin(ctx, "admin@horizon-ibms.com", "admin-pass"); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}
	hash, err := auth.HashPassword("viewer-pass")
	if err != nil {
		t.Fatal(err)
	}
	viewer := core.Admin{ID: "v1", Email: "viewer@horizon-ibms.com", PasswordHash: hash, Role: core.RoleViewer, IsActive: true}
	if err := store.CreateAdmin(ctx, viewer); err != nil {
		t.Fatal(err)
	}

	reports := services.NewReportService(store, gen, services.ReportOptions{CacheTTL: time.Minute})
	srv := NewServer(":0", Deps{
		Investors:  services.NewInvestorService(store, nil, gen),
		Portfolios: services.NewPortfolioService(store, nil, gen),
		Admin:      services.NewAdminService(store, nil, gen),
		Reports:    reports,
		Auth:       authSvc,
		IFSC: fakeIFSC{
			"HDFC0001234": {BankName: "HDFC Bank", Branch: "Andheri East"},
		},
		Store:              store,
		CacheStats:         map[string]func() cache.Stats{"reports": reports.CacheStats},
		RateLimitPerMinute: rateLimit,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	env := &testEnv{srv: srv, store: store}
	if rateLimit >= 10 {
		env.admin = env.login(t, "admin@horizon-ibms.com", "admin-pass")
		env.viewer = env.login(t, "viewer@horizon-ibms.com", "viewer-pass")
	}
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: email, Password: password})
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, rr.Code, rr.Body.String())
	}
	var res struct {
		Data auth.LoginResult `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	return res.Data.Token
}

// data decodes the envelope's data field into dst and returns the envelope.
func data(t *testing.T, rr *httptest.ResponseRecorder, dst any) Envelope {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	if dst != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, dst); err != nil {
			t.Fatalf("decode data %s: %v", raw.Data, err)
		}
	}
	return Envelope{Success: raw.Success, Message: raw.Message}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d; body %s", rr.Code, want, rr.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, 100)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := env.do(t, http.MethodGet, path, "", nil)
		expectStatus(t, rr, http.StatusOK)
	}

	env.do(t, http.MethodGet, "/api/dashboard/stats", env.admin, nil)
	rr := env.do(t, http.MethodGet, "/metrics", "", nil)
	expectStatus(t, rr, http.StatusOK)
	var m metricsResponse
	data(t, rr, &m)
	if _, ok := m.Caches["reports"]; !ok {
		t.Errorf("metrics missing reports cache: %+v", m)
	}
	if m.Requests.TotalRequests < 3 {
		t.Errorf("requests = %d", m.Requests.TotalRequests)
	}
}

func TestMiddlewareStack(t *testing.T) {
	env := newTestEnv(t, 100)

	rr := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rr.Header().Get(trace.HeaderRequestID) == "" {
		t.Error("missing request id header")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}

	rr = env.do(t, http.MethodGet, "/.env", "", nil)
	expectStatus(t, rr, http.StatusBadRequest)

	rr = env.do(t, http.MethodGet, "/api/nope", env.admin, nil)
	expectStatus(t, rr, http.StatusNotFound)
	if e := data(t, rr, nil); e.Success {
		t.Error("404 envelope marked successful")
	}

	rr = env.do(t, http.MethodPatch, "/api/investors", env.admin, "{}")
	expectStatus(t, rr, http.StatusMethodNotAllowed)
}

func TestRateLimitOnWrites(t *testing.T) {
	env := newTestEnv(t, 1)

	bad := loginRequest{Email: "admin@horizon-ibms.com", Password: "wrong"}
	expectStatus(t, env.do(t, http.MethodPost, "/api/auth/login", "", bad), http.StatusUnauthorized)
	rr := env.do(t, http.MethodPost, "/api/auth/login", "", bad)
	expectStatus(t, rr, http.StatusTooManyRequests)
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	// Reads are never throttled.
	expectStatus(t, env.do(t, http.MethodGet, "/healthz", "", nil), http.StatusOK)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, 100)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "not.a.jwt", http.StatusUnauthorized},
		{"admin", env.admin, http.StatusOK},
		{"viewer", env.viewer, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, "/api/investors", tt.token, nil)
			expectStatus(t, rr, tt.want)
			if tt.want == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate")
			}
		})
	}

	rr := env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "admin@horizon-ibms.com", Password: "nope"})
	expectStatus(t, rr, http.StatusUnauthorized)

	rr = env.do(t, http.MethodPost, "/api/auth/login", "", `{"email":""}`)
	expectStatus(t, rr, http.StatusUnprocessableEntity)

	var me auth.Session
	data(t, env.do(t, http.MethodGet, "/api/auth/me", env.viewer, nil), &me)
	if me.Role != core.RoleViewer || me.AdminID != "v1" {
		t.Errorf("me = %+v", me)
	}

	token := env.login(t, "admin@horizon-ibms.com", "admin-pass")
	expectStatus(t, env.do(t, http.MethodPost, "/api/auth/logout", token, nil), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodGet, "/api/investors", token, nil), http.StatusUnauthorized)
	// Other sessions stay valid.
	expectStatus(t, env.do(t, http.MethodGet, "/api/investors", env.admin, nil), http.StatusOK)
}

func TestViewerCannotWrite(t *testing.T) {
	env := newTestEnv(t, 100)

	writes := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/investors"},
		{http.MethodPut, "/api/investors/i1"},
		{http.MethodDelete, "/api/portfolios/p1"},
		{http.MethodPost, "/api/portfolios/p1/sub-marketors"},
		{http.MethodPost, "/api/admin-banks"},
		{http.MethodPut, "/api/admin-banks/profile"},
	}
	for _, w := range writes {
		t.Run(w.method+" "+w.path, func(t *testing.T) {
			rr := env.do(t, w.method, w.path, env.viewer, "{}")
			expectStatus(t, rr, http.StatusForbidden)
			if got := data(t, rr, nil).Message; got != MsgInsufficientRole {
				t.Errorf("message = %q", got)
			}
		})
	}
}

func TestBookLifecycle(t *testing.T) {
	env := newTestEnv(t, 100)

	// Portfolio with one sub-marketor.
	var portfolio core.Portfolio
	rr := env.do(t, http.MethodPost, "/api/portfolios", env.admin, core.Portfolio{
		Name: "SABARI RAJAN", City: "Chennai", DefaultCommissionRate: "1", IsActive: true,
	})
	expectStatus(t, rr, http.StatusCreated)
	data(t, rr, &portfolio)
	if portfolio.ID == "" || rr.Header().Get("Location") != "/api/portfolios/"+portfolio.ID {
		t.Fatalf("created portfolio = %+v", portfolio)
	}

	var sub core.SubMarketor
	rr = env.do(t, http.MethodPost, "/api/portfolios/"+portfolio.ID+"/sub-marketors", env.admin, core.SubMarketor{
		Name: "John Doe", CommissionRate: "0.5", IsActive: true,
	})
	expectStatus(t, rr, http.StatusCreated)
	data(t, rr, &sub)

	// Investor with one deal sourced through the sub-marketor.
	deal := core.Investment{
		Amount: "5000000", InterestRate: "12", StartDate: "2024-03-10", EndDate: "2025-03-10",
		PayoutDate: "10th", PortfolioID: portfolio.ID, SubMarketorID: sub.ID,
		MarketorCommission: "1", SubMarketorCommission: "0.5",
	}
	var investor core.Investor
	rr = env.do(t, http.MethodPost, "/api/investors", env.admin, core.Investor{
		FirstName: "Rajesh", LastName: "Kumar", City: "Mumbai", Investments: []core.Investment{deal},
	})
	expectStatus(t, rr, http.StatusCreated)
	data(t, rr, &investor)
	if investor.KYCStatus != core.KYCPending || len(investor.Investments) != 1 || investor.Investments[0].ID == "" {
		t.Fatalf("created investor = %+v", investor)
	}

	t.Run("list with search", func(t *testing.T) {
		var page struct {
			Data      []core.Investor `json:"data"`
			TotalRows int             `json:"totalRows"`
		}
		data(t, env.do(t, http.MethodGet, "/api/investors?search=kumar", env.viewer, nil), &page)
		if page.TotalRows != 1 || page.Data[0].ID != investor.ID {
			t.Errorf("page = %+v", page)
		}
		data(t, env.do(t, http.MethodGet, "/api/investors?search=pune", env.viewer, nil), &page)
		if page.TotalRows != 0 {
			t.Errorf("expected no match, got %d", page.TotalRows)
		}
	})

	t.Run("portfolio totals are derived", func(t *testing.T) {
		var page struct {
			Data []map[string]any `json:"data"`
		}
		data(t, env.do(t, http.MethodGet, "/api/portfolios", env.viewer, nil), &page)
		if len(page.Data) != 1 || page.Data[0]["totalRaised"] != "5000000" || page.Data[0]["investorCount"] != float64(1) {
			t.Errorf("portfolios = %+v", page.Data)
		}
	})

	t.Run("sub-marketors carry their parent", func(t *testing.T) {
		var page struct {
			Data []services.SubMarketorView `json:"data"`
		}
		data(t, env.do(t, http.MethodGet, "/api/sub-marketors?portfolioId="+portfolio.ID, env.viewer, nil), &page)
		if len(page.Data) != 1 || page.Data[0].PortfolioName != "SABARI RAJAN" {
			t.Errorf("sub-marketors = %+v", page.Data)
		}
		data(t, env.do(t, http.MethodGet, "/api/sub-marketors?portfolioId=other", env.viewer, nil), &page)
		if len(page.Data) != 0 {
			t.Errorf("filter ignored: %+v", page.Data)
		}
	})

	t.Run("dashboard formats in the requested mode", func(t *testing.T) {
		var dash dashboardResponse
		data(t, env.do(t, http.MethodGet, "/api/dashboard/stats?format=threshold", env.viewer, nil), &dash)
		if !dash.Stats.TotalFunds.Equal(core.LenientDecimal("5000000")) || dash.Stats.TotalInvestors != 1 {
			t.Errorf("stats = %+v", dash.Stats)
		}
		if dash.Mode != "threshold" || dash.Formatted["totalFunds"] != "₹50.00 L" {
			t.Errorf("formatted = %v (%s)", dash.Formatted, dash.Mode)
		}
	})

	t.Run("investment report", func(t *testing.T) {
		var page struct {
			Data []map[string]any `json:"data"`
		}
		data(t, env.do(t, http.MethodGet, "/api/reports/investments?sort=amount&dir=desc", env.viewer, nil), &page)
		if len(page.Data) != 1 {
			t.Fatalf("rows = %+v", page.Data)
		}
		row := page.Data[0]
		if row["marketerLabel"] != "SABARI RAJAN / John Doe" || row["monthlyPayout"] != "50000" {
			t.Errorf("row = %+v", row)
		}
	})

	t.Run("other reports", func(t *testing.T) {
		for _, path := range []string{"/api/reports/overall?format=compact", "/api/reports/marketers", "/api/reports/sub-marketors"} {
			expectStatus(t, env.do(t, http.MethodGet, path, env.viewer, nil), http.StatusOK)
		}
	})

	t.Run("bad references are rejected", func(t *testing.T) {
		bad := deal
		bad.SubMarketorID = "ghost"
		rr := env.do(t, http.MethodPost, "/api/investors/"+investor.ID+"/investments", env.admin, bad)
		expectStatus(t, rr, http.StatusUnprocessableEntity)
	})

	t.Run("investment update and delete", func(t *testing.T) {
		path := "/api/investors/" + investor.ID + "/investments/" + investor.Investments[0].ID
		changed := deal
		changed.Amount = "6000000"
		var got core.Investment
		rr := env.do(t, http.MethodPut, path, env.admin, changed)
		expectStatus(t, rr, http.StatusOK)
		data(t, rr, &got)
		if got.Amount != "6000000" || got.ID != investor.Investments[0].ID {
			t.Errorf("updated = %+v", got)
		}

		// The report cache follows the mutation.
		var dash dashboardResponse
		data(t, env.do(t, http.MethodGet, "/api/dashboard/stats", env.viewer, nil), &dash)
		if !dash.Stats.TotalFunds.Equal(core.LenientDecimal("6000000")) {
			t.Errorf("stale dashboard total %s", dash.Stats.TotalFunds)
		}

		expectStatus(t, env.do(t, http.MethodDelete, path, env.admin, nil), http.StatusOK)
		expectStatus(t, env.do(t, http.MethodDelete, path, env.admin, nil), http.StatusNotFound)
	})

	t.Run("investor delete", func(t *testing.T) {
		path := "/api/investors/" + investor.ID
		expectStatus(t, env.do(t, http.MethodDelete, path, env.admin, nil), http.StatusOK)
		expectStatus(t, env.do(t, http.MethodGet, path, env.admin, nil), http.StatusNotFound)
	})

	t.Run("portfolio delete cascades sub-marketors", func(t *testing.T) {
		expectStatus(t, env.do(t, http.MethodDelete, "/api/portfolios/"+portfolio.ID, env.admin, nil), http.StatusOK)
		var page struct {
			TotalRows int `json:"totalRows"`
		}
		data(t, env.do(t, http.MethodGet, "/api/sub-marketors", env.viewer, nil), &page)
		if page.TotalRows != 0 {
			t.Errorf("sub-marketors left: %d", page.TotalRows)
		}
	})
}

func TestValidationErrors(t *testing.T) {
	env := newTestEnv(t, 100)

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"malformed json", "/api/investors", `{"firstName":`, http.StatusBadRequest},
		{"missing last name", "/api/investors", core.Investor{FirstName: "Anita"}, http.StatusUnprocessableEntity},
		{"bad pan", "/api/investors", core.Investor{FirstName: "Anita", LastName: "Shah", PAN: "123"}, http.StatusUnprocessableEntity},
		{"unknown portfolio", "/api/investors", core.Investor{FirstName: "Anita", LastName: "Shah", Investments: []core.Investment{{
			Amount: "100000", InterestRate: "10", StartDate: "2024-01-01", EndDate: "2025-01-01", PortfolioID: "ghost",
		}}}, http.StatusUnprocessableEntity},
		{"portfolio without name", "/api/portfolios", core.Portfolio{}, http.StatusUnprocessableEntity},
		{"sub-marketor of missing portfolio", "/api/portfolios/ghost/sub-marketors", core.SubMarketor{Name: "X"}, http.StatusNotFound},
		{"bank without holder", "/api/admin-banks", core.BankAccount{AccountNumber: "12345678"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, tt.path, env.admin, tt.body)
			expectStatus(t, rr, tt.want)
			if data(t, rr, nil).Success {
				t.Error("error envelope marked successful")
			}
		})
	}
}

func TestAdminBanksAndProfile(t *testing.T) {
	env := newTestEnv(t, 100)

	var bank core.BankAccount
	rr := env.do(t, http.MethodPost, "/api/admin-banks", env.admin, core.BankAccount{
		AccountHolderName: "Horizon Capital", AccountNumber: "50100012345678", IFSC: "HDFC0001234", IsActive: true,
	})
	expectStatus(t, rr, http.StatusCreated)
	data(t, rr, &bank)

	bank.Branch = "Andheri East"
	expectStatus(t, env.do(t, http.MethodPut, "/api/admin-banks/"+bank.ID, env.admin, bank), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodPut, "/api/admin-banks/ghost", env.admin, bank), http.StatusNotFound)

	var banks []core.BankAccount
	data(t, env.do(t, http.MethodGet, "/api/admin-banks", env.viewer, nil), &banks)
	if len(banks) != 1 || banks[0].Branch != "Andheri East" {
		t.Errorf("banks = %+v", banks)
	}

	rr = env.do(t, http.MethodPut, "/api/admin-banks/profile", env.admin, core.AdminProfile{Name: "Horizon Capital", Email: "ops@horizon-ibms.com"})
	expectStatus(t, rr, http.StatusOK)
	var profile core.AdminProfile
	data(t, env.do(t, http.MethodGet, "/api/admin-banks/profile", env.viewer, nil), &profile)
	if profile.Name != "Horizon Capital" || len(profile.BankAccounts) != 1 {
		t.Errorf("profile = %+v", profile)
	}
}

func TestIFSCLookup(t *testing.T) {
	env := newTestEnv(t, 100)

	tests := []struct {
		code      string
		wantFound bool
		wantBank  string
	}{
		{"hdfc0001234", true, "HDFC Bank"},
		{"SBIN0000001", false, ""},
		{"short", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, "/api/ifsc/"+tt.code, env.viewer, nil)
			expectStatus(t, rr, http.StatusOK)
			var got ifscResponse
			data(t, rr, &got)
			if got.Found != tt.wantFound || got.BankName != tt.wantBank || got.IFSC != strings.ToUpper(tt.code) {
				t.Errorf("lookup = %+v", got)
			}
		})
	}
}

func TestExportXLSX(t *testing.T) {
	env := newTestEnv(t, 100)

	rr := env.do(t, http.MethodGet, "/api/reports/export.xlsx", env.viewer, nil)
	expectStatus(t, rr, http.StatusOK)
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename=\"ibms-report-") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	// xlsx files are zip archives.
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")) {
		t.Error("body is not a zip archive")
	}
}
