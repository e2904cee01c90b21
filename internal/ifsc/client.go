// Package ifsc resolves Indian Financial System Codes to a bank and branch.
package ifsc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ibms/internal/cache"
	applog "ibms/internal/log"
)

const (
	DefaultBaseURL = "https://ifsc.razorpay.com"
	// CodeLength is the only length looked up; shorter input is still being typed.
	CodeLength = 11

	cacheSize = 512
	cacheTTL  = 24 * time.Hour
	// maxBody caps how much of a lookup response is read.
	maxBody = 64 << 10
)

// Details is what a lookup fills into a bank account form. Both fields are
// empty when the code is unknown or the lookup failed.
type Details struct {
	BankName string `json:"bankName"`
	Branch   string `json:"branch"`
}

// Empty reports whether the lookup produced nothing.
func (d Details) Empty() bool {
	return d.BankName == "" && d.Branch == ""
}

type apiResponse struct {
	Bank   string `json:"BANK"`
	Branch string `json:"BRANCH"`
}

// Client looks codes up against a razorpay-compatible IFSC service.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.LRUCache[Details]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		cache:   cache.NewLRUCache[Details](cacheSize, cacheTTL),
	}
}

// Cache exposes the lookup cache for cleanup and stats.
func (c *Client) Cache() *cache.LRUCache[Details] {
	return c.cache
}

// Lookup never fails: codes that are not CodeLength characters, unknown codes
// and transport errors all produce empty Details. Failures are logged at warn.
func (c *Client) Lookup(ctx context.Context, code string) Details {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != CodeLength {
		return Details{}
	}
	if d, ok := c.cache.Get(code); ok {
		return d
	}

	d, err := c.fetch(ctx, code)
	if err != nil {
		slog.WarnContext(ctx, "IFSC lookup failed",
			applog.FieldComponent, applog.ComponentIFSC,
			applog.FieldIFSC, code,
			applog.FieldError, err)
		return Details{}
	}
	c.cache.Set(code, d)
	return d
}

func (c *Client) fetch(ctx context.Context, code string) (Details, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(code), nil)
	if err != nil {
		return Details{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Details{}, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	// An unknown code is an answer, not a failure; cache it as empty.
	if resp.StatusCode == http.StatusNotFound {
		return Details{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Details{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body); err != nil {
		return Details{}, fmt.Errorf("decode response: %w", err)
	}
	return Details{BankName: body.Bank, Branch: body.Branch}, nil
}
