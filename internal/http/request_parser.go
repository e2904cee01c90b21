package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"ibms/internal/table"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// errBadBody is returned for bodies that are not the expected JSON document.
var errBadBody = errors.New("invalid request body")

// decodeJSON reads a single JSON document from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return fmt.Errorf("%w: content type must be application/json", errBadBody)
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: body exceeds %d bytes", errBadBody, maxErr.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty body", errBadBody)
		default:
			return fmt.Errorf("%w: %v", errBadBody, err)
		}
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON document", errBadBody)
	}
	return nil
}

// listQuery reads the table parameters of a list request.
func listQuery(r *http.Request) table.Query {
	q := table.ParseQuery(r.URL.Query())
	q.Search = sanitizeInput(q.Search)
	return q
}

// pathVar returns a route variable.
func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// bearerToken extracts the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
