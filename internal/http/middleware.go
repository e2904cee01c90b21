package http

import (
	"errors"
	"net/http"

	"ibms/internal/auth"
	applog "ibms/internal/log"
)

// requireAuth admits requests carrying a valid, unrevoked bearer token and
// attaches the session to the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			UnauthorizedError("missing bearer token").Write(w)
			return
		}

		session, err := s.deps.Auth.Verify(r.Context(), token)
		switch {
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrRevoked):
			UnauthorizedError(err.Error()).Write(w)
			return
		case err != nil:
			// The revocation store could not answer; the token is not trusted.
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Session verification failed",
				applog.FieldErrorType, applog.ErrorTypeNetwork,
				applog.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "session store unavailable").Write(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
	})
}

// requireAdmin rejects sessions whose role cannot write.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := auth.SessionFrom(r.Context())
		if !ok {
			UnauthorizedError("missing session").Write(w)
			return
		}
		if !session.Role.CanWrite() {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Write rejected for role",
				applog.FieldAdminID, session.AdminID,
				applog.FieldRole, string(session.Role),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			ForbiddenError(MsgInsufficientRole).Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
