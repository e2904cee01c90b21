// Package http serves the JSON API of the back-office.
//
// This file implements the builder for the response envelope shared by every
// endpoint: {"success": bool, "message": string, "data": any}.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ibms/internal/auth"
	"ibms/internal/core"
	applog "ibms/internal/log"
)

// MsgInsufficientRole is sent with 403 when a viewer attempts a write.
const MsgInsufficientRole = "insufficient role: admin required (ask an administrator to grant access)"

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building envelope responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	envelope   Envelope
}

// NewJSONResponse creates a successful 200 response.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
		envelope:   Envelope{Success: true},
	}
}

// Status sets the HTTP status code. Codes of 400 and above mark the envelope
// as unsuccessful.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	b.envelope.Success = code < 400
	return b
}

func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	b.envelope.Message = msg
	return b
}

func (b *JSONResponseBuilder) Data(data any) *JSONResponseBuilder {
	b.envelope.Data = data
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.envelope); err != nil {
		slog.Error("Failed to encode response",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldError, err)
	}
}

// ErrorResponse creates an unsuccessful response carrying message.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Message(message)
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func UnauthorizedError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, message).Header("WWW-Authenticate", `Bearer realm="ibms"`)
}

func ForbiddenError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusForbidden, message)
}

// InternalServerError hides the cause; it is logged by the caller.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal server error")
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(allowedMethods string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Header("Allow", allowedMethods)
}

// statusFor maps domain errors onto HTTP status codes and log error types.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, applog.ErrorTypeNotFound
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrInvalidReference),
		errors.Is(err, core.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, applog.ErrorTypeValidation
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict, applog.ErrorTypeConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrRevoked):
		return http.StatusUnauthorized, applog.ErrorTypeAuth
	}
	return http.StatusInternalServerError, applog.ErrorTypeInternal
}

// writeError reports err to the client. Domain errors pass their message
// through; anything else is logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, errType := statusFor(err)
	logger := applog.FromContext(r.Context())
	fields := applog.NewFields().WithOperation(op).WithError(err)
	fields[applog.FieldErrorType] = errType
	if status == http.StatusInternalServerError {
		fields[applog.FieldMethod] = r.Method
		fields[applog.FieldPath] = r.URL.Path
		logger.ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
		InternalServerError().Write(w)
		return
	}

	fields[applog.FieldStatusCode] = status
	logger.DebugContext(r.Context(), "Request rejected", fields.ToSlice()...)
	if status == http.StatusUnauthorized {
		UnauthorizedError(err.Error()).Write(w)
		return
	}
	ErrorResponse(status, err.Error()).Write(w)
}
