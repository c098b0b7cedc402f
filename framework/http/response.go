package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/km-arc/go-bootstrap/framework/cache"
)

// ── Errors ───────────────────────────────────────────────────────────────────

// StatusError carries the HTTP status an admin failure is reported with.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// StatusOf maps err to the status of its response: a StatusError keeps its
// own, an unknown cache control is 404, anything else is 500.
func StatusOf(err error) int {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return se.Status
	case errors.Is(err, cache.ErrUnknownControl):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ── Response ─────────────────────────────────────────────────────────────────

// Response wraps http.ResponseWriter with the JSON envelope of the admin
// routes: {"data": ...} on success, {"message": ...} on failure.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// JSON sends v with status.
func (res *Response) JSON(status int, v any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(v)
}

// Success sends 200 with v as data.
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, map[string]any{"data": v})
}

// Fail sends err with the status StatusOf picks and returns that status.
//
//	res.Fail(&StatusError{Status: http.StatusNotFound, Message: "no definitions for [mail.Transport]"})
func (res *Response) Fail(err error) int {
	status := StatusOf(err)
	res.JSON(status, map[string]any{"message": err.Error()})
	return status
}

// Unauthorized sends 401.
func (res *Response) Unauthorized() {
	res.Fail(&StatusError{Status: http.StatusUnauthorized, Message: "Unauthenticated."})
}
