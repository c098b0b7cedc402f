package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Request wraps *http.Request with the input helpers the admin handlers use.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Query returns a trimmed query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := strings.TrimSpace(req.raw.URL.Query().Get(key))
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// RouteParam returns a chi URL parameter. Interfaces may contain escaped
// characters (mail%5CTransport), so the value is unescaped.
func (req *Request) RouteParam(key string) string {
	v := chi.URLParam(req.raw, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// BearerToken extracts the token of an Authorization header with the Bearer
// scheme, matched case-insensitively.
func (req *Request) BearerToken() string {
	scheme, token, ok := strings.Cut(req.raw.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
