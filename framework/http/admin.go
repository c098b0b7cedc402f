package http

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-bootstrap/framework/cache"
	"github.com/km-arc/go-bootstrap/framework/dependency"
	depio "github.com/km-arc/go-bootstrap/framework/dependency/io"
	"github.com/km-arc/go-bootstrap/framework/routing"
)

// InterfaceSummary is one entry of GET /dependencies.
type InterfaceSummary struct {
	Interface   string   `json:"interface"`
	Definitions []string `json:"definitions"`
	Default     string   `json:"default"`
}

// Admin serves the definitions of a dependency IO and the cache controls of
// a pool.
//
//	GET  /dependencies               interfaces with their definitions
//	GET  /dependencies/{interface}   definitions of one interface (?tag= filters)
//	GET  /cache                      state of every cache control
//	POST /cache/{name}/warm          warm one control
//	POST /cache/{name}/clear         clear one control
//
// The POST routes need the secret as bearer token.
type Admin struct {
	io     depio.IO
	pool   *cache.Pool
	secret string
	logger *zap.Logger
}

// NewAdmin creates the admin handlers.
func NewAdmin(io depio.IO, pool *cache.Pool, secret string, logger *zap.Logger) *Admin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Admin{io: io, pool: pool, secret: secret, logger: logger}
}

// Routes registers the admin routes on r.
func (a *Admin) Routes(r *routing.Router) {
	r.Get("/dependencies", a.listInterfaces)
	r.Get("/dependencies/{interface}", a.listDefinitions)
	r.Get("/cache", a.listCaches)
	r.Group(func(g *routing.Router) {
		g.Middleware(BearerAuth(a.secret))
		g.Post("/cache/{name}/warm", a.cacheAction("warm", a.pool.Warm))
		g.Post("/cache/{name}/clear", a.cacheAction("clear", a.pool.Clear))
	})
}

// Handler returns a router serving the admin routes.
func (a *Admin) Handler() http.Handler {
	r := routing.New(a.logger)
	a.Routes(r)
	return r
}

func (a *Admin) registry(res *Response) (*dependency.Registry, bool) {
	reg, err := a.io.Registry()
	if err != nil {
		a.logger.Error("could not load dependencies", zap.Error(err))
		res.Fail(err)
		return nil, false
	}
	return reg, true
}

func (a *Admin) listInterfaces(w http.ResponseWriter, r *http.Request) {
	res := NewResponse(w)
	reg, ok := a.registry(res)
	if !ok {
		return
	}

	out := make([]InterfaceSummary, 0, len(reg.Interfaces()))
	for _, iface := range reg.Interfaces() {
		s := InterfaceSummary{Interface: iface, Definitions: []string{}}
		for _, d := range reg.Definitions(iface) {
			s.Definitions = append(s.Definitions, d.String())
		}
		if d, ok := reg.Default(iface); ok {
			s.Default = d.String()
		}
		out = append(out, s)
	}
	res.Success(out)
}

func (a *Admin) listDefinitions(w http.ResponseWriter, r *http.Request) {
	req, res := NewRequest(r), NewResponse(w)
	reg, ok := a.registry(res)
	if !ok {
		return
	}

	iface := req.RouteParam("interface")
	defs := reg.Definitions(iface)
	if tag := req.Query("tag"); tag != "" {
		defs = reg.Tagged(iface, tag)
	}
	if len(defs) == 0 {
		res.Fail(&StatusError{Status: http.StatusNotFound, Message: fmt.Sprintf("no definitions for [%s]", iface)})
		return
	}

	out := make([]dependency.Description, 0, len(defs))
	for _, d := range defs {
		out = append(out, dependency.Describe(d))
	}
	res.Success(out)
}

func (a *Admin) listCaches(w http.ResponseWriter, r *http.Request) {
	NewResponse(w).Success(a.pool.Status())
}

func (a *Admin) cacheAction(action string, run func(names ...string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, res := NewRequest(r), NewResponse(w)
		name := req.RouteParam("name")

		if err := run(name); err != nil {
			if res.Fail(err) >= http.StatusInternalServerError {
				a.logger.Error("cache "+action+" failed", zap.String("control", name), zap.Error(err))
			}
			return
		}

		control, _ := a.pool.Control(name)
		res.Success(cache.Status{Name: name, Enabled: control.IsEnabled(), CanToggle: control.CanToggle()})
	}
}

// ── Middleware ───────────────────────────────────────────────────────────────

// BearerAuth rejects requests whose bearer token is not secret. An empty
// secret rejects every request.
func BearerAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := NewRequest(r).BearerToken()
			if secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				NewResponse(w).Unauthorized()
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
