// Package providers binds the core services of a system into its container.
package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-bootstrap/framework/cache"
	"github.com/km-arc/go-bootstrap/framework/config"
	"github.com/km-arc/go-bootstrap/framework/container"
	depio "github.com/km-arc/go-bootstrap/framework/dependency/io"
	"github.com/km-arc/go-bootstrap/framework/filesystem"
	gohttp "github.com/km-arc/go-bootstrap/framework/http"
)

// Abstracts bound by the providers of this package. Definition files refer
// to them as interface of dependency arguments.
const (
	Config       = "config"
	Parameters   = "parameters"
	Logger       = "logger"
	Browser      = "filesystem.Browser"
	DependencyIO = "dependency.IO"
	CachePool    = "cache.Pool"
	// Application is the interface of the services a system runs.
	Application = "system.Application"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the process configuration and the parameters.
//
// Bound abstracts:
//   - "config"      → *config.Config
//   - "parameters"  → *config.Parameters (alias "argument.Config")
type ConfigServiceProvider struct {
	container.BaseProvider
	Config     *config.Config
	Parameters *config.Parameters
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	app.Instance(Config, p.Config)
	app.Instance(Parameters, p.Parameters)
	app.Alias(Parameters, "argument.Config")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the logger.
//
// Bound abstracts:
//   - "logger"  → *zap.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app.Instance(Logger, logger)
}

// ── DependencyServiceProvider ─────────────────────────────────────────────────

// DependencyServiceProvider binds the file browser and the dependency IO the
// container was built from.
//
// Bound abstracts:
//   - "filesystem.Browser"  → filesystem.Browser
//   - "dependency.IO"       → io.IO
type DependencyServiceProvider struct {
	container.BaseProvider
	Browser filesystem.Browser
	IO      depio.IO
}

func (p *DependencyServiceProvider) Register(app *container.Container) {
	app.Instance(Browser, p.Browser)
	app.Instance(DependencyIO, p.IO)
}

// ── CacheServiceProvider ──────────────────────────────────────────────────────

// CacheServiceProvider binds the cache control pool. Controls declared as
// definitions of interface "cache.Control" are added to it on boot.
//
// Bound abstracts:
//   - "cache.Pool"  → *cache.Pool
type CacheServiceProvider struct {
	container.BaseProvider
	Pool *cache.Pool
}

// ControlInterface is the interface of cache controls declared in
// definition files.
const ControlInterface = "cache.Control"

func (p *CacheServiceProvider) Register(app *container.Container) {
	app.Instance(CachePool, p.Pool)
}

func (p *CacheServiceProvider) Boot(app *container.Container) {
	controls, err := app.GetAll(ControlInterface)
	if err != nil {
		container.Resolve[*zap.Logger](app, Logger).Warn("cache controls not loaded", zap.Error(err))
		return
	}
	for _, c := range controls {
		if control, ok := c.(cache.Control); ok {
			p.Pool.Add(control)
		}
	}
}

// ── AdminServiceProvider ──────────────────────────────────────────────────────

// AdminServiceProvider binds the admin HTTP server as default application.
// It is deferred: nothing is built until the application is requested.
//
// Bound abstracts:
//   - "system.Application"  → *http.Server
type AdminServiceProvider struct {
	container.BaseProvider
	Addr   string
	Secret string
}

func (p *AdminServiceProvider) IsDeferred() bool   { return true }
func (p *AdminServiceProvider) Provides() []string { return []string{Application} }

func (p *AdminServiceProvider) Register(app *container.Container) {
	addr, secret := p.Addr, p.Secret
	app.Singleton(Application, func(c *container.Container) any {
		logger := container.Resolve[*zap.Logger](c, Logger)
		admin := gohttp.NewAdmin(
			container.Resolve[depio.IO](c, DependencyIO),
			container.Resolve[*cache.Pool](c, CachePool),
			secret,
			logger,
		)
		return gohttp.NewServer(addr, admin.Handler(), logger)
	})
}
