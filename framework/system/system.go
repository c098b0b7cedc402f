// Package system bootstraps an application: it discovers the modules, reads
// the parameters and the dependency definitions of the environment, and
// builds the container from them.
//
//	sys, err := system.New(system.Options{Config: config.Load()})
//	c, err := sys.Container()
//	err = sys.Service(ctx, "")
package system

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/go-bootstrap/framework/cache"
	"github.com/km-arc/go-bootstrap/framework/config"
	"github.com/km-arc/go-bootstrap/framework/container"
	"github.com/km-arc/go-bootstrap/framework/dependency/argument"
	depio "github.com/km-arc/go-bootstrap/framework/dependency/io"
	"github.com/km-arc/go-bootstrap/framework/filesystem"
	"github.com/km-arc/go-bootstrap/framework/providers"
)

const (
	// DirectoryConfig holds the parameter and definition files of the
	// application and of every module.
	DirectoryConfig = "config"

	ParamApplication = "system.application"
	ParamName        = "system.name"
	ParamSecret      = "system.secret"
)

// DependencyFiles are the definition files read from DirectoryConfig, in
// this order.
var DependencyFiles = []string{"dependencies.yaml", "dependencies.json", "dependencies.xml"}

// ParameterFile is the parameter file read from DirectoryConfig.
const ParameterFile = "parameters.yaml"

// ErrServiceRunning is returned by Service while another service runs.
var ErrServiceRunning = errors.New("system: a service is already running")

// Application is a service the system can run.
type Application interface {
	Service(ctx context.Context) error
}

// Options configures New.
type Options struct {
	// Config defaults to config.Load().
	Config *config.Config
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Environment defaults to Config.App.Env, then "dev".
	Environment string
	// Initializers default to a DirectoryInitializer over Config.App.Modules.
	Initializers []Initializer
	// Providers are registered after the core providers.
	Providers []container.ServiceProvider
}

// System is a bootstrapped application.
type System struct {
	cfg         *config.Config
	logger      *zap.Logger
	environment string
	browser     *filesystem.DirectoryBrowser

	params         *config.Parameters
	parameterCache *config.CachedParameterIO

	parserIO        *depio.ParserIO
	dependencyCache *depio.CachedIO

	pool      *cache.Pool
	providers []container.ServiceProvider

	once      sync.Once
	container *container.Container
	err       error

	mu      sync.Mutex
	service string

	secretMu sync.Mutex
}

// New runs the initializers and reads the parameters. Definitions are read
// on the first call of Container.
func New(opts Options) (*System, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Load()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	env := opts.Environment
	if env == "" {
		env = cfg.App.Env
	}
	if env == "" {
		env = "dev"
	}

	s := &System{
		cfg:         cfg,
		logger:      logger,
		environment: env,
		browser:     filesystem.NewDirectoryBrowser(cfg.App.Root),
		pool:        cache.NewPool(logger),
		providers:   opts.Providers,
	}

	initializers := opts.Initializers
	if initializers == nil {
		initializers = []Initializer{&DirectoryInitializer{Directory: cfg.App.Modules}}
	}
	for _, i := range initializers {
		if err := i.Initialize(s); err != nil {
			return nil, err
		}
	}

	if err := s.loadParameters(); err != nil {
		return nil, err
	}
	s.loadDependencyIO()

	s.pool.Add(cache.NewDependencyControl(s.dependencyCache, s.params))
	s.pool.Add(cache.NewParameterControl(s.parameterCache))

	logger.Debug("system initialized",
		zap.String("environment", env),
		zap.Int("modules", len(s.browser.IncludeDirectories())),
	)
	return s, nil
}

// CacheFile returns the handle of name in the cache directory of the
// environment.
func (s *System) CacheFile(name string) filesystem.File {
	dir := s.cfg.Cache.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.browser.ApplicationDirectory().Path(), dir)
	}
	return filesystem.NewFile(filepath.Join(dir, s.environment, name))
}

func (s *System) loadParameters() error {
	var io config.ParameterIO
	parserIO := config.NewParserParameterIO(s.browser, ParameterFile, DirectoryConfig)
	parserIO.SetEnvironment(s.environment)
	io = parserIO
	if s.cfg.Cache.Parameters {
		s.parameterCache = config.NewCachedParameterIO(parserIO, s.CacheFile(ParameterFile), s.logger)
		io = s.parameterCache
	}

	values, err := io.Parameters()
	if err != nil {
		return err
	}
	s.params = config.NewParameters(values)
	if s.cfg.Cache.Dependencies && s.params.Get(cache.ParamDependencies, nil) == nil {
		s.params.Set(cache.ParamDependencies, true)
	}
	return nil
}

func (s *System) loadDependencyIO() {
	s.parserIO = depio.NewParserIO(s.browser, DirectoryConfig, DependencyFiles...)
	s.parserIO.SetEnvironment(s.environment)
	s.dependencyCache = depio.NewCachedIO(s.parserIO, s.CacheFile("dependencies.yaml"), s.logger)
}

// ── Accessors ─────────────────────────────────────────────────────────────────

func (s *System) Config() *config.Config                { return s.cfg }
func (s *System) Logger() *zap.Logger                   { return s.logger }
func (s *System) Environment() string                   { return s.environment }
func (s *System) Browser() *filesystem.DirectoryBrowser { return s.browser }
func (s *System) Parameters() *config.Parameters        { return s.params }
func (s *System) CachePool() *cache.Pool                { return s.pool }

// DependencyIO returns the IO definitions are read from: the cache when
// parameter system.dependencies.cache is set, the definition files
// otherwise.
func (s *System) DependencyIO() depio.IO {
	if s.params.GetBool(cache.ParamDependencies, false) {
		return s.dependencyCache
	}
	return s.parserIO
}

// DependencyCache returns the cache of the definitions, used or not.
func (s *System) DependencyCache() *depio.CachedIO { return s.dependencyCache }

// Name returns parameter system.name, defaulting to the configured
// application name.
func (s *System) Name() string {
	return s.params.GetString(ParamName, s.cfg.App.Name)
}

// SecretKey returns parameter system.secret. When none is set, a random key
// is generated and stored in the parameters.
func (s *System) SecretKey() string {
	s.secretMu.Lock()
	defer s.secretMu.Unlock()
	if secret := s.params.GetString(ParamSecret, ""); secret != "" {
		return secret
	}
	secret := uuid.NewString()
	s.params.Set(ParamSecret, secret)
	return secret
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container reads the definitions and builds the container on the first
// call. The core services are bound by providers; resolvers declared as
// definitions are registered last.
func (s *System) Container() (*container.Container, error) {
	s.once.Do(func() {
		s.container, s.err = s.createContainer()
	})
	return s.container, s.err
}

func (s *System) createContainer() (*container.Container, error) {
	io := s.DependencyIO()
	reg, err := io.Registry()
	if err != nil {
		return nil, fmt.Errorf("system: could not load dependencies: %w", err)
	}

	c := container.New(reg, argument.Defaults(s.params))
	c.Instance("system", s)

	registry := container.NewProviderRegistry(c)
	registry.Register(
		&providers.ConfigServiceProvider{Config: s.cfg, Parameters: s.params},
		&providers.LoggingServiceProvider{Logger: s.logger},
		&providers.DependencyServiceProvider{Browser: s.browser, IO: io},
		&providers.CacheServiceProvider{Pool: s.pool},
		&providers.AdminServiceProvider{Addr: s.cfg.App.Addr, Secret: s.SecretKey()},
	)
	registry.Register(s.providers...)
	registry.Boot()

	if err := c.RegisterResolvers(); err != nil {
		return nil, err
	}
	s.logger.Debug("container built",
		zap.Int("definitions", reg.Len()),
		zap.Strings("resolvers", c.Resolvers().Types()),
		zap.Int("bindings", len(c.Bindings())),
		zap.Strings("deferred", registry.Deferred()),
	)
	return c, nil
}

// ── Service ───────────────────────────────────────────────────────────────────

// Service runs the application registered as system.Application with id,
// or with the id of parameter system.application when id is empty. Only one
// service runs at a time.
func (s *System) Service(ctx context.Context, id string) error {
	if id == "" {
		id = s.params.GetString(ParamApplication, "")
	}

	s.mu.Lock()
	if s.service != "" {
		running := s.service
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrServiceRunning, running)
	}
	s.service = providers.Application + "#" + id
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.service = ""
		s.mu.Unlock()
	}()

	c, err := s.Container()
	if err != nil {
		return err
	}
	app, err := container.Lookup[Application](c, providers.Application, id)
	if err != nil {
		return err
	}
	s.logger.Info("service started", zap.String("application", id), zap.String("name", s.Name()))
	return app.Service(ctx)
}
