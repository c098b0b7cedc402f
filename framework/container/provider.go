package container

import "sort"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider binds a group of services, classes or functions into the
// container.
//
// Register runs when the provider is added and must not resolve anything.
// Boot runs after every provider is registered, so it may resolve other
// services and build definitions.
//
//	type MailServiceProvider struct{ container.BaseProvider }
//
//	func (p *MailServiceProvider) Register(app *container.Container) {
//	    app.Class("mail.SmtpTransport").Constructs(mail.NewSmtpTransport)
//	}
//
//	func (p *MailServiceProvider) Boot(app *container.Container) {
//	    pool := container.Resolve[*cache.Pool](app, "cache.Pool")
//	    pool.Add(mail.NewQueueControl())
//	}
type ServiceProvider interface {
	Register(app *Container)
	Boot(app *Container)

	// Provides returns the abstracts a deferred provider binds.
	Provides() []string

	// IsDeferred reports whether Register waits until one of the Provides
	// abstracts is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with no-op Boot, Provides and
// IsDeferred.
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(app *container.Container) { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)  {}
func (p *BaseProvider) Provides() []string { return nil }
func (p *BaseProvider) IsDeferred() bool   { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers and boots ServiceProviders, including
// deferred ones.
type ProviderRegistry struct {
	app        *Container
	eager      []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
	// abstract → deferred provider not loaded yet
	pending map[string]ServiceProvider
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
		pending:    make(map[string]ServiceProvider),
	}
}

// Register adds providers in order. Eager providers register at once, and
// boot at once when the registry is already booted. A provider added twice
// is ignored.
func (r *ProviderRegistry) Register(providers ...ServiceProvider) {
	for _, provider := range providers {
		if r.registered[provider] {
			continue
		}
		r.registered[provider] = true

		if provider.IsDeferred() {
			r.interceptDeferred(provider)
			continue
		}

		provider.Register(r.app)
		r.eager = append(r.eager, provider)
		if r.booted {
			provider.Boot(r.app)
		}
	}
}

// interceptDeferred registers a lazy binding for each deferred abstract.
// The first Get of any of them drops the lazy bindings, then registers (and
// boots) the provider. The provider may bind the abstract itself or only
// bind the classes its definitions need.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	for _, abstract := range provider.Provides() {
		abs := abstract
		r.pending[abs] = provider
		r.app.Bind(abs, func(c *Container) any {
			r.load(provider)
			return c.Make(abs)
		})
	}
}

func (r *ProviderRegistry) load(provider ServiceProvider) {
	loaded := true
	for abs, p := range r.pending {
		if p == provider {
			delete(r.pending, abs)
			r.app.Forget(abs)
			loaded = false
		}
	}
	if loaded {
		return
	}
	provider.Register(r.app)
	if r.booted {
		provider.Boot(r.app)
	}
}

// Boot calls Boot on all eager providers, once.
func (r *ProviderRegistry) Boot() {
	if r.booted {
		return
	}
	r.booted = true
	for _, provider := range r.eager {
		provider.Boot(r.app)
	}
}

// Booted returns true if Boot has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns the eager providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }

// Deferred returns the abstracts whose deferred provider is not loaded yet,
// sorted.
func (r *ProviderRegistry) Deferred() []string {
	out := make([]string, 0, len(r.pending))
	for abs := range r.pending {
		out = append(out, abs)
	}
	sort.Strings(out)
	return out
}
