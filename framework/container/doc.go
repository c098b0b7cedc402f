// Package container builds the instances described by a dependency registry
// and hosts the Service Provider system.
//
// # Overview
//
// Definitions name classes, methods and functions by string. Go has no
// runtime constructor lookup, so each name is bound to a Go function once at
// startup; the container then builds instances from the definitions,
// resolving their arguments with the argument resolvers.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(registry, argument.Defaults(params))
//  2. Bind classes and functions: c.Class("mail.Mailer").Constructs(mail.New)
//  3. Register providers: providers.Register(&MyProvider{}); providers.Boot()
//  4. Resolve: mailer, err := c.Get("mail.Mailer", "")
//
// # Classes
//
//	// dependencies.yaml
//	// - class: mail.SmtpTransport
//	//   id: smtp
//	//   interfaces: mail.Transport
//	//   arguments:
//	//     - {name: host, type: parameter, properties: {key: mail.host}}
//	//   calls:
//	//     - {method: setTimeout, arguments: [{name: s, type: scalar, properties: {value: 30}}]}
//	c.Class("mail.SmtpTransport").
//	    Constructs(func(host string) *SmtpTransport { return &SmtpTransport{Host: host} })
//
// The constructor receives the constructor arguments in order. Calls run
// bound methods, or the exported method of the same name (SetTimeout).
// String values are parsed into the numeric and boolean parameter types.
//
// # Factories
//
//	// - factory: {interface: db.Factory, id: main, method: connect}
//	//   interfaces: db.Connection
//
// The instance of db.Factory#main is built first; its Connect method
// produces the db.Connection.
//
// # Services built in Go
//
//	// Transient: new instance every Get
//	c.Bind("clock", func(c *container.Container) any { return time.Now })
//
//	// Singleton: created once, reused
//	c.Singleton("logger", func(c *container.Container) any {
//	    return logging.New(container.Resolve[*config.Config](c, "config"))
//	})
//
//	// Pre-built value, optionally with id
//	c.Instance("config", cfg)
//	c.InstanceNamed("mail.Transport", "null", NullTransport{})
//
//	// Alias
//	c.Alias("mail.Mailer", "mailer")
//
// Bindings and instances take precedence over definitions of the same
// interface and id, so a definition argument of type dependency can refer to
// any of them.
//
// # Resolving
//
//	raw, err := c.Get("mail.Transport", "smtp")
//	all, err := c.GetAll("mail.Transport")
//	tagged, err := c.GetByTag("mail.Transport", "network")
//
//	// Generic
//	params := container.Resolve[*config.Parameters](c, "parameters")
//	mailer, err := container.Lookup[*Mailer](c, "mail.Mailer", "")
//
// A definition that needs itself, directly or through its arguments, fails
// with ErrCircularDependency.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Class("mail.Mailer").Constructs(mail.NewMailer)
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Deferred Providers
//
// A deferred provider registers on the first default Get of an abstract it
// provides. It may bind the abstract itself or only the classes the
// definitions of that interface need.
//
//	type SmtpProvider struct{ container.BaseProvider }
//
//	func (p *SmtpProvider) IsDeferred() bool   { return true }
//	func (p *SmtpProvider) Provides() []string { return []string{"mail.Transport"} }
//	func (p *SmtpProvider) Register(app *container.Container) {
//	    app.Class("mail.SmtpTransport").Constructs(mail.NewSmtpTransport)
//	}
package container
