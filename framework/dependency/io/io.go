// Package io builds dependency registries from definition files and keeps
// them in a cache.
//
// Three implementations of IO are provided:
//
//	// Read dependencies.yaml from every directory known to the browser.
//	src := io.NewParserIO(browser, "config", "dependencies.yaml", "dependencies.xml")
//	src.SetEnvironment("prod")
//
//	// Keep the result in a generated file.
//	cached := io.NewCachedIO(src, filesystem.NewFile("data/cache/prod/dependencies.yaml"), logger)
//	reg, err := cached.Registry()
//
//	// Serve a registry compiled with `bootstrap dependencies generate`.
//	static := io.Static(compiled.Registry)
package io

import "github.com/km-arc/go-bootstrap/framework/dependency"

// IO provides a dependency registry.
type IO interface {
	Registry() (*dependency.Registry, error)
}

// Static serves a registry built by a generated function.
type Static func() *dependency.Registry

// Registry calls the generated function.
func (s Static) Registry() (*dependency.Registry, error) {
	return s(), nil
}
