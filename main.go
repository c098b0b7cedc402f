// Command bootstrap inspects and serves a module-based application: it
// lists the dependency definitions, generates the Go source of a compiled
// registry, controls the caches and runs the admin server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
