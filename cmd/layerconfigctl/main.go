package main

import (
	"context"

	"github.com/houmingc/qutim/backend"
	"github.com/houmingc/qutim/backend/jsonbackend"
	"github.com/houmingc/qutim/backend/yamlbackend"

	"github.com/scott-cotton/cli"
)

// registerBackends wires every format backend into the process-wide
// registry before any subcommand runs. Registration order matters:
// the first one registered is the default used when a file's
// extension doesn't match any registered backend, and YAML is this
// tool's default.
func registerBackends() {
	for _, b := range []backend.Backend{yamlbackend.New(), jsonbackend.New()} {
		if err := backend.Register(b); err != nil {
			panic(err)
		}
	}
}

func main() {
	registerBackends()
	cli.MainContext(context.Background(), MainCommand())
}
