// Package bootstrap hosts a statekit component tree inside a process.
//
// It loads typed configuration, discovers domain state managers, wires them
// into a hierarchy, initializes the root and shuts it down again on
// SIGINT/SIGTERM. Optionally it serves the health, readiness, liveness and
// metrics endpoints of the root and exports lifecycle telemetry over OTLP.
//
// # Quick Start
//
//	cfg, err := config.Load[MyConfig]("my-service")
//	app, err := bootstrap.NewApp(cfg)
//	app.Discover(root, users, billing)
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
