// Package server provides the HTTP server that exposes a component tree to
// orchestrators.
//
// The server is itself a component: Initialize binds the port and Shutdown
// drains in-flight requests. RegisterStateEndpoints mounts the probes from
// server/endpoint:
//
//   - /health: state tree of the root, 200 while OK or DEGRADED
//   - /ready: readiness of the root
//   - /live: process liveness
//   - /metrics: Prometheus gauges for every node of the tree
package server
