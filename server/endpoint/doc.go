// Package endpoint provides Gin handlers that answer probes from the
// published state of a component tree.
package endpoint
