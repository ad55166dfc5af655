// Package errors provides the structured error type used across statekit.
//
// Every error carries a machine-readable code so callers can tell a wiring
// mistake (CONFIGURATION_ERROR) from a failed lifecycle hook
// (LIFECYCLE_ERROR) without string matching:
//
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // duplicate registration, ambiguous path, ...
//	}
package errors
