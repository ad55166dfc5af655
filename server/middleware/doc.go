// Package middleware holds the Gin middleware installed by the health
// server: panic recovery, request ids and request logging.
package middleware
