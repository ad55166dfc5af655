// Package logger provides structured logging for statekit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("hierarchy")
//	log.Info("manager linked", logger.Fields("path", "app.user", "parent", "app"))
package logger
