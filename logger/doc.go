// Package logger provides structured logging for pipekit using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields. The pipeline engine logs
// through the "pipeline" component logger unless one is supplied explicitly.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("pipeline")
//	log.Debug("pipe failed", logger.Fields(logger.FieldPipe, "parse"))
package logger
