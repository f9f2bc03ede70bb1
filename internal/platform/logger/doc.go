// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Request-scoped loggers travel in the context:
// middleware stores one with WithLogger and everything below reads it back
// with FromContext.
package logger
