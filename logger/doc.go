// Package logger provides structured logging for bloom services built on
// zerolog. It exposes a global logger for package-level convenience functions
// plus instance loggers that carry service and component context.
package logger
