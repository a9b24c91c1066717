// Package logger provides structured logging for the container using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. There is no package-level
// logger: callers build one and hand it to the container.
//
// # Usage
//
//	log := logger.NewDefault("media-app").WithComponent("container")
//	c := nasc.New(nasc.WithLogger(log))
package logger
