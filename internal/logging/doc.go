// Package logging assembles structured slog loggers and formatting helpers used
// across photoreel.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, tags every record of one CLI invocation with a session id, and
// exposes context helpers so pipeline code can tag log lines with the album
// and operation being processed. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
package logging
