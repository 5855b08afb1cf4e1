// Package logging assembles structured slog loggers for the shell.
//
// It owns the console and JSON handlers, level and output plumbing, the
// event_type/error_hint/impact conventions for warnings and errors, retention
// pruning of old shell logs, and a no-op logger for tests and wiring code
// that cannot fail.
package logging
