// Package logging assembles structured slog loggers and formatting helpers
// used across reelpost components.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so workflow code can
// automatically tag log lines with artifact IDs, stages, and batch IDs. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
