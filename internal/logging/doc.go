// Package logging assembles the structured slog loggers used across fstop.
//
// It centralizes level and output plumbing and exposes small attribute
// helpers so components emit data with the same shape. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
