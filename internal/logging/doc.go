// Package logging assembles the structured slog loggers used across rcsarchive.
//
// It owns the console and JSON handlers, the fan-out plumbing that writes the
// same line to the terminal and the rotated audit log file, and the helpers
// that keep warnings and errors carrying an event type, a hint, and an impact
// statement. A no-op logger is provided for tests and wiring code that cannot
// fail.
//
// Prefer these constructors over hand-rolled slog setup so every discovery,
// skip, move, and failure decision lands in the audit log with the same shape.
package logging
