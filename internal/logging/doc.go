// Package logging assembles structured slog loggers and formatting helpers used
// across melodicsim.
//
// It owns the console (key=value) and JSON handlers, tees console output to
// an optional JSON log file, and exposes context helpers that tag every line
// of a run with its run_id. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every command
// emits records with the same field names.
package logging
