// Package logging assembles the structured slog loggers used by subseg.
//
// It owns the console, tint, and JSON handlers, maps configuration onto level
// and output plumbing, and exposes context-aware helpers so segmentation code
// tags log lines with the video and run being processed. A no-op logger is
// provided for tests and for wiring code that cannot fail.
package logging
