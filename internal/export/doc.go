// Package export renders segment lists into the sidecar files consumed by the
// OCR step: an SRT timing template and a per-frame timestamp table.
package export
