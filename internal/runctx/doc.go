// Package runctx carries per-run identifiers through context and classifies
// run failures so the CLI can report them with a meaningful exit status.
package runctx
