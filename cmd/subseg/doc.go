// Package main hosts the subseg CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into segmentation
// runs, batch runs, run-history queries, preflight checks, and configuration
// scaffolding. It centralizes configuration resolution and logging setup so
// subcommands can focus on presentation.
//
// Keep this package lean: new behavior belongs in the internal packages first
// and is surfaced here through dedicated commands or flags.
package main
