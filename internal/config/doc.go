// Package config loads, normalizes, and validates subseg configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours SUBSEG_* environment fallbacks
// from the process environment or a .env file in the working directory. The
// Config type centralizes the frame and output locations, the segmentation
// thresholds, and the logging knobs so every command resolves them the same
// way.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and range-checked thresholds.
package config
