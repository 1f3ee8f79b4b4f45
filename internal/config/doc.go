// Package config loads, normalizes, and validates rcsarchive configuration data.
//
// It supplies repository defaults matching the lab's Dropbox layout, expands
// user paths (including tilde shortcuts), reads TOML files, and honours the
// RCSARCHIVE_DATA_ROOT / RCSARCHIVE_ARCHIVE_ROOT environment fallbacks. The
// Config value is built once at startup and handed to the archive runner; no
// package keeps its own mutable copy.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, a parsed age threshold, and clear validation errors.
package config
