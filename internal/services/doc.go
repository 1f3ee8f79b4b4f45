// Package services defines shared utilities consumed by the archive runner and
// the external tool adapters.
//
// Key responsibilities:
//   - Context helpers that stamp the run identifier and current subject for
//     logging.
//   - Structured error markers plus the Wrap helper that let callers tell a
//     setup failure (non-zero exit) from a per-session failure (logged, run
//     continues).
package services
