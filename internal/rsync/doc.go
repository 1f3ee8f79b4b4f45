// Package rsync wraps the rsync CLI as the checksum-verified copy step of a
// session move.
//
// The Client always runs in archive, verbose and checksum mode (-avc). Trial
// execution (--dry-run) and deleting source files after a verified copy
// (--remove-source-files) are independent options chosen by the caller.
// Command execution goes through an Executor so tests can script results
// without a real rsync binary.
package rsync
