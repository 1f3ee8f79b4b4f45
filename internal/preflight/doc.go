// Package preflight provides readiness checks for the filesystem roots and
// external tools an archive pass depends on.
//
// The `check` command prints every result. The archive pass itself only
// warns about a missing rsync binary: a missing data root is an empty run,
// not a failure.
package preflight
