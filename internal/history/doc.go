// Package history persists an audit ledger of archive passes in SQLite.
//
// Each pass is a row in runs; every per-session decision (moved, simulated,
// skipped, failed) is a row in outcomes tied to its run. The ledger is written
// for operators and the `history` command only. Nothing in the archive pass
// reads it back to make decisions, so a lost or cleared database never
// changes what gets moved.
package history
