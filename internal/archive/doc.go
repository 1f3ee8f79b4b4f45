// Package archive runs one archive pass over every discovered subject.
//
// The pass is a flat, sequential iteration: subject → present source location
// → session folder. Each session is either skipped as too recent, skipped
// because its archive destination already exists (real mode only), or handed
// to the mover. A failure in one session is logged and counted; it never
// stops the others. Cancellation is honoured between sessions only, so a move
// that has started always runs to completion.
//
// A pass holds an exclusive file lock so overlapping scheduler invocations do
// not race on the same sessions. Outcomes are optionally written to the
// history ledger for later inspection.
package archive
