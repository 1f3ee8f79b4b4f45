// Package main hosts the rcsarchive CLI entrypoint and command graph.
//
// The root command runs one archive pass: `rcsarchive` moves eligible RC+S
// sessions into the archive and `rcsarchive --dry-run` simulates the same
// pass. Both return normally when individual sessions fail; only setup
// failures (configuration, logger, lock, ledger) produce a non-zero exit,
// which is 2 so schedulers can tell them apart from a failed `check`.
//
// Subcommands cover configuration scaffolding, environment checks and the
// history ledger. Keep this package lean: behaviour belongs in internal
// packages and is surfaced here.
package main
