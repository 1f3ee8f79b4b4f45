// Package mover relocates one session folder into the archive.
//
// A move is a checksum-verified rsync with --remove-source-files followed by
// removal of the emptied source tree. The source is only removed after rsync
// reports success. A simulation runs rsync with --dry-run and never touches
// the source or the archive. Every failure comes back as an Outcome rather
// than an error so the caller can carry on with the next session.
package mover
