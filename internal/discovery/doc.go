// Package discovery decides the universe of subjects and source locations for
// one archive pass, and lists the session folders inside a source.
//
// Subjects come from two places: the patient index range scanned through the
// layout resolver, and the optional [subjects] table in the configuration,
// which names extra subjects (for example cohort-tagged ones like GaitRCS01L)
// with one path or a list of paths. A malformed entry is skipped with a
// warning; it never stops discovery of the others.
package discovery
