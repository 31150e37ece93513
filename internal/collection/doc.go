// Package collection implements the in-memory model of one Traktor collection
// document: a flat track store, a folder/playlist tree addressed by
// slash-joined paths, and the mutation operations that keep both consistent.
//
// The tree is an arena of nodes linked by integer handles with a parallel
// path index, so moves rewrite paths incrementally and the no-cycles
// invariant is a plain ancestor walk. Playlists hold weak references to
// tracks by key only; referential integrity is enforced on load and whenever
// a duplicate merge rewires references.
//
// Two batch policies coexist by design: tree batches (MoveBatch) are
// validate-then-apply all-or-nothing, while track-field batches
// (UpdateTracksBatch) apply best-effort per entry and report counts.
//
// Documents are not safe for concurrent mutation; the manager package
// serializes access per user.
package collection
