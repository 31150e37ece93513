// Package manager owns the cached, per-user lifecycle of collection
// documents: load on first access, exclusive-writer mutation, synchronous
// persist, and invalidation back to the last known-good state on failure.
package manager
