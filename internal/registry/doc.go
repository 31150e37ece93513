// Package registry persists the per-user catalog of registered collection
// sources in SQLite.
package registry
