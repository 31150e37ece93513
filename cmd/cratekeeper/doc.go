// Command cratekeeper is the CLI entry point: it runs the collection engine
// server and offers offline utilities for inspecting and reconciling
// collection files.
package main
