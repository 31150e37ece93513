// Package textutil provides text processing helpers shared across the engine:
// playlist-name tokenization for tag mining, bracket-tag parsing for comment
// fields, and node-name sanitization.
//
// Tokenization lowercases text, splits on non-alphanumeric characters, and
// filters tokens shorter than 3 characters.
package textutil
