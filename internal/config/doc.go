// Package config loads, validates, and defaults cratekeeper configuration
// from a TOML file. Path fields are tilde-expanded and made absolute during
// Load so the rest of the program never sees relative paths.
package config
