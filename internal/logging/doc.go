// Package logging constructs slog loggers for the server and CLI. Console
// output promotes the component attribute into a message prefix; JSON output
// is line-delimited for ingestion. The format is auto-selected from the
// output terminal when not configured.
package logging
