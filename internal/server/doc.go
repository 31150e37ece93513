// Package server exposes the collection engine over an authenticated HTTP
// API. Routes map one-to-one onto collection operations; mutations go through
// the manager so every change is persisted before the response is written.
package server
