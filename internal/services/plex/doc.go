// Package plex exports track lists from a Plex music library so they can be
// reconciled against collection playlists.
package plex
