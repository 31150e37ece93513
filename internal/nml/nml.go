package nml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const header = `<?xml version="1.0" encoding="UTF-8" standalone="no" ?>` + "\n"

const (
	// NodeTypeFolder and NodeTypePlaylist are the TYPE values Traktor uses.
	NodeTypeFolder   = "FOLDER"
	NodeTypePlaylist = "PLAYLIST"

	// RootNodeName is the NAME of the tree's root folder node.
	RootNodeName = "$ROOT"

	// PrimaryKeyTrack marks a playlist entry referencing a collection track.
	PrimaryKeyTrack = "TRACK"
)

// Parse decodes a collection document from raw bytes.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse collection document: %w", err)
	}
	if doc.Playlists.Root.Type == "" {
		doc.Playlists.Root = Node{
			Type:     NodeTypeFolder,
			Name:     RootNodeName,
			Subnodes: &Subnodes{},
		}
	}
	return &doc, nil
}

// Marshal serializes the document with Traktor's XML declaration. Counts on
// COLLECTION and SUBNODES are recomputed before encoding so they never drift
// from the actual child lists.
func Marshal(doc *Document) ([]byte, error) {
	doc.Collection.Entries = len(doc.Collection.Tracks)
	refreshCounts(&doc.Playlists.Root)

	var buf bytes.Buffer
	buf.WriteString(header)
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("serialize collection document: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("serialize collection document: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func refreshCounts(node *Node) {
	if node.Subnodes != nil {
		node.Subnodes.Count = len(node.Subnodes.Nodes)
		for i := range node.Subnodes.Nodes {
			refreshCounts(&node.Subnodes.Nodes[i])
		}
	}
	if node.Playlist != nil {
		node.Playlist.Entries = len(node.Playlist.Tracks)
	}
}

// TrackKey derives the stable playlist reference key for an entry. Traktor
// concatenates volume, directory, and file name exactly as stored.
func TrackKey(loc Location) string {
	return loc.Volume + loc.Dir + loc.File
}

// Filepath renders a location as a plain slash-separated path. Traktor encodes
// directory separators as "/:" inside DIR attributes.
func Filepath(loc Location) string {
	dir := strings.ReplaceAll(loc.Dir, "/:", "/")
	return loc.Volume + dir + loc.File
}
