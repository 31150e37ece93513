package testsupport

import (
	"testing"

	"cratekeeper/internal/nml"
)

// Track describes one collection entry for a generated test document.
type Track struct {
	File    string
	Title   string
	Artist  string
	Album   string
	Genre   string
	Comment string
	BPM     string
}

// Node describes one playlist-tree node for a generated test document.
// Folders carry Children; playlists carry Keys.
type Node struct {
	Name     string
	Folder   bool
	Children []Node
	Keys     []string
}

// Key returns the track key the generated document uses for a file name.
func Key(file string) string {
	return "HD/:Music/:" + file
}

// DocumentBytes renders a collection document with the provided tracks and
// tree, using the same serializer the engine persists with.
func DocumentBytes(t testing.TB, tracks []Track, rootChildren []Node) []byte {
	t.Helper()

	doc := &nml.Document{Version: "19"}
	for _, track := range tracks {
		entry := &nml.Entry{
			Title:  track.Title,
			Artist: track.Artist,
			Location: nml.Location{
				Dir:    "/:Music/:",
				File:   track.File,
				Volume: "HD",
			},
		}
		if track.Album != "" {
			entry.Album = &nml.Album{Title: track.Album}
		}
		if track.Genre != "" || track.Comment != "" {
			entry.Info = &nml.Info{Genre: track.Genre, Comment: track.Comment}
		}
		if track.BPM != "" {
			entry.Tempo = &nml.Tempo{BPM: track.BPM}
		}
		doc.Collection.Tracks = append(doc.Collection.Tracks, entry)
	}

	doc.Playlists.Root = nml.Node{
		Type:     nml.NodeTypeFolder,
		Name:     nml.RootNodeName,
		Subnodes: &nml.Subnodes{},
	}
	for _, child := range rootChildren {
		doc.Playlists.Root.Subnodes.Nodes = append(doc.Playlists.Root.Subnodes.Nodes, buildNode(child))
	}

	data, err := nml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal test document: %v", err)
	}
	return data
}

func buildNode(spec Node) nml.Node {
	if spec.Folder {
		node := nml.Node{
			Type:     nml.NodeTypeFolder,
			Name:     spec.Name,
			Subnodes: &nml.Subnodes{},
		}
		for _, child := range spec.Children {
			node.Subnodes.Nodes = append(node.Subnodes.Nodes, buildNode(child))
		}
		return node
	}
	body := &nml.PlaylistBody{Type: "LIST"}
	for _, key := range spec.Keys {
		body.Tracks = append(body.Tracks, nml.PlaylistEntry{
			Key: nml.PrimaryKey{Type: nml.PrimaryKeyTrack, Key: key},
		})
	}
	return nml.Node{Type: nml.NodeTypePlaylist, Name: spec.Name, Playlist: body}
}
