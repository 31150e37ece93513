package collection

import (
	"fmt"

	"cratekeeper/internal/nml"
	"cratekeeper/internal/services"
)

// Document aggregates the track store and the playlist tree of one collection
// file. It is not safe for concurrent mutation; the manager serializes access
// per user.
type Document struct {
	source *nml.Document
	store  *TrackStore
	tree   *tree
}

// Load parses raw collection bytes into a Document and verifies referential
// integrity: every playlist reference must resolve to a stored track.
func Load(data []byte) (*Document, error) {
	source, err := nml.Parse(data)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "document", "load", "", err)
	}

	store, err := newTrackStore(source.Collection.Tracks)
	if err != nil {
		return nil, err
	}
	tr, err := treeFromNML(source.Playlists.Root)
	if err != nil {
		return nil, err
	}

	doc := &Document{source: source, store: store, tree: tr}
	if err := doc.checkIntegrity(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Serialize writes the document back to collection bytes. Unmodeled elements
// and attributes pass through from the last load untouched.
func (d *Document) Serialize() ([]byte, error) {
	d.source.Collection.Tracks = d.store.entries()
	d.source.Playlists.Root = d.tree.toNML()
	return nml.Marshal(d.source)
}

// Tracks exposes the track store.
func (d *Document) Tracks() *TrackStore {
	return d.store
}

// Resolve returns a snapshot of the node at path. Folder snapshots include
// their full subtree.
func (d *Document) Resolve(path string) (*Node, error) {
	node, err := d.tree.resolve(path)
	if err != nil {
		return nil, err
	}
	return d.tree.snapshot(node, true), nil
}

// Root returns the whole tree as a snapshot.
func (d *Document) Root() *Node {
	return d.tree.snapshot(d.tree.nodes[d.tree.root], true)
}

// CreateFolder adds an empty folder under parentPath.
func (d *Document) CreateFolder(parentPath, name string) (*Node, error) {
	node, err := d.tree.create(parentPath, name, KindFolder, "create folder")
	if err != nil {
		return nil, err
	}
	return d.tree.snapshot(node, false), nil
}

// CreatePlaylist adds an empty playlist under folderPath.
func (d *Document) CreatePlaylist(folderPath, name string) (*Node, error) {
	node, err := d.tree.create(folderPath, name, KindPlaylist, "create playlist")
	if err != nil {
		return nil, err
	}
	return d.tree.snapshot(node, false), nil
}

// MoveNode relocates a node (and its subtree) under a new parent folder.
func (d *Document) MoveNode(sourcePath, targetFolderPath string) (*Node, error) {
	node, err := d.tree.move(sourcePath, targetFolderPath)
	if err != nil {
		return nil, err
	}
	return d.tree.snapshot(node, false), nil
}

// MoveBatch applies moves in order, each observing the state left by the
// previous ones. The batch is all-or-nothing: it is rehearsed against a copy
// of the tree first, and only applied to the live tree once every move is
// known to succeed.
func (d *Document) MoveBatch(moves []Move) ([]*Node, error) {
	if len(moves) == 0 {
		return nil, services.Wrap(services.ErrValidation, "tree", "move batch", "empty batch", nil)
	}

	rehearsal := d.tree.clone()
	for i, mv := range moves {
		if _, err := rehearsal.move(mv.Source, mv.Target); err != nil {
			return nil, services.Wrap(services.ErrInvalidOperation, "tree", "move batch",
				fmt.Sprintf("move %d of %d rejected", i+1, len(moves)), err)
		}
	}

	out := make([]*Node, 0, len(moves))
	for _, mv := range moves {
		node, err := d.tree.move(mv.Source, mv.Target)
		if err != nil {
			// The rehearsal proved every move valid; a failure here means the
			// clone diverged from the live tree.
			return nil, services.Wrap(services.ErrCorruption, "tree", "move batch", "", err)
		}
		out = append(out, d.tree.snapshot(node, false))
	}
	return out, nil
}

// DuplicatePlaylist deep-copies a playlist's track keys into a new playlist
// under targetFolderPath. An empty name picks the source name, suffixed when
// that collides with an existing sibling.
func (d *Document) DuplicatePlaylist(sourcePath, targetFolderPath, name string) (*Node, error) {
	node, err := d.tree.duplicate(sourcePath, targetFolderPath, name)
	if err != nil {
		return nil, err
	}
	return d.tree.snapshot(node, false), nil
}

// RenameNode changes a node's name, recomputing paths across its subtree.
func (d *Document) RenameNode(path, newName string) (*Node, error) {
	node, err := d.tree.rename(path, newName)
	if err != nil {
		return nil, err
	}
	return d.tree.snapshot(node, false), nil
}

// DeleteNodes removes each path and its subtree. Paths already removed by an
// earlier entry (a deleted ancestor) are skipped, so input order is
// irrelevant. Track records are never touched; keys simply become
// unreferenced.
func (d *Document) DeleteNodes(paths []string) error {
	for _, path := range paths {
		if _, err := d.tree.deleteNode(path); err != nil {
			return err
		}
	}
	return nil
}

// BatchResult reports the outcome of a best-effort batch.
type BatchResult struct {
	UpdatedCount int `json:"updatedCount"`
	SkippedCount int `json:"skippedCount"`
}

// TrackUpdate names one entry of UpdateTracksBatch.
type TrackUpdate struct {
	Key   string     `json:"key"`
	Patch TrackPatch `json:"patch"`
}

// UpdateTracksBatch applies each patch best-effort: unknown keys are skipped
// and counted rather than failing the batch. This deliberately differs from
// MoveBatch, which is all-or-nothing.
func (d *Document) UpdateTracksBatch(updates []TrackUpdate) (BatchResult, error) {
	var result BatchResult
	for _, update := range updates {
		if _, err := d.store.UpsertFields(update.Key, update.Patch); err != nil {
			result.SkippedCount++
			continue
		}
		result.UpdatedCount++
	}
	return result, nil
}

// checkIntegrity verifies every playlist reference resolves to a stored
// track. A violation is corruption, not a recoverable state.
func (d *Document) checkIntegrity() error {
	for _, playlist := range d.tree.playlists() {
		for _, entry := range playlist.entries {
			if !d.store.Has(entry.key) {
				return services.Wrap(services.ErrCorruption, "document", "integrity check",
					fmt.Sprintf("playlist %q references unknown track %q", playlist.path, entry.key), nil)
			}
		}
	}
	return nil
}
