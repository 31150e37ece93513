package collection_test

import (
	"errors"
	"reflect"
	"testing"

	"cratekeeper/internal/collection"
	"cratekeeper/internal/services"
)

func TestCreateFolderAndPlaylist(t *testing.T) {
	doc := loadSample(t)

	folder, err := doc.CreateFolder("root/Folder1", "Crates")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	if folder.Path != "root/Folder1/Crates" || folder.Depth != 2 {
		t.Fatalf("unexpected folder: %+v", folder)
	}

	playlist, err := doc.CreatePlaylist("root/Folder1/Crates", "Warmup")
	if err != nil {
		t.Fatalf("CreatePlaylist failed: %v", err)
	}
	if playlist.Kind != collection.KindPlaylist || len(playlist.TrackKeys) != 0 {
		t.Fatalf("unexpected playlist: %+v", playlist)
	}
}

func TestCreateConflictAndNotFound(t *testing.T) {
	doc := loadSample(t)

	if _, err := doc.CreateFolder("root", "Folder1"); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if _, err := doc.CreateFolder("root/Nope", "X"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	// A playlist cannot parent anything.
	if _, err := doc.CreatePlaylist("root/Deep Techno", "X"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected NotFound for playlist parent, got %v", err)
	}
}

func TestMoveThenMoveBackRestoresShape(t *testing.T) {
	doc := loadSample(t)

	before := treePaths(t, doc)

	if _, err := doc.MoveNode("root/Folder1", "root/Folder2"); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	moved, err := doc.Resolve("root/Folder2/Folder1/P1")
	if err != nil {
		t.Fatalf("descendant path not rewritten: %v", err)
	}
	if moved.Depth != 3 {
		t.Fatalf("depth not recomputed: %+v", moved)
	}

	if _, err := doc.MoveNode("root/Folder2/Folder1", "root"); err != nil {
		t.Fatalf("move back failed: %v", err)
	}

	after := treePaths(t, doc)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("path set changed after round-trip move:\nbefore %v\nafter  %v", before, after)
	}
}

func TestMoveRejectsCycle(t *testing.T) {
	doc := loadSample(t)
	if _, err := doc.CreateFolder("root/Folder1", "Inner"); err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	_, err := doc.MoveNode("root/Folder1", "root/Folder1/Inner")
	if !errors.Is(err, services.ErrInvalidOperation) {
		t.Fatalf("expected InvalidOperation, got %v", err)
	}
}

func TestMoveRejectsNameCollision(t *testing.T) {
	doc := loadSample(t)
	if _, err := doc.CreatePlaylist("root/Folder1", "Deep House"); err != nil {
		t.Fatalf("CreatePlaylist failed: %v", err)
	}
	_, err := doc.MoveNode("root/Folder1/Deep House", "root/Folder2")
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestMoveBatchSequentialSemantics(t *testing.T) {
	doc := loadSample(t)

	// The second move targets a path that only exists after the first one.
	moves := []collection.Move{
		{Source: "root/Folder1", Target: "root/Folder2"},
		{Source: "root/Deep Techno", Target: "root/Folder2/Folder1"},
	}
	nodes, err := doc.MoveBatch(moves)
	if err != nil {
		t.Fatalf("MoveBatch failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 results, got %d", len(nodes))
	}
	if _, err := doc.Resolve("root/Folder2/Folder1/Deep Techno"); err != nil {
		t.Fatalf("expected relocated playlist: %v", err)
	}
}

func TestMoveBatchAllOrNothing(t *testing.T) {
	doc := loadSample(t)
	before := treePaths(t, doc)

	moves := []collection.Move{
		{Source: "root/Folder1", Target: "root/Folder2"},
		{Source: "root/Nope", Target: "root"},
	}
	if _, err := doc.MoveBatch(moves); err == nil {
		t.Fatal("expected batch rejection")
	}

	after := treePaths(t, doc)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("rejected batch mutated the tree:\nbefore %v\nafter  %v", before, after)
	}
}

func TestDuplicatePlaylist(t *testing.T) {
	doc := loadSample(t)

	copyNode, err := doc.DuplicatePlaylist("root/Folder1/P1", "root", "")
	if err != nil {
		t.Fatalf("DuplicatePlaylist failed: %v", err)
	}
	source, _ := doc.Resolve("root/Folder1/P1")
	if !reflect.DeepEqual(copyNode.TrackKeys, source.TrackKeys) {
		t.Fatalf("track keys differ: %v vs %v", copyNode.TrackKeys, source.TrackKeys)
	}
	if copyNode.Path == source.Path {
		t.Fatal("duplicate must get a distinct path")
	}

	// Duplicating into the source's own folder needs a suffix.
	second, err := doc.DuplicatePlaylist("root/Folder1/P1", "root/Folder1", "")
	if err != nil {
		t.Fatalf("second duplicate failed: %v", err)
	}
	if second.Name != "P1 (2)" {
		t.Fatalf("expected disambiguating suffix, got %q", second.Name)
	}

	// An explicit colliding name is a conflict, not a silent rename.
	if _, err := doc.DuplicatePlaylist("root/Folder1/P1", "root/Folder1", "P1"); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestRename(t *testing.T) {
	doc := loadSample(t)

	node, err := doc.RenameNode("root/Folder1", "Crate One")
	if err != nil {
		t.Fatalf("RenameNode failed: %v", err)
	}
	if node.Path != "root/Crate One" {
		t.Fatalf("unexpected path %q", node.Path)
	}
	if _, err := doc.Resolve("root/Crate One/P1"); err != nil {
		t.Fatalf("descendant paths not rewritten: %v", err)
	}

	if _, err := doc.RenameNode("root/Folder2", "Crate One"); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestDeleteNodesIdempotentForDescendants(t *testing.T) {
	docA := loadSample(t)
	docB := loadSample(t)

	if err := docA.DeleteNodes([]string{"root/Folder1", "root/Folder1/P1"}); err != nil {
		t.Fatalf("delete with descendant failed: %v", err)
	}
	if err := docB.DeleteNodes([]string{"root/Folder1"}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if !reflect.DeepEqual(treePaths(t, docA), treePaths(t, docB)) {
		t.Fatal("deleting {A, childOfA} must equal deleting {A}")
	}

	// Track records stay; their keys just become unreferenced.
	if docA.Tracks().Len() != 5 {
		t.Fatalf("delete must not touch the track store, got %d tracks", docA.Tracks().Len())
	}
}

func TestDeleteRootRejected(t *testing.T) {
	doc := loadSample(t)
	if err := doc.DeleteNodes([]string{"root"}); !errors.Is(err, services.ErrInvalidOperation) {
		t.Fatalf("expected InvalidOperation, got %v", err)
	}
}

// treePaths flattens the tree snapshot into a sorted-free set of paths.
func treePaths(t *testing.T, doc *collection.Document) map[string]bool {
	t.Helper()
	out := make(map[string]bool)
	var walk func(node *collection.Node)
	walk = func(node *collection.Node) {
		out[node.Path] = true
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(doc.Root())
	return out
}

func TestResolveNotFound(t *testing.T) {
	doc := loadSample(t)
	_, err := doc.Resolve("root/ghost")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
