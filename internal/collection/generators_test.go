package collection_test

import (
	"reflect"
	"testing"

	"cratekeeper/internal/testsupport"
)

func TestComputeOrphansPartitionsStore(t *testing.T) {
	doc := loadSample(t)

	orphans, err := doc.ComputeOrphans("root", "")
	if err != nil {
		t.Fatalf("ComputeOrphans failed: %v", err)
	}
	if orphans.Name != "Orphans" {
		t.Fatalf("unexpected default name %q", orphans.Name)
	}

	// Referenced: a (P1, Deep Techno), b (P1), c (Deep House, Deep Techno).
	// That leaves d and e unreferenced, in store order.
	if !reflect.DeepEqual(orphans.TrackKeys, []string{testsupport.Key("d.mp3"), testsupport.Key("e.mp3")}) {
		t.Fatalf("unexpected orphans: %v", orphans.TrackKeys)
	}

	// Property: orphans plus all referenced keys cover the store exactly.
	covered := make(map[string]bool)
	for _, key := range orphans.TrackKeys {
		covered[key] = true
	}
	for _, path := range []string{"root/Folder1/P1", "root/Folder2/Deep House", "root/Deep Techno"} {
		node, err := doc.Resolve(path)
		if err != nil {
			t.Fatalf("Resolve %s failed: %v", path, err)
		}
		for _, key := range node.TrackKeys {
			covered[key] = true
		}
	}
	if len(covered) != doc.Tracks().Len() {
		t.Fatalf("orphans + playlist keys must cover the store: %d of %d", len(covered), doc.Tracks().Len())
	}
}

func TestComputeOrphansNameCollision(t *testing.T) {
	doc := loadSample(t)
	if _, err := doc.CreatePlaylist("root", "Orphans"); err != nil {
		t.Fatalf("CreatePlaylist failed: %v", err)
	}
	orphans, err := doc.ComputeOrphans("root", "")
	if err != nil {
		t.Fatalf("ComputeOrphans failed: %v", err)
	}
	if orphans.Name != "Orphans (2)" {
		t.Fatalf("expected suffixed name, got %q", orphans.Name)
	}
}

func TestComputeReleaseCompanion(t *testing.T) {
	doc := loadSample(t)

	// P1 holds a.mp3 (Album X) and b.mp3 (Album X). Companion candidates are
	// all Album X tracks not already in P1 — none — plus nothing from Album Y.
	node, err := doc.ComputeReleaseCompanion("root/Folder1/P1", "root", "")
	if err != nil {
		t.Fatalf("ComputeReleaseCompanion failed: %v", err)
	}
	if len(node.TrackKeys) != 0 {
		t.Fatalf("expected empty companion, got %v", node.TrackKeys)
	}
	if node.Name != "P1 Companion" {
		t.Fatalf("unexpected default name %q", node.Name)
	}

	// Deep House holds c.mp3 (Album Y); e.mp3 shares the album.
	companion, err := doc.ComputeReleaseCompanion("root/Folder2/Deep House", "root", "Y Sides")
	if err != nil {
		t.Fatalf("ComputeReleaseCompanion failed: %v", err)
	}
	if !reflect.DeepEqual(companion.TrackKeys, []string{testsupport.Key("e.mp3")}) {
		t.Fatalf("unexpected companion keys: %v", companion.TrackKeys)
	}
}

func TestReleaseCompanionIgnoresEmptyAlbums(t *testing.T) {
	// d.mp3 has no album; a playlist containing only it gets no companions,
	// even though other albumless tracks exist.
	data := testsupport.DocumentBytes(t, sampleTracks(), []testsupport.Node{
		{Name: "Edits", Keys: []string{testsupport.Key("d.mp3")}},
	})
	doc2 := mustLoad(t, data)
	node, err := doc2.ComputeReleaseCompanion("root/Edits", "root", "")
	if err != nil {
		t.Fatalf("ComputeReleaseCompanion failed: %v", err)
	}
	if len(node.TrackKeys) != 0 {
		t.Fatalf("albumless tracks must never be companions: %v", node.TrackKeys)
	}
}
