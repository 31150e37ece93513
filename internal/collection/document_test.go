package collection_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"cratekeeper/internal/collection"
	"cratekeeper/internal/services"
	"cratekeeper/internal/testsupport"
)

func sampleTracks() []testsupport.Track {
	return []testsupport.Track{
		{File: "a.mp3", Title: "Strings of Life", Artist: "Rhythim Is Rhythim", Album: "Album X", Genre: "Techno", Comment: "classic [Detroit] [Techno]", BPM: "128.0003"},
		{File: "b.mp3", Title: "Plastic Dreams", Artist: "Jaydee", Album: "Album X"},
		{File: "c.mp3", Title: "Acperience 1", Artist: "Hardfloor", Album: "Album Y", Comment: "128 - 8A"},
		{File: "d.mp3", Title: "Unreleased Edit", Artist: "Unknown", Comment: "https://example.com/dl"},
		{File: "e.mp3", Title: "Flash", Artist: "Green Velvet", Album: "Album Y"},
	}
}

func sampleTree() []testsupport.Node {
	return []testsupport.Node{
		{Name: "Folder1", Folder: true, Children: []testsupport.Node{
			{Name: "P1", Keys: []string{testsupport.Key("a.mp3"), testsupport.Key("b.mp3")}},
		}},
		{Name: "Folder2", Folder: true, Children: []testsupport.Node{
			{Name: "Deep House", Keys: []string{testsupport.Key("c.mp3")}},
		}},
		{Name: "Deep Techno", Keys: []string{testsupport.Key("a.mp3"), testsupport.Key("c.mp3")}},
	}
}

func loadSample(t *testing.T) *collection.Document {
	t.Helper()
	return mustLoad(t, testsupport.DocumentBytes(t, sampleTracks(), sampleTree()))
}

func mustLoad(t *testing.T, data []byte) *collection.Document {
	t.Helper()
	doc, err := collection.Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return doc
}

func TestLoadBuildsStoreAndTree(t *testing.T) {
	doc := loadSample(t)
	if doc.Tracks().Len() != 5 {
		t.Fatalf("expected 5 tracks, got %d", doc.Tracks().Len())
	}

	record, err := doc.Tracks().Get(testsupport.Key("a.mp3"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Album != "Album X" || record.BPM != 128.0003 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Filepath != "HD/Music/a.mp3" {
		t.Fatalf("unexpected filepath %q", record.Filepath)
	}

	node, err := doc.Resolve("root/Folder1/P1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if node.Kind != collection.KindPlaylist || len(node.TrackKeys) != 2 {
		t.Fatalf("unexpected node: %+v", node)
	}
	if node.ParentPath != "root/Folder1" || node.Depth != 2 {
		t.Fatalf("unexpected ancestry: %+v", node)
	}
}

func TestLoadRejectsDanglingReference(t *testing.T) {
	data := testsupport.DocumentBytes(t, sampleTracks(), []testsupport.Node{
		{Name: "Broken", Keys: []string{testsupport.Key("missing.mp3")}},
	})
	_, err := collection.Load(data)
	if !errors.Is(err, services.ErrCorruption) {
		t.Fatalf("expected corruption error, got %v", err)
	}
}

func TestSerializeRoundTripsMutations(t *testing.T) {
	doc := loadSample(t)

	comment := "reworked [Acid]"
	if _, err := doc.Tracks().UpsertFields(testsupport.Key("b.mp3"), collection.TrackPatch{Comment: &comment}); err != nil {
		t.Fatalf("UpsertFields failed: %v", err)
	}
	if _, err := doc.CreateFolder("root", "New Crate"); err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}

	data, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !strings.Contains(string(data), "reworked [Acid]") {
		t.Fatal("expected updated comment in serialized output")
	}

	reloaded, err := collection.Load(data)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	record, err := reloaded.Tracks().Get(testsupport.Key("b.mp3"))
	if err != nil {
		t.Fatalf("Get after reload failed: %v", err)
	}
	if record.Comment != "reworked [Acid]" {
		t.Fatalf("comment lost in round trip: %q", record.Comment)
	}
	if _, err := reloaded.Resolve("root/New Crate"); err != nil {
		t.Fatalf("folder lost in round trip: %v", err)
	}
}

func TestUpsertFieldsShallowMerge(t *testing.T) {
	doc := loadSample(t)
	key := testsupport.Key("a.mp3")

	genre := "Detroit Techno"
	record, err := doc.Tracks().UpsertFields(key, collection.TrackPatch{Genre: &genre})
	if err != nil {
		t.Fatalf("UpsertFields failed: %v", err)
	}
	if record.Genre != "Detroit Techno" {
		t.Fatalf("genre not updated: %+v", record)
	}
	if record.Comment != "classic [Detroit] [Techno]" {
		t.Fatalf("absent patch field must stay untouched: %+v", record)
	}
	if record.Title != "Strings of Life" {
		t.Fatalf("title must stay untouched: %+v", record)
	}
}

func TestUpsertFieldsUnknownKey(t *testing.T) {
	doc := loadSample(t)
	title := "x"
	_, err := doc.Tracks().UpsertFields("nope", collection.TrackPatch{Title: &title})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUpdateTracksBatchPartialSuccess(t *testing.T) {
	doc := loadSample(t)
	rating := 255
	updates := []collection.TrackUpdate{
		{Key: testsupport.Key("a.mp3"), Patch: collection.TrackPatch{Rating: &rating}},
		{Key: "missing-key", Patch: collection.TrackPatch{Rating: &rating}},
		{Key: testsupport.Key("e.mp3"), Patch: collection.TrackPatch{Rating: &rating}},
	}

	result, err := doc.UpdateTracksBatch(updates)
	if err != nil {
		t.Fatalf("UpdateTracksBatch failed: %v", err)
	}
	if result.UpdatedCount != 2 || result.SkippedCount != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	record, _ := doc.Tracks().Get(testsupport.Key("a.mp3"))
	if record.Rating != 255 {
		t.Fatalf("rating not applied: %+v", record)
	}
}

func TestStoreIterationOrderStable(t *testing.T) {
	doc := loadSample(t)

	title := "renamed"
	if _, err := doc.Tracks().UpsertFields(testsupport.Key("c.mp3"), collection.TrackPatch{Title: &title}); err != nil {
		t.Fatalf("UpsertFields failed: %v", err)
	}

	var order []string
	for _, record := range doc.Tracks().All() {
		order = append(order, record.Key)
	}
	expected := []string{
		testsupport.Key("a.mp3"), testsupport.Key("b.mp3"), testsupport.Key("c.mp3"),
		testsupport.Key("d.mp3"), testsupport.Key("e.mp3"),
	}
	if !reflect.DeepEqual(order, expected) {
		t.Fatalf("iteration order changed: %v", order)
	}
}
