package nml_test

import (
	"strings"
	"testing"

	"cratekeeper/internal/nml"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8" standalone="no" ?>
<NML VERSION="19">
  <HEAD COMPANY="www.native-instruments.com" PROGRAM="Traktor"></HEAD>
  <MUSICFOLDERS></MUSICFOLDERS>
  <COLLECTION ENTRIES="2">
    <ENTRY TITLE="Strings of Life" ARTIST="Rhythim Is Rhythim" AUDIO_ID="AbCd==">
      <LOCATION DIR="/:Music/:Techno/:" FILE="strings.mp3" VOLUME="Macintosh HD" VOLUMEID="abc123"></LOCATION>
      <ALBUM TITLE="The Album" TRACK="1"></ALBUM>
      <MODIFICATION_INFO AUTHOR_TYPE="user"></MODIFICATION_INFO>
      <INFO GENRE="Techno" COMMENT="classic [Detroit]" PLAYCOUNT="12" BITRATE="320000" IMPORT_DATE="2019/5/1" FLAGS="28"></INFO>
      <TEMPO BPM="128.000305" BPM_QUALITY="100"></TEMPO>
      <MUSICAL_KEY VALUE="21"></MUSICAL_KEY>
      <CUE_V2 NAME="AutoGrid" TYPE="4" START="190.661"></CUE_V2>
    </ENTRY>
    <ENTRY TITLE="Plastic Dreams" ARTIST="Jaydee">
      <LOCATION DIR="/:Music/:House/:" FILE="plastic.flac" VOLUME="Macintosh HD"></LOCATION>
      <INFO GENRE="House"></INFO>
    </ENTRY>
  </COLLECTION>
  <SETS ENTRIES="0"></SETS>
  <PLAYLISTS>
    <NODE TYPE="FOLDER" NAME="$ROOT">
      <SUBNODES COUNT="1">
        <NODE TYPE="PLAYLIST" NAME="Classics">
          <PLAYLIST ENTRIES="1" TYPE="LIST" UUID="deadbeef">
            <ENTRY>
              <PRIMARYKEY TYPE="TRACK" KEY="Macintosh HD/:Music/:Techno/:strings.mp3"></PRIMARYKEY>
            </ENTRY>
          </PLAYLIST>
        </NODE>
      </SUBNODES>
    </NODE>
  </PLAYLISTS>
</NML>
`

func TestParseReadsTracksAndTree(t *testing.T) {
	doc, err := nml.Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Collection.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(doc.Collection.Tracks))
	}

	entry := doc.Collection.Tracks[0]
	if entry.Title != "Strings of Life" || entry.Artist != "Rhythim Is Rhythim" {
		t.Fatalf("unexpected entry metadata: %+v", entry)
	}
	if got := nml.TrackKey(entry.Location); got != "Macintosh HD/:Music/:Techno/:strings.mp3" {
		t.Fatalf("unexpected track key %q", got)
	}
	if got := nml.Filepath(entry.Location); got != "Macintosh HD/Music/Techno/strings.mp3" {
		t.Fatalf("unexpected filepath %q", got)
	}
	if len(entry.Cues) != 1 || entry.Cues[0].Name != "AutoGrid" {
		t.Fatalf("unexpected cues: %+v", entry.Cues)
	}

	root := doc.Playlists.Root
	if root.Name != nml.RootNodeName || root.Type != nml.NodeTypeFolder {
		t.Fatalf("unexpected root node: %+v", root)
	}
	playlist := root.Subnodes.Nodes[0]
	if playlist.Type != nml.NodeTypePlaylist || playlist.Name != "Classics" {
		t.Fatalf("unexpected playlist node: %+v", playlist)
	}
	if playlist.Playlist.Tracks[0].Key.Key != "Macintosh HD/:Music/:Techno/:strings.mp3" {
		t.Fatalf("unexpected playlist reference: %+v", playlist.Playlist.Tracks[0])
	}
}

func TestRoundTripPreservesUnknownData(t *testing.T) {
	doc, err := nml.Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	out, err := nml.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	serialized := string(out)

	// Attributes and elements the model does not name must survive.
	for _, fragment := range []string{
		`AUDIO_ID="AbCd=="`,
		`FLAGS="28"`,
		`VOLUMEID="abc123"`,
		"MODIFICATION_INFO",
		`UUID="deadbeef"`,
		`COMPANY="www.native-instruments.com"`,
	} {
		if !strings.Contains(serialized, fragment) {
			t.Fatalf("expected %q to survive round trip:\n%s", fragment, serialized)
		}
	}

	reparsed, err := nml.Parse(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if len(reparsed.Collection.Tracks) != 2 {
		t.Fatalf("expected 2 tracks after round trip, got %d", len(reparsed.Collection.Tracks))
	}
	if reparsed.Collection.Tracks[0].Info.Comment != "classic [Detroit]" {
		t.Fatalf("comment lost in round trip: %+v", reparsed.Collection.Tracks[0].Info)
	}
}

func TestMarshalRecomputesCounts(t *testing.T) {
	doc, err := nml.Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// Drift the declared counts; Marshal must correct them.
	doc.Collection.Entries = 99
	doc.Playlists.Root.Subnodes.Count = 42

	out, err := nml.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(out), `ENTRIES="2"`) {
		t.Fatalf("collection count not recomputed:\n%s", out)
	}
	if !strings.Contains(string(out), `COUNT="1"`) {
		t.Fatalf("subnode count not recomputed:\n%s", out)
	}
}

func TestParseSynthesizesRootWhenMissing(t *testing.T) {
	doc, err := nml.Parse([]byte(`<NML VERSION="19"><COLLECTION ENTRIES="0"></COLLECTION></NML>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Playlists.Root.Name != nml.RootNodeName {
		t.Fatalf("expected synthesized root, got %+v", doc.Playlists.Root)
	}
}
