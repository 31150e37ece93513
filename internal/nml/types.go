package nml

import "encoding/xml"

// Document is the logical model of a Traktor collection file. Element order
// follows the order Traktor writes: HEAD, MUSICFOLDERS, COLLECTION, SETS,
// PLAYLISTS, INDEXING. Attributes and child elements the model does not name
// are retained verbatim so untouched data survives a load/persist cycle.
type Document struct {
	XMLName    xml.Name      `xml:"NML"`
	Version    string        `xml:"VERSION,attr"`
	Attrs      []xml.Attr    `xml:",any,attr"`
	Head       *RawElement   `xml:"HEAD"`
	Folders    *RawElement   `xml:"MUSICFOLDERS"`
	Collection Collection    `xml:"COLLECTION"`
	Sets       *RawElement   `xml:"SETS"`
	Playlists  PlaylistsRoot `xml:"PLAYLISTS"`
	Indexing   *RawElement   `xml:"INDEXING"`
	Extra      []RawElement  `xml:",any"`
}

// RawElement preserves an element this model does not interpret. Inner XML is
// written back verbatim on marshal.
type RawElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`
}

// Collection holds the flat track list.
type Collection struct {
	Entries int        `xml:"ENTRIES,attr"`
	Attrs   []xml.Attr `xml:",any,attr"`
	Tracks  []*Entry   `xml:"ENTRY"`
}

// Entry is one track in the collection. All metadata lives in attributes of
// the entry itself and its INFO child; unrecognized attributes and children
// (LOUDNESS, MODIFICATION_INFO, STEMS, ...) ride along untouched.
type Entry struct {
	Title    string       `xml:"TITLE,attr,omitempty"`
	Artist   string       `xml:"ARTIST,attr,omitempty"`
	Attrs    []xml.Attr   `xml:",any,attr"`
	Location Location     `xml:"LOCATION"`
	Album    *Album       `xml:"ALBUM"`
	Info     *Info        `xml:"INFO"`
	Tempo    *Tempo       `xml:"TEMPO"`
	Key      *MusicalKey  `xml:"MUSICAL_KEY"`
	Cues     []CuePoint   `xml:"CUE_V2"`
	Extra    []RawElement `xml:",any"`
}

// Location identifies the audio file backing an entry. Volume+Dir+File is the
// stable track key Traktor uses in playlist PRIMARYKEY references.
type Location struct {
	Dir      string     `xml:"DIR,attr"`
	File     string     `xml:"FILE,attr"`
	Volume   string     `xml:"VOLUME,attr,omitempty"`
	VolumeID string     `xml:"VOLUMEID,attr,omitempty"`
	Attrs    []xml.Attr `xml:",any,attr"`
}

// Album carries the release an entry belongs to.
type Album struct {
	Title string     `xml:"TITLE,attr,omitempty"`
	Track string     `xml:"TRACK,attr,omitempty"`
	Attrs []xml.Attr `xml:",any,attr"`
}

// Info carries the bulk of a track's editable metadata. Numeric values stay
// strings here; the collection layer owns their typed interpretation.
type Info struct {
	Genre      string     `xml:"GENRE,attr,omitempty"`
	Label      string     `xml:"LABEL,attr,omitempty"`
	Comment    string     `xml:"COMMENT,attr,omitempty"`
	Ranking    string     `xml:"RANKING,attr,omitempty"`
	Playcount  string     `xml:"PLAYCOUNT,attr,omitempty"`
	Playtime   string     `xml:"PLAYTIME,attr,omitempty"`
	ImportDate string     `xml:"IMPORT_DATE,attr,omitempty"`
	LastPlayed string     `xml:"LAST_PLAYED,attr,omitempty"`
	Bitrate    string     `xml:"BITRATE,attr,omitempty"`
	Filesize   string     `xml:"FILESIZE,attr,omitempty"`
	MusicalKey string     `xml:"KEY,attr,omitempty"`
	Attrs      []xml.Attr `xml:",any,attr"`
}

// Tempo carries the analyzed BPM.
type Tempo struct {
	BPM     string     `xml:"BPM,attr,omitempty"`
	Quality string     `xml:"BPM_QUALITY,attr,omitempty"`
	Attrs   []xml.Attr `xml:",any,attr"`
}

// MusicalKey carries Traktor's numeric key encoding.
type MusicalKey struct {
	Value string     `xml:"VALUE,attr"`
	Attrs []xml.Attr `xml:",any,attr"`
}

// CuePoint is one stored cue/grid marker. Opaque to the engine beyond its
// count; preserved attribute-for-attribute.
type CuePoint struct {
	Name  string     `xml:"NAME,attr,omitempty"`
	Type  string     `xml:"TYPE,attr,omitempty"`
	Start string     `xml:"START,attr,omitempty"`
	Attrs []xml.Attr `xml:",any,attr"`
}

// PlaylistsRoot wraps the single root NODE of the playlist tree.
type PlaylistsRoot struct {
	Root Node `xml:"NODE"`
}

// Node is one folder or playlist in the tree. TYPE is FOLDER or PLAYLIST.
type Node struct {
	Type     string        `xml:"TYPE,attr"`
	Name     string        `xml:"NAME,attr"`
	Attrs    []xml.Attr    `xml:",any,attr"`
	Subnodes *Subnodes     `xml:"SUBNODES"`
	Playlist *PlaylistBody `xml:"PLAYLIST"`
}

// Subnodes holds a folder's ordered children.
type Subnodes struct {
	Count int    `xml:"COUNT,attr"`
	Nodes []Node `xml:"NODE"`
}

// PlaylistBody holds a playlist's ordered track references.
type PlaylistBody struct {
	Entries int             `xml:"ENTRIES,attr"`
	Type    string          `xml:"TYPE,attr,omitempty"`
	UUID    string          `xml:"UUID,attr,omitempty"`
	Attrs   []xml.Attr      `xml:",any,attr"`
	Tracks  []PlaylistEntry `xml:"ENTRY"`
}

// PlaylistEntry is one track reference inside a playlist.
type PlaylistEntry struct {
	Key   PrimaryKey   `xml:"PRIMARYKEY"`
	Extra []RawElement `xml:",any"`
}

// PrimaryKey addresses a collection entry by its location-derived key.
type PrimaryKey struct {
	Type string `xml:"TYPE,attr"`
	Key  string `xml:"KEY,attr"`
}
