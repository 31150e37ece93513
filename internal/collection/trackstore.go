package collection

import (
	"fmt"
	"strconv"

	"cratekeeper/internal/nml"
	"cratekeeper/internal/services"
)

// TrackRecord is the typed view of one collection entry. Field updates write
// through to the underlying document entry so unmodeled attributes survive
// persistence untouched.
type TrackRecord struct {
	Key        string  `json:"key"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	Genre      string  `json:"genre"`
	Label      string  `json:"label"`
	Comment    string  `json:"comment"`
	MusicalKey string  `json:"musicalKey"`
	BPM        float64 `json:"bpm"`
	Rating     int     `json:"rating"`
	Playcount  int     `json:"playcount"`
	Playtime   int     `json:"playtime"`
	ImportDate string  `json:"importDate"`
	LastPlayed string  `json:"lastPlayed"`
	Filepath   string  `json:"filepath"`
	Bitrate    int     `json:"bitrate"`
	Filesize   int64   `json:"filesize"`
	CuePoints  int     `json:"cuePoints"`

	entry *nml.Entry
}

// TrackPatch describes a partial update. Nil fields are left untouched.
// Filepath, bitrate, and filesize are derived from the audio file itself and
// are not patchable; the track key would no longer match its location.
type TrackPatch struct {
	Title      *string  `json:"title,omitempty"`
	Artist     *string  `json:"artist,omitempty"`
	Album      *string  `json:"album,omitempty"`
	Genre      *string  `json:"genre,omitempty"`
	Label      *string  `json:"label,omitempty"`
	Comment    *string  `json:"comment,omitempty"`
	MusicalKey *string  `json:"musicalKey,omitempty"`
	BPM        *float64 `json:"bpm,omitempty"`
	Rating     *int     `json:"rating,omitempty"`
	Playcount  *int     `json:"playcount,omitempty"`
	Playtime   *int     `json:"playtime,omitempty"`
	ImportDate *string  `json:"importDate,omitempty"`
	LastPlayed *string  `json:"lastPlayed,omitempty"`
}

// TrackStore is a flat mapping from track key to record. Iteration order is
// the document load order and stays stable across updates.
type TrackStore struct {
	records map[string]*TrackRecord
	order   []string
}

func newTrackStore(entries []*nml.Entry) (*TrackStore, error) {
	store := &TrackStore{records: make(map[string]*TrackRecord, len(entries))}
	for _, entry := range entries {
		key := nml.TrackKey(entry.Location)
		if key == "" {
			return nil, services.Wrap(services.ErrCorruption, "trackstore", "load", "entry without location key", nil)
		}
		if _, exists := store.records[key]; exists {
			return nil, services.Wrap(services.ErrCorruption, "trackstore", "load",
				fmt.Sprintf("duplicate track key %q", key), nil)
		}
		store.records[key] = recordFromEntry(key, entry)
		store.order = append(store.order, key)
	}
	return store, nil
}

// Get returns the record for a key.
func (s *TrackStore) Get(key string) (*TrackRecord, error) {
	record, ok := s.records[key]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "trackstore", "get",
			fmt.Sprintf("track %q", key), nil)
	}
	return record, nil
}

// Has reports whether a key exists without constructing an error.
func (s *TrackStore) Has(key string) bool {
	_, ok := s.records[key]
	return ok
}

// UpsertFields applies a shallow merge of the patch onto the record: only
// non-nil fields overwrite. Unknown keys fail with NotFound.
func (s *TrackStore) UpsertFields(key string, patch TrackPatch) (*TrackRecord, error) {
	record, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	record.apply(patch)
	return record, nil
}

// Remove deletes a record. Only the duplicate-merge operation calls this;
// playlist references must already be repointed.
func (s *TrackStore) Remove(key string) error {
	if _, ok := s.records[key]; !ok {
		return services.Wrap(services.ErrNotFound, "trackstore", "remove",
			fmt.Sprintf("track %q", key), nil)
	}
	delete(s.records, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// All returns the records in document load order.
func (s *TrackStore) All() []*TrackRecord {
	out := make([]*TrackRecord, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.records[key])
	}
	return out
}

// Len returns the number of records.
func (s *TrackStore) Len() int {
	return len(s.order)
}

func (s *TrackStore) entries() []*nml.Entry {
	out := make([]*nml.Entry, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.records[key].entry)
	}
	return out
}

func recordFromEntry(key string, entry *nml.Entry) *TrackRecord {
	record := &TrackRecord{
		Key:       key,
		Title:     entry.Title,
		Artist:    entry.Artist,
		Filepath:  nml.Filepath(entry.Location),
		CuePoints: len(entry.Cues),
		entry:     entry,
	}
	if entry.Album != nil {
		record.Album = entry.Album.Title
	}
	if info := entry.Info; info != nil {
		record.Genre = info.Genre
		record.Label = info.Label
		record.Comment = info.Comment
		record.ImportDate = info.ImportDate
		record.LastPlayed = info.LastPlayed
		record.Rating = parseInt(info.Ranking)
		record.Playcount = parseInt(info.Playcount)
		record.Playtime = parseInt(info.Playtime)
		record.Bitrate = parseInt(info.Bitrate)
		record.Filesize = parseInt64(info.Filesize)
		record.MusicalKey = info.MusicalKey
	}
	if entry.Tempo != nil {
		record.BPM, _ = strconv.ParseFloat(entry.Tempo.BPM, 64)
	}
	return record
}

func (r *TrackRecord) apply(patch TrackPatch) {
	if patch.Title != nil {
		r.Title = *patch.Title
		r.entry.Title = *patch.Title
	}
	if patch.Artist != nil {
		r.Artist = *patch.Artist
		r.entry.Artist = *patch.Artist
	}
	if patch.Album != nil {
		r.Album = *patch.Album
		if r.entry.Album == nil {
			r.entry.Album = &nml.Album{}
		}
		r.entry.Album.Title = *patch.Album
	}
	if patch.BPM != nil {
		r.BPM = *patch.BPM
		if r.entry.Tempo == nil {
			r.entry.Tempo = &nml.Tempo{}
		}
		r.entry.Tempo.BPM = strconv.FormatFloat(*patch.BPM, 'f', -1, 64)
	}

	info := func() *nml.Info {
		if r.entry.Info == nil {
			r.entry.Info = &nml.Info{}
		}
		return r.entry.Info
	}
	if patch.Genre != nil {
		r.Genre = *patch.Genre
		info().Genre = *patch.Genre
	}
	if patch.Label != nil {
		r.Label = *patch.Label
		info().Label = *patch.Label
	}
	if patch.Comment != nil {
		r.Comment = *patch.Comment
		info().Comment = *patch.Comment
	}
	if patch.MusicalKey != nil {
		r.MusicalKey = *patch.MusicalKey
		info().MusicalKey = *patch.MusicalKey
	}
	if patch.Rating != nil {
		r.Rating = *patch.Rating
		info().Ranking = strconv.Itoa(*patch.Rating)
	}
	if patch.Playcount != nil {
		r.Playcount = *patch.Playcount
		info().Playcount = strconv.Itoa(*patch.Playcount)
	}
	if patch.Playtime != nil {
		r.Playtime = *patch.Playtime
		info().Playtime = strconv.Itoa(*patch.Playtime)
	}
	if patch.ImportDate != nil {
		r.ImportDate = *patch.ImportDate
		info().ImportDate = *patch.ImportDate
	}
	if patch.LastPlayed != nil {
		r.LastPlayed = *patch.LastPlayed
		info().LastPlayed = *patch.LastPlayed
	}
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
