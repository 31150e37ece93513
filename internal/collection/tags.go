package collection

import (
	"fmt"
	"sort"
	"strings"

	"cratekeeper/internal/services"
	"cratekeeper/internal/textutil"
)

// MinedTag reports one style word recovered from playlist names.
type MinedTag struct {
	Count     int      `json:"count"`
	Playlists []string `json:"playlists"`
}

// MineTags tokenizes every playlist name and keeps tokens recurring across at
// least two distinct playlists, recording where each came from.
func (d *Document) MineTags() map[string]MinedTag {
	byTag := make(map[string]map[string]struct{})
	for _, playlist := range d.tree.playlists() {
		for _, token := range textutil.Tokenize(playlist.name) {
			if byTag[token] == nil {
				byTag[token] = make(map[string]struct{})
			}
			byTag[token][playlist.path] = struct{}{}
		}
	}

	result := make(map[string]MinedTag)
	for tag, paths := range byTag {
		if len(paths) < 2 {
			continue
		}
		sorted := make([]string, 0, len(paths))
		for path := range paths {
			sorted = append(sorted, path)
		}
		sort.Strings(sorted)
		result[tag] = MinedTag{Count: len(sorted), Playlists: sorted}
	}
	return result
}

// TagPreview reports what WriteStyleTag would change for a selection.
type TagPreview struct {
	WouldUpdate             int `json:"wouldUpdate"`
	AlreadyHaveInSelection  int `json:"alreadyHaveInSelection"`
	TotalInCollection       int `json:"totalInCollection"`
	UniqueTracksInSelection int `json:"uniqueTracksInSelection"`
}

// TagCountPreview counts, over the unique tracks referenced by playlistPaths,
// how many already carry [tag] in their comment and how many a write would
// touch. TotalInCollection counts carriers across the whole store.
func (d *Document) TagCountPreview(playlistPaths []string, tag string) (TagPreview, error) {
	if err := validateTag(tag); err != nil {
		return TagPreview{}, err
	}
	selection, err := d.selectionKeys(playlistPaths)
	if err != nil {
		return TagPreview{}, err
	}

	var preview TagPreview
	preview.UniqueTracksInSelection = len(selection)
	for _, key := range selection {
		record, err := d.store.Get(key)
		if err != nil {
			return TagPreview{}, err
		}
		if textutil.HasBracketTag(record.Comment, tag) {
			preview.AlreadyHaveInSelection++
		} else {
			preview.WouldUpdate++
		}
	}
	for _, record := range d.store.All() {
		if textutil.HasBracketTag(record.Comment, tag) {
			preview.TotalInCollection++
		}
	}
	return preview, nil
}

// WriteStyleTag appends " [tag]" to the comment of every selected track still
// missing it. Re-running after a successful write updates nothing further.
func (d *Document) WriteStyleTag(playlistPaths []string, tag string) (BatchResult, error) {
	if err := validateTag(tag); err != nil {
		return BatchResult{}, err
	}
	selection, err := d.selectionKeys(playlistPaths)
	if err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for _, key := range selection {
		record, err := d.store.Get(key)
		if err != nil {
			return BatchResult{}, err
		}
		if textutil.HasBracketTag(record.Comment, tag) {
			result.SkippedCount++
			continue
		}
		comment := record.Comment + " [" + tag + "]"
		if record.Comment == "" {
			comment = "[" + tag + "]"
		}
		if _, err := d.store.UpsertFields(key, TrackPatch{Comment: &comment}); err != nil {
			return BatchResult{}, err
		}
		result.UpdatedCount++
	}
	return result, nil
}

// validateTag rejects tags that the bracket marker could not round-trip: a
// bracket inside the tag breaks recognition on the next pass, so every write
// would append again.
func validateTag(tag string) error {
	switch {
	case tag == "":
		return services.Wrap(services.ErrValidation, "tags", "validate", "tag must not be empty", nil)
	case strings.ContainsAny(tag, "[]"):
		return services.Wrap(services.ErrValidation, "tags", "validate",
			fmt.Sprintf("tag %q must not contain brackets", tag), nil)
	case tag != strings.TrimSpace(tag):
		return services.Wrap(services.ErrValidation, "tags", "validate",
			fmt.Sprintf("tag %q must not have surrounding whitespace", tag), nil)
	}
	return nil
}

// selectionKeys returns the unique track keys referenced by the playlists, in
// first-appearance order.
func (d *Document) selectionKeys(playlistPaths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string
	for _, path := range playlistPaths {
		playlist, err := d.tree.resolvePlaylist(path, "tag selection")
		if err != nil {
			return nil, err
		}
		for _, entry := range playlist.entries {
			if _, ok := seen[entry.key]; ok {
				continue
			}
			seen[entry.key] = struct{}{}
			keys = append(keys, entry.key)
		}
	}
	return keys, nil
}
