package collection

import (
	"regexp"
	"strings"

	"cratekeeper/internal/textutil"
)

// CommentCategory buckets a distinct comment value by what it appears to hold.
type CommentCategory string

const (
	CommentKeyBPM      CommentCategory = "keyBpm"
	CommentURL         CommentCategory = "url"
	CommentHex         CommentCategory = "hex"
	CommentCombination CommentCategory = "combination"
	CommentGenre       CommentCategory = "genre"
	CommentOther       CommentCategory = "other"
)

var (
	// keyBpmPattern matches the "<bpm> - <camelot key>" shorthand some DJs
	// keep in comments, e.g. "128 - 8A" or "174.5 - 12b".
	keyBpmPattern = regexp.MustCompile(`^\d{1,3}([.,]\d+)?\s*-\s*\d{1,2}[ABab]$`)

	// hexPattern matches fingerprint-looking tokens of 8+ hex characters.
	hexPattern = regexp.MustCompile(`^[0-9a-fA-F]{8,}$`)
)

// genreVocabulary is the curated genre/style word list a bare comment is
// checked against. Matching is case-insensitive on the whole trimmed value.
var genreVocabulary = map[string]struct{}{
	"house": {}, "deep house": {}, "tech house": {}, "progressive house": {},
	"acid house": {}, "electro house": {}, "techno": {}, "minimal": {},
	"minimal techno": {}, "electro": {}, "trance": {}, "psytrance": {},
	"disco": {}, "nu disco": {}, "italo disco": {}, "funk": {}, "soul": {},
	"hip hop": {}, "hiphop": {}, "rap": {}, "breaks": {}, "breakbeat": {},
	"drum and bass": {}, "drum & bass": {}, "dnb": {}, "jungle": {},
	"dubstep": {}, "garage": {}, "uk garage": {}, "ambient": {},
	"downtempo": {}, "trip hop": {}, "dub": {}, "reggae": {}, "dancehall": {},
	"afro": {}, "afrobeat": {}, "afro house": {}, "latin": {}, "pop": {},
	"rock": {}, "indie": {}, "indie dance": {}, "synthwave": {}, "edm": {},
	"hardstyle": {}, "hardcore": {}, "acid": {}, "industrial": {}, "ebm": {},
}

// ClassifyComments buckets every distinct non-empty comment value in the
// store. Rules run in a fixed priority order and the first match wins; a
// "128 - 8A" string could otherwise also pass the hex rule on its digits.
func (d *Document) ClassifyComments() map[CommentCategory][]string {
	result := make(map[CommentCategory][]string)
	seen := make(map[string]struct{})
	for _, record := range d.store.All() {
		comment := record.Comment
		if comment == "" {
			continue
		}
		if _, done := seen[comment]; done {
			continue
		}
		seen[comment] = struct{}{}
		category := classifyComment(comment)
		result[category] = append(result[category], comment)
	}
	return result
}

func classifyComment(comment string) CommentCategory {
	trimmed := strings.TrimSpace(comment)
	switch {
	case keyBpmPattern.MatchString(trimmed):
		return CommentKeyBPM
	case strings.Contains(trimmed, "http://"), strings.Contains(trimmed, "https://"):
		return CommentURL
	case hexPattern.MatchString(trimmed):
		return CommentHex
	case len(textutil.BracketTags(trimmed)) >= 2:
		return CommentCombination
	default:
		if _, ok := genreVocabulary[strings.ToLower(trimmed)]; ok {
			return CommentGenre
		}
		return CommentOther
	}
}
