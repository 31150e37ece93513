package reconcile

import (
	"sort"
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/unicode/norm"
)

// Track is the minimal projection of a track either side of a comparison
// supplies: a collection playlist read, or an external library export.
type Track struct {
	ID     string `json:"id"`
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Album  string `json:"album,omitempty"`
}

// NormalizedTrack is the case/punctuation-folded projection used for
// comparison. It is never persisted.
type NormalizedTrack struct {
	ID             string `json:"id"`
	Artist         string `json:"artist"`
	Title          string `json:"title"`
	Album          string `json:"album,omitempty"`
	OriginalArtist string `json:"originalArtist"`
	OriginalTitle  string `json:"originalTitle"`
}

// Match pairs a source track with the target track it was assigned to.
type Match struct {
	Source Track   `json:"source"`
	Target Track   `json:"target"`
	Score  float64 `json:"score"`
}

// Stats summarizes a comparison. Counts are derived from the result lists and
// carry no independent truth.
type Stats struct {
	SourceCount       int `json:"sourceCount"`
	TargetCount       int `json:"targetCount"`
	MatchedCount      int `json:"matchedCount"`
	MissingFromSource int `json:"missingFromSource"`
	MissingFromTarget int `json:"missingFromTarget"`
}

// Result is the outcome of comparing two track lists.
type Result struct {
	Matched           []Match `json:"matched"`
	MissingFromSource []Track `json:"missingFromSource"`
	MissingFromTarget []Track `json:"missingFromTarget"`
	Stats             Stats   `json:"stats"`
}

// Normalize folds a track for comparison: lowercase, diacritics stripped,
// parenthetical segments like "(Radio Edit)" removed, punctuation replaced by
// spaces, whitespace collapsed.
func Normalize(track Track) NormalizedTrack {
	return NormalizedTrack{
		ID:             track.ID,
		Artist:         normalizeString(track.Artist),
		Title:          normalizeString(track.Title),
		Album:          normalizeString(track.Album),
		OriginalArtist: track.Artist,
		OriginalTitle:  track.Title,
	}
}

// CompareTracks scores every (source, target) pair by combined artist and
// title similarity (equal weight, 0-100), discards pairs below
// thresholdPercent, and resolves the rest to a 1:1 assignment greedily from
// the highest score down, ties broken by input order.
func CompareTracks(source, target []Track, thresholdPercent float64) Result {
	normSource := make([]NormalizedTrack, len(source))
	for i, track := range source {
		normSource[i] = Normalize(track)
	}
	normTarget := make([]NormalizedTrack, len(target))
	for i, track := range target {
		normTarget[i] = Normalize(track)
	}

	type candidate struct {
		sourceIdx int
		targetIdx int
		score     float64
	}
	metric := metrics.NewJaroWinkler()
	var candidates []candidate
	for i := range normSource {
		for j := range normTarget {
			score := pairScore(metric, normSource[i], normTarget[j])
			if score >= thresholdPercent {
				candidates = append(candidates, candidate{sourceIdx: i, targetIdx: j, score: score})
			}
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		if candidates[a].sourceIdx != candidates[b].sourceIdx {
			return candidates[a].sourceIdx < candidates[b].sourceIdx
		}
		return candidates[a].targetIdx < candidates[b].targetIdx
	})

	result := Result{}
	usedSource := make([]bool, len(source))
	usedTarget := make([]bool, len(target))
	for _, cand := range candidates {
		if usedSource[cand.sourceIdx] || usedTarget[cand.targetIdx] {
			continue
		}
		usedSource[cand.sourceIdx] = true
		usedTarget[cand.targetIdx] = true
		result.Matched = append(result.Matched, Match{
			Source: source[cand.sourceIdx],
			Target: target[cand.targetIdx],
			Score:  cand.score,
		})
	}

	for i, used := range usedSource {
		if !used {
			result.MissingFromTarget = append(result.MissingFromTarget, source[i])
		}
	}
	for j, used := range usedTarget {
		if !used {
			result.MissingFromSource = append(result.MissingFromSource, target[j])
		}
	}

	result.Stats = Stats{
		SourceCount:       len(source),
		TargetCount:       len(target),
		MatchedCount:      len(result.Matched),
		MissingFromSource: len(result.MissingFromSource),
		MissingFromTarget: len(result.MissingFromTarget),
	}
	return result
}

func pairScore(metric *metrics.JaroWinkler, a, b NormalizedTrack) float64 {
	artist := strutil.Similarity(a.Artist, b.Artist, metric)
	title := strutil.Similarity(a.Title, b.Title, metric)
	return (artist + title) * 50
}

func normalizeString(s string) string {
	s = strings.ToLower(s)
	s = stripSegments(s, '(', ')')
	s = stripSegments(s, '[', ']')
	s = stripDiacritics(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// stripSegments removes delimited segments such as "(radio edit)". Unclosed
// openers drop the remainder of the string, matching how titles are usually
// truncated mid-parenthetical.
func stripSegments(s string, open, close rune) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == open:
			depth++
		case r == close && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
