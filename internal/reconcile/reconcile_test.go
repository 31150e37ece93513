package reconcile_test

import (
	"testing"

	"cratekeeper/internal/reconcile"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name   string
		input  reconcile.Track
		artist string
		title  string
	}{
		{
			name:   "parenthetical stripped",
			input:  reconcile.Track{Artist: "Röyksopp", Title: "Eple (Radio Edit)"},
			artist: "royksopp",
			title:  "eple",
		},
		{
			name:   "punctuation folded",
			input:  reconcile.Track{Artist: "A.D.A.M. feat. Amy", Title: "Zombie!!"},
			artist: "a d a m feat amy",
			title:  "zombie",
		},
		{
			name:   "brackets and whitespace collapsed",
			input:  reconcile.Track{Artist: "  KiNK ", Title: "Perth [Extended   Mix]"},
			artist: "kink",
			title:  "perth",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := reconcile.Normalize(tc.input)
			if got.Artist != tc.artist || got.Title != tc.title {
				t.Fatalf("Normalize(%+v) = %q/%q, expected %q/%q",
					tc.input, got.Artist, got.Title, tc.artist, tc.title)
			}
			if got.OriginalTitle != tc.input.Title {
				t.Fatalf("original title lost: %+v", got)
			}
		})
	}
}

func TestCompareTracksSelfComparison(t *testing.T) {
	list := []reconcile.Track{
		{ID: "1", Artist: "Rhythim Is Rhythim", Title: "Strings of Life"},
		{ID: "2", Artist: "Jaydee", Title: "Plastic Dreams"},
		{ID: "3", Artist: "Hardfloor", Title: "Acperience 1"},
	}

	result := reconcile.CompareTracks(list, list, 100)
	if len(result.Matched) != len(list) {
		t.Fatalf("self comparison must match everything: %+v", result.Stats)
	}
	if len(result.MissingFromSource) != 0 || len(result.MissingFromTarget) != 0 {
		t.Fatalf("self comparison must leave nothing missing: %+v", result.Stats)
	}
	for _, match := range result.Matched {
		if match.Source.ID != match.Target.ID {
			t.Fatalf("expected identity assignment, got %+v", match)
		}
		if match.Score != 100 {
			t.Fatalf("expected score 100, got %v", match.Score)
		}
	}
}

func TestCompareTracksFuzzyMatch(t *testing.T) {
	source := []reconcile.Track{
		{ID: "s1", Artist: "Röyksopp", Title: "Eple"},
		{ID: "s2", Artist: "Underworld", Title: "Born Slippy"},
	}
	target := []reconcile.Track{
		{ID: "t1", Artist: "Royksopp", Title: "Eple (Radio Edit)"},
		{ID: "t2", Artist: "Aphex Twin", Title: "Windowlicker"},
	}

	result := reconcile.CompareTracks(source, target, 85)
	if len(result.Matched) != 1 {
		t.Fatalf("expected one match, got %+v", result)
	}
	match := result.Matched[0]
	if match.Source.ID != "s1" || match.Target.ID != "t1" {
		t.Fatalf("unexpected assignment: %+v", match)
	}
	if len(result.MissingFromTarget) != 1 || result.MissingFromTarget[0].ID != "s2" {
		t.Fatalf("unexpected missingFromTarget: %+v", result.MissingFromTarget)
	}
	if len(result.MissingFromSource) != 1 || result.MissingFromSource[0].ID != "t2" {
		t.Fatalf("unexpected missingFromSource: %+v", result.MissingFromSource)
	}
}

func TestCompareTracksGreedyAssignment(t *testing.T) {
	// Both source tracks normalize to the same artist/title, so both pairs
	// score identically; input order breaks the tie and only one can claim
	// the single target.
	source := []reconcile.Track{
		{ID: "s1", Artist: "Green Velvet", Title: "Flash"},
		{ID: "s2", Artist: "Green Velvet", Title: "Flash (Club Mix)"},
	}
	target := []reconcile.Track{
		{ID: "t1", Artist: "Green Velvet", Title: "Flash"},
	}

	result := reconcile.CompareTracks(source, target, 90)
	if len(result.Matched) != 1 {
		t.Fatalf("expected single 1:1 match, got %+v", result)
	}
	if result.Matched[0].Source.ID != "s1" {
		t.Fatalf("greedy assignment should prefer the exact pair: %+v", result.Matched[0])
	}
	if result.Stats.MatchedCount != 1 || result.Stats.MissingFromTarget != 1 {
		t.Fatalf("stats must mirror result lists: %+v", result.Stats)
	}
}

func TestCompareTracksThreshold(t *testing.T) {
	source := []reconcile.Track{{ID: "s1", Artist: "Orbital", Title: "Halcyon"}}
	target := []reconcile.Track{{ID: "t1", Artist: "Leftfield", Title: "Phat Planet"}}

	result := reconcile.CompareTracks(source, target, 80)
	if len(result.Matched) != 0 {
		t.Fatalf("dissimilar tracks must not match: %+v", result.Matched)
	}
	if result.Stats.MissingFromSource != 1 || result.Stats.MissingFromTarget != 1 {
		t.Fatalf("unexpected stats: %+v", result.Stats)
	}
}
