// Package reconcile diffs two track lists by fuzzy artist/title matching.
//
// The engine is stateless: both lists arrive already reduced to id, artist,
// title, and album. Strings are normalized (case folding, diacritics and
// parentheticals stripped), pairs are scored with Jaro-Winkler similarity on
// artist and title at equal weight, and the thresholded pairs resolve to a
// 1:1 assignment greedily from the highest score down.
package reconcile
