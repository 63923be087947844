// Package diff compares two documents unit by unit and reports the result as
// an ordered list of segments, each one a maximal run of units that are
// unchanged, added or removed.
//
// A unit is whatever lies between two occurrences of a separator: lines for
// "\n", words for " ". The empty separator stands for user-perceived
// characters, i.e., grapheme clusters
// (https://github.com/clipperhouse/uax29).
//
// The comparison itself is done by the diffmatchpatch package
// (https://github.com/sergi/go-diff). Units are first mapped to runes, one rune
// per distinct unit, so that a character diff of the rune strings is a unit
// diff of the documents. This is the same trick diffmatchpatch uses for line
// diffs, generalized to any separator.
package diff
