// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package textmatch implements the fuzzy phrase-matching primitive every
// later pipeline stage builds on: a normalized edit-distance similarity
// and a sliding-window search that locates the best-matching substring of
// a phrase inside an arbitrarily long letter body.
package textmatch

import (
	"strings"

	"oficio/internal/casefile"
)

// DefaultWindowTolerance is the band around the phrase length the window
// search explores: a phrase of n runes is matched against windows of
// n*(1-tol) .. n*(1+tol) runes.
const DefaultWindowTolerance = 0.30

// Matcher performs case-folded similarity scoring and sliding-window
// phrase search. The zero value is not usable; use NewMatcher.
type Matcher struct {
	// WindowTolerance is the relative window-length band. Values
	// outside (0,1) fall back to DefaultWindowTolerance.
	WindowTolerance float64
}

// NewMatcher returns a Matcher with the default window tolerance.
func NewMatcher() *Matcher {
	return &Matcher{WindowTolerance: DefaultWindowTolerance}
}

// WithWindowTolerance sets the relative window-length band.
func (m *Matcher) WithWindowTolerance(tol float64) *Matcher {
	m.WindowTolerance = tol
	return m
}

// Similarity returns 1 - editDistance(a,b)/max(len(a),len(b)) over
// case-folded runes. Two empty strings are identical (1.0); one empty
// string against a non-empty one scores 0.
func (m *Matcher) Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	return similarityRunes(ra, rb)
}

func similarityRunes(a, b []rune) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	return 1.0 - float64(editDistance(a, b))/float64(max)
}

// editDistance computes the Levenshtein distance with a two-row table.
func editDistance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	// b is now the shorter string; the row has len(b)+1 cells.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			ins := curr[j-1] + 1
			del := prev[j] + 1
			sub := prev[j-1] + cost
			min := ins
			if del < min {
				min = del
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// FindBestMatch slides windows across text with lengths in the tolerance
// band around len(phrase), scores each window with Similarity, and
// returns the highest-scoring window whose score meets threshold. Among
// windows tied at the maximum score the earliest-starting one wins; this
// tie-break is a fixed policy, relied on for deterministic audit trails.
//
// Offsets in the returned MatchResult are rune offsets into text. Returns
// nil when phrase or text is empty or no window clears the threshold.
func (m *Matcher) FindBestMatch(phrase, text string, threshold float64) *casefile.MatchResult {
	if phrase == "" || text == "" {
		return nil
	}
	if threshold < 0 {
		threshold = 0
	}

	folded := []rune(strings.ToLower(text))
	target := []rune(strings.ToLower(phrase))
	original := []rune(text)

	tol := m.WindowTolerance
	if tol <= 0 || tol >= 1 {
		tol = DefaultWindowTolerance
	}

	minLen := int(float64(len(target)) * (1 - tol))
	if minLen < 1 {
		minLen = 1
	}
	maxLen := int(float64(len(target))*(1+tol) + 0.5)
	if maxLen > len(folded) {
		maxLen = len(folded)
	}
	if minLen > maxLen {
		minLen = maxLen
	}

	best := -1.0
	bestStart := -1
	bestLen := 0
	for length := minLen; length <= maxLen; length++ {
		for start := 0; start+length <= len(folded); start++ {
			score := similarityRunes(target, folded[start:start+length])
			if score > best || (score == best && start < bestStart) {
				best = score
				bestStart = start
				bestLen = length
			}
		}
	}

	if bestStart < 0 || best < threshold {
		return nil
	}
	return &casefile.MatchResult{
		Text:       string(original[bestStart : bestStart+bestLen]),
		Start:      bestStart,
		Length:     bestLen,
		Similarity: best,
	}
}

// Contains reports whether phrase occurs verbatim in text, case-folded.
// Classifier and validator stages try this cheap exact check before
// falling back to FindBestMatch.
func (m *Matcher) Contains(phrase, text string) bool {
	if phrase == "" || text == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(phrase))
}

// ContainsAny reports whether any of the phrases occurs verbatim in text,
// returning the first one that does.
func (m *Matcher) ContainsAny(phrases []string, text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(p)) {
			return p, true
		}
	}
	return "", false
}
