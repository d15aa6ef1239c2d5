// Package fuzzy ranks display strings against free-text queries. Every
// listing, selection and import filter shares this scorer so a query
// behaves identically across commands.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Match pairs a candidate with its score. Index is the candidate's
// position in the input slice.
type Match struct {
	Index     int
	Candidate string
	Score     int
}

// Score computes a 0..100 token-set similarity between a query and a
// candidate. Tokens are compared order-independently: "hendrix jim"
// scores high against "Jimi Hendrix - Voodoo Child". An empty query
// scores zero; callers that want pass-through semantics use Rank.
func Score(query, candidate string) int {
	qTokens := tokenize(query)
	cTokens := tokenize(candidate)
	if len(qTokens) == 0 || len(cTokens) == 0 {
		return 0
	}

	common, qRest := partition(qTokens, cTokens)
	_, cRest := partition(cTokens, qTokens)

	base := strings.Join(common, " ")
	full1 := strings.TrimSpace(base + " " + strings.Join(qRest, " "))
	full2 := strings.TrimSpace(base + " " + strings.Join(cRest, " "))

	best := ratio(base, full1)
	if r := ratio(base, full2); r > best {
		best = r
	}
	if r := ratio(full1, full2); r > best {
		best = r
	}
	return best
}

// Rank scores candidates against the query, drops those below the
// threshold and orders the rest by descending score. Ties keep the
// original candidate order so identical inputs always produce identical
// output. An empty query bypasses scoring and returns every candidate in
// its natural order.
func Rank(query string, candidates []string, threshold int) []Match {
	matches := make([]Match, 0, len(candidates))

	if strings.TrimSpace(query) == "" {
		for i, c := range candidates {
			matches = append(matches, Match{Index: i, Candidate: c})
		}
		return matches
	}

	for i, c := range candidates {
		if score := Score(query, c); score >= threshold {
			matches = append(matches, Match{Index: i, Candidate: c, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// tokenize lower-cases and splits on anything that is not a letter or
// digit, returning the sorted unique token set.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	tokens := fields[:0]
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			tokens = append(tokens, f)
		}
	}
	sort.Strings(tokens)
	return tokens
}

// partition splits the tokens of a into those shared with b and the
// remainder. Partial tokens ("jim" for "jimi") land in the remainder and
// still earn credit through the edit-distance ratio.
func partition(a, b []string) (common, rest []string) {
	set := make(map[string]bool, len(b))
	for _, t := range b {
		set[t] = true
	}
	for _, t := range a {
		if set[t] {
			common = append(common, t)
		} else {
			rest = append(rest, t)
		}
	}
	return common, rest
}

// ratio is a normalized edit-distance similarity between two strings.
func ratio(a, b string) int {
	if a == b {
		return 100
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	if d > longest {
		d = longest
	}
	return (100*(longest-d) + longest/2) / longest
}
