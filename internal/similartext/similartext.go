// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package similartext builds the ", maybe you mean X?" suggestion
// clause that callers pass into dferrors.ErrRuleNotFound and
// dferrors.ErrRelationNotFound for an unknown rule or relation name.
package similartext

import "sort"

// Find returns a suggestion clause naming every entry of names within
// Levenshtein distance of word, or "" if word is empty or nothing is
// close enough.
func Find(names []string, word string) string {
	if word == "" {
		return ""
	}

	threshold := len(word) / 3
	if threshold < 1 {
		threshold = 1
	}

	var matches []string
	for _, name := range names {
		if levenshtein(word, name) <= threshold {
			matches = append(matches, name)
		}
	}
	return suggestionClause(matches)
}

// FindFromMap is Find over a map's keys.
func FindFromMap(names map[string]int, word string) string {
	keys := make([]string, 0, len(names))
	for name := range names {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return Find(keys, word)
}

func suggestionClause(matches []string) string {
	if len(matches) == 0 {
		return ""
	}
	joined := matches[0]
	for _, m := range matches[1:] {
		joined += " or " + m
	}
	return ", maybe you mean " + joined + "?"
}

// levenshtein returns the classic edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
