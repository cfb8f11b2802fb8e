// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package query

import (
	"regexp"
	"strings"
)

// tokenPattern extracts non-overlapping runs of one-or-more Unicode
// letters, or exactly four decimal digits, per §4.12 Phase A.1. A digit
// run shorter than four (e.g. a card-number fragment) does not match and
// is dropped; a longer run matches as consecutive four-digit pieces, and
// any leftover digits are dropped.
var tokenPattern = regexp.MustCompile(`\p{L}+|[0-9]{4}`)

// maxTokens caps the synthesized MATCH expression at 12 tokens,
// regardless of input length (§8 P9).
const maxTokens = 12

// Tokenize implements §4.12 Phase A: extract candidate runs, classify
// each as a postal-code candidate (kept verbatim) or a word (lowercased,
// discarded if shorter than 2 runes), deduplicate preserving order, and
// cap at 12 tokens.
func Tokenize(text string) []string {
	matches := tokenPattern.FindAllString(text, -1)

	seen := make(map[string]struct{}, len(matches))
	var tokens []string
	for _, m := range matches {
		var token string
		if isAllDigits(m) {
			token = m // length is guaranteed 4 by the pattern
		} else {
			lower := strings.ToLower(m)
			if len([]rune(lower)) < 2 {
				continue
			}
			token = lower
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
		if len(tokens) == maxTokens {
			break
		}
	}
	return tokens
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// BuildMatch implements §4.12 Phase B: each token becomes itself when
// numeric or a prefix query otherwise, joined with OR inside one group.
// An empty token list yields an empty string, which the caller must
// treat as "no results" rather than submit to MATCH.
func BuildMatch(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		if isAllDigits(t) {
			parts[i] = t
		} else {
			parts[i] = t + "*"
		}
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
