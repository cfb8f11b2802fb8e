// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package store

import (
	"strings"
	"unicode"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TokenizerName is the name registered with SQLite and referenced by the
// `tokenize = 'kbo_diacritics'` clause in the migration schema. Registration
// lives in this package, not in fts, so that opening a store always
// registers the tokenizer before any migration can reference it — a package
// that only imports store for its relational surface must not depend on
// also importing fts to get a working schema.
const TokenizerName = "kbo_diacritics"

// prefixLengths are the prefix-index lengths {2,3,4} frozen into the
// on-disk schema per §3.3/§4.10.
var prefixLengths = [...]int{2, 3, 4}

// fts5TokenColocated mirrors SQLite's FTS5_TOKEN_COLOCATED flag: it marks a
// token as occupying the same position as the previous one, which is
// exactly what a prefix token emitted alongside its full word is.
const fts5TokenColocated = 1

func init() {
	if err := sqlite3.RegisterFTS5Tokenizer(TokenizerName, newDiacriticsTokenizer); err != nil {
		panic("store: register fts5 tokenizer: " + err.Error())
	}
}

// diacriticsTokenizer strips diacritics (NFD + drop combining marks),
// lowercases, treats `. - /` as word characters alongside letters and
// digits, and emits prefix tokens of length 2, 3 and 4 for every word token
// longer than the prefix, so a query for "brux" can match "bruxelles" via
// its prefix-4 entry.
type diacriticsTokenizer struct{}

func newDiacriticsTokenizer(args []string) (sqlite3.FTS5Tokenizer, error) {
	return diacriticsTokenizer{}, nil
}

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '/'
}

// Tokenize implements sqlite3.FTS5Tokenizer. It scans pText for runs of
// isWordRune, normalizes each run, and emits the run itself plus its 2/3/4-
// rune prefixes as separate tokens at the same byte span, so a prefix query
// like `brux*` matches a normalized "bruxelles" token.
func (diacriticsTokenizer) Tokenize(flags int, pText []byte, tokenFn func(flags int, pToken []byte, iStart int, iEnd int) error) error {
	text := string(pText)
	runesSlice := []rune(text)
	i := 0
	for i < len(runesSlice) {
		if !isWordRune(runesSlice[i]) {
			i++
			continue
		}
		start := i
		for i < len(runesSlice) && isWordRune(runesSlice[i]) {
			i++
		}
		end := i

		word := string(runesSlice[start:end])
		normalized, _, err := transform.String(stripDiacritics, strings.ToLower(word))
		if err != nil {
			normalized = strings.ToLower(word)
		}
		startByte := runeIndexToByte(text, runesSlice, start)
		endByte := runeIndexToByte(text, runesSlice, end)

		if err := tokenFn(0, []byte(normalized), startByte, endByte); err != nil {
			return err
		}
		normRunes := []rune(normalized)
		for _, plen := range prefixLengths {
			if len(normRunes) > plen {
				prefix := string(normRunes[:plen])
				if err := tokenFn(fts5TokenColocated, []byte(prefix), startByte, endByte); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func runeIndexToByte(text string, runesSlice []rune, idx int) int {
	if idx >= len(runesSlice) {
		return len(text)
	}
	count := 0
	for bytePos := range text {
		if count == idx {
			return bytePos
		}
		count++
	}
	return len(text)
}
