package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// idSuffixes are dropped from the end of a folded name by StripSuffix,
// longest first so "ids" is never cut to "i".
var idSuffixes = []string{"timestamp", "ids", "utc", "id", "at"}

// FoldName reduces a Go field name or a Notion property name to a
// comparable key: NFKC folds full-width forms, words are split on case
// changes and separators, then joined and case-folded.
// "Drop Rate (%)" and "DropRate" both become "droprate".
func FoldName(s string) string {
	return cases.Fold().String(strings.Join(splitWords(norm.NFKC.String(s)), ""))
}

// StripSuffix folds s and removes one trailing id-like word, unless
// nothing would be left.
func StripSuffix(s string) string {
	folded := FoldName(s)

	for _, suffix := range idSuffixes {
		if len(folded) > len(suffix) && strings.HasSuffix(folded, suffix) {
			return folded[:len(folded)-len(suffix)]
		}
	}

	return folded
}

// splitWords cuts a name into words at spaces, punctuation and symbols,
// before an upper-case letter that follows a lower-case one, and before the
// last capital of an acronym ("XMLParser" is XML, Parser).
func splitWords(s string) []string {
	var (
		words []string
		word  []rune
	)

	runes := []rune(s)

	for i, r := range runes {
		if separator(r) {
			if len(word) > 0 {
				words = append(words, string(word))
				word = word[:0]
			}

			continue
		}

		if len(word) > 0 && wordBoundary(runes, i) {
			words = append(words, string(word))
			word = word[:0]
		}

		word = append(word, r)
	}

	if len(word) > 0 {
		words = append(words, string(word))
	}

	return words
}

func separator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func wordBoundary(runes []rune, i int) bool {
	if !unicode.IsUpper(runes[i]) {
		return false
	}

	if !unicode.IsUpper(runes[i-1]) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
