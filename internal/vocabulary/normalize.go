package vocabulary

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxDefinitionLength bounds the stored definition, in runes
const MaxDefinitionLength = 1023

// Normalize turns user input into the cache key of a word. The input must be
// a single run of letters. Words are lowercased unless written entirely in
// capitals, so acronyms such as "NASA" keep their form.
func Normalize(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrInvalidInput
	}

	hasUpper, hasLower := false, false
	for _, r := range text {
		if !unicode.IsLetter(r) {
			return "", ErrInvalidInput
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}

	if hasUpper && !hasLower {
		return text, nil
	}
	return strings.ToLower(text), nil
}

// truncate cuts s to at most max runes
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
