// Package slug derives URL-friendly identifiers from display names.
package slug

import (
	"fmt"
	"strings"
	"unicode"
)

// Make normalizes text into a lowercase hyphenated slug
func Make(text string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphens

	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
		// other punctuation is dropped
	}

	return strings.TrimRight(b.String(), "-")
}

// Unique resolves collisions by appending an increasing numeric suffix.
// exists is consulted for each candidate until a free slug is found.
func Unique(text string, exists func(slug string) (bool, error)) (string, error) {
	base := Make(text)
	candidate := base

	for counter := 1; ; counter++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
