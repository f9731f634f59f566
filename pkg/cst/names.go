package cst

import (
	"strings"
	"unicode"
)

// SplitCamelCase splits an identifier into camel-case and snake-case words.
// Acronym runs stay together: parseHTTPRequest -> parse, HTTP, Request.
func SplitCamelCase(name string) []string {
	var (
		words []string
		cur   []rune
	)

	runes := []rune(name)

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	for i, r := range runes {
		switch {
		case r == '_' || r == '$':
			flush()

			continue
		case unicode.IsUpper(r) && len(cur) > 0:
			prevLower := unicode.IsLower(cur[len(cur)-1]) || unicode.IsDigit(cur[len(cur)-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if prevLower || (nextLower && unicode.IsUpper(cur[len(cur)-1])) {
				flush()
			}
		}

		cur = append(cur, r)
	}

	flush()

	return words
}

// NamePrefixCompatible reports whether the camel-case words of one name are a
// prefix of the other's, ignoring case: fetchUser and fetchUserById are
// compatible, getFoo and retrieveFoo are not.
func NamePrefixCompatible(a, b string) bool {
	wa, wb := SplitCamelCase(a), SplitCamelCase(b)
	if len(wa) == 0 || len(wb) == 0 {
		return false
	}

	if len(wa) > len(wb) {
		wa, wb = wb, wa
	}

	for i := range wa {
		if !strings.EqualFold(wa[i], wb[i]) {
			return false
		}
	}

	return true
}
