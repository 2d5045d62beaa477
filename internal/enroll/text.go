package enroll

import (
	"unicode"
	"unicode/utf8"
)

// UnCapitalizeFirstLetter lower-cases the first rune of s and leaves the rest untouched.
func UnCapitalizeFirstLetter(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	lower := unicode.ToLower(r)
	if lower == r {
		return s
	}
	return string(lower) + s[size:]
}
