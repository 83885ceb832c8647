// Package textutil holds small string helpers shared by the user service:
// contact address checks, display name formatting and search folding.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// emailPattern accepts word characters, dots and hyphens on both sides of a
// single '@', followed by a dot and a final run of word characters.
// Word characters are Unicode letters, Unicode numbers and '_'.
var emailPattern = regexp.MustCompile(`^[\p{L}\p{N}_.-]+@[\p{L}\p{N}_.-]+\.[\p{L}\p{N}_]+$`)

// ValidateEmail reports whether address is a well-formed contact address.
// Malformed input yields false; it never fails.
func ValidateEmail(address string) bool {
	return emailPattern.MatchString(address)
}

// FormatName title-cases first and last and joins them with a single space.
// Every run of cased letters starts with a title-case letter and continues in
// lower case, so "o'neil" becomes "O'Neil" and "3rd" becomes "3Rd".
func FormatName(first, last string) string {
	// A Caser keeps state between calls and must not be shared.
	c := cases.Title(language.Und)
	return titleRuns(c, first) + " " + titleRuns(c, last)
}

// titleRuns applies c to each maximal run of cased letters in s and copies
// everything else unchanged.
func titleRuns(c cases.Caser, s string) string {
	var b strings.Builder
	b.Grow(len(s))

	runStart := -1
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case isCased(r):
			if runStart < 0 {
				runStart = i
			}
		case runStart >= 0:
			b.WriteString(c.String(s[runStart:i]))
			runStart = -1
			fallthrough
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	if runStart >= 0 {
		b.WriteString(c.String(s[runStart:]))
	}
	return b.String()
}

// FoldCase returns the Unicode case folding of s. Two strings that differ
// only in case fold to the same value, so substring matches on folded text
// are case-insensitive in every script.
func FoldCase(s string) string {
	return cases.Fold().String(s)
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r) ||
		unicode.Is(unicode.Other_Lowercase, r) || unicode.Is(unicode.Other_Uppercase, r)
}
