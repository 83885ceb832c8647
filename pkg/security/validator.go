package security

import (
	"errors"
	"strings"
	"unicode"
)

const (
	// MaxSearchQueryLength defines the maximum allowed length for list filters, in runes
	MaxSearchQueryLength = 100
)

var (
	// ErrQueryTooLong is returned for filters longer than MaxSearchQueryLength
	ErrQueryTooLong = errors.New("search query too long")
	// ErrQueryInvalidChars is returned for filters containing characters outside the allowed set
	ErrQueryInvalidChars = errors.New("search query contains invalid characters")
)

// ValidateSearchQuery trims a list filter and checks it only contains
// characters that can appear in a name or a contact address.
func ValidateSearchQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	if len([]rune(query)) > MaxSearchQueryLength {
		return "", ErrQueryTooLong
	}

	for _, char := range query {
		if !isValidSearchChar(char) {
			return "", ErrQueryInvalidChars
		}
	}

	return query, nil
}

// isValidSearchChar checks if a character may appear in a list filter
func isValidSearchChar(char rune) bool {
	return unicode.IsLetter(char) || unicode.IsNumber(char) ||
		char == ' ' || char == '-' || char == '_' || char == '.' ||
		char == '@' || char == '\''
}

// EscapeLike escapes LIKE wildcards so the filter is matched literally.
// The result must be used with ESCAPE '\'.
func EscapeLike(query string) string {
	if query == "" {
		return ""
	}

	query = strings.ReplaceAll(query, `\`, `\\`)
	query = strings.ReplaceAll(query, "%", `\%`)
	query = strings.ReplaceAll(query, "_", `\_`)

	return query
}
