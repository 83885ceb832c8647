package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSearchQuery(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		expectError error
		expected    string
	}{
		{
			name:     "empty query",
			query:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			query:    "   ",
			expected: "",
		},
		{
			name:     "simple name",
			query:    "admin",
			expected: "admin",
		},
		{
			name:     "name with apostrophe",
			query:    "o'neil",
			expected: "o'neil",
		},
		{
			name:     "address fragment",
			query:    "admin@example.com",
			expected: "admin@example.com",
		},
		{
			name:     "leading and trailing spaces",
			query:    "  john doe  ",
			expected: "john doe",
		},
		{
			name:     "unicode letters",
			query:    "José Núñez",
			expected: "José Núñez",
		},
		{
			name:        "too long",
			query:       strings.Repeat("a", MaxSearchQueryLength+1),
			expectError: ErrQueryTooLong,
		},
		{
			name:        "wildcard",
			query:       "john%",
			expectError: ErrQueryInvalidChars,
		},
		{
			name:        "semicolon",
			query:       "john;doe",
			expectError: ErrQueryInvalidChars,
		},
		{
			name:        "markup",
			query:       "<b>john</b>",
			expectError: ErrQueryInvalidChars,
		},
		{
			name:        "control character",
			query:       "john\x00",
			expectError: ErrQueryInvalidChars,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateSearchQuery(tt.query)

			if tt.expectError != nil {
				require.ErrorIs(t, err, tt.expectError)
				assert.Empty(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidateSearchQuery_LengthCountsRunes(t *testing.T) {
	query := strings.Repeat("é", MaxSearchQueryLength)

	result, err := ValidateSearchQuery(query)
	require.NoError(t, err)
	assert.Equal(t, query, result)
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{name: "empty", query: "", expected: ""},
		{name: "plain", query: "john", expected: "john"},
		{name: "underscore", query: "john_doe", expected: `john\_doe`},
		{name: "percent", query: "50%", expected: `50\%`},
		{name: "backslash first", query: `a\_`, expected: `a\\\_`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EscapeLike(tt.query))
		})
	}
}

func BenchmarkValidateSearchQuery(b *testing.B) {
	query := "john doe example"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ValidateSearchQuery(query)
	}
}
