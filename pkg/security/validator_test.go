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
			name:     "valid empty query",
			query:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			query:    "   ",
			expected: "",
		},
		{
			name:     "valid simple query",
			query:    "rohtak",
			expected: "rohtak",
		},
		{
			name:     "valid query with spaces",
			query:    "arya samaj rohtak",
			expected: "arya samaj rohtak",
		},
		{
			name:     "devanagari with vowel signs",
			query:    "आर्य समाज",
			expected: "आर्य समाज",
		},
		{
			name:     "address-like query",
			query:    "Sector 14, Gurugram/Haryana",
			expected: "Sector 14, Gurugram/Haryana",
		},
		{
			name:     "valid email-like query",
			query:    "pradhan@aryasamaj.org",
			expected: "pradhan@aryasamaj.org",
		},
		{
			name:     "keyword inside a word is fine",
			query:    "Selection Committee",
			expected: "Selection Committee",
		},
		{
			name:     "valid query with leading/trailing spaces",
			query:    "  dayanand  ",
			expected: "dayanand",
		},
		{
			name:        "query too long",
			query:       strings.Repeat("a", MaxSearchQueryLength+1),
			expectError: ErrQueryTooLong,
		},
		{
			name:     "long devanagari within rune limit",
			query:    strings.Repeat("आ", MaxSearchQueryLength),
			expected: strings.Repeat("आ", MaxSearchQueryLength),
		},
		{
			name:        "SQL injection attempt - UNION",
			query:       "ram UNION SELECT * FROM members",
			expectError: ErrQueryInvalid,
		},
		{
			name:        "SQL injection attempt - OR condition",
			query:       "ram OR 1=1",
			expectError: ErrQueryInvalid,
		},
		{
			name:        "SQL injection attempt - comment",
			query:       "ram --",
			expectError: ErrQueryInvalid,
		},
		{
			name:        "SQL injection attempt - DROP",
			query:       "ram; DROP TABLE families",
			expectError: ErrQueryInvalid,
		},
		{
			name:        "SQL injection attempt - sleep",
			query:       "pg_sleep 10",
			expectError: ErrQueryInvalid,
		},
		{
			name:        "XSS attempt - script",
			query:       "<script>alert('xss')</script>",
			expectError: ErrQueryInvalid,
		},
		{
			name:        "invalid characters - ampersand",
			query:       "ram&shyam",
			expectError: ErrQueryInvalid,
		},
		{
			name:        "invalid characters - quote",
			query:       "ram's",
			expectError: ErrQueryInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateSearchQuery(tt.query)

			if tt.expectError != nil {
				require.ErrorIs(t, err, tt.expectError)
				assert.Empty(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestSanitizeSearchString(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{name: "empty string", query: "", expected: ""},
		{name: "normal string", query: "rohtak", expected: "rohtak"},
		{name: "percent wildcard", query: "100%", expected: `100\%`},
		{name: "underscore wildcard", query: "arya_samaj", expected: `arya\_samaj`},
		{name: "multiple wildcards", query: "%ram_%", expected: `\%ram\_\%`},
		{name: "backslash", query: `a\b`, expected: `a\\b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeSearchString(tt.query))
		})
	}
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%samaj%", ContainsPattern("samaj"))
	assert.Equal(t, `%50\%%`, ContainsPattern("50%"))
}

func TestIsValidSearchChar(t *testing.T) {
	valid := []rune{'a', 'Z', '5', ' ', '-', '_', '.', '@', '+', ',', '/', 'क', '्', '़', '०'}
	invalid := []rune{';', '&', '<', '>', '\'', '"', '=', '#', '*', '(', ')'}

	for _, r := range valid {
		assert.True(t, isValidSearchChar(r), "expected %q to be valid", r)
	}
	for _, r := range invalid {
		assert.False(t, isValidSearchChar(r), "expected %q to be invalid", r)
	}
}

func BenchmarkValidateSearchQuery(b *testing.B) {
	query := "arya samaj rohtak"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ValidateSearchQuery(query)
	}
}

func BenchmarkSanitizeSearchString(b *testing.B) {
	query := "arya%samaj_rohtak"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = SanitizeSearchString(query)
	}
}
