package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxSearchQueryLength is the maximum search query length in characters
	MaxSearchQueryLength = 100
)

var (
	// ErrQueryTooLong is returned for queries over MaxSearchQueryLength characters
	ErrQueryTooLong = errors.New("search query too long")
	// ErrQueryInvalid is returned for queries containing rejected characters or patterns
	ErrQueryInvalid = errors.New("search query contains invalid characters")
)

// dangerousPatterns contains regex patterns that could indicate SQL injection attempts.
// Keywords are matched as whole words so names such as "Selection Committee"
// or "Recreation Centre" stay searchable.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(union|select|insert|update|delete|drop|create|alter|exec|execute|truncate)\b`),
	regexp.MustCompile(`(?i)\b(or|and)\s+\d+\s*=\s*\d+`),
	regexp.MustCompile(`(--|/\*|\*/)`),
	regexp.MustCompile(`(?i)\b(waitfor|benchmark|pg_sleep|sleep)\b`),
	regexp.MustCompile(`(?i)(<script|</script|javascript:|vbscript:|onload=|onerror=)`),
}

// ValidateSearchQuery trims a search query and rejects it when it is too long,
// matches a dangerous pattern or contains characters outside the allowed set.
// Devanagari and other scripts are accepted, including their combining marks.
func ValidateSearchQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	if utf8.RuneCountInString(query) > MaxSearchQueryLength {
		return "", ErrQueryTooLong
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(query) {
			return "", ErrQueryInvalid
		}
	}

	for _, char := range query {
		if !isValidSearchChar(char) {
			return "", ErrQueryInvalid
		}
	}

	return query, nil
}

// isValidSearchChar checks if a character is safe for search queries
func isValidSearchChar(char rune) bool {
	if unicode.IsLetter(char) || unicode.IsMark(char) || unicode.IsNumber(char) {
		return true
	}
	switch char {
	case ' ', '-', '_', '.', '@', '+', ',', '/':
		return true
	}
	return false
}

// SanitizeSearchString escapes LIKE metacharacters so the query matches
// literally. The escape character is a backslash.
func SanitizeSearchString(query string) string {
	if query == "" {
		return ""
	}

	query = strings.ReplaceAll(query, `\`, `\\`)
	query = strings.ReplaceAll(query, "%", `\%`)
	query = strings.ReplaceAll(query, "_", `\_`)

	return query
}

// ContainsPattern returns the LIKE pattern matching any value that contains
// query as a substring.
func ContainsPattern(query string) string {
	return "%" + SanitizeSearchString(query) + "%"
}
