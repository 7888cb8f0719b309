package resolver

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrInvalidQuery marks a query rejected before the cascade ran. It is the
// only error Resolve returns.
var ErrInvalidQuery = errors.New("invalid query")

const DefaultMaxQueryLength = 2000

// Patterns that have no business inside a documentation question:
// traversal, script injection and code-eval markers.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\.\./`),
	regexp.MustCompile(`(?i)\.\.\\`),
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)eval\(`),
	regexp.MustCompile(`(?i)exec\(`),
	regexp.MustCompile(`(?i)import\s+`),
	regexp.MustCompile(`(?i)__.*__`),
	regexp.MustCompile(`(?i)file://`),
	regexp.MustCompile(`(?i)ftp://`),
}

var sanitizePattern = regexp.MustCompile(`[^\w\s\-:.,?!@#$%^&*()+=\[\]{}|;'"/<>]`)

// ValidateQuery trims, bounds and sanitizes a raw query. maxLen <= 0 uses
// the default limit.
func ValidateQuery(query string, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", fmt.Errorf("%w: query cannot be empty", ErrInvalidQuery)
	}

	if maxLen <= 0 {
		maxLen = DefaultMaxQueryLength
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return "", fmt.Errorf("%w: query too long (max %d characters)", ErrInvalidQuery, maxLen)
	}

	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(trimmed) {
			return "", fmt.Errorf("%w: query contains potentially dangerous content", ErrInvalidQuery)
		}
	}

	return sanitizePattern.ReplaceAllString(trimmed, ""), nil
}
