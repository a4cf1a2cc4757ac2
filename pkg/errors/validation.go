package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxSeriesNameLength bounds series names so they stay usable as map keys,
// file names and cache key parts.
const maxSeriesNameLength = 256

// ValidateSeriesName validates a series name for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateSeriesName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "series name cannot be empty")
	}

	if len(name) > maxSeriesNameLength {
		return New(ErrCodeInvalidInput, "series name too long (max %d characters)", maxSeriesNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "series name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "series name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateURL validates a backend URL against a set of allowed schemes.
// With no schemes given, http and https are allowed.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if len(schemes) == 0 {
		schemes = []string{"http", "https"}
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes: %s", strings.Join(schemes, ", "))
}

// sceneIDRegex matches canonical lowercase UUID strings.
var sceneIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateSceneID validates a scene identifier.
func ValidateSceneID(id string) error {
	if !sceneIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid scene id: %q", id)
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed values.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(allowed, ", "))
}
