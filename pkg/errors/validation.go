package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateReportID validates a stored report identifier.
// Record IDs are UUIDs; anything else is rejected before it reaches a
// storage backend key or query.
func ValidateReportID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "report id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return New(ErrCodeInvalidInput, "invalid report id: %q", id)
	}
	return nil
}

// ValidateCoordinate validates a "group:name" artifact coordinate used to
// look up report history.
//
// Validation rules:
//   - Coordinate cannot be empty
//   - Maximum length of 512 characters
//   - No control characters
//   - No path traversal sequences or separators (backends use it in keys)
func ValidateCoordinate(coord string) error {
	if coord == "" {
		return New(ErrCodeInvalidInput, "coordinate cannot be empty")
	}

	const maxCoordinateLength = 512
	if len(coord) > maxCoordinateLength {
		return New(ErrCodeInvalidInput, "coordinate too long (max %d characters)", maxCoordinateLength)
	}

	for _, r := range coord {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "coordinate contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(coord, pattern) {
			return New(ErrCodeInvalidInput, "coordinate contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
