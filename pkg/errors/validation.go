package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// MaxSpan is the largest column or row span accepted from external input.
// The tiler itself clamps spans to the column count; this bound only keeps
// hostile input from requesting absurd values.
const MaxSpan = 1 << 16

// ValidateContainerWidth checks that a container width can be tiled.
// The width must be a finite, strictly positive number of pixels.
func ValidateContainerWidth(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return New(ErrCodeInvalidConfig, "container width must be finite, got %v", w)
	}
	if w <= 0 {
		return New(ErrCodeInvalidConfig, "container width must be positive, got %v", w)
	}
	return nil
}

// ValidateBlockSize checks a base block dimension (width or height).
// name is used in the message, e.g. "base width".
func ValidateBlockSize(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be finite, got %v", name, v)
	}
	if v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %v", name, v)
	}
	return nil
}

// ValidateSpan checks a requested column or row span.
// Zero means "unspecified" and is accepted; the tiler treats it as 1.
func ValidateSpan(name string, v int) error {
	if v < 0 {
		return New(ErrCodeInvalidItem, "%s must not be negative, got %d", name, v)
	}
	if v > MaxSpan {
		return New(ErrCodeInvalidItem, "%s too large (max %d), got %d", name, MaxSpan, v)
	}
	return nil
}

// itemIDRegex matches item identifiers: letters, digits, dot, dash, underscore, colon.
var itemIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateItemID validates a caller-supplied item identifier.
// An empty ID is allowed; the layout package assigns one.
func ValidateItemID(id string) error {
	if id == "" {
		return nil
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidItem, "item id too long (max 128 characters)")
	}
	if !itemIDRegex.MatchString(id) {
		return New(ErrCodeInvalidItem, "invalid item id: %q", id)
	}
	return nil
}

// ValidateFilename validates an item or layout filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidInput, "filename cannot contain path separators")
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "filename contains invalid control characters")
		}
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidInput, "filename cannot be a hidden file")
	}

	return nil
}

// idRegex matches canonical lowercase UUID strings used for sessions and layouts.
var idRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateID validates a session or layout ID taken from a URL or file name.
// Rejecting anything but a canonical UUID keeps IDs safe to use as file
// names and storage keys.
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid id: %q", id)
	}
	return nil
}
