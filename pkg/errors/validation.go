package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateBlockSize checks that a block size is usable for grid construction.
// Divisibility against a concrete image is checked by the grid itself.
func ValidateBlockSize(height, width int) error {
	if height <= 0 || width <= 0 {
		return New(ErrCodeInvalidInput, "block size must be positive, got %dx%d", height, width)
	}
	const maxBlockSide = 1 << 14
	if height > maxBlockSide || width > maxBlockSide {
		return New(ErrCodeInvalidInput, "block size too large (max %d per side)", maxBlockSide)
	}
	return nil
}

// ValidateThreshold checks that a similarity threshold lies in the open interval (0, 1).
func ValidateThreshold(name string, v float64) error {
	if math.IsNaN(v) || v <= 0 || v >= 1 {
		return New(ErrCodeInvalidInput, "%s must be in (0, 1), got %v", name, v)
	}
	return nil
}

// ValidateWeight checks that a blend or shading weight lies in [0, 1].
func ValidateWeight(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return New(ErrCodeInvalidInput, "%s must be in [0, 1], got %v", name, v)
	}
	return nil
}

// ValidatePath validates a file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateRunID validates a run identifier received from the outside (HTTP path, CLI arg).
// Run IDs are UUID strings; only hex digits and dashes are accepted.
func ValidateRunID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "run id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "run id too long")
	}
	if strings.IndexFunc(id, func(r rune) bool {
		return !(r == '-' || unicode.Is(unicode.ASCII_Hex_Digit, r))
	}) >= 0 {
		return New(ErrCodeInvalidInput, "run id contains invalid characters: %q", id)
	}
	return nil
}
