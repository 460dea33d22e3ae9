package analytics

import (
	"fmt"
	"strings"
)

const (
	// DefaultLimit is the ranking length when none is requested.
	DefaultLimit = 10
	// MaxLimit bounds the ranking length a client may request.
	MaxLimit = 100

	maxTitleLength = 255
)

// titleIllegalChars cannot appear in a page title.
const titleIllegalChars = "#<>[]|{}"

// NormalizeLimit clamps a requested ranking length to [1, MaxLimit]. A
// non-positive request falls back to def.
func NormalizeLimit(limit, def int) int {
	if def <= 0 {
		def = DefaultLimit
	}
	if limit <= 0 {
		limit = def
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ValidateTitle rejects titles the wiki could never resolve, saving an
// upstream round trip.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("title too long")
	}
	if i := strings.IndexAny(title, titleIllegalChars); i >= 0 {
		return fmt.Errorf("title contains illegal character %q", title[i])
	}
	return nil
}

// ValidateUsername rejects empty or malformed user names.
func ValidateUsername(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("username is required")
	}
	if len(name) > maxTitleLength {
		return fmt.Errorf("username too long")
	}
	if strings.ContainsAny(name, titleIllegalChars+"/") {
		return fmt.Errorf("username contains illegal characters")
	}
	return nil
}
