// Package analytics folds revision histories into timelines, rankings and
// scores. Every function is pure: the same input always yields the same
// output, independent of map iteration order.
package analytics

import (
	"fmt"
	"regexp"
	"strings"
)

// Revert matching policies.
const (
	// MatchSubstring flags a comment containing any revert phrase anywhere,
	// including inside longer words ("rv" in "server").
	MatchSubstring = "substring"
	// MatchWord flags a comment only when a revert phrase stands as a word.
	MatchWord = "word"
)

// revertPhrases mark an edit summary as a revert.
var revertPhrases = []string{"reverted", "undo", "rv"}

var revertWordPattern = regexp.MustCompile(`(?i)\b(?:reverted|undo|rv)\b`)

// RevertDetector decides whether an edit summary describes a revert.
type RevertDetector struct {
	mode string
}

// NewRevertDetector returns a detector for the given policy.
func NewRevertDetector(mode string) (*RevertDetector, error) {
	switch mode {
	case "", MatchSubstring:
		return &RevertDetector{mode: MatchSubstring}, nil
	case MatchWord:
		return &RevertDetector{mode: MatchWord}, nil
	default:
		return nil, fmt.Errorf("unknown revert match mode %q", mode)
	}
}

// DefaultRevertDetector uses substring matching.
func DefaultRevertDetector() *RevertDetector {
	return &RevertDetector{mode: MatchSubstring}
}

// Mode returns the active policy.
func (d *RevertDetector) Mode() string {
	return d.mode
}

// IsRevert reports whether comment matches a revert phrase, case-insensitively.
func (d *RevertDetector) IsRevert(comment string) bool {
	if comment == "" {
		return false
	}
	if d.mode == MatchWord {
		return revertWordPattern.MatchString(comment)
	}
	lower := strings.ToLower(comment)
	for _, phrase := range revertPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
