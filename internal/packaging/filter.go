// SPDX-License-Identifier: AGPL-3.0-or-later

package packaging

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides which style files make it into an archive. Paths are
// slash-separated and relative to the styles root.
type Filter struct {
	// ExcludeDirs drops any path with a matching segment: ".git" excludes
	// "concordat/.git/HEAD" but not "concordat/.github/x".
	ExcludeDirs []string

	// ExcludeGlobs are doublestar patterns matched against the whole path.
	ExcludeGlobs []string
}

// DefaultExcludeDirs lists directories never shipped in a style archive.
func DefaultExcludeDirs() []string {
	return []string{".git", "__pycache__", ".pytest_cache"}
}

// Apply returns the kept paths sorted.
func (f Filter) Apply(paths []string) []string {
	var kept []string
	for _, p := range paths {
		if f.excluded(p) {
			continue
		}
		kept = append(kept, p)
	}
	slices.Sort(kept)
	return kept
}

func (f Filter) excluded(path string) bool {
	for _, part := range strings.Split(path, "/") {
		if slices.Contains(f.ExcludeDirs, part) {
			return true
		}
	}
	for _, pattern := range f.ExcludeGlobs {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// ValidateGlobs reports the first malformed pattern.
func ValidateGlobs(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return &InvalidPatternError{Pattern: p}
		}
	}
	return nil
}

// InvalidPatternError names an exclude pattern doublestar cannot parse.
type InvalidPatternError struct {
	Pattern string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid exclude pattern %q", e.Pattern)
}
