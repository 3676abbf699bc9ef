// SPDX-License-Identifier: AGPL-3.0-or-later

// Package acronyms merges a project's acronym list into the allow map of
// the synced AcronymsFirstUse.tengo script.
package acronyms

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/leynos/concordat-vale/internal/fsutil"
)

const (
	// ManagedComment opens the block this package owns inside the allow map.
	ManagedComment = "// Project-specific acronyms (imported from .config/common-acronyms)"
	// RomanMarker is the comment the managed block is inserted above.
	RomanMarker = "// Roman numerals appearing in API names"

	// DefaultSource is the project acronym list.
	DefaultSource = ".config/common-acronyms"
	// DefaultScript is the synced Tengo script holding the allow map.
	DefaultScript = ".vale/styles/config/scripts/AcronymsFirstUse.tengo"
)

var (
	allowEntry = regexp.MustCompile(`^\s*"([^"\\]+)":\s*true,\s*$`)
	validToken = regexp.MustCompile(`^[0-9A-Z]+$`)

	// ErrInvalidAcronym marks a source line that is not alphanumeric.
	ErrInvalidAcronym = errors.New("acronym must be alphanumeric")
	// ErrNoInsertionPoint is returned when the allow map has no closing
	// brace line.
	ErrNoInsertionPoint = errors.New("unable to locate the allow map closing brace for insertion")
)

// Result summarises an allow map update.
type Result struct {
	Wrote   bool
	Managed []string
}

// LoadProjectAcronyms reads the acronym list at path. Blank and "#" lines
// are skipped; tokens are upper-cased and deduplicated in first-seen order.
func LoadProjectAcronyms(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("missing %s; create %s before syncing: %w", path, DefaultSource, err)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var out []string
	seen := make(map[string]bool)
	for i, raw := range splitLines(string(data)) {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		token := strings.ToUpper(line)
		if !validToken.MatchString(token) {
			return nil, fmt.Errorf("line %d in %s: %w; got %q", i+1, path, ErrInvalidAcronym, line)
		}
		if !seen[token] {
			seen[token] = true
			out = append(out, token)
		}
	}
	return out, nil
}

// UpdateAllowMap rewrites the managed block in the script at path so it
// lists the acronyms not already allowed elsewhere in the file.
func UpdateAllowMap(path string, acronyms []string) (Result, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Result{}, fmt.Errorf("AcronymsFirstUse.tengo has not been synced; run `vale sync` first (expected %s): %w", path, err)
	}
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", path, err)
	}

	original := string(data)
	out, managed, err := Apply(original, acronyms)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	if out == original {
		return Result{Managed: managed}, nil
	}
	if err := fsutil.WriteFile(path, []byte(out), fsutil.Mode(path, 0o644)); err != nil {
		return Result{}, err
	}
	return Result{Wrote: true, Managed: managed}, nil
}

// Apply is the text transform behind UpdateAllowMap. It returns the new
// script and the acronyms placed in the managed block.
func Apply(text string, acronyms []string) (string, []string, error) {
	lines := removeManagedBlock(splitLines(text))

	existing := make(map[string]bool)
	for _, line := range lines {
		if m := allowEntry.FindStringSubmatch(line); m != nil {
			existing[m[1]] = true
		}
	}
	var managed []string
	for _, token := range acronyms {
		if !existing[token] {
			managed = append(managed, token)
		}
	}

	if len(managed) > 0 {
		at, err := insertionIndex(lines)
		if err != nil {
			return "", nil, err
		}
		lines = slices.Insert(lines, at, buildBlock(managed)...)
	}
	return strings.Join(lines, "\n") + "\n", managed, nil
}

func removeManagedBlock(lines []string) []string {
	start := slices.IndexFunc(lines, func(l string) bool { return strings.TrimSpace(l) == ManagedComment })
	if start < 0 {
		return lines
	}
	end := start + 1
	for end < len(lines) {
		if strings.TrimSpace(lines[end]) == "" {
			end++
			break
		}
		if !allowEntry.MatchString(lines[end]) {
			break
		}
		end++
	}
	return slices.Delete(slices.Clone(lines), start, end)
}

func buildBlock(tokens []string) []string {
	block := []string{"  " + ManagedComment}
	for _, token := range tokens {
		block = append(block, fmt.Sprintf("  %q: true,", token))
	}
	return append(block, "")
}

func insertionIndex(lines []string) (int, error) {
	if i := slices.IndexFunc(lines, func(l string) bool { return strings.TrimSpace(l) == RomanMarker }); i >= 0 {
		return i, nil
	}
	if i := slices.IndexFunc(lines, func(l string) bool { return strings.TrimSpace(l) == "}" }); i >= 0 {
		return i, nil
	}
	return 0, ErrNoInsertionPoint
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
