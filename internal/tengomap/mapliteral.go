// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tengomap edits flat map literals inside Tengo scripts.
//
// Only a narrow subset of Tengo is understood: a map bound with
// `name := {` on its own line, one `"key": value,` entry per line, and an
// optional trailing `//` comment. Entries without a trailing comma, nested
// maps, and blank lines are left untouched. Braces inside string values or
// comments confuse the default BodyFinder; see BraceDepthFinder.
package tengomap

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/leynos/concordat-vale/internal/ordered"
)

var entryPattern = regexp.MustCompile(
	`^(?P<indent>\s*)"(?P<key>(?:[^"\\]|\\.)+)"\s*:\s*(?P<value>.*),(?P<comment>\s*//.*)?\s*$`,
)

// MapEntry is an existing `"key": value,` line inside the map body.
type MapEntry struct {
	LineIndex int
	Indent    string
	Comment   string
	RawValue  string
	Value     Value
}

// MapUpdateResult summarises a merge.
type MapUpdateResult struct {
	Updated   int  // keys inserted or changed
	Rewritten bool // output differs from input
}

// BodyFinder locates the closing line of a map body given the header line.
type BodyFinder interface {
	FindMapBody(lines []string, header int) (int, error)
}

// BraceDepthFinder counts every `{` and `}` on each line after the header
// and stops where depth returns to zero. Braces inside strings or comments
// are counted too.
type BraceDepthFinder struct{}

func (BraceDepthFinder) FindMapBody(lines []string, header int) (int, error) {
	depth := 1
	for idx := header + 1; idx < len(lines); idx++ {
		depth += strings.Count(lines[idx], "{")
		depth -= strings.Count(lines[idx], "}")
		if depth == 0 {
			return idx, nil
		}
	}
	return 0, errUnbalanced
}

var errUnbalanced = errors.New("unbalanced braces")

// Patcher merges entries into map literals. The zero value uses
// BraceDepthFinder.
type Patcher struct {
	Finder BodyFinder
}

// UpdateMap merges entries into the map named mapName using the default
// Patcher.
func UpdateMap(document, mapName string, entries *ordered.Map[Value]) (string, MapUpdateResult, error) {
	return Patcher{}.UpdateMap(document, mapName, entries)
}

// UpdateMap returns document with entries merged into the named map.
//
// Keys whose current value is semantically equal are left alone. Changed
// keys are rewritten in place, keeping indentation and trailing comment. New
// keys go immediately before the closing brace in the order given.
func (p Patcher) UpdateMap(document, mapName string, entries *ordered.Map[Value]) (string, MapUpdateResult, error) {
	if mapName == "" {
		return "", MapUpdateResult{}, &MapNotFoundError{}
	}

	lines := SplitLines(document)
	header, baseIndent, ok := findHeader(lines, mapName)
	if !ok {
		return "", MapUpdateResult{}, &MapNotFoundError{Name: mapName}
	}

	finder := p.Finder
	if finder == nil {
		finder = BraceDepthFinder{}
	}
	closing, err := finder.FindMapBody(lines, header)
	if err != nil {
		return "", MapUpdateResult{}, &MapNotFoundError{Name: mapName, Unbalanced: true}
	}

	existing, entryIndent := collectEntries(lines, header+1, closing, baseIndent)

	updated := 0
	for key, value := range entries.All() {
		if entry, found := existing[key]; found {
			if entry.Value.Equal(value) {
				continue
			}
			lines[entry.LineIndex] = renderEntry(key, value, entry.Indent, entry.Comment)
			updated++
			continue
		}
		lines = insertLine(lines, closing, renderEntry(key, value, entryIndent, ""))
		closing++
		updated++
	}

	out := strings.Join(lines, "\n") + "\n"
	return out, MapUpdateResult{Updated: updated, Rewritten: out != document}, nil
}

func findHeader(lines []string, mapName string) (int, string, bool) {
	pattern := regexp.MustCompile(`^(\s*)` + regexp.QuoteMeta(mapName) + `\s*:=\s*\{\s*$`)
	for idx, line := range lines {
		if m := pattern.FindStringSubmatch(line); m != nil {
			return idx, m[1], true
		}
	}
	return 0, "", false
}

// collectEntries parses lines[start:end]. The first entry's indentation is
// reused for inserted lines; an empty map falls back to base indent plus two
// spaces.
func collectEntries(lines []string, start, end int, baseIndent string) (map[string]MapEntry, string) {
	entries := make(map[string]MapEntry)
	entryIndent := ""
	seenIndent := false
	for idx := start; idx < end; idx++ {
		m := entryPattern.FindStringSubmatch(lines[idx])
		if m == nil {
			continue
		}
		indent := m[entryPattern.SubexpIndex("indent")]
		if !seenIndent {
			entryIndent = indent
			seenIndent = true
		}
		raw := strings.TrimSpace(m[entryPattern.SubexpIndex("value")])
		entries[m[entryPattern.SubexpIndex("key")]] = MapEntry{
			LineIndex: idx,
			Indent:    indent,
			Comment:   m[entryPattern.SubexpIndex("comment")],
			RawValue:  raw,
			Value:     ParseLiteral(raw),
		}
	}
	if !seenIndent {
		entryIndent = baseIndent + "  "
	}
	return entries, entryIndent
}

func renderEntry(key string, value Value, indent, comment string) string {
	return fmt.Sprintf(`%s"%s": %s,%s`, indent, key, value.Render(), comment)
}

func insertLine(lines []string, at int, line string) []string {
	lines = append(lines, "")
	copy(lines[at+1:], lines[at:])
	lines[at] = line
	return lines
}
