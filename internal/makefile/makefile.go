// SPDX-License-Identifier: AGPL-3.0-or-later

// Package makefile adds a managed vale target to a project Makefile.
package makefile

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/leynos/concordat-vale/internal/fsutil"
)

// Target is the make target the installer owns.
const Target = "vale"

var valeVariable = regexp.MustCompile(`^VALE\s*[?:]?=`)

// Recipe returns the vale target lines for the given post-sync commands.
func Recipe(steps []string) []string {
	recipe := []string{Target + ": ## Check prose", "\t$(VALE) sync"}
	for _, step := range steps {
		recipe = append(recipe, "\t"+step)
	}
	return append(recipe, "\t$(VALE) --no-global --output line .")
}

// Update returns text with a VALE variable, a .PHONY entry and a vale
// target running steps after the sync. Any existing vale target is
// replaced; other content is kept.
func Update(text string, steps []string) string {
	lines := splitLines(text)
	lines = ensureVariable(lines)
	lines = ensurePhony(lines, Target)
	lines = replaceTarget(lines, Recipe(steps))
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\r\n") + "\n"
}

// UpdateFile applies Update to the Makefile at path, creating it when
// missing.
func UpdateFile(path string, steps []string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return fsutil.WriteFile(path, []byte(Update(string(data), steps)), fsutil.Mode(path, 0o644))
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// prepend puts line ahead of lines, separated by a blank line when lines is
// not empty.
func prepend(line string, lines []string) []string {
	out := []string{line}
	if len(lines) > 0 {
		out = append(out, "")
	}
	return append(out, lines...)
}

func ensureVariable(lines []string) []string {
	if slices.ContainsFunc(lines, valeVariable.MatchString) {
		return lines
	}
	return prepend("VALE ?= vale", lines)
}

func ensurePhony(lines []string, target string) []string {
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimLeft(line, " \t"), ".PHONY") {
			continue
		}
		if slices.Contains(strings.Fields(line), target) {
			return lines
		}
		out := slices.Clone(lines)
		out[i] = strings.TrimRight(line, " \t") + " " + target
		return out
	}
	return prepend(".PHONY: "+target, lines)
}

// targetBounds locates the header line starting with header and the end of
// its recipe, including trailing blank lines. start is -1 when absent.
func targetBounds(lines []string, header string) (start, end int) {
	start = slices.IndexFunc(lines, func(l string) bool { return strings.HasPrefix(l, header) })
	if start < 0 {
		return -1, len(lines)
	}
	end = start + 1
	for end < len(lines) && strings.HasPrefix(lines[end], "\t") {
		end++
	}
	for end < len(lines) && strings.TrimSpace(lines[end]) == "" {
		end++
	}
	return start, end
}

func replaceTarget(lines, recipe []string) []string {
	start, end := targetBounds(lines, Target+":")
	if start < 0 {
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) != "" {
			lines = append(lines, "")
		}
		return append(lines, recipe...)
	}
	out := slices.Clone(lines[:start])
	out = append(out, recipe...)
	return append(out, lines[end:]...)
}
