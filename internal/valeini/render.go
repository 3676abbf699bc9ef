// SPDX-License-Identifier: AGPL-3.0-or-later

package valeini

import (
	"slices"
	"strings"
)

var (
	// RootPriority is the order in which well-known root options lead the
	// file.
	RootPriority = []string{"Packages", "MinAlertLevel", "Vocab"}

	// SectionOrder lists the sections the installer manages, in the order
	// they are written.
	SectionOrder = []string{
		"docs/**/*.{md,markdown,mdx}",
		"AGENTS.md",
		"*.{rs,ts,js,sh,py}",
		"README.md",
	}
)

// annotations maps option keys to a comment emitted on the line above them.
var annotations = map[string]string{
	"BlockIgnores": "# Ignore for footnotes",
}

// Render writes cfg as text. Root options named in rootPriority come first,
// then the rest in stored order. Sections named in sectionOrder follow in
// that order, then every other section sorted by name.
func Render(cfg *Config, rootPriority, sectionOrder []string) string {
	var lines []string

	for _, key := range rootPriority {
		if value, ok := cfg.Root.Get(key); ok {
			lines = append(lines, key+" = "+value)
		}
	}
	for key, value := range cfg.Root.All() {
		if !slices.Contains(rootPriority, key) {
			lines = append(lines, key+" = "+value)
		}
	}
	if len(lines) > 0 {
		lines = append(lines, "")
	}

	emitted := make(map[string]bool)
	for _, name := range sectionOrder {
		if section, ok := cfg.Sections.Get(name); ok && !emitted[name] {
			lines = appendSection(lines, name, section)
			emitted[name] = true
		}
	}
	rest := cfg.Sections.Keys()
	slices.Sort(rest)
	for _, name := range rest {
		if !emitted[name] {
			lines = appendSection(lines, name, cfg.Section(name))
		}
	}

	return strings.TrimRight(strings.Join(lines, "\n"), " \t\r\n") + "\n"
}

func appendSection(lines []string, name string, opts *Options) []string {
	lines = append(lines, "["+name+"]")
	for key, value := range opts.All() {
		if note, ok := annotations[key]; ok {
			lines = append(lines, note)
		}
		lines = append(lines, key+" = "+value)
	}
	return append(lines, "")
}

// WriteFile renders cfg to path with the default ordering.
func WriteFile(path string, cfg *Config) error {
	return writeFile(path, Render(cfg, RootPriority, SectionOrder))
}
