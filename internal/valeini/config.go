// SPDX-License-Identifier: AGPL-3.0-or-later

// Package valeini reads, merges and renders .vale.ini files.
//
// The format handled here is deliberately small: root `key = value` options
// followed by `[section]` blocks of the same. Full-line `#` and `;` comments
// are skipped, and any line that is neither a header nor contains `=` is
// dropped on parse. Rendering is deterministic so repeated installs produce
// byte-identical files.
package valeini

import (
	"fmt"
	"os"
	"strings"

	"github.com/leynos/concordat-vale/internal/fsutil"
	"github.com/leynos/concordat-vale/internal/ordered"
)

// Options is the ordered key/value content of the root scope or a section.
type Options = ordered.Map[string]

// Config is a parsed .vale.ini.
type Config struct {
	Root     *Options
	Sections *ordered.Map[*Options]
}

// New returns an empty config.
func New() *Config {
	return &Config{Root: ordered.New[string](), Sections: ordered.New[*Options]()}
}

// Section returns the named section, or nil.
func (c *Config) Section(name string) *Options {
	s, _ := c.Sections.Get(name)
	return s
}

// Clone deep-copies c.
func (c *Config) Clone() *Config {
	out := &Config{Root: c.Root.Clone(), Sections: ordered.New[*Options]()}
	for name, opts := range c.Sections.All() {
		out.Sections.Set(name, opts.Clone())
	}
	return out
}

// Equal reports whether both configs hold the same options. Root options
// and sections may appear in any order, since Render normalises both; keys
// within a section must match in order.
func (c *Config) Equal(other *Config) bool {
	if !sameEntries(c.Root, other.Root, func(a, b string) bool { return a == b }) {
		return false
	}
	return sameEntries(c.Sections, other.Sections, func(a, b *Options) bool {
		return ordered.Equal(a, b)
	})
}

func sameEntries[V any](a, b *ordered.Map[V], eq func(x, y V) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	for key, av := range a.All() {
		bv, ok := b.Get(key)
		if !ok || !eq(av, bv) {
			return false
		}
	}
	return true
}

// Parse reads text into a Config. It never fails: unrecognised lines are
// silently discarded. Values are kept verbatim apart from surrounding
// whitespace, so a " #" inside a value is not a comment.
func Parse(text string) *Config {
	cfg := New()
	current := cfg.Root

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") || strings.HasPrefix(stripped, ";") {
			continue
		}
		if strings.HasPrefix(stripped, "[") && strings.HasSuffix(stripped, "]") {
			name := strings.TrimSpace(stripped[1 : len(stripped)-1])
			section, ok := cfg.Sections.Get(name)
			if !ok {
				section = ordered.New[string]()
				cfg.Sections.Set(name, section)
			}
			current = section
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		current.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	return cfg
}

// ParseFile parses the file at path. A missing file yields an empty config.
func ParseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

func writeFile(path, content string) error {
	return fsutil.WriteFile(path, []byte(content), fsutil.Mode(path, 0o644))
}
