// SPDX-License-Identifier: AGPL-3.0-or-later

package valeini

import "github.com/leynos/concordat-vale/internal/ordered"

// Merge returns a copy of cfg with the required root options and sections
// applied. Root options overwrite by key and keep their existing position;
// sections are rebuilt by MergeSection. cfg is not modified.
func Merge(cfg *Config, root *Options, sections *ordered.Map[*Options]) *Config {
	out := cfg.Clone()
	for key, value := range root.All() {
		out.Root.Set(key, value)
	}
	for name, required := range sections.All() {
		out.Sections.Set(name, MergeSection(out.Section(name), required))
	}
	return out
}

// MergeSection overlays required on existing. Required keys come first in
// the order given, followed by the remaining existing keys in their original
// order.
func MergeSection(existing, required *Options) *Options {
	merged := ordered.New[string]()
	for key, value := range required.All() {
		merged.Set(key, value)
	}
	for key, value := range existing.All() {
		if !merged.Has(key) {
			merged.Set(key, value)
		}
	}
	return merged
}
