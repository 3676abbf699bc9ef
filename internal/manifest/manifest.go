// SPDX-License-Identifier: AGPL-3.0-or-later

// Package manifest reads the [install] table of a packaged stilyagi.toml.
package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/pelletier/go-toml/v2"

	"github.com/leynos/concordat-vale/internal/tengomap"
)

// FileName is the manifest member name inside a style archive.
const FileName = "stilyagi.toml"

// DefaultMinAlertLevel applies when the manifest does not set one.
const DefaultMinAlertLevel = "warning"

// DefaultCommand prefixes rendered post-sync steps.
const DefaultCommand = "stilyagi"

// ActionUpdateTengoMap is the only supported post-sync action.
const ActionUpdateTengoMap = "update-tengo-map"

// ErrInvalid marks a manifest whose [install] table is malformed.
var ErrInvalid = errors.New("invalid install manifest")

// Step is one validated post-sync action.
type Step struct {
	Source string
	Dest   string
	Mode   tengomap.Mode
}

// Command renders the step as a shell-quoted command line run by command.
func (s Step) Command(command string) string {
	if command == "" {
		command = DefaultCommand
	}
	return strings.Join([]string{
		command, ActionUpdateTengoMap,
		"--source", shellescape.Quote(s.Source),
		"--dest", shellescape.Quote(s.Dest),
		"--type", shellescape.Quote(string(s.Mode)),
	}, " ")
}

// Manifest carries install-time settings for a style.
type Manifest struct {
	StyleName     string
	VocabName     string
	MinAlertLevel string
	PostSyncSteps []Step
}

// Default returns the manifest used when an archive carries none.
func Default(style string) Manifest {
	return Manifest{StyleName: style, VocabName: style, MinAlertLevel: DefaultMinAlertLevel}
}

// Commands renders every post-sync step with the given command prefix.
func (m Manifest) Commands(command string) []string {
	out := make([]string, 0, len(m.PostSyncSteps))
	for _, step := range m.PostSyncSteps {
		out = append(out, step.Command(command))
	}
	return out
}

// Parse decodes TOML manifest bytes. Empty or whitespace-only strings fall
// back to defaults derived from defaultStyle.
func Parse(data []byte, defaultStyle string) (Manifest, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Manifest{}, fmt.Errorf("decoding %s: %w", FileName, err)
	}
	return FromTable(raw, defaultStyle)
}

// FromTable builds a manifest from an already decoded document. A nil
// document yields the defaults.
func FromTable(raw map[string]any, defaultStyle string) (Manifest, error) {
	install, _ := raw["install"].(map[string]any)

	m := Manifest{}
	m.StyleName = pick(install["style_name"], defaultStyle)
	m.VocabName = pick(install["vocab"], m.StyleName)
	m.MinAlertLevel = pick(install["min_alert_level"], DefaultMinAlertLevel)

	steps, err := parseSteps(install["post_sync_steps"])
	if err != nil {
		return Manifest{}, err
	}
	m.PostSyncSteps = steps
	return m, nil
}

func pick(value any, fallback string) string {
	if s, ok := value.(string); ok {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func parseSteps(raw any) ([]Step, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: install.post_sync_steps must be a list of tables; got %T", ErrInvalid, raw)
	}

	steps := make([]Step, 0, len(list))
	for _, item := range list {
		table, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: install.post_sync_steps must be a list of tables; got %T element", ErrInvalid, item)
		}
		step, err := parseStep(table)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parseStep(table map[string]any) (Step, error) {
	if action := table["action"]; action != ActionUpdateTengoMap {
		return Step{}, fmt.Errorf("%w: install.post_sync_steps action must be %q (got %v)", ErrInvalid, ActionUpdateTengoMap, action)
	}

	fields := map[string]string{"type": string(tengomap.ModePresence)}
	for _, key := range []string{"source", "dest", "type"} {
		value, present := table[key]
		if !present && key == "type" {
			continue
		}
		s, ok := value.(string)
		if !ok {
			return Step{}, fmt.Errorf("%w: install.post_sync_steps.%s must be a string", ErrInvalid, key)
		}
		fields[key] = s
	}

	mode, err := tengomap.ParseMode(fields["type"])
	if err != nil {
		return Step{}, fmt.Errorf("%w: install.post_sync_steps.type: %w", ErrInvalid, err)
	}
	return Step{Source: fields["source"], Dest: fields["dest"], Mode: mode}, nil
}
