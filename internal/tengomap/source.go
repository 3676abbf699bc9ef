// SPDX-License-Identifier: AGPL-3.0-or-later

package tengomap

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/leynos/concordat-vale/internal/ordered"
)

// Mode selects how source values are coerced.
type Mode string

const (
	ModePresence Mode = "true"
	ModeString   Mode = "="
	ModeBoolean  Mode = "=b"
	ModeNumber   Mode = "=n"
)

// Modes lists every valid mode in documentation order.
var Modes = []Mode{ModePresence, ModeString, ModeBoolean, ModeNumber}

// ParseMode validates a mode string such as "=n".
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q: choose from %s", ErrInvalidMode, s, modeChoices())
}

func modeChoices() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func (m Mode) String() string { return string(m) }

// Set implements pflag.Value.
func (m *Mode) Set(s string) error {
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Type implements pflag.Value.
func (m *Mode) Type() string { return "mode" }

var trailingComment = regexp.MustCompile(`\s+(#.*)?$`)

// ParseSource turns source list lines into map entries. provided counts every
// non-blank, non-comment line, duplicates included; entries keeps the last
// value seen for each key in first-seen order.
func ParseSource(lines []string, mode Mode) (int, *ordered.Map[Value], error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return 0, nil, err
	}

	provided := 0
	entries := ordered.New[Value]()
	for idx, raw := range lines {
		token, ok := sourceToken(raw)
		if !ok {
			continue
		}
		key, value, err := parseToken(token, mode)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = idx + 1
			}
			return 0, nil, err
		}
		provided++
		entries.Set(key, value)
	}
	return provided, entries, nil
}

// ParseSourceFile reads and parses a source list from disk.
func ParseSourceFile(path string, mode Mode) (int, *ordered.Map[Value], error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil, fmt.Errorf("missing input file %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return 0, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseSource(SplitLines(string(data)), mode)
}

func sourceToken(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	token := strings.TrimSpace(trailingComment.ReplaceAllString(raw, ""))
	return token, token != ""
}

func parseToken(token string, mode Mode) (string, Value, error) {
	if mode == ModePresence {
		return token, Bool(true), nil
	}

	rawKey, rawValue, found := strings.Cut(token, "=")
	if !found {
		return "", Value{}, &ParseError{Raw: token, Err: ErrMissingSeparator}
	}
	key := strings.TrimSpace(rawKey)
	if key == "" {
		return "", Value{}, &ParseError{Raw: token, Err: ErrEmptyKey}
	}
	raw := strings.TrimSpace(rawValue)

	switch mode {
	case ModeString:
		if isQuoted(raw) {
			return key, String(unquote(raw)), nil
		}
		return key, String(raw), nil
	case ModeBoolean:
		b, ok := parseBoolLiteral(raw)
		if !ok {
			return "", Value{}, &ParseError{Raw: raw, Err: ErrInvalidBoolean}
		}
		return key, Bool(b), nil
	case ModeNumber:
		v, ok := parseNumber(raw)
		if !ok {
			return "", Value{}, &ParseError{Raw: raw, Err: ErrInvalidNumber}
		}
		return key, v, nil
	default:
		return "", Value{}, fmt.Errorf("%w %q", ErrInvalidMode, mode)
	}
}

// SplitLines splits text on \n or \r\n. A trailing newline does not produce
// an empty final line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
