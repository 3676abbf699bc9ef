// SPDX-License-Identifier: AGPL-3.0-or-later

package tengomap

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing source list or Tengo script.
	ErrNotFound = errors.New("file not found")

	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("invalid source entry")

	ErrEmptyKey         = errors.New("map keys may not be empty")
	ErrMissingSeparator = errors.New("source lines must include '=' when using typed modes")
	ErrInvalidBoolean   = errors.New("expected true or false")
	ErrInvalidNumber    = errors.New("could not parse numeric value")
	ErrInvalidMode      = errors.New("invalid value mode")
)

// ParseError describes a source line that could not be coerced.
type ParseError struct {
	Line int    // 1-based line number, 0 when unknown
	Raw  string // offending text
	Err  error  // one of ErrEmptyKey, ErrMissingSeparator, ErrInvalidBoolean, ErrInvalidNumber
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v, got %q", e.Line, e.Err, e.Raw)
	}
	return fmt.Sprintf("%v, got %q", e.Err, e.Raw)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrParse) match any parse failure.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// MapNotFoundError reports that the named map, or its closing brace, could
// not be located.
type MapNotFoundError struct {
	Name       string
	Unbalanced bool
}

func (e *MapNotFoundError) Error() string {
	switch {
	case e.Name == "":
		return "map name must be provided"
	case e.Unbalanced:
		return fmt.Sprintf("failed to locate closing brace for map %q", e.Name)
	default:
		return fmt.Sprintf("could not find map %q in Tengo script", e.Name)
	}
}
