// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pathsafe resolves user-supplied relative paths without letting
// them leave a base directory.
package pathsafe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultMapName is the map targeted when a destination has no "::" suffix.
const DefaultMapName = "allow"

// Errors returned by Resolve. Each is wrapped with the offending path.
var (
	ErrMissingPath  = errors.New("missing file")
	ErrAbsolutePath = errors.New("absolute paths are not allowed")
	ErrEscape       = errors.New("attempt to escape base directory")
	ErrExtension    = errors.New("file type not allowed")
	ErrNotFile      = errors.New("file not found")
)

// Resolve joins p onto base and checks the result. p must be non-empty and
// relative, must stay inside base once cleaned, must carry one of exts
// (case-insensitive) when exts is non-empty, and must name a regular file.
func Resolve(base, p string, exts ...string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", ErrMissingPath
	}
	if filepath.IsAbs(p) {
		return "", fmt.Errorf("%w: %s", ErrAbsolutePath, p)
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", base, err)
	}
	target := filepath.Join(base, p)
	if real, err := filepath.EvalSymlinks(target); err == nil {
		if realBase, err := filepath.EvalSymlinks(base); err == nil {
			base, target = realBase, real
		}
	}
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrEscape, p)
	}

	if len(exts) > 0 && !slices.Contains(exts, strings.ToLower(filepath.Ext(target))) {
		return "", fmt.Errorf("%w: %s", ErrExtension, p)
	}

	info, err := os.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotFile, p)
	}
	return target, nil
}

// SplitDest splits "path::map" into the script path and map name. A missing
// or empty map name means DefaultMapName.
func SplitDest(dest string) (path, mapName string, err error) {
	path, mapName, _ = strings.Cut(dest, "::")
	if path == "" {
		return "", "", errors.New("destination must include a Tengo script path")
	}
	if mapName == "" {
		mapName = DefaultMapName
	}
	return path, mapName, nil
}
