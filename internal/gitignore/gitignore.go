// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gitignore keeps the installed styles directory out of version
// control.
package gitignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leynos/concordat-vale/internal/fsutil"
)

// EnsureEntry adds entry to the .gitignore at path unless an equivalent,
// uncommented line is already there. The file is created when missing.
// It reports whether the file was written.
func EnsureEntry(path, entry string) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := fsutil.WriteFile(path, []byte(entry+"\n"), 0o644); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	content := string(data)
	if Contains(content, entry) {
		return false, nil
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"
	if err := fsutil.WriteFile(path, []byte(content), fsutil.Mode(path, 0o644)); err != nil {
		return false, err
	}
	return true, nil
}

// Contains reports whether content has a non-comment line naming entry.
// Surrounding whitespace and a trailing slash are ignored on both sides.
func Contains(content, entry string) bool {
	want := normalise(entry)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if normalise(line) == want {
			return true
		}
	}
	return false
}

func normalise(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), "/")
}

// NormaliseStylesPath converts a StylesPath value into a repo-relative
// ".gitignore" entry ending in "/". Relative paths are resolved against the
// directory holding iniPath. ok is false when the path is the project root
// itself or lies outside it.
func NormaliseStylesPath(stylesPath, iniPath, projectRoot string) (entry string, ok bool) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", false
	}
	target := filepath.FromSlash(strings.TrimSpace(stylesPath))
	if !filepath.IsAbs(target) {
		iniDir, err := filepath.Abs(filepath.Dir(iniPath))
		if err != nil {
			return "", false
		}
		target = filepath.Join(iniDir, target)
	}
	rel, err := filepath.Rel(root, filepath.Clean(target))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel) + "/", true
}
