// SPDX-License-Identifier: AGPL-3.0-or-later

package packaging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// UnknownVersion is used when no version can be determined.
const UnknownVersion = "0.0.0+unknown"

// ResolveVersion picks the archive version: override, then
// pyproject.toml [project].version under root, then UnknownVersion.
func ResolveVersion(root, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	v, err := pyprojectVersion(root)
	if err != nil {
		return "", err
	}
	if v != "" {
		return v, nil
	}
	return UnknownVersion, nil
}

func pyprojectVersion(root string) (string, error) {
	p := filepath.Join(root, "pyproject.toml")
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", p, err)
	}

	var doc struct {
		Project struct {
			Version any `toml:"version"`
		} `toml:"project"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("decoding %s: %w", p, err)
	}
	s, _ := doc.Project.Version.(string)
	return strings.TrimSpace(s), nil
}
