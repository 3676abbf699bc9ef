// SPDX-License-Identifier: AGPL-3.0-or-later

package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrRepoReference is returned for references not shaped "owner/name".
var ErrRepoReference = errors.New("repository reference must be in the form 'owner/name'")

// Repo identifies the GitHub repository publishing a style.
type Repo struct {
	Owner string
	Name  string
	Style string
}

// String returns "owner/name".
func (r Repo) String() string { return r.Owner + "/" + r.Name }

// ParseRepoReference splits "owner/name". The style name is the repository
// name without a "-vale" suffix.
func ParseRepoReference(ref string) (Repo, error) {
	if strings.Count(ref, "/") != 1 {
		return Repo{}, fmt.Errorf("%w: got %q", ErrRepoReference, ref)
	}
	owner, name, _ := strings.Cut(ref, "/")
	owner, name = strings.TrimSpace(owner), strings.TrimSpace(name)
	if owner == "" || name == "" {
		return Repo{}, fmt.Errorf("%w: got %q", ErrRepoReference, ref)
	}
	style := strings.TrimSuffix(name, "-vale")
	if style == "" {
		style = name
	}
	return Repo{Owner: owner, Name: name, Style: style}, nil
}

// Paths are the absolute locations an install touches.
type Paths struct {
	ProjectRoot string
	ValeIni     string
	Makefile    string
}

// ResolvePaths anchors root at cwd and ini and makefile at the root, then
// creates their parent directories.
func ResolvePaths(cwd, root, ini, makefile string) (Paths, error) {
	p := Paths{ProjectRoot: anchor(cwd, root)}
	p.ValeIni = anchor(p.ProjectRoot, ini)
	p.Makefile = anchor(p.ProjectRoot, makefile)
	for _, dir := range []string{filepath.Dir(p.ValeIni), filepath.Dir(p.Makefile)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Paths{}, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return p, nil
}

func anchor(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
