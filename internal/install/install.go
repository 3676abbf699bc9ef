// SPDX-License-Identifier: AGPL-3.0-or-later

// Package install wires a published Vale style into a consumer project:
// .vale.ini, Makefile and .gitignore.
package install

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/leynos/concordat-vale/internal/gitignore"
	"github.com/leynos/concordat-vale/internal/makefile"
	"github.com/leynos/concordat-vale/internal/manifest"
	"github.com/leynos/concordat-vale/internal/ordered"
	"github.com/leynos/concordat-vale/internal/release"
	"github.com/leynos/concordat-vale/internal/valeini"
)

// FootnoteRegex keeps Vale away from Markdown footnote definitions.
const FootnoteRegex = `(?m)^\[\^\d+\]:[^\n]*(?:\n[ \t]+[^\n]*)*`

// DefaultStylesPath is assumed when .vale.ini does not set StylesPath.
const DefaultStylesPath = "styles"

// ReleaseSource resolves and downloads style archives.
type ReleaseSource interface {
	Resolve(ctx context.Context, r release.Request) (release.Resolved, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// Options describe one install run.
type Options struct {
	Repo  Repo
	Paths Paths

	// Version and Tag pin the release instead of asking for the latest.
	Version string
	Tag     string

	// SkipManifest uses default manifest values without downloading the
	// archive.
	SkipManifest bool

	// StepCommand prefixes post-sync steps written to the Makefile.
	StepCommand string
}

// Result reports what an install changed.
type Result struct {
	Release        release.Resolved
	Manifest       manifest.Manifest
	GitignoreEntry string
}

// Installer runs installs against a release source.
type Installer struct {
	Releases ReleaseSource
	Logger   hclog.Logger
}

// New returns an installer. A nil logger discards output.
func New(releases ReleaseSource, logger hclog.Logger) *Installer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Installer{Releases: releases, Logger: logger}
}

// Install resolves the release, loads its manifest and updates the project
// files.
func (in *Installer) Install(ctx context.Context, opts Options) (Result, error) {
	rel, err := in.Releases.Resolve(ctx, release.Request{
		Repo:    opts.Repo.String(),
		Style:   opts.Repo.Style,
		Version: opts.Version,
		Tag:     opts.Tag,
	})
	if err != nil {
		return Result{}, fmt.Errorf("resolving release: %w", err)
	}
	in.Logger.Debug("resolved release", "repo", opts.Repo.String(), "tag", rel.Tag, "url", rel.URL)

	m := manifest.Default(opts.Repo.Style)
	if !opts.SkipManifest {
		if m, err = in.LoadManifest(ctx, rel.URL, opts.Repo.Style); err != nil {
			return Result{}, err
		}
	}

	cfg, err := UpdateValeIni(opts.Paths.ValeIni, rel.URL, m)
	if err != nil {
		return Result{}, err
	}
	if err := makefile.UpdateFile(opts.Paths.Makefile, m.Commands(opts.StepCommand)); err != nil {
		return Result{}, err
	}

	res := Result{Release: rel, Manifest: m}
	stylesPath := StylesPath(cfg)
	if entry, ok := gitignore.NormaliseStylesPath(stylesPath, opts.Paths.ValeIni, opts.Paths.ProjectRoot); ok {
		if _, err := gitignore.EnsureEntry(filepath.Join(opts.Paths.ProjectRoot, ".gitignore"), entry); err != nil {
			return Result{}, err
		}
		res.GitignoreEntry = entry
	} else {
		in.Logger.Debug("StylesPath outside project; leaving .gitignore alone", "styles_path", stylesPath)
	}
	return res, nil
}

var trailingComment = regexp.MustCompile(`\s+#.*$`)

// StylesPath returns the directory .vale.ini points Vale at, without any
// trailing " # comment". Other values keep their hashes.
func StylesPath(cfg *valeini.Config) string {
	v, ok := cfg.Root.Get("StylesPath")
	if ok {
		v = strings.TrimSpace(trailingComment.ReplaceAllString(v, ""))
	}
	if v == "" {
		return DefaultStylesPath
	}
	return v
}

// Message is the one-line summary printed after an install.
func (r Result) Message(repo Repo, paths Paths) string {
	return fmt.Sprintf("Installed %s %s from %s into %s and %s",
		r.Manifest.StyleName, r.Release.Version, repo, paths.ValeIni, paths.Makefile)
}

// LoadManifest reads stilyagi.toml from the archive at url. Download,
// archive and TOML errors fall back to the defaults for defaultStyle; a
// manifest that decodes but is invalid is an error.
func (in *Installer) LoadManifest(ctx context.Context, url, defaultStyle string) (manifest.Manifest, error) {
	fallback := manifest.Default(defaultStyle)

	archive, err := in.Releases.Download(ctx, url)
	if err != nil {
		in.Logger.Debug("failed to download archive; using default manifest", "url", url, "error", err)
		return fallback, nil
	}
	data, found, err := release.ExtractFile(archive, manifest.FileName)
	if err != nil || !found {
		in.Logger.Debug("no manifest in archive; using defaults", "url", url, "manifest_found", found, "error", err)
		return fallback, nil
	}

	m, err := manifest.Parse(data, defaultStyle)
	if errors.Is(err, manifest.ErrInvalid) {
		return manifest.Manifest{}, err
	}
	if err != nil {
		in.Logger.Debug("failed to decode manifest; using defaults", "url", url, "error", err)
		return fallback, nil
	}
	return m, nil
}

// RequiredSections returns the sections every install enforces for the
// manifest's style.
func RequiredSections(m manifest.Manifest) *ordered.Map[*valeini.Options] {
	style := m.StyleName
	return ordered.FromPairs(
		ordered.P("docs/**/*.{md,markdown,mdx}", ordered.FromPairs(
			ordered.P("BasedOnStyles", style),
			ordered.P("BlockIgnores", FootnoteRegex),
		)),
		ordered.P("AGENTS.md", ordered.FromPairs(
			ordered.P("BasedOnStyles", style),
		)),
		ordered.P("*.{rs,ts,js,sh,py}", ordered.FromPairs(
			ordered.P("BasedOnStyles", style),
			ordered.P(style+".RustNoRun", "NO"),
			ordered.P(style+".Acronyms", "NO"),
		)),
		ordered.P("README.md", ordered.FromPairs(
			ordered.P("BasedOnStyles", style),
			ordered.P(style+".Pronouns", "NO"),
		)),
	)
}

// UpdateValeIni merges the package URL, manifest root options and required
// sections into the .vale.ini at path and writes it back.
func UpdateValeIni(path, packagesURL string, m manifest.Manifest) (*valeini.Config, error) {
	cfg, err := valeini.ParseFile(path)
	if err != nil {
		return nil, err
	}
	root := ordered.FromPairs(
		ordered.P("Packages", packagesURL),
		ordered.P("MinAlertLevel", m.MinAlertLevel),
		ordered.P("Vocab", m.VocabName),
	)
	merged := valeini.Merge(cfg, root, RequiredSections(m))
	if err := valeini.WriteFile(path, merged); err != nil {
		return nil, err
	}
	return merged, nil
}
