// SPDX-License-Identifier: AGPL-3.0-or-later

// Package packaging builds distributable ZIP archives of Vale styles.
package packaging

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/leynos/concordat-vale/internal/fsutil"
	"github.com/leynos/concordat-vale/internal/manifest"
)

const (
	// DefaultStylesPath is where styles live relative to the project root.
	DefaultStylesPath = "styles"
	// DefaultOutputDir receives built archives.
	DefaultOutputDir = "dist"
	// DefaultIniStylesPath is the StylesPath written into the archive.
	DefaultIniStylesPath = "styles"

	configDir = "config"
)

var (
	// ErrStylesDirMissing is returned when the styles directory is absent.
	ErrStylesDirMissing = errors.New("styles directory does not exist")
	// ErrNoStyles is returned when discovery finds nothing to package.
	ErrNoStyles = errors.New("no styles found")
	// ErrStylesNotFound is returned when explicitly requested styles are absent.
	ErrStylesNotFound = errors.New("styles not found")
	// ErrArchiveExists is returned when the target archive exists and force
	// is off.
	ErrArchiveExists = errors.New("archive already exists")
	// ErrAbsoluteStylesPath rejects an absolute StylesPath inside the archive.
	ErrAbsoluteStylesPath = errors.New("StylesPath inside the archive must be a relative directory")
)

// Paths locates the project, its styles and the output directory. Relative
// StylesPath and OutputDir are anchored at ProjectRoot.
type Paths struct {
	ProjectRoot string
	StylesPath  string
	OutputDir   string
}

// Options selects what goes into the archive.
type Options struct {
	// Styles restricts packaging to these names; empty means discover all.
	Styles []string
	// Vocabulary overrides the Vocab written to the archive's .vale.ini.
	Vocabulary string
	// IniStylesPath is the StylesPath written to the archive's .vale.ini.
	IniStylesPath string
	// Exclude holds doublestar patterns of style files to leave out.
	Exclude []string
}

// Package writes "<styles>-<version>.zip" into the output directory and
// returns its absolute path.
func Package(paths Paths, opts Options, version string, force bool) (string, error) {
	root, err := filepath.Abs(paths.ProjectRoot)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	stylesRoot := anchor(root, orDefault(paths.StylesPath, DefaultStylesPath))
	if info, err := os.Stat(stylesRoot); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrStylesDirMissing, stylesRoot)
	}

	iniStylesPath := orDefault(opts.IniStylesPath, DefaultIniStylesPath)
	if filepath.IsAbs(iniStylesPath) || path.IsAbs(filepath.ToSlash(iniStylesPath)) {
		return "", ErrAbsoluteStylesPath
	}
	if err := ValidateGlobs(opts.Exclude); err != nil {
		return "", err
	}

	styles, err := StyleNames(stylesRoot, opts.Styles)
	if err != nil {
		return "", err
	}
	vocab, err := SelectVocabulary(stylesRoot, opts.Vocabulary)
	if err != nil {
		return "", err
	}

	members, err := collectMembers(stylesRoot, styles, Filter{
		ExcludeDirs:  DefaultExcludeDirs(),
		ExcludeGlobs: opts.Exclude,
	})
	if err != nil {
		return "", err
	}

	outDir := anchor(root, orDefault(paths.OutputDir, DefaultOutputDir))
	stem := strings.Join(styles, "-") + "-" + version
	archivePath := filepath.Join(outDir, stem+".zip")
	if _, err := os.Stat(archivePath); err == nil && !force {
		return "", fmt.Errorf("%w: %s; rerun with --force to overwrite", ErrArchiveExists, archivePath)
	}

	manifestPath := filepath.Join(root, manifest.FileName)
	if _, err := os.Stat(manifestPath); err != nil {
		manifestPath = ""
	}

	archiveRoot := path.Join(stem, filepath.ToSlash(iniStylesPath))
	err = fsutil.WriteFunc(archivePath, 0o644, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		if err := writeMember(zw, path.Join(stem, ".vale.ini"), strings.NewReader(BuildIni(iniStylesPath, vocab))); err != nil {
			return err
		}
		if manifestPath != "" {
			if err := copyMember(zw, path.Join(stem, manifest.FileName), manifestPath); err != nil {
				return err
			}
		}
		for _, rel := range members {
			if err := copyMember(zw, path.Join(archiveRoot, rel), filepath.Join(stylesRoot, filepath.FromSlash(rel))); err != nil {
				return err
			}
		}
		return zw.Close()
	})
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", archivePath, err)
	}
	return archivePath, nil
}

// BuildIni renders the .vale.ini shipped inside an archive.
func BuildIni(stylesPath, vocabulary string) string {
	lines := []string{"StylesPath = " + stylesPath}
	if vocabulary != "" {
		lines = append(lines, "Vocab = "+vocabulary)
	}
	return strings.Join(append(lines, ""), "\n")
}

// StyleNames returns the styles to package. Explicit names are
// deduplicated, sorted and must all exist; otherwise every directory under
// stylesRoot except config is used.
func StyleNames(stylesRoot string, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		names := slices.Clone(explicit)
		slices.Sort(names)
		names = slices.Compact(names)
		var missing []string
		for _, name := range names {
			if !isDir(filepath.Join(stylesRoot, name)) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w under %s: %s", ErrStylesNotFound, stylesRoot, strings.Join(missing, ", "))
		}
		return names, nil
	}

	names, err := subdirs(stylesRoot)
	if err != nil {
		return nil, err
	}
	names = slices.DeleteFunc(names, func(n string) bool { return n == configDir })
	if len(names) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoStyles, stylesRoot)
	}
	return names, nil
}

// SelectVocabulary returns override when set, otherwise the single
// vocabulary under config/vocabularies. Zero or several vocabularies yield
// "".
func SelectVocabulary(stylesRoot, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	vocabRoot := filepath.Join(stylesRoot, configDir, "vocabularies")
	if !isDir(vocabRoot) {
		return "", nil
	}
	names, err := subdirs(vocabRoot)
	if err != nil {
		return "", err
	}
	if len(names) == 1 {
		return names[0], nil
	}
	return "", nil
}

func collectMembers(stylesRoot string, styles []string, filter Filter) ([]string, error) {
	dirs := slices.Clone(styles)
	if isDir(filepath.Join(stylesRoot, configDir)) {
		dirs = append(dirs, configDir)
	}

	fsys := os.DirFS(stylesRoot)
	var all []string
	for _, dir := range dirs {
		matches, err := doublestar.Glob(fsys, doublestar.EscapeMeta(dir)+"/**", doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", dir, err)
		}
		all = append(all, matches...)
	}
	return filter.Apply(all), nil
}

func writeMember(zw *zip.Writer, name string, r io.Reader) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	return nil
}

func copyMember(zw *zip.Writer, name, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer f.Close()
	return writeMember(zw, name, f)
}

func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func anchor(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
