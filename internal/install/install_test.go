package install

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/concordat-vale/internal/manifest"
	"github.com/leynos/concordat-vale/internal/release"
	"github.com/leynos/concordat-vale/internal/valeini"
)

type fakeReleases struct {
	resolved  release.Resolved
	archive   []byte
	resolveFn func(release.Request)
	downloads int
	err       error
}

func (f *fakeReleases) Resolve(_ context.Context, r release.Request) (release.Resolved, error) {
	if f.resolveFn != nil {
		f.resolveFn(r)
	}
	return f.resolved, nil
}

func (f *fakeReleases) Download(context.Context, string) ([]byte, error) {
	f.downloads++
	if f.err != nil {
		return nil, f.err
	}
	return f.archive, nil
}

func archiveWith(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestParseRepoReference(t *testing.T) {
	repo, err := ParseRepoReference("owner/repo")
	require.NoError(t, err)
	assert.Equal(t, Repo{Owner: "owner", Name: "repo", Style: "repo"}, repo)

	repo, err = ParseRepoReference("leynos/concordat-vale")
	require.NoError(t, err)
	assert.Equal(t, "concordat", repo.Style)
	assert.Equal(t, "leynos/concordat-vale", repo.String())

	repo, err = ParseRepoReference("o/-vale")
	require.NoError(t, err)
	assert.Equal(t, "-vale", repo.Style)

	for _, bad := range []string{"owner", "owner/repo/xyz", "/repo", "owner/", "/", "   /repo", "owner/   ", "   /   "} {
		_, err := ParseRepoReference(bad)
		assert.ErrorIs(t, err, ErrRepoReference, bad)
	}
}

func TestResolvePaths(t *testing.T) {
	cwd := t.TempDir()
	p, err := ResolvePaths(cwd, "project", "config/.vale.ini", filepath.Join(cwd, "Makefile"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cwd, "project"), p.ProjectRoot)
	assert.Equal(t, filepath.Join(cwd, "project", "config", ".vale.ini"), p.ValeIni)
	assert.Equal(t, filepath.Join(cwd, "Makefile"), p.Makefile)
	assert.DirExists(t, filepath.Join(cwd, "project", "config"))
}

func TestInstall_AppliesManifest(t *testing.T) {
	root := t.TempDir()
	paths, err := ResolvePaths(root, ".", ".vale.ini", "Makefile")
	require.NoError(t, err)

	src := &fakeReleases{
		resolved: release.Resolved{Version: "2.0.0", Tag: "v2.0.0", URL: "https://example.test/custom-style-2.0.0.zip"},
		archive: archiveWith(t, map[string]string{
			"custom-style-2.0.0/stilyagi.toml": strings.Join([]string{
				"[install]",
				`style_name = "custom-style"`,
				`vocab = "custom-vocab"`,
				`min_alert_level = "error"`,
				"[[install.post_sync_steps]]",
				`action = "update-tengo-map"`,
				`source = ".config/common-acronyms"`,
				`dest = ".vale/styles/config/scripts/AcronymsFirstUse.tengo::allow"`,
			}, "\n"),
		}),
	}
	repo := Repo{Owner: "example", Name: "custom-style", Style: "default-style"}

	var req release.Request
	src.resolveFn = func(r release.Request) { req = r }

	res, err := New(src, nil).Install(context.Background(), Options{Repo: repo, Paths: paths, StepCommand: "uv run stilyagi"})
	require.NoError(t, err)

	assert.Equal(t, release.Request{Repo: "example/custom-style", Style: "default-style"}, req)

	ini := read(t, paths.ValeIni)
	assert.Contains(t, ini, "Packages = https://example.test/custom-style-2.0.0.zip\nMinAlertLevel = error\nVocab = custom-vocab\n")
	assert.Contains(t, ini, "BasedOnStyles = custom-style")
	assert.Contains(t, ini, "custom-style.RustNoRun = NO")
	assert.Contains(t, ini, "# Ignore for footnotes\nBlockIgnores = "+FootnoteRegex)

	mk := read(t, paths.Makefile)
	assert.Contains(t, mk, "\tuv run stilyagi update-tengo-map --source .config/common-acronyms --dest .vale/styles/config/scripts/AcronymsFirstUse.tengo::allow --type true\n")

	assert.Equal(t, "styles/", res.GitignoreEntry)
	assert.Equal(t, "styles/\n", read(t, filepath.Join(root, ".gitignore")))

	msg := res.Message(repo, paths)
	assert.Equal(t, "Installed custom-style 2.0.0 from example/custom-style into "+paths.ValeIni+" and "+paths.Makefile, msg)
}

func TestInstall_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	paths, err := ResolvePaths(root, ".", ".vale.ini", "Makefile")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(paths.ValeIni, []byte("StylesPath = .vale/styles  # project\n[legacy]\nBasedOnStyles = Vale\n"), 0o644))

	src := &fakeReleases{resolved: release.Resolved{Version: "1.0.0", URL: "https://example.test/c.zip"}}
	in := New(src, nil)
	opts := Options{Repo: Repo{Owner: "o", Name: "concordat-vale", Style: "concordat"}, Paths: paths, SkipManifest: true}

	_, err = in.Install(context.Background(), opts)
	require.NoError(t, err)
	first := []string{read(t, paths.ValeIni), read(t, paths.Makefile), read(t, filepath.Join(root, ".gitignore"))}

	res, err := in.Install(context.Background(), opts)
	require.NoError(t, err)
	second := []string{read(t, paths.ValeIni), read(t, paths.Makefile), read(t, filepath.Join(root, ".gitignore"))}

	assert.Equal(t, first, second)
	assert.Zero(t, src.downloads, "skip flag must avoid the download")
	assert.Equal(t, ".vale/styles/", res.GitignoreEntry)
	assert.Contains(t, first[0], "StylesPath = .vale/styles  # project\n", "the comment stays in .vale.ini")
	assert.Contains(t, first[0], "[legacy]\nBasedOnStyles = Vale\n")
}

func TestInstall_StylesOutsideProject(t *testing.T) {
	root := t.TempDir()
	paths, err := ResolvePaths(root, ".", ".vale.ini", "Makefile")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(paths.ValeIni, []byte("StylesPath = ../shared\n"), 0o644))

	res, err := New(&fakeReleases{}, nil).Install(context.Background(), Options{
		Repo: Repo{Owner: "o", Name: "r", Style: "r"}, Paths: paths, SkipManifest: true,
	})
	require.NoError(t, err)
	assert.Empty(t, res.GitignoreEntry)
	assert.NoFileExists(t, filepath.Join(root, ".gitignore"))
}

func TestStylesPath(t *testing.T) {
	tests := []struct {
		ini  string
		want string
	}{
		{ini: "", want: DefaultStylesPath},
		{ini: "StylesPath =\n", want: DefaultStylesPath},
		{ini: "StylesPath = .vale/styles\n", want: ".vale/styles"},
		{ini: "StylesPath = .vale/styles\t# synced by vale\n", want: ".vale/styles"},
		{ini: "StylesPath = styles#1\n", want: "styles#1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StylesPath(valeini.Parse(tt.ini)), tt.ini)
	}
}

func TestLoadManifest(t *testing.T) {
	tests := []struct {
		name    string
		src     *fakeReleases
		want    manifest.Manifest
		wantErr bool
	}{
		{
			name: "manifest present",
			src: &fakeReleases{archive: archiveWith(t, map[string]string{
				"concordat-0.0.1/stilyagi.toml": "[install]\nstyle_name = \"manifest-style\"\nvocab = \"manifest-vocab\"\nmin_alert_level = \"error\"\n",
			})},
			want: manifest.Manifest{StyleName: "manifest-style", VocabName: "manifest-vocab", MinAlertLevel: "error"},
		},
		{
			name: "no manifest member",
			src:  &fakeReleases{archive: archiveWith(t, map[string]string{"concordat-0.0.1/.vale.ini": "StylesPath = styles\n"})},
			want: manifest.Default("concordat"),
		},
		{
			name: "download error",
			src:  &fakeReleases{err: errors.New("offline")},
			want: manifest.Default("concordat"),
		},
		{
			name: "not a zip",
			src:  &fakeReleases{archive: []byte("garbage")},
			want: manifest.Default("concordat"),
		},
		{
			name: "bad toml",
			src:  &fakeReleases{archive: archiveWith(t, map[string]string{"x/stilyagi.toml": "[install\n"})},
			want: manifest.Default("concordat"),
		},
		{
			name:    "invalid steps",
			src:     &fakeReleases{archive: archiveWith(t, map[string]string{"x/stilyagi.toml": "[install]\npost_sync_steps = \"rm -rf /\"\n"})},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.src, nil).LoadManifest(context.Background(), "https://example.test/a.zip", "concordat")
			if tt.wantErr {
				assert.ErrorIs(t, err, manifest.ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, tt.src.downloads)
		})
	}
}

func TestRequiredSections(t *testing.T) {
	sections := RequiredSections(manifest.Default("concordat"))
	assert.Equal(t, []string{"docs/**/*.{md,markdown,mdx}", "AGENTS.md", "*.{rs,ts,js,sh,py}", "README.md"}, sections.Keys())
	readme, _ := sections.Get("README.md")
	assert.Equal(t, []string{"BasedOnStyles", "concordat.Pronouns"}, readme.Keys())
}
