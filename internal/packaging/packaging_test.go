package packaging

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()
	out := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = string(data)
	}
	return out
}

func memberNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()
	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

func sampleProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"styles/concordat/Acronyms.yml":                   "extends: existence\n",
		"styles/concordat/.git/HEAD":                      "ref\n",
		"styles/concordat/drafts/Skip.yml":                "extends: existence\n",
		"styles/config/vocabularies/concordat/accept.txt": "Concordat\n",
		"styles/config/scripts/AcronymsFirstUse.tengo":    "allow := {\n}\n",
		"stilyagi.toml":                                   "[install]\nstyle_name = \"concordat\"\n",
	})
	return root
}

func TestPackage_Members(t *testing.T) {
	root := sampleProject(t)

	archive, err := Package(
		Paths{ProjectRoot: root},
		Options{IniStylesPath: ".vale/styles", Exclude: []string{"concordat/drafts/**"}},
		"1.2.3", false,
	)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "dist", "concordat-1.2.3.zip"), archive)

	assert.Equal(t, []string{
		"concordat-1.2.3/.vale.ini",
		"concordat-1.2.3/stilyagi.toml",
		"concordat-1.2.3/.vale/styles/concordat/Acronyms.yml",
		"concordat-1.2.3/.vale/styles/config/scripts/AcronymsFirstUse.tengo",
		"concordat-1.2.3/.vale/styles/config/vocabularies/concordat/accept.txt",
	}, memberNames(t, archive))

	contents := readZip(t, archive)
	assert.Equal(t, "StylesPath = .vale/styles\nVocab = concordat\n", contents["concordat-1.2.3/.vale.ini"])
	assert.Contains(t, contents["concordat-1.2.3/stilyagi.toml"], "style_name")
}

func TestPackage_ExistingArchive(t *testing.T) {
	root := sampleProject(t)
	paths := Paths{ProjectRoot: root, OutputDir: "out"}

	first, err := Package(paths, Options{}, "1.0.0", false)
	require.NoError(t, err)

	_, err = Package(paths, Options{}, "1.0.0", false)
	require.ErrorIs(t, err, ErrArchiveExists)

	second, err := Package(paths, Options{}, "1.0.0", true)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPackage_Errors(t *testing.T) {
	root := sampleProject(t)

	_, err := Package(Paths{ProjectRoot: root, StylesPath: "nope"}, Options{}, "1", false)
	assert.ErrorIs(t, err, ErrStylesDirMissing)

	_, err = Package(Paths{ProjectRoot: root}, Options{IniStylesPath: "/abs/styles"}, "1", false)
	assert.ErrorIs(t, err, ErrAbsoluteStylesPath)

	_, err = Package(Paths{ProjectRoot: root}, Options{Exclude: []string{"[unterminated"}}, "1", false)
	var patErr *InvalidPatternError
	assert.ErrorAs(t, err, &patErr)

	_, err = os.Stat(filepath.Join(root, "dist"))
	assert.True(t, os.IsNotExist(err), "failed runs must not create output")
}

func TestStyleNames(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"beta", "alpha", "config"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}

	names, err := StyleNames(root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	names, err = StyleNames(root, []string{"beta", "alpha", "beta"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	_, err = StyleNames(root, []string{"zeta", "alpha", "gamma"})
	require.ErrorIs(t, err, ErrStylesNotFound)
	assert.Contains(t, err.Error(), "gamma, zeta")

	empty := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(empty, "config"), 0o755))
	_, err = StyleNames(empty, nil)
	assert.ErrorIs(t, err, ErrNoStyles)
}

func TestSelectVocabulary(t *testing.T) {
	root := t.TempDir()

	v, err := SelectVocabulary(root, "")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "config", "vocabularies", "one"), 0o755))
	v, err = SelectVocabulary(root, "")
	require.NoError(t, err)
	assert.Equal(t, "one", v)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "config", "vocabularies", "two"), 0o755))
	v, err = SelectVocabulary(root, "")
	require.NoError(t, err)
	assert.Empty(t, v)

	v, err = SelectVocabulary(root, "explicit")
	require.NoError(t, err)
	assert.Equal(t, "explicit", v)
}

func TestFilter_Apply(t *testing.T) {
	f := Filter{ExcludeDirs: []string{".git"}, ExcludeGlobs: []string{"**/*.bak"}}
	got := f.Apply([]string{
		"s/b.yml",
		"s/.git/config",
		"s/.github/x.yml",
		"s/a.yml",
		"s/deep/old.bak",
	})
	assert.Equal(t, []string{"s/.github/x.yml", "s/a.yml", "s/b.yml"}, got)
}

func TestResolveVersion(t *testing.T) {
	root := t.TempDir()

	v, err := ResolveVersion(root, "")
	require.NoError(t, err)
	assert.Equal(t, UnknownVersion, v)

	writeTree(t, root, map[string]string{"pyproject.toml": "[project]\nname = \"x\"\nversion = \" 0.3.1 \"\n"})
	v, err = ResolveVersion(root, "")
	require.NoError(t, err)
	assert.Equal(t, "0.3.1", v)

	v, err = ResolveVersion(root, "9.0.0")
	require.NoError(t, err)
	assert.Equal(t, "9.0.0", v)

	writeTree(t, root, map[string]string{"pyproject.toml": "[project]\nversion = 3\n"})
	v, err = ResolveVersion(root, "")
	require.NoError(t, err)
	assert.Equal(t, UnknownVersion, v)
}
