package release

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("")
	c.APIBase = srv.URL
	c.DownloadBase = "https://downloads.test"
	c.HTTP = srv.Client()
	return c
}

func TestLatest_SendsHeadersAndDecodes(t *testing.T) {
	var gotAuth, gotAgent, gotPath string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"tag_name":" v1.2.3 ","assets":[{"name":"notes.txt"},"junk",{"id":4},{"name":"concordat-1.2.3.zip"}]}`))
	})
	c.Token = "secret"

	rel, err := c.Latest(context.Background(), "leynos/concordat-vale")
	require.NoError(t, err)

	assert.Equal(t, "/repos/leynos/concordat-vale/releases/latest", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, DefaultUserAgent, gotAgent)
	assert.Equal(t, Release{Tag: "v1.2.3", Assets: []string{"notes.txt", "concordat-1.2.3.zip"}}, rel)
}

func TestLatest_NoTokenNoAuthorization(t *testing.T) {
	var sawAuth bool
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		_, _ = w.Write([]byte(`{"tag_name":"v1"}`))
	})
	_, err := c.Latest(context.Background(), "o/r")
	require.NoError(t, err)
	assert.False(t, sawAuth)
}

func TestLatest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		target  error
		message string
	}{
		{name: "missing tag", status: http.StatusOK, body: `{"assets":[]}`, target: ErrMissingTag},
		{name: "blank tag", status: http.StatusOK, body: `{"tag_name":"  "}`, target: ErrMissingTag},
		{name: "non string tag", status: http.StatusOK, body: `{"tag_name":3}`, target: ErrMissingTag},
		{name: "not found", status: http.StatusNotFound, body: `{}`, message: "failed to read latest release"},
		{name: "bad json", status: http.StatusOK, body: `{`, message: "decoding release"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Latest(context.Background(), "o/r")
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestResolve_Latest(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v0.4.0","assets":[{"name":"concordat-0.4.0.zip"}]}`))
	})

	got, err := c.Resolve(context.Background(), Request{Repo: "leynos/concordat-vale", Style: "concordat"})
	require.NoError(t, err)
	assert.Equal(t, Resolved{
		Version: "0.4.0",
		Tag:     "v0.4.0",
		Asset:   "concordat-0.4.0.zip",
		URL:     "https://downloads.test/leynos/concordat-vale/releases/download/v0.4.0/concordat-0.4.0.zip",
	}, got)
}

func TestResolve_VersionOverrideSkipsNetwork(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("unexpected request")
		w.WriteHeader(http.StatusInternalServerError)
	})

	got, err := c.Resolve(context.Background(), Request{Repo: "o/r", Style: "concordat", Version: "9.9.9"})
	require.NoError(t, err)
	assert.Equal(t, "v9.9.9", got.Tag)
	assert.Equal(t, "concordat-9.9.9.zip", got.Asset)

	got, err = c.Resolve(context.Background(), Request{Repo: "o/r", Style: "concordat", Version: "9.9.9", Tag: "release-9"})
	require.NoError(t, err)
	assert.Equal(t, "https://downloads.test/o/r/releases/download/release-9/concordat-9.9.9.zip", got.URL)
}

func TestPickAsset(t *testing.T) {
	assert.Equal(t, "s-1.zip", PickAsset([]string{"other.zip", "s-1.zip"}, "s-1.zip"))
	assert.Equal(t, "other.zip", PickAsset([]string{"notes.txt", "other.zip"}, "s-1.zip"))
	assert.Equal(t, "s-1.zip", PickAsset([]string{"notes.txt"}, "s-1.zip"))
	assert.Equal(t, "s-1.zip", PickAsset(nil, "s-1.zip"))
}

func TestStripVersionPrefix(t *testing.T) {
	for in, want := range map[string]string{"v1.0": "1.0", "V2": "2", "1.0": "1.0", "": ""} {
		assert.Equal(t, want, StripVersionPrefix(in), in)
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("payload"))
	}))
	t.Cleanup(srv.Close)
	c := NewClient("")
	c.HTTP = srv.Client()

	data, err := c.Download(context.Background(), srv.URL+"/asset.zip")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = c.Download(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to download archive")
}

func zipBytes(t *testing.T, files map[string]string) []byte {
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

func TestExtractFile(t *testing.T) {
	archive := zipBytes(t, map[string]string{
		"concordat-1.0/.vale.ini":     "StylesPath = styles\n",
		"concordat-1.0/stilyagi.toml": "[install]\n",
	})

	data, found, err := ExtractFile(archive, "stilyagi.toml")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[install]\n", string(data))

	_, found, err = ExtractFile(archive, "missing.toml")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = ExtractFile([]byte("not a zip"), "stilyagi.toml")
	require.Error(t, err)
}
