// SPDX-License-Identifier: AGPL-3.0-or-later

// Package release resolves and downloads style archives published as GitHub
// release assets.
package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultAPIBase is the GitHub REST endpoint.
	DefaultAPIBase = "https://api.github.com"
	// DefaultDownloadBase hosts release assets.
	DefaultDownloadBase = "https://github.com"
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "stilyagi/1.0"

	latestTimeout   = 10 * time.Second
	downloadTimeout = 15 * time.Second
)

// ErrMissingTag is returned when a release payload has no usable tag_name.
var ErrMissingTag = errors.New("release payload missing tag_name")

// Release is the subset of a GitHub release the installer needs.
type Release struct {
	Tag    string
	Assets []string
}

// Request describes the release to resolve. Version and Tag are optional
// overrides; with Version set no network call is made.
type Request struct {
	Repo    string
	Style   string
	Version string
	Tag     string
}

// Resolved identifies one downloadable style archive.
type Resolved struct {
	Version string
	Tag     string
	Asset   string
	URL     string
}

// Client talks to GitHub releases. The zero value is not usable; call
// NewClient.
type Client struct {
	APIBase      string
	DownloadBase string
	Token        string
	UserAgent    string
	HTTP         *http.Client
}

// NewClient returns a client for github.com. token may be empty.
func NewClient(token string) *Client {
	return &Client{
		APIBase:      DefaultAPIBase,
		DownloadBase: DefaultDownloadBase,
		Token:        token,
		UserAgent:    DefaultUserAgent,
		HTTP:         &http.Client{},
	}
}

// Latest fetches the latest published release of repo ("owner/name").
func (c *Client) Latest(ctx context.Context, repo string) (Release, error) {
	ctx, cancel := context.WithTimeout(ctx, latestTimeout)
	defer cancel()

	url := strings.TrimRight(c.APIBase, "/") + "/repos/" + repo + "/releases/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Release{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.UserAgent)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Release{}, fmt.Errorf("network error talking to GitHub releases for %s: %w", repo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("failed to read latest release for %s: %s", repo, resp.Status)
	}

	var payload struct {
		TagName any `json:"tag_name"`
		Assets  any `json:"assets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Release{}, fmt.Errorf("decoding release for %s: %w", repo, err)
	}
	return releaseFromPayload(payload.TagName, payload.Assets)
}

func releaseFromPayload(tagName, assets any) (Release, error) {
	tag, _ := tagName.(string)
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Release{}, ErrMissingTag
	}

	rel := Release{Tag: tag}
	list, _ := assets.([]any)
	for _, item := range list {
		asset, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := asset["name"].(string); ok {
			rel.Assets = append(rel.Assets, name)
		}
	}
	return rel, nil
}

// Resolve returns the version, tag and download URL of the style archive.
func (c *Client) Resolve(ctx context.Context, r Request) (Resolved, error) {
	var out Resolved
	if r.Version != "" {
		out.Version = r.Version
		out.Tag = r.Tag
		if out.Tag == "" {
			out.Tag = "v" + r.Version
		}
		out.Asset = AssetName(r.Style, r.Version)
	} else {
		rel, err := c.Latest(ctx, r.Repo)
		if err != nil {
			return Resolved{}, err
		}
		out.Tag = rel.Tag
		out.Version = StripVersionPrefix(rel.Tag)
		out.Asset = PickAsset(rel.Assets, AssetName(r.Style, out.Version))
	}
	out.URL = fmt.Sprintf("%s/%s/releases/download/%s/%s",
		strings.TrimRight(c.DownloadBase, "/"), r.Repo, out.Tag, out.Asset)
	return out, nil
}

// Download fetches url and returns the body.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download archive %s: %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading archive %s: %w", url, err)
	}
	return data, nil
}

// AssetName is the archive name a style release is expected to publish.
func AssetName(style, version string) string {
	return style + "-" + version + ".zip"
}

// StripVersionPrefix drops a leading "v" or "V" from tag.
func StripVersionPrefix(tag string) string {
	if strings.HasPrefix(tag, "v") || strings.HasPrefix(tag, "V") {
		return tag[1:]
	}
	return tag
}

// PickAsset prefers expected, then the first .zip asset, then expected
// again when nothing else is published.
func PickAsset(assets []string, expected string) string {
	for _, name := range assets {
		if name == expected {
			return name
		}
	}
	for _, name := range assets {
		if strings.HasSuffix(name, ".zip") {
			return name
		}
	}
	return expected
}
