package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// DefaultAPIBaseURL is the public GitHub REST endpoint.
	DefaultAPIBaseURL = "https://api.github.com"

	userAgent        = "ox-self-update"
	releasesMedia    = "application/vnd.github+json"
	maxReleasesBytes = 10 << 20
)

// ReleaseClient lists the releases of a GitHub repository.
type ReleaseClient struct {
	fetcher Fetcher
	baseURL string
}

// NewReleaseClient returns a client that talks to baseURL, or to
// DefaultAPIBaseURL when baseURL is empty.
func NewReleaseClient(fetcher Fetcher, baseURL string) *ReleaseClient {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &ReleaseClient{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

// ReleasesURL returns the releases endpoint for repo ("owner/name").
func (c *ReleaseClient) ReleasesURL(repo string) string {
	return fmt.Sprintf("%s/repos/%s/releases", c.baseURL, repo)
}

// FetchReleases downloads and parses the release list of repo.
func (c *ReleaseClient) FetchReleases(ctx context.Context, repo string) ([]Release, error) {
	header := http.Header{}
	header.Set("User-Agent", userAgent)
	header.Set("Accept", releasesMedia)

	body, _, err := c.fetcher.Get(ctx, c.ReleasesURL(repo), header)
	if err != nil {
		// GitHub reports rate limits and bad repos as {"message": ...}
		// on a non-2xx status; prefer that text over the bare status.
		var se *StatusError
		if errors.As(err, &se) {
			if msg := gjson.GetBytes(se.Body, "message"); msg.Type == gjson.String {
				return nil, newError(KindAPIMessage, msg.Str, nil)
			}
		}
		return nil, err
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(io.LimitReader(body, maxReleasesBytes))
	if err != nil {
		return nil, newError(KindNetwork, "read release list", err)
	}
	return ParseReleases(data)
}

// ParseReleases decodes a releases response body.
//
// The body must be a JSON array. An object carrying a "message" string
// is reported as an API message. Every release needs tag_name,
// prerelease and draft; assets without a name are skipped.
func ParseReleases(data []byte) ([]Release, error) {
	if !gjson.ValidBytes(data) {
		return nil, newError(KindJSON, "response is not valid JSON", nil)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		if msg := doc.Get("message"); msg.Type == gjson.String {
			return nil, newError(KindAPIMessage, msg.Str, nil)
		}
		return nil, newError(KindAPIMessage, "unexpected response", nil)
	}

	items := doc.Array()
	releases := make([]Release, 0, len(items))
	for _, item := range items {
		tag := item.Get("tag_name")
		if tag.Type != gjson.String {
			return nil, newError(KindMissingField, "tag_name", nil)
		}
		prerelease := item.Get("prerelease")
		if !prerelease.IsBool() {
			return nil, newError(KindMissingField, "prerelease", nil)
		}
		draft := item.Get("draft")
		if !draft.IsBool() {
			return nil, newError(KindMissingField, "draft", nil)
		}
		releases = append(releases, Release{
			Tag:        tag.Str,
			Prerelease: prerelease.Bool(),
			Draft:      draft.Bool(),
			Assets:     parseAssets(item.Get("assets")),
		})
	}
	return releases, nil
}

func parseAssets(list gjson.Result) []Asset {
	if !list.IsArray() {
		return nil
	}
	var assets []Asset
	list.ForEach(func(_, a gjson.Result) bool {
		name := a.Get("name")
		if name.Type != gjson.String {
			return true
		}
		asset := Asset{Name: name.Str}
		if u := a.Get("browser_download_url"); u.Type == gjson.String {
			asset.DownloadURL = u.Str
		}
		if d := a.Get("digest"); d.Type == gjson.String {
			asset.Digest = strings.TrimSpace(d.Str)
		}
		assets = append(assets, asset)
		return true
	})
	return assets
}
