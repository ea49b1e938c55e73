package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rel(tag string, prerelease, draft bool) Release {
	return Release{Tag: tag, Prerelease: prerelease, Draft: draft}
}

func TestSelectLatestEligible(t *testing.T) {
	tests := []struct {
		name            string
		releases        []Release
		allowPrerelease bool
		wantTag         string
		wantFound       bool
	}{
		{
			name: "drafts and prereleases filtered",
			releases: []Release{
				rel("v1.0.0", false, false),
				rel("v1.1.0", false, true),
				rel("v2.0.0-alpha", true, false),
			},
			wantTag:   "v1.0.0",
			wantFound: true,
		},
		{
			name: "prerelease allowed",
			releases: []Release{
				rel("v1.0.0", false, false),
				rel("v2.0.0-alpha", true, false),
			},
			allowPrerelease: true,
			wantTag:         "v2.0.0-alpha",
			wantFound:       true,
		},
		{
			name: "draft never selected even with prerelease allowed",
			releases: []Release{
				rel("v1.0.0", false, false),
				rel("v3.0.0", true, true),
			},
			allowPrerelease: true,
			wantTag:         "v1.0.0",
			wantFound:       true,
		},
		{
			name: "numeric not lexical ordering",
			releases: []Release{
				rel("v1.9.0", false, false),
				rel("v1.10.0", false, false),
				rel("v1.2.0", false, false),
			},
			wantTag:   "v1.10.0",
			wantFound: true,
		},
		{
			name: "unparsable tags ignored",
			releases: []Release{
				rel("nightly", false, false),
				rel("v0.9.0", false, false),
				rel("v9", false, false),
			},
			wantTag:   "v0.9.0",
			wantFound: true,
		},
		{
			name: "equal versions keep first seen",
			releases: []Release{
				rel("1.2.0", false, false),
				rel("v1.2.0", false, false),
			},
			wantTag:   "1.2.0",
			wantFound: true,
		},
		{
			name: "only prereleases",
			releases: []Release{
				rel("v2.0.0-rc.1", true, false),
			},
			wantFound: false,
		},
		{
			name:      "empty",
			releases:  nil,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, target, found := SelectLatestEligible(tt.releases, tt.allowPrerelease)
			require.Equal(t, tt.wantFound, found)
			if !found {
				return
			}
			assert.Equal(t, tt.wantTag, got.Tag)
			assert.Equal(t, tt.wantTag, target.Tag)
			assert.False(t, got.Draft)
			if !tt.allowPrerelease {
				assert.False(t, got.Prerelease)
			}
		})
	}
}

func TestSelectLatestEligible_IsMaximal(t *testing.T) {
	releases := []Release{
		rel("v0.3.0", false, false),
		rel("v1.4.0", false, false),
		rel("v1.4.1-beta", true, false),
		rel("v5.0.0", false, true),
		rel("v1.3.9", false, false),
	}
	_, target, found := SelectLatestEligible(releases, false)
	require.True(t, found)

	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		assert.GreaterOrEqual(t, target.Version.Compare(MustParseVersion(r.Tag)), 0, r.Tag)
	}
}

func TestSelectByTag(t *testing.T) {
	releases := []Release{
		rel("v1.0.0", false, false),
		rel("v1.1.0", false, true),
		rel("v2.0.0-alpha", true, false),
	}

	got, ok := SelectByTag(releases, "v1.1.0")
	require.True(t, ok)
	assert.True(t, got.Draft, "drafts are selectable by exact tag")

	got, ok = SelectByTag(releases, "v2.0.0-alpha")
	require.True(t, ok)
	assert.True(t, got.Prerelease)

	_, ok = SelectByTag(releases, "1.0.0")
	assert.False(t, ok, "tag match is exact")
}

func TestNoValidReleaseError(t *testing.T) {
	tests := []struct {
		name            string
		releases        []Release
		allowPrerelease bool
		want            string
	}{
		{
			name:     "all published are prerelease",
			releases: []Release{rel("v2.0.0-rc.1", true, false), rel("v1.0.0", false, true)},
			want:     "only prerelease releases; use --prerelease",
		},
		{
			name:     "no releases",
			releases: nil,
			want:     "no matching release",
		},
		{
			name:     "only drafts",
			releases: []Release{rel("v1.0.0", false, true)},
			want:     "no matching release",
		},
		{
			name:            "prereleases allowed but unparsable",
			releases:        []Release{rel("nightly", true, false)},
			allowPrerelease: true,
			want:            "no matching release",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := noValidReleaseError(tt.releases, tt.allowPrerelease)
			assert.ErrorIs(t, err, ErrNoValidRelease)
			assert.Equal(t, tt.want, err.Detail)
		})
	}
}
