package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersionTag(t *testing.T) {
	tests := []struct {
		tag     string
		want    string
		wantErr bool
	}{
		{tag: "v1.2.3", want: "1.2.3"},
		{tag: "1.2.3", want: "1.2.3"},
		{tag: "  v0.4.0 \n", want: "0.4.0"},
		{tag: "v2.0.0-alpha.1", want: "2.0.0-alpha.1"},
		{tag: "v1.0.0+build.5", want: "1.0.0+build.5"},
		{tag: "v1.2", wantErr: true},
		{tag: "v1", wantErr: true},
		{tag: "", wantErr: true},
		{tag: "v", wantErr: true},
		{tag: "dev", wantErr: true},
		{tag: "release-1.2.3", wantErr: true},
		{tag: "v01.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseVersionTag(tt.tag)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrVersionParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"v1.0.0", "v1.0.0", 0},
		{"v1.0.0", "1.0.0", 0},
		{"v1.0.1", "v1.0.0", 1},
		{"v1.10.0", "v1.9.0", 1},
		{"v2.0.0-alpha", "v2.0.0", -1},
		{"v2.0.0-alpha", "v2.0.0-beta", -1},
		{"v2.0.0-alpha", "v1.9.9", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParseVersion(tt.a).Compare(MustParseVersion(tt.b)))
		})
	}
}

func TestCurrentVersionTag(t *testing.T) {
	tests := []struct {
		name     string
		env      MapEnv
		fallback string
		want     string
	}{
		{name: "env wins", env: MapEnv{BuildVersionEnv: "v9.9.9"}, fallback: "0.1.0", want: "v9.9.9"},
		{name: "env trimmed", env: MapEnv{BuildVersionEnv: "  v1.2.3\t"}, fallback: "0.1.0", want: "v1.2.3"},
		{name: "blank env falls back", env: MapEnv{BuildVersionEnv: "   "}, fallback: "0.1.0", want: "0.1.0"},
		{name: "unset env falls back", env: MapEnv{}, fallback: "0.1.0", want: "0.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentVersionTag(tt.env, tt.fallback))
		})
	}
}

func TestCurrentVersion(t *testing.T) {
	v, err := CurrentVersion(MapEnv{BuildVersionEnv: "v1.4.0"}, "0.1.0")
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", v.String())

	_, err = CurrentVersion(MapEnv{BuildVersionEnv: "nightly"}, "0.1.0")
	assert.ErrorIs(t, err, ErrVersionParse)
}

func TestDecide(t *testing.T) {
	versions := []string{"v0.1.0", "v1.0.0", "v1.0.1", "v1.1.0-rc.1", "v1.1.0", "v2.0.0"}

	for _, a := range versions {
		for _, b := range versions {
			va, vb := MustParseVersion(a), MustParseVersion(b)
			d := Decide(va, vb)
			switch d {
			case UpToDate:
				assert.Equal(t, a, b, "UpToDate only for equal versions")
			case UpdateAvailable:
				assert.Equal(t, Downgrade, Decide(vb, va), "%s -> %s", a, b)
			case Downgrade:
				assert.Equal(t, UpdateAvailable, Decide(vb, va), "%s -> %s", a, b)
			default:
				t.Fatalf("unexpected decision %v", d)
			}
		}
	}
}

func TestDecide_Examples(t *testing.T) {
	assert.Equal(t, UpdateAvailable, Decide(MustParseVersion("v1.0.0"), MustParseVersion("v1.2.3")))
	assert.Equal(t, Downgrade, Decide(MustParseVersion("v1.2.3"), MustParseVersion("v1.0.0")))
	assert.Equal(t, UpToDate, Decide(MustParseVersion("v1.0.0"), MustParseVersion("1.0.0")))
}
