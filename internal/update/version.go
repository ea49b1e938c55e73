package update

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/mod/semver"
)

// BuildVersionEnv overrides the compiled-in version when set and non-blank.
const BuildVersionEnv = "OX_BUILD_VERSION"

// VersionEnv looks up build metadata. Version resolution never touches the
// process environment directly; callers pass SystemEnv or a fixture.
type VersionEnv interface {
	Get(key string) (string, bool)
}

// SystemEnv reads from the process environment.
type SystemEnv struct{}

func (SystemEnv) Get(key string) (string, bool) { return os.LookupEnv(key) }

// MapEnv is a fixed lookup table.
type MapEnv map[string]string

func (m MapEnv) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Version is a parsed major.minor.patch[-prerelease][+build] version.
type Version struct {
	raw string // without the leading "v"
}

// ParseVersionTag parses a release tag, stripping an optional leading "v".
// All three numeric components are required.
func ParseVersionTag(tag string) (Version, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(tag), "v")
	v := "v" + raw
	if raw == "" || !semver.IsValid(v) {
		return Version{}, newError(KindVersionParse, fmt.Sprintf("%q", tag), nil)
	}
	if semver.Canonical(v) != strings.TrimSuffix(v, semver.Build(v)) {
		return Version{}, newError(KindVersionParse, fmt.Sprintf("%q is not major.minor.patch", tag), nil)
	}
	return Version{raw: raw}, nil
}

// MustParseVersion is ParseVersionTag for literals known to be valid.
func MustParseVersion(tag string) Version {
	v, err := ParseVersionTag(tag)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string { return v.raw }

// Prerelease reports whether the version carries a prerelease suffix.
func (v Version) Prerelease() bool {
	return semver.Prerelease("v"+v.raw) != ""
}

// Compare returns -1, 0 or +1 following semantic version precedence.
func (v Version) Compare(other Version) int {
	return semver.Compare("v"+v.raw, "v"+other.raw)
}

// CurrentVersionTag returns the tag of the running build.
func CurrentVersionTag(env VersionEnv, fallbackVersion string) string {
	if value, ok := env.Get(BuildVersionEnv); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return fallbackVersion
}

// CurrentVersion parses the tag returned by CurrentVersionTag.
func CurrentVersion(env VersionEnv, fallbackVersion string) (Version, error) {
	return ParseVersionTag(CurrentVersionTag(env, fallbackVersion))
}

// Decide compares target against current. Tags are never compared as strings.
func Decide(current, target Version) Decision {
	switch c := target.Compare(current); {
	case c > 0:
		return UpdateAvailable
	case c < 0:
		return Downgrade
	default:
		return UpToDate
	}
}
