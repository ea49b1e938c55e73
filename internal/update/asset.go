package update

import (
	"runtime"
	"strings"
)

type platform struct{ goos, goarch string }

// targetTriples maps GOOS/GOARCH to the triple used in asset names.
var targetTriples = map[platform]string{
	{"darwin", "amd64"}:  "x86_64-apple-darwin",
	{"darwin", "arm64"}:  "aarch64-apple-darwin",
	{"linux", "amd64"}:   "x86_64-unknown-linux-gnu",
	{"linux", "arm64"}:   "aarch64-unknown-linux-gnu",
	{"windows", "amd64"}: "x86_64-pc-windows-msvc",
	{"windows", "arm64"}: "aarch64-pc-windows-msvc",
}

// TargetTriple returns the asset triple for goos/goarch, or false when
// the platform has no published build.
func TargetTriple(goos, goarch string) (string, bool) {
	t, ok := targetTriples[platform{goos, goarch}]
	return t, ok
}

// CurrentTargetTriple is TargetTriple for the running binary.
func CurrentTargetTriple() (string, bool) {
	return TargetTriple(runtime.GOOS, runtime.GOARCH)
}

// assetScore ranks name against the expected forms: 2 for
// "ox-{triple}-{tag}*", 1 for "ox-{triple}*", 0 otherwise.
// Prefix matching lets ".tar.gz", ".zip" and friends through.
func assetScore(name, triple, tag string) int {
	withTag := "ox-" + triple + "-" + tag
	noTag := "ox-" + triple
	switch {
	case strings.HasPrefix(name, withTag):
		return 2
	case strings.HasPrefix(name, noTag):
		return 1
	default:
		return 0
	}
}

// SelectTargetAsset picks the best-scoring asset of release for triple.
// Among equal scores the last asset in feed order wins.
func SelectTargetAsset(release Release, triple string) (Asset, bool) {
	best := -1
	bestScore := -1
	for i, a := range release.Assets {
		if s := assetScore(a.Name, triple, release.Tag); s >= bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 || bestScore == 0 {
		return Asset{}, false
	}
	return release.Assets[best], true
}
