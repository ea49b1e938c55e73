package update

import (
	"fmt"
	"strings"
)

// Release is one entry of the GitHub releases feed.
type Release struct {
	Tag        string  `json:"tag_name" yaml:"tag_name"`
	Prerelease bool    `json:"prerelease" yaml:"prerelease"`
	Draft      bool    `json:"draft" yaml:"draft"`
	Assets     []Asset `json:"assets" yaml:"assets"`
}

// Asset is a downloadable file attached to a release. An empty
// DownloadURL or Digest means the field was absent from the feed.
type Asset struct {
	Name        string `json:"name" yaml:"name"`
	DownloadURL string `json:"browser_download_url,omitempty" yaml:"browser_download_url,omitempty"`
	Digest      string `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// ReleaseTarget is the resolved version of a selected release.
type ReleaseTarget struct {
	Tag     string
	Version Version
}

// Decision is the outcome of comparing the target against the running build.
type Decision int

const (
	UpToDate Decision = iota
	UpdateAvailable
	Downgrade
)

func (d Decision) String() string {
	switch d {
	case UpdateAvailable:
		return "update available"
	case Downgrade:
		return "downgrade"
	default:
		return "up-to-date"
	}
}

// Config is the request-scoped self-update configuration.
type Config struct {
	Repo            string
	AllowPrerelease bool
	AllowInsecure   bool
}

// Plan is the resolved outcome of one planning call. It is never
// mutated after construction.
type Plan struct {
	Decision   Decision
	Release    Release
	Target     ReleaseTarget
	Current    Version
	CurrentTag string
}

func newPlan(current Version, currentTag string, release Release, target ReleaseTarget) *Plan {
	return &Plan{
		Decision:   Decide(current, target.Version),
		Release:    release,
		Target:     target,
		Current:    current,
		CurrentTag: currentTag,
	}
}

// TargetTag is the tag of the planned release.
func (p *Plan) TargetTag() string { return p.Target.Tag }

// AssetFor returns the release asset for the given target triple.
func (p *Plan) AssetFor(triple string) (Asset, bool) {
	return SelectTargetAsset(p.Release, triple)
}

// Summary renders the plan as a single status line, e.g.
//
//	self-update: update available (1.0.0 -> v1.2.3) | asset: ox-x86_64-unknown-linux-gnu-v1.2.3 | digest: sha256:...
//
// An empty triple means the running platform has no known triple.
func (p *Plan) Summary(triple string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "self-update: %s (%s -> %s)", p.Decision, p.Current, p.Target.Tag)
	if triple == "" {
		b.WriteString(" | asset: unknown target")
		return b.String()
	}
	asset, ok := p.AssetFor(triple)
	if !ok {
		fmt.Fprintf(&b, " | asset: not found for %s", triple)
		return b.String()
	}
	fmt.Fprintf(&b, " | asset: %s | digest: %s", asset.Name, DigestStatus(asset.Digest))
	return b.String()
}

// DigestStatus renders an asset digest for display.
// Values that do not parse as a sha256 digest show as missing.
func DigestStatus(digest string) string {
	if _, err := ParseDigest(digest); err != nil {
		return "missing digest"
	}
	return digest
}
