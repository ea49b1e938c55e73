// Package update plans and applies self-updates of the ox binary from
// GitHub releases.
package update

import (
	"context"
	"errors"
	"io"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ishibashi-futos/oxide-sub000/internal/archive"
)

// Service runs the self-update pipeline: plan, download, verify, unpack,
// install, and the rollback side. Every call is synchronous and takes its
// configuration per request.
type Service struct {
	apiBaseURL string
	caFile     string
	fetcher    Fetcher
	installer  *Installer
	rollback   *RollbackManager
	binaryName string
	progress   ProgressFunc
	logger     *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFetcher uses f for every request instead of building an HTTPClient
// from the request's Config.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithAPIBaseURL points release listing at a different API host.
func WithAPIBaseURL(u string) Option {
	return func(s *Service) {
		if u != "" {
			s.apiBaseURL = u
		}
	}
}

// WithCAFile adds a PEM bundle to the trusted roots.
func WithCAFile(path string) Option {
	return func(s *Service) { s.caFile = path }
}

func WithInstaller(i *Installer) Option {
	return func(s *Service) { s.installer = i }
}

func WithRollbackManager(m *RollbackManager) Option {
	return func(s *Service) { s.rollback = m }
}

// WithBinaryName overrides the executable name searched for in archives.
func WithBinaryName(name string) Option {
	return func(s *Service) { s.binaryName = name }
}

func WithProgress(fn ProgressFunc) Option {
	return func(s *Service) { s.progress = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService returns a Service for the running platform.
func NewService(opts ...Option) *Service {
	s := &Service{
		apiBaseURL: DefaultAPIBaseURL,
		installer:  NewInstaller(),
		rollback:   NewRollbackManager(),
		binaryName: archive.BinaryName(runtime.GOOS),
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) fetcherFor(cfg Config) (Fetcher, error) {
	if s.fetcher != nil {
		return s.fetcher, nil
	}
	return NewHTTPClient(HTTPOptions{AllowInsecure: cfg.AllowInsecure, CAFile: s.caFile})
}

func (s *Service) fetchReleases(ctx context.Context, cfg Config) ([]Release, error) {
	fetcher, err := s.fetcherFor(cfg)
	if err != nil {
		return nil, err
	}
	client := NewReleaseClient(fetcher, s.apiBaseURL)
	s.logger.Debug("fetching releases", "url", client.ReleasesURL(cfg.Repo), "insecure", cfg.AllowInsecure)
	releases, err := client.FetchReleases(ctx, cfg.Repo)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetched releases", "repo", cfg.Repo, "count", len(releases))
	return releases, nil
}

// PlanLatest plans an update to the newest eligible release.
func (s *Service) PlanLatest(ctx context.Context, cfg Config, env VersionEnv, fallbackVersion string) (*Plan, error) {
	currentTag := CurrentVersionTag(env, fallbackVersion)
	current, err := ParseVersionTag(currentTag)
	if err != nil {
		return nil, err
	}

	releases, err := s.fetchReleases(ctx, cfg)
	if err != nil {
		return nil, err
	}
	release, target, ok := SelectLatestEligible(releases, cfg.AllowPrerelease)
	if !ok {
		return nil, noValidReleaseError(releases, cfg.AllowPrerelease)
	}

	plan := newPlan(current, currentTag, release, target)
	s.logger.Debug("planned update", "current", current, "target", target.Tag, "decision", plan.Decision)
	return plan, nil
}

// PlanTag plans an update to the release tagged exactly tag. Drafts are
// eligible here; prereleases need cfg.AllowPrerelease.
func (s *Service) PlanTag(ctx context.Context, cfg Config, env VersionEnv, fallbackVersion, tag string) (*Plan, error) {
	currentTag := CurrentVersionTag(env, fallbackVersion)
	current, err := ParseVersionTag(currentTag)
	if err != nil {
		return nil, err
	}

	releases, err := s.fetchReleases(ctx, cfg)
	if err != nil {
		return nil, err
	}
	release, ok := SelectByTag(releases, tag)
	if !ok {
		return nil, newError(KindReleaseNotFound, tag, nil)
	}
	if release.Prerelease && !cfg.AllowPrerelease {
		return nil, newError(KindPrereleaseNotAllowed, tag, nil)
	}
	v, err := ParseVersionTag(release.Tag)
	if err != nil {
		return nil, err
	}

	plan := newPlan(current, currentTag, release, ReleaseTarget{Tag: release.Tag, Version: v})
	s.logger.Debug("planned update", "current", current, "target", tag, "decision", plan.Decision)
	return plan, nil
}

// DownloadAsset downloads asset, verifies its digest and returns the path
// of the binary to install. A missing digest fails before any download.
func (s *Service) DownloadAsset(ctx context.Context, asset Asset, cfg Config) (string, error) {
	if asset.DownloadURL == "" {
		return "", newError(KindMissingDownloadURL, asset.Name, nil)
	}
	if strings.TrimSpace(asset.Digest) == "" {
		return "", newError(KindInvalidDigest, "missing digest", nil)
	}
	fetcher, err := s.fetcherFor(cfg)
	if err != nil {
		return "", err
	}

	s.logger.Debug("downloading asset", "asset", asset.Name, "url", redactURL(asset.DownloadURL))
	path, err := DownloadToTemp(ctx, fetcher, asset.DownloadURL, asset.Name, s.progress)
	if err != nil {
		return "", err
	}

	s.logger.Debug("verifying digest", "path", path, "digest", asset.Digest)
	if err := VerifyDigest(path, asset.Digest); err != nil {
		return "", err
	}

	binary, err := archive.Unpack(path, asset.Name, s.binaryName)
	if err != nil {
		if errors.Is(err, archive.ErrBinaryNotFound) {
			return "", newError(KindMissingBinaryInArchive, asset.Name, nil)
		}
		return "", ioError("unpack "+asset.Name, err)
	}
	s.logger.Debug("binary ready", "path", binary, "format", archive.FormatFor(asset.Name))
	return binary, nil
}

// ReplaceCurrent installs the binary at path and returns the backup path.
func (s *Service) ReplaceCurrent(path, targetTag string) (string, error) {
	s.logger.Debug("installing", "binary", path, "tag", targetTag)
	return s.installer.Replace(path, targetTag)
}

// ListBackups lists ox-* backups beside the executable by name.
func (s *Service) ListBackups() ([]string, error) {
	return s.rollback.ListBackups()
}

// Rollback restores backup over the executable.
func (s *Service) Rollback(backup string) (string, error) {
	s.logger.Debug("rolling back", "backup", backup)
	return s.rollback.Rollback(backup)
}
