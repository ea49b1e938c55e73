package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ishibashi-futos/oxide-sub000/internal/config"
	ui "github.com/ishibashi-futos/oxide-sub000/internal/ui"
	"github.com/ishibashi-futos/oxide-sub000/internal/update"
)

const testTriple = "x86_64-unknown-linux-gnu"

// mockPrompter is a configurable prompter for testing.
// It returns responses in order and can be configured as interactive or not.
type mockPrompter struct {
	responses   []string
	interactive bool
	callIndex   int
	prompts     []string
}

func (p *mockPrompter) ReadLine(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if p.callIndex >= len(p.responses) {
		return "", fmt.Errorf("no more responses configured")
	}
	resp := p.responses[p.callIndex]
	p.callIndex++
	return resp, nil
}

func (p *mockPrompter) IsInteractive() bool {
	return p.interactive
}

// mockUpdater implements SelfUpdater for tests.
type mockUpdater struct {
	plan        *update.Plan
	planErr     error
	planTag     string
	planCfg     update.Config
	downloadErr error
	downloaded  []update.Asset
	installErr  error
	installed   []string
	backups     []string
	listErr     error
	rollbackErr error
	rolledBack  []string
	progress    func(downloaded, total int64)
}

func (m *mockUpdater) PlanLatest(_ context.Context, cfg update.Config, _ update.VersionEnv, _ string) (*update.Plan, error) {
	m.planCfg = cfg
	return m.plan, m.planErr
}

func (m *mockUpdater) PlanTag(_ context.Context, cfg update.Config, _ update.VersionEnv, _ string, tag string) (*update.Plan, error) {
	m.planCfg = cfg
	m.planTag = tag
	return m.plan, m.planErr
}

func (m *mockUpdater) DownloadAsset(_ context.Context, asset update.Asset, _ update.Config) (string, error) {
	m.downloaded = append(m.downloaded, asset)
	if m.progress != nil {
		m.progress(50, 100)
		m.progress(100, 100)
	}
	if m.downloadErr != nil {
		return "", m.downloadErr
	}
	return "/tmp/ox-extract/ox", nil
}

func (m *mockUpdater) ReplaceCurrent(path, tag string) (string, error) {
	m.installed = append(m.installed, path+"@"+tag)
	if m.installErr != nil {
		return "", m.installErr
	}
	return "/usr/local/bin/" + update.BackupName(tag), nil
}

func (m *mockUpdater) ListBackups() ([]string, error) { return m.backups, m.listErr }

func (m *mockUpdater) Rollback(backup string) (string, error) {
	m.rolledBack = append(m.rolledBack, backup)
	return "/usr/local/bin/ox", m.rollbackErr
}

func testPlan(current, target string) *update.Plan {
	release := update.Release{
		Tag: target,
		Assets: []update.Asset{{
			Name:        "ox-" + testTriple + "-" + target + ".tar.gz",
			DownloadURL: "https://example.com/ox.tar.gz",
			Digest:      "sha256:" + fmt.Sprintf("%064x", 1),
		}},
	}
	cur := update.MustParseVersion(current)
	tgt := update.MustParseVersion(target)
	return &update.Plan{
		Decision:   update.Decide(cur, tgt),
		Release:    release,
		Target:     update.ReleaseTarget{Tag: target, Version: tgt},
		Current:    cur,
		CurrentTag: current,
	}
}

// newTestDeps wires mocks and a plain printer writing to the returned buffer.
func newTestDeps(t *testing.T, u *mockUpdater, prompter *mockPrompter, format string) (*Deps, *bytes.Buffer) {
	t.Helper()
	ui.InitGlobal(ui.Config{NoColor: true, NoEmoji: true})
	t.Cleanup(func() { ui.InitGlobal(ui.Config{}) })

	var buf bytes.Buffer
	p := ui.NewPrinterFromGlobal(format).WithWriter(&buf)
	p.Colors.Enabled = false

	cfg := config.Defaults()
	cfg.SelfUpdate.Repo = "owner/ox"
	cfg.CacheDir = t.TempDir()

	sink := &progressSink{}
	u.progress = sink.update
	if prompter == nil {
		prompter = &mockPrompter{}
	}
	return &Deps{
		Cfg:      &cfg,
		Updater:  u,
		Printer:  p,
		Prompter: prompter,
		Output:   &buf,
		Env:      update.MapEnv{},
		Logger:   log.New(io.Discard),
		Progress: sink,
		Triple:   testTriple,
		Now:      func() time.Time { return time.Now() },
	}, &buf
}
