package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/ishibashi-futos/oxide-sub000/internal/config"
	ui "github.com/ishibashi-futos/oxide-sub000/internal/ui"
	"github.com/ishibashi-futos/oxide-sub000/internal/update"
)

// Prompter abstracts interactive terminal I/O for testability.
type Prompter interface {
	// ReadLine displays the prompt and reads a line of input.
	ReadLine(prompt string) (string, error)
	// IsInteractive returns whether the terminal supports interactive input.
	IsInteractive() bool
}

// SelfUpdater is the part of update.Service the commands drive.
type SelfUpdater interface {
	PlanLatest(ctx context.Context, cfg update.Config, env update.VersionEnv, fallbackVersion string) (*update.Plan, error)
	PlanTag(ctx context.Context, cfg update.Config, env update.VersionEnv, fallbackVersion, tag string) (*update.Plan, error)
	DownloadAsset(ctx context.Context, asset update.Asset, cfg update.Config) (string, error)
	ReplaceCurrent(path, targetTag string) (string, error)
	ListBackups() ([]string, error)
	Rollback(backup string) (string, error)
}

// Deps holds all injectable dependencies for command handlers.
type Deps struct {
	Cfg      *config.Config
	Updater  SelfUpdater
	Printer  ui.Printer
	Prompter Prompter
	Output   io.Writer
	Env      update.VersionEnv
	Logger   *log.Logger
	Progress *progressSink
	Triple   string
	Now      func() time.Time
}

// progressSink forwards download progress to whichever bar is active.
type progressSink struct {
	mu  sync.Mutex
	bar *ui.ProgressBar
}

func (s *progressSink) start(bar *ui.ProgressBar) {
	s.mu.Lock()
	s.bar = bar
	s.mu.Unlock()
}

func (s *progressSink) stop() {
	s.mu.Lock()
	bar := s.bar
	s.bar = nil
	s.mu.Unlock()
	if bar != nil {
		bar.Finish()
	}
}

func (s *progressSink) update(downloaded, total int64) {
	s.mu.Lock()
	bar := s.bar
	s.mu.Unlock()
	if bar != nil {
		bar.Update(downloaded, total)
	}
}

// ttyPrompter is the production implementation of Prompter.
// It uses /dev/tty when stdin is not a terminal (e.g., piped input).
type ttyPrompter struct {
	out io.Writer
}

func (p *ttyPrompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	var reader *bufio.Reader
	if term.IsTerminal(int(os.Stdin.Fd())) {
		reader = bufio.NewReader(os.Stdin)
	} else {
		tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			return "", fmt.Errorf("no interactive terminal available: %w", err)
		}
		defer tty.Close()
		reader = bufio.NewReader(tty)
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *ttyPrompter) IsInteractive() bool {
	if flagNonInteractive {
		return false
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return true
	}
	tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err == nil {
		tty.Close()
		return true
	}
	return false
}

// newDeps creates production dependencies from the current flags and config.
func newDeps() (*Deps, error) {
	cfg, err := loadCfg()
	if err != nil {
		return nil, err
	}

	logger := ui.NewLoggerFromGlobal()
	sink := &progressSink{}
	svc := update.NewService(
		update.WithAPIBaseURL(cfg.SelfUpdate.APIURL),
		update.WithCAFile(cfg.SelfUpdate.CAFile),
		update.WithLogger(logger),
		update.WithProgress(sink.update),
	)
	triple, _ := update.CurrentTargetTriple()
	if cfg.File != "" {
		logger.Debug("loaded config", "path", cfg.File)
	}

	return &Deps{
		Cfg:      cfg,
		Updater:  svc,
		Printer:  getPrinter(),
		Prompter: &ttyPrompter{out: os.Stdout},
		Output:   os.Stdout,
		Env:      update.SystemEnv{},
		Logger:   logger,
		Progress: sink,
		Triple:   triple,
		Now:      time.Now,
	}, nil
}

// confirm asks a yes/no question. Anything but y/yes declines.
func confirm(d *Deps, prompt string) (bool, error) {
	if !d.Prompter.IsInteractive() {
		return false, errNeedsConfirmation
	}
	response, err := d.Prompter.ReadLine(prompt)
	if err != nil {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
