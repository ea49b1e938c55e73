package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ishibashi-futos/oxide-sub000/internal/exitcodes"
	ui "github.com/ishibashi-futos/oxide-sub000/internal/ui"
	"github.com/ishibashi-futos/oxide-sub000/internal/update"
)

type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	Latest    string `json:"latest,omitempty" yaml:"latest,omitempty"`
}

func runVersion(d *Deps) error {
	info := versionInfo{
		Version:   update.CurrentVersionTag(d.Env, Version),
		Commit:    Commit,
		BuildDate: BuildDate,
	}
	latest := cachedUpdate(d)

	p := d.Printer
	if p.Structured() {
		info.Latest = latest
		p.Value(info)
		return nil
	}
	p.Textf("ox %s (%s) built %s\n", info.Version, info.Commit, info.BuildDate)
	if latest != "" && !ui.GetGlobal().Quiet {
		showUpdateNotification(d.Output, p.Colors, info.Version, latest)
	}
	return nil
}

// cachedUpdate returns the newer tag recorded by the last check, or "".
// Stale entries and entries no newer than the running build are ignored,
// so nothing is reported right after an update.
func cachedUpdate(d *Deps) string {
	repo := d.Cfg.SelfUpdate.Repo
	entry, err := update.LoadCache(d.Cfg.CacheDir, repo)
	if err != nil || !update.IsCacheValid(entry, d.Cfg.SelfUpdate.CheckInterval) || !entry.UpdateAvailable {
		return ""
	}
	current, err := update.CurrentVersion(d.Env, Version)
	if err != nil {
		return ""
	}
	latest, err := update.ParseVersionTag(entry.LatestTag)
	if err != nil || update.Decide(current, latest) != update.UpdateAvailable {
		return ""
	}
	return entry.LatestTag
}

// showUpdateNotification displays an update notice below command output.
func showUpdateNotification(w io.Writer, c *ui.ColorConfig, current, latest string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, c.Warning(fmt.Sprintf("  Update available: %s → %s", current, latest)))
	fmt.Fprintln(w, c.Info("  Run: ox self-update"))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		return runVersion(d)
	},
}

var completionCmd = &cobra.Command{
	Use:       "completion [bash|zsh|fish|powershell]",
	Short:     "Generate shell completion",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeCompletion(os.Stdout, args[0])
	},
}

func writeCompletion(w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return rootCmd.GenBashCompletion(w)
	case "zsh":
		return rootCmd.GenZshCompletion(w)
	case "fish":
		return rootCmd.GenFishCompletion(w, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(w)
	default:
		return exitcodes.InvalidArgsErrorf("unknown shell: %s", shell)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}
