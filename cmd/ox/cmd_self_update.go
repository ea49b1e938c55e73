package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ishibashi-futos/oxide-sub000/internal/exitcodes"
	ui "github.com/ishibashi-futos/oxide-sub000/internal/ui"
	"github.com/ishibashi-futos/oxide-sub000/internal/update"
)

type selfUpdateOpts struct {
	tag        string
	prerelease bool
	insecure   bool
	check      bool
	yes        bool
}

// planView is the structured rendering of a plan.
type planView struct {
	Current  string `json:"current" yaml:"current"`
	Target   string `json:"target" yaml:"target"`
	Decision string `json:"decision" yaml:"decision"`
	Asset    string `json:"asset,omitempty" yaml:"asset,omitempty"`
	Digest   string `json:"digest" yaml:"digest"`
	Backup   string `json:"backup,omitempty" yaml:"backup,omitempty"`
	Applied  bool   `json:"applied" yaml:"applied"`
}

func newPlanView(plan *update.Plan, asset update.Asset) planView {
	return planView{
		Current:  plan.CurrentTag,
		Target:   plan.TargetTag(),
		Decision: plan.Decision.String(),
		Asset:    asset.Name,
		Digest:   update.DigestStatus(asset.Digest),
	}
}

// runSelfUpdate plans, confirms and applies an update.
func runSelfUpdate(ctx context.Context, d *Deps, opts selfUpdateOpts) error {
	p := d.Printer
	cfg := d.Cfg.UpdateConfig()
	cfg.AllowPrerelease = cfg.AllowPrerelease || opts.prerelease
	cfg.AllowInsecure = cfg.AllowInsecure || opts.insecure
	if cfg.AllowInsecure && !p.Structured() {
		p.Warn("TLS certificate verification is disabled")
	}

	var (
		plan *update.Plan
		err  error
	)
	if opts.tag != "" {
		plan, err = d.Updater.PlanTag(ctx, cfg, d.Env, Version, opts.tag)
	} else {
		plan, err = d.Updater.PlanLatest(ctx, cfg, d.Env, Version)
		if err == nil {
			saveCheck(d, cfg.Repo, plan)
		}
	}
	if err != nil {
		return err
	}

	var (
		asset    update.Asset
		hasAsset bool
	)
	if d.Triple != "" {
		asset, hasAsset = plan.AssetFor(d.Triple)
	}
	view := newPlanView(plan, asset)
	if !p.Structured() {
		p.Info(plan.Summary(d.Triple))
	}

	if opts.check || (plan.Decision == update.UpToDate && opts.tag == "") {
		if p.Structured() {
			p.Value(view)
		} else if plan.Decision == update.UpToDate {
			p.Success(fmt.Sprintf("Already up to date (%s)", plan.CurrentTag))
		} else {
			p.Info("Run 'ox self-update' to install")
		}
		return nil
	}

	if !hasAsset {
		if d.Triple == "" {
			return exitcodes.PreconditionError("no release assets are published for this platform")
		}
		return exitcodes.PreconditionErrorf("release %s has no asset for %s", plan.TargetTag(), d.Triple)
	}

	if plan.Decision == update.Downgrade && !p.Structured() {
		p.Warn(fmt.Sprintf("%s is older than the running %s", plan.TargetTag(), plan.CurrentTag))
	}

	if !opts.yes {
		ok, err := confirm(d, "Proceed? [y/N]: ")
		if err != nil {
			return err
		}
		if !ok {
			p.Warn("Update cancelled")
			return nil
		}
	}

	if !p.Structured() {
		p.Info(fmt.Sprintf("Downloading %s...", asset.Name))
		d.Progress.start(ui.NewProgressBar(d.Output, "Downloading"))
	}
	binary, err := d.Updater.DownloadAsset(ctx, asset, cfg)
	d.Progress.stop()
	if err != nil {
		return err
	}

	backup, err := d.Updater.ReplaceCurrent(binary, plan.TargetTag())
	if err != nil {
		return err
	}

	if p.Structured() {
		view.Backup = backup
		view.Applied = true
		p.Value(view)
		return nil
	}
	p.Success(fmt.Sprintf("Updated to %s", plan.TargetTag()))
	p.KeyValueLine("Backup", backup, "dim")
	p.Info(fmt.Sprintf("Undo with: ox self-update rollback %s", filepath.Base(backup)))
	return nil
}

// saveCheck records the latest-release check for the version notice.
func saveCheck(d *Deps, repo string, plan *update.Plan) {
	if d.Cfg.CacheDir == "" {
		return
	}
	if err := update.SaveCache(d.Cfg.CacheDir, update.CacheEntryFor(repo, plan, d.Now())); err != nil {
		d.Logger.Debug("could not save update check", "err", err)
	}
}

// runRollback restores backup, or the last backup by name when empty.
func runRollback(d *Deps, backup string, yes bool) error {
	p := d.Printer
	if backup == "" {
		backups, err := d.Updater.ListBackups()
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			return exitcodes.PreconditionError("no backups found next to the ox executable")
		}
		backup = backups[len(backups)-1]
	}

	if !yes {
		ok, err := confirm(d, fmt.Sprintf("Restore %s over the running ox? [y/N]: ", backup))
		if err != nil {
			return err
		}
		if !ok {
			p.Warn("Rollback cancelled")
			return nil
		}
	}

	restored, err := d.Updater.Rollback(backup)
	if err != nil {
		return err
	}

	if p.Structured() {
		p.Value(map[string]string{"backup": backup, "executable": restored})
		return nil
	}
	p.Success(fmt.Sprintf("Restored %s", backup))
	p.KeyValueLine("Executable", restored, "dim")
	return nil
}

// runBackups lists retained binaries in name order.
func runBackups(d *Deps) error {
	p := d.Printer
	backups, err := d.Updater.ListBackups()
	if err != nil {
		return err
	}

	if p.Structured() {
		if backups == nil {
			backups = []string{}
		}
		p.Value(map[string][]string{"backups": backups})
		return nil
	}
	if len(backups) == 0 {
		p.Info("No backups found")
		return nil
	}

	rows := make([][]string, len(backups))
	for i, b := range backups {
		mark := ""
		if i == len(backups)-1 {
			mark = "default rollback"
		}
		rows[i] = []string{b, mark}
	}
	p.Textf("%s", ui.Table(p.Colors, []string{"BACKUP", ""}, rows))
	return nil
}

func init() {
	var opts selfUpdateOpts

	selfUpdateCmd := &cobra.Command{
		Use:   "self-update",
		Short: "Update ox to the latest release",
		Long: `Check GitHub releases for a newer ox and install it.

The asset for this platform is downloaded, its sha256 digest verified,
and the running binary replaced. The previous binary is kept next to it
as a backup for 'ox self-update rollback'.

Examples:
  ox self-update                    # Update to the newest stable release
  ox self-update --check            # Check only, don't install
  ox self-update --tag v1.2.0       # Install a specific release
  ox self-update --prerelease       # Consider prereleases`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			opts.yes = flagYes
			return runSelfUpdate(cmd.Context(), d, opts)
		},
	}
	selfUpdateCmd.Flags().StringVar(&opts.tag, "tag", "", "Install the release with exactly this tag")
	selfUpdateCmd.Flags().BoolVar(&opts.prerelease, "prerelease", false, "Allow prerelease versions")
	selfUpdateCmd.Flags().BoolVar(&opts.insecure, "insecure", false, "Skip TLS certificate verification")
	selfUpdateCmd.Flags().BoolVar(&opts.check, "check", false, "Only check for updates, don't install")

	rollbackCmd := &cobra.Command{
		Use:   "rollback [backup]",
		Short: "Restore a previous ox binary",
		Long: `Copy a backup over the running ox executable.

Without an argument the last backup in name order is restored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			backup := ""
			if len(args) == 1 {
				backup = args[0]
			}
			return runRollback(d, backup, flagYes)
		},
	}

	backupsCmd := &cobra.Command{
		Use:   "backups",
		Short: "List retained ox binaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			return runBackups(d)
		},
	}

	selfUpdateCmd.AddCommand(rollbackCmd, backupsCmd)
	rootCmd.AddCommand(selfUpdateCmd)
}
