package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ishibashi-futos/oxide-sub000/internal/config"
	"github.com/ishibashi-futos/oxide-sub000/internal/exitcodes"
	ui "github.com/ishibashi-futos/oxide-sub000/internal/ui"
)

// Version information - set via -ldflags during build
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// silentErr carries an exit code for a failure that has already been
// reported to the user.
type silentErr struct{ error }

func (e silentErr) Unwrap() error { return e.error }

var rootCmd = &cobra.Command{
	Use:           "ox",
	Short:         "ox terminal file manager",
	Long:          "ox is a terminal file manager. These commands manage the ox binary itself.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize global UI config from flags after parsing but before command execution
		ui.InitGlobal(ui.Config{
			NoColor:        flagNoColor,
			NoEmoji:        flagNoEmoji,
			Yes:            flagYes,
			NonInteractive: flagNonInteractive,
			Quiet:          flagQuiet,
			Debug:          flagDebug,
		})

		// Set NO_COLOR env so lipgloss and other libraries respect the flag
		if flagNoColor {
			os.Setenv("NO_COLOR", "1")
		}

		switch flagOutput {
		case ui.FormatText, ui.FormatJSON, ui.FormatYAML:
			return nil
		default:
			return exitcodes.InvalidArgsErrorf("invalid --output %q: want text, json or yaml", flagOutput)
		}
	},
}

var (
	flagConfigDir      string
	flagOutput         string
	flagQuiet          bool
	flagDebug          bool
	flagNoColor        bool
	flagNoEmoji        bool
	flagYes            bool
	flagNonInteractive bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "Config directory (default $OX_CONFIG_DIR or ~/.config/ox)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "Output format: json|yaml|text")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Quiet mode: minimal output (suppresses extras)")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "Debug output: extra diagnostic logs")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable ANSI colors")
	rootCmd.PersistentFlags().BoolVar(&flagNoEmoji, "no-emoji", false, "Disable emoji output")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Assume yes for all prompts")
	rootCmd.PersistentFlags().BoolVar(&flagNonInteractive, "non-interactive", false, "Fail instead of prompting")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return exitcodes.WrapError(exitcodes.InvalidArgs, cmd.CommandPath(), err)
	})

	// Only the root command gets the grouped help; subcommands use cobra's default.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			fmt.Fprintln(os.Stdout, cmd.UsageString())
			return
		}
		writeRootHelp(os.Stdout)
	})
}

func writeRootHelp(w io.Writer) {
	// Help runs before PersistentPreRun, so manually configure colors
	c := ui.NewColorConfig()
	c.Enabled = c.Enabled && !flagNoColor
	c.EmojiEnabled = c.EmojiEnabled && !flagNoEmoji

	const cmdWidth = 28
	line := func(cmd, desc string) {
		fmt.Fprintln(w, c.FormatCommand(fmt.Sprintf("%-*s", cmdWidth, cmd), desc))
	}

	fmt.Fprintln(w, c.Header(" ox "))
	fmt.Fprintln(w, c.Description(rootCmd.Long))
	fmt.Fprintln(w, c.Separator(50))
	fmt.Fprintln(w)

	fmt.Fprintln(w, c.SubHeader("USAGE"))
	fmt.Fprintf(w, "  %s <command> [flags]\n", "ox")
	fmt.Fprintln(w)

	fmt.Fprintln(w, c.SubHeader("Upgrades"))
	line("self-update", "Update ox to the latest release")
	line("self-update --tag <tag>", "Install a specific release")
	line("self-update --check", "Only check for a newer release")
	line("self-update rollback [name]", "Restore a previous binary")
	line("self-update backups", "List retained binaries")
	fmt.Fprintln(w)

	fmt.Fprintln(w, c.SubHeader("Utilities"))
	line("version", "Show version")
	line("completion <shell>", "Generate shell completion")
	fmt.Fprintln(w)
}

// Execute runs the root command and exits with the classified code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(exitcodes.CodeForError(err))
	}
}

func reportError(w io.Writer, err error) {
	var se silentErr
	if errors.As(err, &se) {
		return
	}
	if flagOutput == ui.FormatJSON || flagOutput == ui.FormatYAML {
		fmt.Fprintln(w, err)
		return
	}
	ui.PrintError(w, describeError(err))
}

// loadCfg reads config.toml and OX_* overrides from the config dir.
func loadCfg() (*config.Config, error) {
	dir := flagConfigDir
	if dir == "" {
		dir = config.DefaultConfigDir()
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, exitcodes.WrapError(exitcodes.InvalidArgs, "load config", err)
	}
	return cfg, nil
}

// getPrinter returns a UI printer bound to the current --output flag.
func getPrinter() ui.Printer { return ui.NewPrinterFromGlobal(flagOutput) }
