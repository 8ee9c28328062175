package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/freightdesk/gridkit/internal/ui/styles"
	"github.com/freightdesk/gridkit/internal/util"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gridkit",
		Short: "Browse, filter and edit database tables in the terminal",
		Long: `gridkit shows a database table as an interactive grid.

A grid.toml file names the source table and describes its columns:
which ones sort, which ones filter locally or on the server, and which
ones live in the expandable sub-row under each record.

Supported sources are PostgreSQL and SQLite.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().Bool("no-color", false, "Disable colored output")

	root.SetVersionTemplate(fmt.Sprintf("gridkit version %s\n  commit: %s\n  built:  %s\n", Version, CommitSHA, BuildDate))

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			os.Setenv("GRIDKIT_NO_COLOR", "1")
		}
	}

	root.AddCommand(
		newVersionCmd(),
		newViewCmd(),
		newExportCmd(),
		newConfigCmd(),
		newLayoutCmd(),
		newCompletionCmd(),
	)
	return root
}

// Execute runs the CLI and prints a failure the way users expect it.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		var gridErr *util.GridError
		if errors.As(err, &gridErr) {
			fmt.Fprintln(os.Stderr, gridErr.Format())
		} else {
			fmt.Fprintln(os.Stderr, styles.ErrorMsg(err.Error()))
		}
		return err
	}
	return nil
}

// newLogger returns a text logger on w at Info, or Debug with --verbose.
func newLogger(cmd *cobra.Command, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for gridkit.

To load completions:

Bash:
  $ source <(gridkit completion bash)

Zsh:
  $ gridkit completion zsh > "${fpath[1]}/_gridkit"

Fish:
  $ gridkit completion fish | source

PowerShell:
  PS> gridkit completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gridkit version %s\n", Version)
			fmt.Fprintf(out, "  commit: %s\n", CommitSHA)
			fmt.Fprintf(out, "  built:  %s\n", BuildDate)
		},
	}
}
