package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/freightdesk/gridkit/internal/config"
	"github.com/freightdesk/gridkit/internal/ui/styles"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <key> [value]",
		Short: "Get and set global preferences",
		Long: `Get and set user-wide gridkit preferences.

Values in grid.toml win over these defaults.

Options:
` + config.GenerateHelpText() + `Examples:
  gridkit config view.default_width          # Get value
  gridkit config view.default_width 24       # Set value
  gridkit config filter.policy last_settled  # Set value
  gridkit config --list                      # List all values`,
		Args: cobra.RangeArgs(0, 2),
		RunE: runConfig,
	}

	cmd.Flags().BoolP("list", "l", false, "List all configuration")
	cmd.Flags().Bool("path", false, "Print the config file location")

	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	listAll, _ := cmd.Flags().GetBool("list")
	showPath, _ := cmd.Flags().GetBool("path")
	out := cmd.OutOrStdout()

	if showPath {
		fmt.Fprintln(out, config.GlobalConfigPath())
		return nil
	}

	cfg, err := config.LoadGlobal()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if listAll {
		for _, key := range config.ListKeys() {
			value, _ := cfg.GetValue(key)
			fmt.Fprintf(out, "%s=%s\n", key, value)
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("usage: gridkit config <key> [value]")
	}

	key := args[0]
	if len(args) == 1 {
		value, ok := cfg.GetValue(key)
		if !ok {
			return fmt.Errorf("unknown config key: %s", key)
		}
		fmt.Fprintln(out, value)
		return nil
	}

	if err := cfg.SetValue(key, args[1]); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintln(out, styles.SuccessMsg(fmt.Sprintf("%s = %s", key, args[1])))
	return nil
}
