package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/freightdesk/gridkit/internal/grid"
	"github.com/freightdesk/gridkit/internal/layout"
	"github.com/freightdesk/gridkit/internal/ui/styles"
	"github.com/freightdesk/gridkit/internal/util"
)

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Manage saved grid layouts",
		Long: `Manage layouts saved by 'gridkit view --layout <name>'.

A layout holds column widths, hidden and sub-row flags, the sub-row
field order and the sort. A token is the same layout packed into one
line, for pasting into a message or another machine.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved layouts",
			Args:  cobra.NoArgs,
			RunE:  runLayoutList,
		},
		&cobra.Command{
			Use:   "show <name>",
			Short: "Print a saved layout",
			Args:  cobra.ExactArgs(1),
			RunE:  runLayoutShow,
		},
		&cobra.Command{
			Use:   "token <name>",
			Short: "Print a saved layout as a token",
			Args:  cobra.ExactArgs(1),
			RunE:  runLayoutToken,
		},
		&cobra.Command{
			Use:   "import <name> <token>",
			Short: "Save a layout token under name",
			Args:  cobra.ExactArgs(2),
			RunE:  runLayoutImport,
		},
		&cobra.Command{
			Use:   "clear <name>",
			Short: "Delete a saved layout",
			Args:  cobra.ExactArgs(1),
			RunE:  runLayoutClear,
		},
	)
	return cmd
}

func runLayoutList(cmd *cobra.Command, args []string) error {
	store := layoutStore()
	names, err := store.List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, styles.MutedMsg("No saved layouts in "+store.Dir()))
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

func runLayoutShow(cmd *cobra.Command, args []string) error {
	l, err := loadLayout(args[0])
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(l)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runLayoutToken(cmd *cobra.Command, args []string) error {
	l, err := loadLayout(args[0])
	if err != nil {
		return err
	}
	token, err := layout.EncodeToken(l)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func runLayoutImport(cmd *cobra.Command, args []string) error {
	l, err := layout.DecodeToken(args[1])
	if err != nil {
		return err
	}
	if err := layoutStore().Save(args[0], l); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.SuccessMsg("Saved layout "+args[0]))
	return nil
}

func runLayoutClear(cmd *cobra.Command, args []string) error {
	err := layoutStore().Delete(args[0])
	if errors.Is(err, util.ErrLayoutNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), styles.MutedMsg("No layout named "+args[0]))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.SuccessMsg("Cleared layout "+args[0]))
	return nil
}

func loadLayout(name string) (grid.Layout, error) {
	l, err := layoutStore().Load(name)
	if errors.Is(err, util.ErrLayoutNotFound) {
		return l, util.NewError(fmt.Sprintf("Layout '%s' not found", name)).
			WithSuggestions("gridkit layout list").
			Wrap(err)
	}
	return l, err
}
