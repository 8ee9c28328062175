package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/freightdesk/gridkit/internal/layout"
	"github.com/freightdesk/gridkit/internal/ui"
	"github.com/freightdesk/gridkit/internal/ui/table"
	"github.com/freightdesk/gridkit/internal/util"
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open a table in the interactive grid",
		Long: `Open the table described by grid.toml in the interactive grid.

Keys:
  arrows/hjkl  move          s      sort column (asc, desc, off)
  /            filter column x      clear filter
  space        select row    tab    expand sub-row
  e, enter     edit cell     E      edit sub-row field
  S / U        move column to / from the sub-row
  [ ]          reorder sub-row fields
  < >          resize column (enter commits, esc cancels)
  H            hide column   y / Y  copy cell / rows
  ctrl+s       save layout   J R P  print JSON / raw / table on exit
  q            quit

With --layout the layout is restored on start and saved on quit.

Examples:
  gridkit view
  gridkit view --config shipments.toml --layout dispatch
  gridkit view --token <layout token>`,
		Args: cobra.NoArgs,
		RunE: runView,
	}

	cmd.Flags().StringP("config", "c", "", "Grid definition file (default grid.toml)")
	cmd.Flags().StringP("layout", "L", "", "Named layout to restore and save")
	cmd.Flags().String("token", "", "Layout token to apply on start")
	cmd.Flags().String("log-file", "", "Write logs to this file")
	cmd.Flags().Bool("no-pager", false, "Print a plain table instead of the interactive grid")

	return cmd
}

func runView(cmd *cobra.Command, args []string) error {
	layoutName, _ := cmd.Flags().GetString("layout")
	token, _ := cmd.Flags().GetString("token")
	logFile, _ := cmd.Flags().GetString("log-file")
	noPager, _ := cmd.Flags().GetBool("no-pager")

	if layoutName != "" && !layout.ValidName(layoutName) {
		return fmt.Errorf("invalid layout name %q (letters, digits, . _ -)", layoutName)
	}

	// The grid owns the terminal, so logs go to a file or nowhere.
	logger := slog.New(slog.DiscardHandler)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = newLogger(cmd, f)
	}

	cfg, global, err := loadConfigs(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(global.Filter.Timeout)*time.Second)
	spinner := ui.NewSpinner("Loading " + cfg.Source.Table)
	spinner.Start()
	s, err := openSession(ctx, cfg, global, logger)
	spinner.Stop()
	cancel()
	if err != nil {
		return err
	}
	defer s.Close()

	store := layoutStore()
	if layoutName != "" {
		l, err := store.Load(layoutName)
		switch {
		case errors.Is(err, util.ErrLayoutNotFound):
			logger.Info("new layout", "name", layoutName)
		case err != nil:
			return err
		default:
			s.grid.RestoreLayout(l)
		}
	}
	if token != "" {
		l, err := layout.DecodeToken(token)
		if err != nil {
			return err
		}
		s.grid.RestoreLayout(l)
	}

	title := cfg.View.Title
	if title == "" {
		title = cfg.Source.Table
	}
	opts := table.Options{
		Title:         title,
		Source:        s.backend,
		Query:         s.query,
		FilterTimeout: time.Duration(global.Filter.Timeout) * time.Second,
		DefaultWidth:  global.View.DefaultWidth,
		MinWidth:      global.View.MinWidth,
		ResizeStep:    global.View.ResizeStep,
		Layouts:       store,
		LayoutName:    layoutName,
		Logger:        logger,
		Output:        cmd.OutOrStdout(),
	}
	if cfg.View.DefaultWidth > 0 {
		opts.DefaultWidth = cfg.View.DefaultWidth
	}
	if cfg.View.MinWidth > 0 {
		opts.MinWidth = cfg.View.MinWidth
	}

	return table.DisplayResults(s.grid, opts, table.DisplayOptions{NoPager: noPager})
}

// layoutStore honors GRIDKIT_LAYOUT_DIR before the user config dir.
func layoutStore() *layout.Store {
	if dir := os.Getenv("GRIDKIT_LAYOUT_DIR"); dir != "" {
		return layout.NewStore(dir)
	}
	return layout.NewStore(layout.DefaultDir())
}
