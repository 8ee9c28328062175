package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/freightdesk/gridkit/internal/ui"
	"github.com/freightdesk/gridkit/internal/ui/table"
	"github.com/freightdesk/gridkit/internal/util"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print a table without the interactive grid",
		Long: `Fetch the table described by grid.toml, apply filters and a sort,
and print the visible rows.

Filters follow each column's filter_mode: server columns are sent to
the database, local columns are matched on the fetched rows. A filter
is a case-insensitive substring match.

Examples:
  gridkit export
  gridkit export --filter status=active --sort departedAt:desc
  gridkit export --json > rows.json
  gridkit export --raw | cut -f1`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringP("config", "c", "", "Grid definition file (default grid.toml)")
	cmd.Flags().StringArrayP("filter", "f", nil, "Filter as column=value (repeatable)")
	cmd.Flags().StringP("sort", "s", "", "Sort as column[:asc|desc]")
	cmd.Flags().String("layout", "", "Apply a saved layout (hidden columns and sort)")
	cmd.Flags().Bool("json", false, "Output results as JSON array")
	cmd.Flags().Bool("raw", false, "Output tab-separated values (for piping)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	filterFlags, _ := cmd.Flags().GetStringArray("filter")
	sortFlag, _ := cmd.Flags().GetString("sort")
	layoutName, _ := cmd.Flags().GetString("layout")
	jsonOut, _ := cmd.Flags().GetBool("json")
	raw, _ := cmd.Flags().GetBool("raw")

	if jsonOut && raw {
		return fmt.Errorf("--json and --raw are mutually exclusive")
	}

	cfg, global, err := loadConfigs(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(global.Filter.Timeout)*time.Second)
	defer cancel()

	spinner := ui.NewSpinner("Fetching " + cfg.Source.Table)
	spinner.Start()
	s, err := openSession(ctx, cfg, global, logger)
	if err != nil {
		spinner.Stop()
		return err
	}
	defer s.Close()

	if layoutName != "" {
		l, err := layoutStore().Load(layoutName)
		if err != nil {
			spinner.Stop()
			return err
		}
		s.grid.RestoreLayout(l)
	}

	for _, f := range filterFlags {
		spec, err := parseFilterFlag(f)
		if err != nil {
			spinner.Stop()
			return err
		}
		col, ok := s.grid.Column(spec.Column)
		if !ok {
			spinner.Stop()
			return util.UnknownColumnError(spec.Column, cfg.ColumnKeys())
		}
		if !col.Filterable {
			spinner.Stop()
			return fmt.Errorf("column %q is not filterable", spec.Column)
		}
		if err := s.applyFilter(ctx, spec); err != nil {
			spinner.Stop()
			return fmt.Errorf("filter %s: %w", spec.Column, err)
		}
	}
	spinner.Stop()

	if sortFlag != "" {
		spec, err := parseSortFlag(sortFlag)
		if err != nil {
			return err
		}
		if err := applySort(s.grid, spec, cfg.ColumnKeys()); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	headers, rows := table.ExportRows(s.grid)
	switch {
	case jsonOut:
		return table.PrintJSONResults(out, headers, rows)
	case raw:
		table.PrintRaw(out, rows)
		return nil
	}
	return table.PrintPlainTable(out, headers, rows)
}
