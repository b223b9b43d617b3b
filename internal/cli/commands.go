package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bgunnarsson/dictbase/internal/app"
	"github.com/bgunnarsson/dictbase/internal/query"
	"github.com/bgunnarsson/dictbase/internal/ui"
)

func newTablesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withSession(cmd, func(ctx context.Context, s *app.Session, out app.Output) error {
				return s.RunTables(ctx, out)
			})
		},
	}
}

func newColumnsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "Print the columns discovered for the bound table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withSession(cmd, func(_ context.Context, s *app.Session, out app.Output) error {
				return s.RunColumns(out)
			})
		},
	}
}

func newAllCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Print every row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withSession(cmd, func(ctx context.Context, s *app.Session, out app.Output) error {
				return s.RunAll(ctx, out)
			})
		},
	}
}

func newFindCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "find <id>",
		Short: "Print the row with the given id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withSession(cmd, func(ctx context.Context, s *app.Session, out app.Output) error {
				return s.RunFind(ctx, out, parseID(args[0]))
			})
		},
	}
}

func newWhereCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "where col=val [col=val...]",
		Short: "Print rows matching every equality condition",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conds, err := query.ParsePairs(args)
			if err != nil {
				return err
			}
			return o.withSession(cmd, func(ctx context.Context, s *app.Session, out app.Output) error {
				return s.RunWhere(ctx, out, conds)
			})
		},
	}
}

func newOnlyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "only <f1,f2,...> [col=val...]",
		Short: "Print selected fields, optionally filtered",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := splitList(args[0])
			if len(fields) == 0 {
				return usageErr(cmd, "no fields given")
			}
			conds, err := query.ParsePairs(args[1:])
			if err != nil {
				return err
			}
			return o.withSession(cmd, func(ctx context.Context, s *app.Session, out app.Output) error {
				return s.RunOnly(ctx, out, fields, conds)
			})
		},
	}
}

func newCustomCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "custom <sql> [f1,f2,...]",
		Short: "Run a raw statement and print the named fields (default: table columns)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fields []string
			if len(args) == 2 {
				fields = splitList(args[1])
			}
			return o.withSession(cmd, func(ctx context.Context, s *app.Session, out app.Output) error {
				return s.RunCustom(ctx, out, args[0], fields)
			})
		},
	}
}

func newInsertCmd(o *options) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "insert col=val [col=val...]",
		Short: "Insert one row",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := query.ParsePairs(args)
			if err != nil {
				return err
			}
			return o.withSession(cmd, func(ctx context.Context, s *app.Session, out app.Output) error {
				return s.RunInsert(ctx, out, values, dryRun)
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the statement instead of running it")
	return cmd
}

func newUpdateCmd(o *options) *cobra.Command {
	var (
		where  []string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "update col=val [col=val...] [--where col=val...]",
		Short: "Update rows; without --where every row is updated",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := query.ParsePairs(args)
			if err != nil {
				return err
			}
			conds, err := query.ParsePairs(where)
			if err != nil {
				return err
			}
			return o.withSession(cmd, func(ctx context.Context, s *app.Session, out app.Output) error {
				return s.RunUpdate(ctx, out, values, conds, dryRun)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&where, "where", "w", nil, "condition col=val (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the statement instead of running it")
	return cmd
}

func newBrowseCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse and filter the bound table interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withSession(cmd, func(ctx context.Context, s *app.Session, out app.Output) error {
				t, err := s.RequireTable()
				if err != nil {
					return err
				}
				if !isTerminal(out.W) {
					return usageErr(cmd, "stdout is not a terminal")
				}
				return ui.Run(ctx, t, s.Label)
			})
		},
	}
}
