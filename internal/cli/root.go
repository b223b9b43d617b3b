package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bgunnarsson/dictbase/internal/app"
	"github.com/bgunnarsson/dictbase/internal/config"
	"github.com/bgunnarsson/dictbase/internal/logging"
	"github.com/bgunnarsson/dictbase/internal/record"
)

// options are the global flags.
type options struct {
	configPath string
	driver     string
	dsn        string
	table      string
	model      string
	timestamps bool
	logLevel   string
	json       bool
	split      bool
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "dictbase",
		Short: "Dictionary-shaped CRUD over any SQL table",
		Long: `dictbase binds to one table, discovers its columns at runtime and reads or
writes rows as plain column=value maps.

Connection settings come from --config (YAML), then DICTBASE_* environment
variables, then flags.

Examples:
  dictbase --dsn clinic.db --table patients all
  dictbase --dsn clinic.db --model Patient where name=Ana
  dictbase --driver postgres --dsn postgres://localhost/clinic --table patients \
      update name=Bea --where id=3`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "YAML config file")
	f.StringVar(&opts.driver, "driver", "", "driver: "+strings.Join(config.Drivers, ", "))
	f.StringVar(&opts.dsn, "dsn", "", "data source name (sqlite/duckdb: file path)")
	f.StringVarP(&opts.table, "table", "t", "", "table to bind")
	f.StringVar(&opts.model, "model", "", "type name to derive the table from (Patient -> patients)")
	f.BoolVar(&opts.timestamps, "timestamps", true, "fill updated/created on insert")
	f.StringVar(&opts.logLevel, "log-level", "", "trace, debug, info, warn, error")
	f.BoolVar(&opts.json, "json", false, "print rows as JSON")
	f.BoolVar(&opts.split, "split", false, "where/only: one mapping per field instead of per row")

	root.AddCommand(
		newTablesCmd(opts),
		newColumnsCmd(opts),
		newAllCmd(opts),
		newFindCmd(opts),
		newWhereCmd(opts),
		newOnlyCmd(opts),
		newCustomCmd(opts),
		newInsertCmd(opts),
		newUpdateCmd(opts),
		newBrowseCmd(opts),
	)

	return root
}

// resolve merges config file, environment and the flags that were set.
func (o *options) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Driver = o.driver
	}
	if flags.Changed("dsn") {
		cfg.DSN = o.dsn
	}
	if flags.Changed("table") {
		cfg.Table = o.table
	}
	if flags.Changed("model") {
		cfg.Table = record.TableName(o.model)
	}
	if flags.Changed("timestamps") {
		cfg.Timestamps = o.timestamps
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

func newLogger(cfg config.Config, w io.Writer) zerolog.Logger {
	pretty := cfg.Log.Pretty
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		pretty = false
	}
	return logging.NewWithComponent(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: pretty,
		Output: w,
	}, "cli")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// withSession opens a session for the command and closes it afterwards.
func (o *options) withSession(cmd *cobra.Command, run func(ctx context.Context, s *app.Session, out app.Output) error) error {
	cfg, err := o.resolve(cmd)
	if err != nil {
		return err
	}

	log := newLogger(cfg, cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()

	w := cmd.OutOrStdout()
	return run(ctx, s, app.Output{
		W:      w,
		Styled: isTerminal(w),
		JSON:   o.json,
		Split:  o.split,
	})
}

// parseID keeps numeric ids numeric so every driver compares them as integers.
func parseID(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func usageErr(cmd *cobra.Command, msg string) error {
	return fmt.Errorf("%s: %s", cmd.Name(), msg)
}
