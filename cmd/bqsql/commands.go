package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	bqsql "gopkg.in/src-d/go-bqsql.v0"
	"gopkg.in/src-d/go-bqsql.v0/internal/schemacache"
	"gopkg.in/src-d/go-bqsql.v0/remote/sqldb"
	"gopkg.in/src-d/go-bqsql.v0/sql"
)

type globalFlags struct {
	config  string
	driver  string
	dsn     string
	dataset string
	verbose bool
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "bqsql",
		Short:         "Run queries and inspect tables",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if flags.verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "path of the YAML configuration")
	pf.StringVar(&flags.driver, "driver", "", "database/sql driver of the engine (default sqlite3)")
	pf.StringVar(&flags.dsn, "dsn", "", "data source name of the engine")
	pf.StringVarP(&flags.dataset, "dataset", "d", "", "default dataset")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log debug messages")

	cmd.AddCommand(
		newQueryCommand(flags),
		newTablesCommand(flags),
		newDescribeCommand(flags),
	)
	return cmd
}

// session is a client along with the resources to release when done.
type session struct {
	*bqsql.Client
	closers []io.Closer
}

func (s *session) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f *globalFlags) loadConfig() (*bqsql.Config, error) {
	cfg := bqsql.NewConfig()
	if f.config != "" {
		var err error
		if cfg, err = bqsql.LoadConfig(f.config); err != nil {
			return nil, err
		}
	}

	if f.driver != "" {
		cfg.Driver = f.driver
	}

	if cfg.Driver == "" {
		cfg.Driver = "sqlite3"
	}

	if f.dsn != "" {
		cfg.DSN = f.dsn
	}

	if f.dataset != "" {
		cfg.DatasetID = f.dataset
	}

	if cfg.DatasetID == "" && cfg.Driver == "sqlite3" {
		cfg.DatasetID = "main"
	}
	return cfg, nil
}

func (f *globalFlags) open(ctx context.Context) (*session, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.DSN == "" {
		return nil, fmt.Errorf("no data source name given, use --dsn or the dsn key of the configuration")
	}

	s := &session{}
	engine, err := sqldb.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, engine)

	var catalog sql.Catalog = sqldb.NewCatalog(engine.DB())
	if cfg.SchemaCache != "" {
		cache, err := schemacache.Open(cfg.SchemaCache, catalog, cfg.SchemaCacheTTL)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, cache)
		catalog = cache
	}

	if s.Client, err = bqsql.NewFromConfig(cfg, catalog, engine); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func newQueryCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "query SQL",
		Short: "Run a query as is and print its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			cursor, err := s.RawSQL(ctx, args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, strings.Join(cursor.Schema().Names(), "\t"))
			for _, row := range cursor.FetchAll() {
				values := make([]string, len(row))
				for i, v := range row {
					values[i] = formatValue(v)
				}
				fmt.Fprintln(w, strings.Join(values, "\t"))
			}
			return w.Flush()
		},
	}
}

func formatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}

func newTablesCommand(flags *globalFlags) *cobra.Command {
	var like string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			names, err := s.ListTables(ctx, like)
			if err != nil {
				return err
			}

			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&like, "like", "", "only list tables matching this regular expression")
	return cmd
}

func newDescribeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "describe TABLE",
		Short: "Print the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			table, err := s.Table(ctx, args[0], "")
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			names := s.Columns(ctx, table)
			for i, col := range table.Schema() {
				nullable := "NOT NULL"
				if col.Nullable {
					nullable = "NULL"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", names[i], col.Type, nullable)
			}
			return w.Flush()
		},
	}
}
