// Package cli wires clover's cobra commands over the loaded configuration
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/pkg/logging"
	"github.com/Ramsey-B/clover/pkg/processor"
	"github.com/Ramsey-B/clover/pkg/tabular"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Execute loads configuration and runs the command line described by args
func Execute(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	root := NewRootCommand(cfg)
	root.SetArgs(args)
	root.SetOut(stdout)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. Flag defaults come from cfg and parsed flags
// are written back into it.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "clover",
		Short: "Reconcile two address datasets",
		Long: `Clover links records of a secondary address dataset to records of a primary
business registry. A pair matches when ZIP codes are equal, cities are equal ignoring
case and the street addresses are fuzzily similar. When several registry records share
an address, the business name decides.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&cfg.PrettyLogs, "pretty-logs", cfg.PrettyLogs, "human-readable console logs")
	root.PersistentFlags().BoolVar(&cfg.TracingEnabled, "trace", cfg.TracingEnabled, "log finished spans at debug level")

	root.AddCommand(newMatchCommand(cfg))
	return root
}

func newMatchCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match the secondary dataset against the primary dataset",
		Example: `  clover match --primary registry.csv --secondary entities.csv --output output.csv
  clover match --threshold 85 --metric levenshtein --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMatch(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.PrimaryPath, "primary", cfg.PrimaryPath, "primary (registry) dataset")
	flags.StringVar(&cfg.SecondaryPath, "secondary", cfg.SecondaryPath, "secondary dataset to resolve")
	flags.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "output CSV, rewritten on every flush")
	flags.StringVar(&cfg.ColumnMapping, "columns", cfg.ColumnMapping, "YAML file overriding source header names and normalizers")
	flags.StringVar(&cfg.CSVDelimiter, "delimiter", cfg.CSVDelimiter, `input field delimiter; empty selects by extension, "tab" for tabs`)
	flags.Float64Var(&cfg.AddressMatchThreshold, "threshold", cfg.AddressMatchThreshold, "minimum address similarity, 0-100")
	flags.Float64Var(&cfg.NameMatchThreshold, "name-threshold", cfg.NameMatchThreshold, "minimum name similarity when several candidates remain, 0-100")
	flags.StringVar(&cfg.SimilarityMetric, "metric", cfg.SimilarityMetric, "similarity metric: indel or levenshtein")
	flags.IntVar(&cfg.FlushBatchSize, "batch-size", cfg.FlushBatchSize, "results buffered between output rewrites")
	flags.IntVar(&cfg.MatchWorkerCount, "workers", cfg.MatchWorkerCount, "concurrent matchers")
	flags.IntVar(&cfg.MatchWindowSize, "window", cfg.MatchWindowSize, "secondary records matched per parallel window")

	return cmd
}

func runMatch(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	zapLogger, err := logging.NewZap(cfg.LogLevel, cfg.PrettyLogs)
	if err != nil {
		return err
	}
	defer zapLogger.Sync() //nolint:errcheck
	logger := logging.New(zapLogger)

	if cfg.TracingEnabled {
		shutdown := tracing.Setup(cfg.AppName, logger)
		defer shutdown(context.Background()) //nolint:errcheck
	}

	pc, err := processor.ConfigFromEnv(cfg)
	if err != nil {
		return err
	}
	delimiter, err := cfg.Delimiter()
	if err != nil {
		return err
	}

	opts := tabular.DefaultReadOptions()
	opts.Delimiter = delimiter
	if cfg.ColumnMapping != "" {
		mapping, err := tabular.LoadColumnMapping(cfg.ColumnMapping)
		if err != nil {
			return err
		}
		pc.PrimaryColumns = mapping.Primary
		pc.SecondaryColumns = mapping.Secondary
		opts.Normalizers = mapping.Normalizers
	}
	reader := tabular.NewReader(logger, opts)
	sink := tabular.NewCSVSink(cfg.OutputPath)

	stats, err := processor.NewProcessor(pc, reader, sink, logger).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Matched %d pairs from %d secondary records against %d primary records\n",
		stats.Matches, stats.SecondaryRows, stats.PrimaryRows)
	if skipped := stats.PrimarySkipped + stats.SecondarySkipped; skipped > 0 {
		fmt.Fprintf(out, "Skipped %d malformed rows\n", skipped)
	}
	fmt.Fprintf(out, "Wrote %s (fingerprint %s)\n", sink.Path(), stats.Fingerprint)
	return nil
}
