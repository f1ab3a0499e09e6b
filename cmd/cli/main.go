package main

import (
	"context"
	"fmt"
	"os"

	"riskhypo/adapters/postgres"
	"riskhypo/adapters/tabular"
	"riskhypo/app"
	"riskhypo/domain/hypothesis"
	"riskhypo/internal"
	"riskhypo/internal/config"
	"riskhypo/internal/errors"
	"riskhypo/internal/migration"
	"riskhypo/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

// globalFlags override the environment configuration
type globalFlags struct {
	file      string
	delimiter string
	sheet     string
	logLevel  string
}

func main() {
	_ = godotenv.Load()

	var flags globalFlags
	rootCmd := &cobra.Command{
		Use:           "riskhypo",
		Short:         "Insurance risk hypothesis testing over policy extracts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.file, "file", "", "Input file, delimited text or xlsx (overrides DATA_FILE)")
	rootCmd.PersistentFlags().StringVar(&flags.delimiter, "delimiter", "", "Field delimiter: a character or tab|pipe|comma (overrides DATA_DELIMITER)")
	rootCmd.PersistentFlags().StringVar(&flags.sheet, "sheet", "", "Worksheet for xlsx input (overrides DATA_SHEET)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "ERROR|WARN|INFO|DEBUG|TRACE (overrides LOG_LEVEL)")

	rootCmd.AddCommand(
		newAnalyzeCmd(&flags),
		newProfileCmd(&flags),
		newEquivalenceCmd(&flags),
		newSegmentsCmd(&flags),
		newServeCmd(&flags),
		newMigrateCmd(&flags),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment, applies flag overrides and validates the result
func loadConfig(flags *globalFlags) (*config.Config, *internal.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if flags.file != "" {
		cfg.Data.File = flags.file
	}
	if flags.delimiter != "" {
		cfg.Data.Delimiter = flags.delimiter
	}
	if flags.sheet != "" {
		cfg.Data.Sheet = flags.sheet
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel), os.Stderr)
	return cfg, logger, nil
}

// pipelineOptions maps configuration onto pipeline options
func pipelineOptions(cfg *config.Config) (app.PipelineOptions, error) {
	opts := app.DefaultPipelineOptions()
	hs, err := cfg.Hypotheses()
	if err != nil {
		return opts, err
	}
	opts.Hypotheses = hs
	opts.Dates.Columns = cfg.Data.DateColumns
	opts.AddDateParts = cfg.Analysis.AddDateParts
	opts.Runner.Parallel = cfg.Analysis.ParallelTests
	opts.Runner.MaxWorkers = cfg.Analysis.MaxWorkers
	if cfg.Analysis.MinGroupSize != hypothesis.DefaultMinGroupSize {
		opts.Runner.MinGroupSize = cfg.Analysis.MinGroupSize
	}
	return opts, nil
}

// newPipeline builds the pipeline service; repo may be nil
func newPipeline(flags *globalFlags, repo ports.ReportRepository) (*app.PipelineService, *config.Config, *internal.Logger, error) {
	cfg, logger, err := loadConfig(flags)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Data.File == "" {
		return nil, nil, nil, errors.ConfigInvalid("no input file: set DATA_FILE or pass --file")
	}
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	reader := tabular.NewDataReader(cfg.ReaderConfig(), logger)
	return app.NewPipelineService(reader, repo, logger, opts), cfg, logger, nil
}

// openDatabase connects and migrates
func openDatabase(ctx context.Context, url string, logger *internal.Logger) (*sqlx.DB, error) {
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	logger.Info("database schema at version %s", migrator.Version())
	return db, nil
}

func newAnalyzeCmd(flags *globalFlags) *cobra.Command {
	var format, output string
	var save bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full pipeline and print the hypothesis test report",
		Long: `Load the policy extract, normalize dates, clean, derive loss ratio, margin,
claim frequency and severity, then evaluate every configured hypothesis.

Formats: table, csv, json, markdown, html, xlsx (xlsx requires --output).

Example: riskhypo analyze --file MachineLearningRating_v3.txt --format markdown`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var repo ports.ReportRepository
			if save {
				cfg, logger, err := loadConfig(flags)
				if err != nil {
					return err
				}
				db, err := openDatabase(cmd.Context(), cfg.Database.URL, logger)
				if err != nil {
					return err
				}
				defer db.Close()
				repo = postgres.NewReportRepository(db)
			}

			svc, _, _, err := newPipeline(flags, repo)
			if err != nil {
				return err
			}
			result, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}
			return writeReport(result, format, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|csv|json|markdown|html|xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the report to DATABASE_URL")
	return cmd
}

func newProfileCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Profile every column of the cleaned, metric-augmented dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := newPipeline(flags, nil)
			if err != nil {
				return err
			}
			profiles, err := svc.Profile(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(os.Stdout, profiles)
			}
			fmt.Fprintln(os.Stdout, renderProfiles(profiles))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newEquivalenceCmd(flags *globalFlags) *cobra.Command {
	var group, feature string

	cmd := &cobra.Command{
		Use:   "equivalence",
		Short: "Show the share of each feature value per group",
		Long: `Row-normalised crosstab of a group column against a feature, used to check that
compared groups have a similar composition.

Example: riskhypo equivalence --group Province --feature Gender`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := newPipeline(flags, nil)
			if err != nil {
				return err
			}
			ct, err := svc.Equivalence(cmd.Context(), group, feature)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, renderCrosstab(ct))
			fmt.Fprintf(os.Stdout, "largest share gap: %.4f\n", ct.MaxShareGap())
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "Province", "Group column")
	cmd.Flags().StringVar(&feature, "feature", "Gender", "Feature column")
	return cmd
}

func newSegmentsCmd(flags *globalFlags) *cobra.Command {
	var metric, group string

	cmd := &cobra.Command{
		Use:   "segments",
		Short: "Mean of a metric per group, lowest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := newPipeline(flags, nil)
			if err != nil {
				return err
			}
			means, err := svc.SegmentMeans(cmd.Context(), metric, group)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, renderSegments(metric, group, means))
			return nil
		},
	}
	cmd.Flags().StringVar(&metric, "metric", "LossRatio", "Metric column")
	cmd.Flags().StringVar(&group, "group", "Province", "Group column")
	return cmd
}

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the report tables in DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg.Database.URL, logger)
			if err != nil {
				return err
			}
			return db.Close()
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var rows int
	var seed int64
	var output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic pipe-delimited policy extract",
		Long: `Generate a deterministic synthetic policy file for demos and smoke tests.

Example: riskhypo generate --rows 5000 --seed 7 -o policies.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(output, rows, seed)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 2000, "Number of policies")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic output")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}
