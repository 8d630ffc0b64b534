package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LavaJover/affiliate-aggregator/internal/app/setup"
	"github.com/LavaJover/affiliate-aggregator/internal/config"
	"github.com/LavaJover/affiliate-aggregator/internal/domain"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/logger"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/postgres"
	"github.com/LavaJover/affiliate-aggregator/internal/usecase"
)

var errIngestionFailed = errors.New("ingestion failed")

type options struct {
	configPath     string
	migrationsPath string
}

// app is what a command needs once configuration and the database are up.
type app struct {
	ingestion usecase.IngestionUsecase
	programs  usecase.ProgramUsecase
	close     func() error
}

type bootstrapFunc func(opts *options) (*app, error)

func loadConfig(opts *options) (*config.AggregatorConfig, error) {
	if opts.configPath != "" {
		return config.Load(opts.configPath)
	}
	return config.LoadEnv()
}

func bootstrap(opts *options) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogConfig)
	if err != nil {
		return nil, err
	}

	deps, err := setup.InitializeDependencies(cfg, log)
	if err != nil {
		return nil, err
	}
	ucs, err := setup.InitializeUseCases(deps)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	return &app{
		ingestion: ucs.IngestionUsecase,
		programs:  ucs.ProgramUsecase,
		close:     deps.Close,
	}, nil
}

func newRootCmd(boot bootstrapFunc) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "aggregatorctl",
		Short:         "Operate the affiliate program aggregator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default: environment only)")

	rootCmd.AddCommand(
		newFetchCmd(opts, boot),
		newRemapCmd(opts, boot),
		newMigrateCmd(opts),
	)
	return rootCmd
}

func newFetchCmd(opts *options, boot bootstrapFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <network|all>",
		Short: "Run ingestion for one network or every network",
		Long: `Fetch, validate and store the Danish programs of an affiliate network.

Networks: adtraction, partner-ads, smartresponse. Use "all" to run every
network concurrently. The outcome is printed as JSON; the command fails if
any run failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := boot(opts)
			if err != nil {
				return err
			}
			defer a.close()

			if strings.EqualFold(args[0], "all") {
				outcomes := a.ingestion.RunAll(cmd.Context())
				if err := printJSON(cmd.OutOrStdout(), outcomes); err != nil {
					return err
				}
				return failedRuns(outcomes)
			}

			outcome, err := a.ingestion.Run(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%w (known networks: %s)", err, strings.Join(a.ingestion.Networks(), ", "))
			}
			if err := printJSON(cmd.OutOrStdout(), outcome); err != nil {
				return err
			}
			if !outcome.Success {
				return fmt.Errorf("%w: %s", errIngestionFailed, outcome.Message)
			}
			return nil
		},
	}
}

func newRemapCmd(opts *options, boot bootstrapFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "remap-categories",
		Short: "Repair and re-map the category of every stored program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := boot(opts)
			if err != nil {
				return err
			}
			defer a.close()

			updated, err := a.programs.RemapCategories(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d programs successfully\n", updated)
			return nil
		},
	}
}

func newMigrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if opts.migrationsPath != "" {
				cfg.DB.MigrationsPath = opts.migrationsPath
			}

			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			db, err := postgres.Open(cfg.DB, log)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.migrationsPath, "path", "", "migrations directory (overrides db.migrations_path)")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func failedRuns(outcomes map[string]domain.IngestionOutcome) error {
	var failed []string
	for slug, outcome := range outcomes {
		if !outcome.Success {
			failed = append(failed, slug)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	sort.Strings(failed)
	return fmt.Errorf("%w: %s", errIngestionFailed, strings.Join(failed, ", "))
}
