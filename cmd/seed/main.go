// Command seed fills the users table from the GitHub users API.
//
//	seed            # fetch SEED_TOTAL users (default 150)
//	seed 250        # fetch 250 users
//	seed --db /tmp/site.db 40
//
// Upstream failures are logged and skipped; whatever was fetched is loaded. The
// command exits non-zero only when it is interrupted or the load itself fails,
// and in both cases the previous table is left as it was.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sakif/github-profiles/internal/config"
	"github.com/sakif/github-profiles/internal/github"
	"github.com/sakif/github-profiles/internal/harvest"
	"github.com/sakif/github-profiles/internal/logger"
	sqliteRepo "github.com/sakif/github-profiles/internal/repository/sqlite"
	"github.com/sakif/github-profiles/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newSeedCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newSeedCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:          "seed [total]",
		Short:        "Fetch GitHub users and replace the users table",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dbPath != "" {
				cfg.Database.Path = dbPath
			}

			total := cfg.Seed.Total
			if len(args) == 1 {
				if total, err = parseTotal(args[0]); err != nil {
					return err
				}
			}
			return run(cmd.Context(), cfg, total)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DB_PATH)")
	return cmd
}

func parseTotal(arg string) (int, error) {
	total, err := strconv.Atoi(arg)
	if err != nil || total < 1 {
		return 0, fmt.Errorf("total must be a positive integer, got %q", arg)
	}
	return total, nil
}

func run(ctx context.Context, cfg *config.Config, total int) error {
	log, closer, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closer.Close()

	log.Info("seed starting",
		slog.Int("total", total),
		slog.String("database", cfg.Database.Path),
		slog.String("github", cfg.GitHub.BaseURL),
		slog.Bool("authenticated", cfg.GitHub.Token != ""),
	)

	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	client, err := github.New(github.Options{
		BaseURL:           cfg.GitHub.BaseURL,
		Token:             cfg.GitHub.Token,
		Timeout:           cfg.GitHub.Timeout,
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
	}, log)
	if err != nil {
		return err
	}

	seeder := service.NewSeedService(
		harvest.NewHarvester(client, log),
		db,
		min(cfg.GitHub.MaxPerPage, github.MaxPerPage),
		log,
	)

	report, err := seeder.Run(ctx, total)
	if err != nil {
		return err
	}

	log.Info("seed complete",
		slog.String("run_id", report.RunID),
		slog.Int("requested", report.Requested),
		slog.Int("loaded", report.Loaded),
	)
	return nil
}
