package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fortuna/drivescore/internal/config"
	"github.com/fortuna/drivescore/internal/ingest/gamecenter"
	"github.com/fortuna/drivescore/internal/normalize"
	"github.com/fortuna/drivescore/internal/pipeline"
	"github.com/fortuna/drivescore/internal/publisher"
	"github.com/fortuna/drivescore/internal/scoring"
	"github.com/fortuna/drivescore/internal/store"
	"github.com/fortuna/drivescore/internal/store/repository"
)

const (
	appName    = "drivescore-score"
	appVersion = "1.0.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type options struct {
	cfgFile string
	dryRun  bool
	side    string
	top     int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "score",
		Short:   "Score drives and rate offenses and defenses for a range of seasons",
		Version: appVersion,
		Long: `score loads game-center drive data for each season in the range, normalizes
it, values every drive by expected points adjusted for field position and
opponent strength, and writes scored drives and team ratings to the output
directory (and to Postgres and Redis when configured).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default: ./drivescore.yaml)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Score without writing any output")
	flags.StringVar(&opts.side, "side", string(scoring.SideOffense), "Side to print rankings for (offense|defense)")
	flags.IntVar(&opts.top, "top", 10, "Teams per season to print (0 for all)")

	flags.String("data-dir", "", "Directory holding season drive data")
	flags.String("output-dir", "", "Directory for scored drive and rating files")
	flags.Int("start", 0, "First season to score")
	flags.Int("end", 0, "Last season to score")
	flags.Int("iterations", 0, "Opponent adjustment rounds")
	flags.Float64("step-size", 0, "Opponent adjustment step size")
	flags.Bool("opponent-adjust", true, "Adjust scores for opponent strength")
	flags.Bool("exclude-playoffs", false, "Drop playoff games before scoring")
	flags.Int("blowout-margin", 0, "Drop 4th-quarter drives started at or above this margin (0 disables)")
	flags.Bool("center-scores", false, "Seed opponent adjustment from field-position-relative scores")
	flags.Int("playoff-cutoff", 0, "Regular-season games per season")
	flags.StringSlice("exhibition", nil, "Exhibition team codes to drop")
	flags.String("database-url", "", "Postgres URL (optional)")
	flags.Bool("migrate", true, "Apply database migrations before writing")
	flags.String("redis-url", "", "Redis URL for rating publication (optional)")
	flags.String("stream", "", "Redis stream for rating publication")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	side, err := scoring.ParseSide(opts.side)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Printf("=== %s v%s ===", appName, appVersion)

	runner := pipeline.NewRunner(
		gamecenter.NewLoader(cfg.DataDir, nil),
		normalize.New(cfg.NormalizerConfig(), nil),
		scoring.NewEngine(cfg.EngineOptions(), nil),
		nil,
	)
	runner.AddSink(pipeline.NewFileSink(cfg.OutputDir))

	if cfg.Database.URL != "" && !opts.dryRun {
		db, err := store.NewDatabase(cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		if cfg.Database.RunMigrations {
			if err := db.RunMigrations(); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}

		runner.AddSink(pipeline.NewDatabaseSink(repository.NewDriveRepository(db), repository.NewRatingRepository(db)))
		runner.SetRecorder(repository.NewRunRepository(db))
		log.Println("✓ Connected to database")
	}

	if cfg.Redis.URL != "" && !opts.dryRun {
		pub, err := publisher.NewRedisPublisher(cfg.Redis.URL, cfg.Redis.Stream)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer pub.Close()

		runner.AddSink(pipeline.NewPublisherSink(pub))
		log.Printf("✓ Publishing ratings to %s", pub.Stream())
	}

	spec := pipeline.JobSpec{
		StartSeason: cfg.StartSeason,
		EndSeason:   cfg.EndSeason,
		DryRun:      opts.dryRun,
	}

	result, err := runner.Run(cmd.Context(), spec, &consoleReporter{dryRun: opts.dryRun})
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	renderRatings(cmd.OutOrStdout(), result.Ratings, side, opts.top)
	return nil
}
