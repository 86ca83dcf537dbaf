// week_archive closes the current week from cron, the same way the UI's
// "archive week" button does.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/2beens/weeklyfit/internal"
	"github.com/2beens/weeklyfit/internal/config"
	"github.com/2beens/weeklyfit/internal/logging"
	"github.com/2beens/weeklyfit/internal/telemetry/metrics"
	"github.com/2beens/weeklyfit/internal/weekly"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev ]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	clearHistory := flag.Bool("clear-history", false, "drop all archived weeks instead of archiving")
	skipEmpty := flag.Bool("skip-empty", true, "do not archive a week with nothing logged")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	secrets, err := config.LoadSecrets(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})

	if err := run(ctx, cfg, secrets, *clearHistory, *skipEmpty); err != nil {
		log.Errorf("week archive: %s", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, secrets *config.Secrets, clearHistory, skipEmpty bool) (err error) {
	storage, err := internal.OpenStorage(ctx, cfg, secrets)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		err = multierr.Append(err, storage.Close())
	}()

	metricsManager := metrics.NewManager("cli", "week_archive", prometheus.NewRegistry())
	store := weekly.NewStore(ctx, storage.KV, metricsManager)

	if clearHistory {
		if err := store.ClearHistory(ctx); err != nil {
			return err
		}
		log.Println("history cleared")
		return nil
	}

	if skipEmpty && isEmptyWeek(store.Record()) {
		log.Println("nothing logged this week, skipping archive")
		return nil
	}

	rec, err := store.Apply(ctx, weekly.ArchiveWeek{})
	if err != nil {
		return err
	}
	log.Printf("week archived, %d weeks in history", len(rec.History.PreviousWeeks))
	return nil
}

func isEmptyWeek(r weekly.WeeklyRecord) bool {
	return r.ExerciseCount() == 0 && len(r.Meals) == 0 && len(r.Hydration) == 0
}
