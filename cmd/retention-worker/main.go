package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/justirack/HospitalManagement/internal/config"
	"github.com/justirack/HospitalManagement/internal/db"
	"github.com/justirack/HospitalManagement/internal/directory"
	"github.com/justirack/HospitalManagement/internal/lock"
	"github.com/justirack/HospitalManagement/internal/logging"
	"github.com/justirack/HospitalManagement/internal/scheduling"
)

// The retention worker purges appointments whose slot lies further in the
// past than RETENTION_MAX_AGE. Cancellation is a hard delete in this
// system, so without the purge the table only ever grows.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("retention-worker", "dev", "info")
		fallback.Fatal().Err(err).Msg("config load error")
	}

	log := logging.New("retention-worker", cfg.Env, cfg.LogLevel)
	log.Info().
		Str("env", cfg.Env).
		Dur("interval", cfg.WorkerInterval).
		Dur("max_age", cfg.RetentionMaxAge).
		Msg("retention-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	store := scheduling.NewPgStore(pgPool)
	// The purge never runs availability checks, so a no-op locker and the
	// pg directory are enough to construct the service.
	svc := scheduling.NewService(store, directory.NewPgDirectory(pgPool), lock.NewKeyMutexLocker(), log)

	runOnce(rootCtx, svc, cfg.RetentionMaxAge, log)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping retention worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, cfg.RetentionMaxAge, log)
		}
	}
}

func runOnce(ctx context.Context, svc *scheduling.Service, maxAge time.Duration, log zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	purged, err := svc.PurgeBefore(runCtx, time.Now().Add(-maxAge))
	if err != nil {
		log.Error().Err(err).Msg("retention run error")
		return
	}
	log.Info().Int64("purged", purged).Dur("took", time.Since(start)).Msg("retention run complete")
}
