// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pachanga/matchday/internal/clubapi"
	"github.com/pachanga/matchday/internal/config"
	"github.com/pachanga/matchday/internal/journal"
	"github.com/pachanga/matchday/internal/matchadmin"
	"github.com/pachanga/matchday/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func configPath() string {
	if path, ok := os.LookupEnv("CONFIG_PATH"); ok {
		return path
	}
	return "config/config.yaml"
}

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	jnl, err := journal.Open(cfg.Journal.Filename)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open mutation journal")
	}
	defer jnl.Close()

	club := clubapi.NewClient(cfg.ClubAPI.BaseURL, cfg.ClubAPI.AuthToken, nil)
	manager := matchadmin.NewManager(club, jnl)

	sched, err := scheduler.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	idleTimeout := time.Duration(cfg.Sessions.IdleTimeoutMinutes) * time.Minute
	retention := time.Duration(cfg.Journal.RetentionDays) * 24 * time.Hour
	if err := sched.RegisterJanitor(manager, jnl, cfg.Sessions.JanitorCron, idleTimeout, retention); err != nil {
		log.Fatal().Err(err).Msg("Failed to register janitor job")
	}
	sched.Start()

	server := newServer(cfg, manager, jnl)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("club_api", cfg.ClubAPI.BaseURL).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := sched.Stop(); err != nil {
			log.Error().Err(err).Msg("Scheduler shutdown error")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
