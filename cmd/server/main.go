package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diewo77/comptable/internal/config"
	"github.com/diewo77/comptable/internal/db"
	"github.com/diewo77/comptable/internal/logger"
	"github.com/diewo77/comptable/internal/services"
	"github.com/diewo77/comptable/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Setup(cfg.App.Dev)

	root := &cobra.Command{
		Use:          "comptable",
		Short:        "Bookkeeping server for small businesses",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg)
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cfg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Downgrade expired premium subscriptions and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cfg)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cfg *config.Config) error {
	log := logger.WithComponent("server")

	conn, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if cfg.App.Migrations {
		if err := db.Migrate(conn); err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
	}

	app := NewApp(conn, cfg)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(app, log),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Bool("dev", cfg.App.Dev).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func runMigrate(cfg *config.Config) error {
	log := logger.WithComponent("migrate")
	if cfg.Database.Driver == "postgres" {
		if err := db.MigrateSQL(cfg.Database.URL()); err != nil {
			return err
		}
		log.Info().Msg("sql migrations applied")
		return nil
	}
	conn, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.Migrate(conn); err != nil {
		return err
	}
	log.Info().Msg("schema migrated")
	return nil
}

func runSweep(cfg *config.Config) error {
	log := logger.WithComponent("sweep")
	conn, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	reconciler := services.NewSubscriptionReconciler(store.NewProfileStore(conn), log)
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.StoreTimeout)*time.Second)
	defer cancel()
	expired, err := reconciler.Sweep(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("expired", expired).Msg("sweep finished")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs every request with method, path, status and duration.
func withLogging(next http.Handler, log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
