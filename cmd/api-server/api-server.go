package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"creapp/db"
	"creapp/db/migrations"
	"creapp/internal/config"
	"creapp/internal/handlers"
	"creapp/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		l := logger.New("error")
		l.Fatal().Err(err).Msg("api server stopped with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel)

	dbConn, err := sqlx.Connect("postgres", cfg.PostgresConn)
	if err != nil {
		return fmt.Errorf("connect to DB: %w", err)
	}
	defer dbConn.Close()

	if cfg.RunMigrations {
		if err := migrations.Run(dbConn.DB); err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
	}

	store := db.NewStorage(dbConn)
	h := handlers.NewHandler(store, log)

	srv := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: newRouter(log, h.Mount),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ServerAddress).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// newRouter: журнал доступа снаружи Recoverer, чтобы паника попадала в лог как 500
func newRouter(log zerolog.Logger, mount func(chi.Router)) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)
	mount(r)
	return r
}
