package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YusovID/donor-match-service/internal/collab"
	"github.com/YusovID/donor-match-service/internal/config"
	"github.com/YusovID/donor-match-service/internal/matching"
	"github.com/YusovID/donor-match-service/internal/notify"
	"github.com/YusovID/donor-match-service/internal/repository/postgres"
	"github.com/YusovID/donor-match-service/internal/service"
	myhttp "github.com/YusovID/donor-match-service/internal/transport/http"

	"github.com/YusovID/donor-match-service/pkg/logger/sl"
	"github.com/YusovID/donor-match-service/pkg/logger/slogpretty"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.MustLoad()
	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting donor-match-service", slog.String("env", cfg.Env))

	db, err := postgres.NewDB(cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("db close failed", sl.Err(err))
		}
	}()

	dispatcher, closeNotifier, err := notify.New(ctx, cfg.Notifier, log)
	if err != nil {
		return fmt.Errorf("failed to init notifier: %w", err)
	}
	defer closeNotifier()

	collaborators := service.Collaborators{Dispatcher: dispatcher}
	if cfg.Predictor.URL != "" {
		predictor := collab.New(cfg.Predictor, log)
		collaborators.Oracle = predictor
		collaborators.Recommender = predictor

		log.Info("predictor enabled", slog.String("url", cfg.Predictor.URL))
	}

	donorRepo := postgres.NewDonorRepository(db.DB(), log)
	requestRepo := postgres.NewBloodRequestRepository(db.DB(), log)

	selector := matching.NewSelector(matching.NewEngine(matching.PolicyFromConfig(cfg.Matching)))
	base := service.NewBaseService(db.DB(), log, cfg.Storage.Timeout)

	srv := myhttp.NewServer(
		log,
		service.NewRequestService(base, donorRepo, requestRepo, requestRepo, selector, cfg.Matching.NearbyRadiusKm, collaborators),
		service.NewFulfillmentCoordinator(base, requestRepo, requestRepo, dispatcher),
		service.NewDonorService(base, donorRepo),
		db.DB(),
	)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	errChan := make(chan error, 1)

	go startServer(log, httpServer, errChan)

	select {
	case err := <-errChan:
		return fmt.Errorf("http server error: %w", err)

	case <-ctx.Done():
		log.Info("stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down http server: %w", err)
	}

	return nil
}

func startServer(log *slog.Logger, httpServer *http.Server, errChan chan error) {
	defer close(errChan)

	log.Info("service started", slog.String("addr", httpServer.Addr))

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errChan <- fmt.Errorf("error listening and serving: %w", err)
	}
}
