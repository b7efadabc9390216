package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brokerage/src/api"
	"brokerage/src/config"
	"brokerage/src/database"
	"brokerage/src/utils"
	aws_handler "brokerage/src/utils/aws"
	"brokerage/src/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type service interface {
	http.Handler
	Close() error
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		logrus.WithError(err).Fatal("Error while loading config")
	}
	logger := utils.NewLogger(cfg.Service.LogLevel, nil)

	if cfg.Databases.SQL.PasswordSecretID != "" {
		awsHandler, err := aws_handler.NewAWSHandler(cfg.AWS.Region)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create AWS session")
		}
		if err := config.ResolveSecrets(cfg, awsHandler.SecretManager); err != nil {
			logger.WithError(err).Fatal("Failed to resolve secrets")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Error while running")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	pool, err := database.SetupDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc, httpServer, err := newService(ctx, cfg, pool, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	errC := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"type": cfg.Service.Type, "port": cfg.Service.Port}).Info("Starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newService(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *logrus.Logger) (service, *http.Server, error) {
	if cfg.Service.Type == config.WORKER {
		server, err := worker.Bootstrap(cfg, pool, logger)
		if err != nil {
			return nil, nil, err
		}
		return server, worker.NewHTTPServer(server, cfg.Service.Port), nil
	}

	server, err := api.Bootstrap(ctx, cfg, pool, logger)
	if err != nil {
		return nil, nil, err
	}
	return server, api.NewHTTPServer(server, cfg.Service.Port), nil
}
