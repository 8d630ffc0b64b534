package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"

	"github.com/LavaJover/affiliate-aggregator/internal/app/background"
	"github.com/LavaJover/affiliate-aggregator/internal/app/setup"
	"github.com/LavaJover/affiliate-aggregator/internal/config"
	"github.com/LavaJover/affiliate-aggregator/internal/delivery/http/handlers"
	"github.com/LavaJover/affiliate-aggregator/internal/infrastructure/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	appLogger, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	slog.SetDefault(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error("aggregator stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AggregatorConfig, logger *slog.Logger) error {
	ctx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	deps, err := setup.InitializeDependencies(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("failed to release dependencies", "error", err)
		}
	}()

	ucs, err := setup.InitializeUseCases(deps)
	if err != nil {
		return err
	}

	// HTTP
	router := handlers.NewRouter(handlers.RouterDeps{
		Ingestion: handlers.NewIngestionHandler(ucs.IngestionUsecase, logger),
		Programs:  handlers.NewProgramHandler(ucs.ProgramUsecase, logger),
		Auth:      handlers.BasicAuth{Username: cfg.APIAuth.Username, Password: cfg.APIAuth.Password},
		Gatherer:  deps.Registry,
		Logger:    logger,
	})
	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	// gRPC health
	grpcServer := grpc.NewServer()
	deps.Health.Register(grpcServer)
	lis, err := net.Listen("tcp", net.JoinHostPort(cfg.GRPCServer.Host, cfg.GRPCServer.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	// Scheduled ingestion
	tasks := background.NewBackgroundTasks(ucs.IngestionUsecase, cfg.Schedule.Interval, logger)
	tasks.StartAll(ctx)

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http server started", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		logger.Info("grpc server started", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	deps.Health.Shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	grpcServer.GracefulStop()
	cancelRun()
	tasks.Wait()

	logger.Info("aggregator stopped")
	return runErr
}
