package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"optika/internal/cache"
	"optika/internal/clock"
	"optika/internal/config"
	"optika/internal/database"
	"optika/internal/handler"
	"optika/internal/notification"
	"optika/internal/repository"
	"optika/internal/router"
	"optika/internal/schedule"
	"optika/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting optika API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	appointmentRepo := repository.NewAppointmentRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	productRepo := repository.NewProductRepository(pool, logger)
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to connect to redis, product cache disabled")
		} else {
			defer client.Close()
			productRepo = cache.NewCachedProductRepository(productRepo, client, logger)
			logger.Info().Str("addr", cfg.Redis.Addr).Msg("product cache enabled")
		}
	}

	var notifier notification.Notifier
	if cfg.Kafka.Enabled {
		notifier = notification.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("kafka notifications enabled")
	} else {
		notifier = notification.NewLogNotifier(logger)
		logger.Info().Msg("using log-only notifications (kafka disabled)")
	}
	defer notifier.Close()

	businessClock := clock.NewBusiness(cfg.Business.UTCOffsetHours)
	guard := schedule.NewGuard(appointmentRepo, businessClock)
	calendar := schedule.NewCalculator(appointmentRepo, cfg.Business)

	appointmentService := service.NewAppointmentService(
		appointmentRepo, userRepo, guard, calendar, notifier, businessClock, logger)
	orderService := service.NewOrderService(
		orderRepo, productRepo, userRepo, notifier, businessClock, logger)
	productService := service.NewProductService(productRepo, logger)

	appointmentHandler := handler.NewAppointmentHandler(appointmentService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	productHandler := handler.NewProductHandler(productService, logger)

	mux := router.New(appointmentHandler, orderHandler, productHandler, cfg.Auth.APIKey, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
