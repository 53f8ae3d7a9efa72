package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"mesaYaPos/internal/config"
	"mesaYaPos/internal/modules/realtime/application/handler"
	realtimeusecase "mesaYaPos/internal/modules/realtime/application/usecase"
	realtime "mesaYaPos/internal/modules/realtime/infrastructure"
	stream "mesaYaPos/internal/modules/realtime/interface"
	"mesaYaPos/internal/modules/reservations/application/usecase"
	"mesaYaPos/internal/modules/reservations/infrastructure"
	reservationsapi "mesaYaPos/internal/modules/reservations/interface"
	"mesaYaPos/internal/platform/broker"
	"mesaYaPos/internal/shared/auth"
	"mesaYaPos/internal/shared/logging"
)

func main() {
	// Load .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, _, err := logging.Setup(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Directory: cfg.Logging.Directory,
		AddSource: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))

	if err := run(cfg); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validator, err := auth.NewJWTValidatorWithPublicKey(cfg.Security.JWTSecret, cfg.Security.JWTPublicKey)
	if err != nil {
		return err
	}

	store, err := infrastructure.OpenStore(ctx, cfg.Store, true)
	if err != nil {
		return fmt.Errorf("open reservation store: %w", err)
	}
	defer store.Close()

	hub := realtime.NewHub()
	broadcastUC := realtimeusecase.NewBroadcastUseCase(hub)
	registry := realtime.NewHandlerRegistry()

	// With Kafka the hub is fed by the consumer so every replica sees every event.
	outbound := infrastructure.OpenOutbound(ctx, cfg, broadcastUC)
	defer outbound.Close()
	if cfg.Kafka.Enabled() {
		registry.Register(handler.NewReservationStreamHandler(cfg.Kafka.ReservationsTopic, nil, broadcastUC))
		slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("group", cfg.Kafka.GroupID), slog.String("topic", cfg.Kafka.ReservationsTopic))
	}

	svc := usecase.NewReservationService(store.Repository, outbound.Cache, outbound.Publisher, usecase.ServiceOptions{
		DefaultDuration: cfg.Reservations.DefaultDuration,
		PendingGrace:    cfg.Reservations.PendingGrace,
	})

	consumers := broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, cfg.Kafka.GroupID)

	sweeper, err := infrastructure.StartSweeper(ctx, cfg.Reservations.SweepSchedule, svc)
	if err != nil {
		return err
	}
	defer sweeper.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "store": store.Driver})
	})
	reservationsapi.RegisterRoutes(e, reservationsapi.NewHandler(svc), validator)
	stream.RegisterRoutes(e, hub, validator)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	slog.Info("server started", slog.String("port", cfg.Server.Port), slog.String("store", store.Driver), slog.Int("publishers", outbound.Publishers))

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", slog.Any("error", err))
	}
	consumers.Wait()
	return nil
}
