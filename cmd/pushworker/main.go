package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/api/server"
	"github.com/aliskhannn/debt-notifier/internal/boundary"
	"github.com/aliskhannn/debt-notifier/internal/config"
	"github.com/aliskhannn/debt-notifier/internal/jobs"
	"github.com/aliskhannn/debt-notifier/internal/model"
	pushmsg "github.com/aliskhannn/debt-notifier/internal/rabbitmq/handlers/push"
	"github.com/aliskhannn/debt-notifier/internal/rabbitmq/queue"
	"github.com/aliskhannn/debt-notifier/internal/worker"
	"github.com/aliskhannn/debt-notifier/pkg/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()

	if cfg.Boundary.UserID == "" {
		zlog.Logger.Fatal().Msg("boundary.user_id is required")
	}

	shell, err := boundary.LoadShell(cfg.Boundary.ShellAssets)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load offline shell")
	}

	var store boundary.RecordStore
	if cfg.Boundary.RecordStore == "redis" {
		rdb := redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.Database)
		if err := rdb.Ping(ctx).Err(); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		store = boundary.NewRedisStore(rdb, cfg.Boundary.DeviceID)
	}

	device, err := boundary.Start(ctx, boundary.DeviceConfig{
		Version:    cfg.Boundary.Version,
		DeviceID:   cfg.Boundary.DeviceID,
		BackendURL: cfg.Boundary.BackendURL,
		Retention:  cfg.Boundary.Retention,
		Store:      store,
		Shell:      shell,
	})
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to start boundary")
	}

	api := client.New(cfg.Boundary.BackendURL)
	if err := register(ctx, api, device.Client, cfg); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to register device")
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Retries, cfg.RabbitMQ.Pause)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to open channel")
	}

	q, err := queue.NewPushQueue(ch, queue.Topology{
		Exchange:   cfg.RabbitMQ.Exchange,
		Queue:      cfg.RabbitMQ.Queue,
		RetryQueue: cfg.RabbitMQ.RetryQueue,
		DLQ:        cfg.RabbitMQ.DLQ,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		RetryTTL:   cfg.RabbitMQ.RetryTTL,
	}, cfg.Retry)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to create push queue")
	}

	messageHandler := pushmsg.NewHandler(device.Client, q)
	pusher := worker.NewPusher(q, messageHandler, cfg.Boundary.DeviceID, cfg.Boundary.Retention)

	go pusher.Run(ctx, cfg.Retry, cfg.Workers.Count)

	jobRunner := jobs.New()
	if err := jobRunner.Add(cfg.Boundary.CleanupSchedule, "boundary-cleanup", jobs.BoundaryCleanup(device.Client)); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to schedule cleanup")
	}
	if err := jobRunner.Add(cfg.Boundary.ConnectivitySchedule, "connectivity", jobs.Connectivity(device.Monitor)); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to schedule connectivity probe")
	}

	go jobRunner.Run(ctx)

	s := server.New(cfg.Boundary.HTTPPort, boundary.NewOfflineHandler(device.Registration, cfg.Push.BaseURL, nil))

	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start offline server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down offline server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	if err := ch.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ channel")
	}

	if err := conn.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ connection")
	}
}

// register subscribes the device at its boundary and hands the subscription
// to the backend. The endpoint changes on every start.
func register(ctx context.Context, api *client.Client, b *boundary.Client, cfg *config.Config) error {
	userID, deviceID := cfg.Boundary.UserID, cfg.Boundary.DeviceID

	if err := api.RecordPermission(ctx, userID, deviceID, model.PermissionGranted); err != nil {
		return err
	}

	sub, err := b.Subscribe(ctx, deviceID, cfg.Push.PublicKey)
	if err != nil {
		return err
	}
	sub.UserID = userID

	saved, err := api.RegisterSubscription(ctx, *sub)
	if err != nil {
		return err
	}

	zlog.Logger.Info().
		Str("user_id", userID).
		Str("device_id", deviceID).
		Str("subscription_id", saved.ID.String()).
		Msg("device registered")

	return nil
}
