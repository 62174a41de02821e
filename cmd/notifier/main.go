package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/api/handlers/feed"
	notifhandler "github.com/aliskhannn/debt-notifier/internal/api/handlers/notification"
	prefhandler "github.com/aliskhannn/debt-notifier/internal/api/handlers/preference"
	pushhandler "github.com/aliskhannn/debt-notifier/internal/api/handlers/push"
	"github.com/aliskhannn/debt-notifier/internal/api/router"
	"github.com/aliskhannn/debt-notifier/internal/api/server"
	"github.com/aliskhannn/debt-notifier/internal/boundary"
	"github.com/aliskhannn/debt-notifier/internal/bus"
	emailchannel "github.com/aliskhannn/debt-notifier/internal/channel/email"
	"github.com/aliskhannn/debt-notifier/internal/channel/inapp"
	pushchannel "github.com/aliskhannn/debt-notifier/internal/channel/push"
	"github.com/aliskhannn/debt-notifier/internal/channel/sms"
	"github.com/aliskhannn/debt-notifier/internal/config"
	"github.com/aliskhannn/debt-notifier/internal/dispatcher"
	"github.com/aliskhannn/debt-notifier/internal/jobs"
	"github.com/aliskhannn/debt-notifier/internal/model"
	"github.com/aliskhannn/debt-notifier/internal/push"
	"github.com/aliskhannn/debt-notifier/internal/rabbitmq/queue"
	"github.com/aliskhannn/debt-notifier/internal/scheduler"
	notifsvc "github.com/aliskhannn/debt-notifier/internal/service/notification"
	prefsvc "github.com/aliskhannn/debt-notifier/internal/service/preference"
	"github.com/aliskhannn/debt-notifier/pkg/email"
	"github.com/aliskhannn/debt-notifier/pkg/fcm"
	"github.com/aliskhannn/debt-notifier/pkg/telegram"
)

const dispatchTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()
	val := validator.New()
	b := bus.New(0)

	st, err := openStores(ctx, cfg)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open storage")
	}
	defer st.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.Database)
		if err := rdb.Ping(ctx).Err(); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
	}

	var prefService *prefsvc.Service
	if rdb != nil {
		prefService = prefsvc.NewService(st.preferences, rdb, val, cfg.Retry)
	} else {
		prefService = prefsvc.NewService(st.preferences, nil, val, cfg.Retry)
	}

	jobRunner := jobs.New()
	payloadOpts := push.PayloadOptions{Icon: cfg.Push.Icon, Badge: cfg.Push.Badge, BaseURL: cfg.Push.BaseURL}

	var (
		pushChannel *pushchannel.Channel
		manager     *push.Manager
		offline     *http.Server
	)

	switch cfg.Push.Transport {
	case "fcm":
		client, err := fcm.NewClient(ctx, cfg.FCM.CredentialsFile)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to create fcm client")
		}

		manager = push.NewManager(st.subscriptions, nil, nil)
		pushChannel = pushchannel.New(st.subscriptions, push.NewFCMTransport(client), nil, payloadOpts)

	case "queue":
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Retries, cfg.RabbitMQ.Pause)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}

		ch, err := conn.Channel()
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to open channel")
		}
		defer func() {
			if err := ch.Close(); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ channel")
			}
			if err := conn.Close(); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ connection")
			}
		}()

		q, err := queue.NewPushQueue(ch, topology(cfg.RabbitMQ), cfg.Retry)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to create push queue")
		}

		manager = push.NewManager(st.subscriptions, nil, nil)
		pushChannel = pushchannel.New(st.subscriptions, q, nil, payloadOpts)

	default:
		device := startDevice(ctx, cfg, rdb)

		manager = push.NewManager(st.subscriptions, push.StaticPrompter(model.PermissionGranted), device.Client)
		pushChannel = pushchannel.New(st.subscriptions, push.NewLocalTransport(device.Client), device.Client, payloadOpts)

		if cfg.Boundary.UserID != "" {
			subscribeDevice(ctx, manager, cfg)
		}

		mustAdd(jobRunner, cfg.Boundary.CleanupSchedule, "boundary-cleanup", jobs.BoundaryCleanup(device.Client))
		mustAdd(jobRunner, cfg.Boundary.ConnectivitySchedule, "connectivity", jobs.Connectivity(device.Monitor))

		if cfg.Boundary.HTTPPort != "" {
			offline = server.New(cfg.Boundary.HTTPPort, boundary.NewOfflineHandler(device.Registration, cfg.Push.BaseURL, nil))
			go serve(offline, "offline")
		}
	}

	deliverers := map[model.Channel]dispatcher.Deliverer{
		model.ChannelInApp: inapp.New(b),
		model.ChannelPush:  pushChannel,
	}
	if cfg.Email.SMTPHost != "" {
		emailClient := email.NewClient(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.Username,
			cfg.Email.Password,
			cfg.Email.From,
		)
		deliverers[model.ChannelEmail] = emailchannel.New(emailClient, cfg.Retry)
	}
	if cfg.Telegram.Token != "" {
		deliverers[model.ChannelSMS] = sms.New(telegram.NewClient(cfg.Telegram.Token), cfg.Retry)
	}

	sched := scheduler.New()
	disp := dispatcher.New(deliverers, dispatchTimeout, b)
	service := notifsvc.NewService(st.notifications, prefService, disp, b, sched, val)

	restored, err := service.RestorePending(ctx)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to restore pending notifications")
	}
	zlog.Logger.Info().Int("restored", restored).Msg("pending notifications restored")

	go sched.Run(ctx, cfg.Scheduler.Interval, service.DispatchDue)

	mustAdd(jobRunner, cfg.Store.PruneSchedule, "prune-archived", jobs.PruneArchived(service, cfg.Store.ArchiveRetention))
	go jobRunner.Run(ctx)

	r := router.New(router.Handlers{
		Notification: notifhandler.NewHandler(service),
		Preference:   prefhandler.NewHandler(prefService),
		Push:         pushhandler.NewHandler(manager, service, val),
		Feed:         feed.NewHandler(b),
	})
	s := server.New(cfg.Server.HTTPPort, r)

	go serve(s, "api")

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdown(s)
	if offline != nil {
		shutdown(offline)
	}

	service.Wait()
}

// startDevice boots the in-process boundary used by the local transport.
func startDevice(ctx context.Context, cfg *config.Config, rdb *redis.Client) *boundary.Device {
	shell, err := boundary.LoadShell(cfg.Boundary.ShellAssets)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load offline shell")
	}

	var store boundary.RecordStore
	if cfg.Boundary.RecordStore == "redis" && rdb != nil {
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

	return device
}

// subscribeDevice grants and subscribes the local device for boundary.user_id.
func subscribeDevice(ctx context.Context, m *push.Manager, cfg *config.Config) {
	p, err := m.RequestPermission(ctx, cfg.Boundary.UserID, cfg.Boundary.DeviceID)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to request push permission")
		return
	}
	if p != model.PermissionGranted {
		zlog.Logger.Warn().Str("permission", string(p)).Msg("push not permitted for local device")
		return
	}

	sub, err := m.Subscribe(ctx, cfg.Boundary.UserID, cfg.Boundary.DeviceID, cfg.Push.PublicKey)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to subscribe local device")
		return
	}

	zlog.Logger.Info().
		Str("user_id", cfg.Boundary.UserID).
		Str("device_id", sub.DeviceID).
		Msg("local device subscribed")
}

func topology(cfg config.RabbitMQ) queue.Topology {
	return queue.Topology{
		Exchange:   cfg.Exchange,
		Queue:      cfg.Queue,
		RetryQueue: cfg.RetryQueue,
		DLQ:        cfg.DLQ,
		RoutingKey: cfg.RoutingKey,
		RetryTTL:   cfg.RetryTTL,
	}
}

func serve(s *http.Server, name string) {
	zlog.Logger.Info().Str("server", name).Str("addr", s.Addr).Msg("listening")

	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zlog.Logger.Fatal().Err(err).Str("server", name).Msg("failed to start server")
	}
}

func shutdown(s *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Str("addr", s.Addr).Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}
}

func mustAdd(s *jobs.Scheduler, spec, name string, job jobs.Job) {
	if spec == "" {
		return
	}
	if err := s.Add(spec, name, job); err != nil {
		zlog.Logger.Fatal().Err(err).Str("job", name).Msg("failed to schedule job")
	}
}
