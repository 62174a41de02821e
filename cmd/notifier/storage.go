package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aliskhannn/debt-notifier/internal/config"
	"github.com/aliskhannn/debt-notifier/internal/model"
	notifrepo "github.com/aliskhannn/debt-notifier/internal/repository/notification"
	prefrepo "github.com/aliskhannn/debt-notifier/internal/repository/preference"
	"github.com/aliskhannn/debt-notifier/internal/repository/subscription"
)

type notificationRepository interface {
	CreateNotification(ctx context.Context, n model.Notification) error
	GetNotification(ctx context.Context, userID string, id uuid.UUID) (model.Notification, error)
	ListNotifications(ctx context.Context, userID string, f model.Filter) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID string, id uuid.UUID, at time.Time) (bool, error)
	Archive(ctx context.Context, userID string, id uuid.UUID) (bool, error)
	DeleteNotification(ctx context.Context, userID string, id uuid.UUID) (bool, error)
	Stats(ctx context.Context, userID string) (model.Stats, error)
	MarkDispatched(ctx context.Context, id uuid.UUID, at time.Time) error
	ListPending(ctx context.Context) ([]model.Notification, error)
	DeleteArchivedBefore(ctx context.Context, before time.Time) ([]model.Notification, error)
}

type preferenceRepository interface {
	GetPreferences(ctx context.Context, userID string) (model.Preferences, error)
	SavePreferences(ctx context.Context, p model.Preferences) error
}

type subscriptionRepository interface {
	SetPermission(ctx context.Context, userID, deviceID string, p model.Permission) error
	GetPermission(ctx context.Context, userID, deviceID string) (model.Permission, error)
	UserPermission(ctx context.Context, userID string) (model.Permission, error)
	SaveSubscription(ctx context.Context, s model.PushSubscription) error
	ListSubscriptions(ctx context.Context, userID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, userID, deviceID string) (bool, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) (bool, error)
}

// stores are the repositories picked by storage.driver. Notifications live in
// postgres, mongo or memory; preferences and subscriptions in postgres unless
// the driver is memory.
type stores struct {
	notifications notificationRepository
	preferences   preferenceRepository
	subscriptions subscriptionRepository
	close         []func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Storage.Driver == "memory" {
		return &stores{
			notifications: notifrepo.NewMemoryRepository(),
			preferences:   prefrepo.NewMemoryRepository(),
			subscriptions: subscription.NewMemoryRepository(),
		}, nil
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return nil, err
	}

	s := &stores{
		notifications: notifrepo.NewRepository(db),
		preferences:   prefrepo.NewRepository(db),
		subscriptions: subscription.NewRepository(db),
		close:         []func(){func() { closeDB(db) }},
	}

	if cfg.Storage.Driver == "mongo" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			closeDB(db)
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			closeDB(db)
			return nil, fmt.Errorf("ping mongo: %w", err)
		}

		s.notifications = notifrepo.NewMongoRepository(client, cfg.Mongo.Database)
		s.close = append(s.close, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to disconnect mongo")
			}
		})
	}

	return s, nil
}

func (s *stores) Close() {
	for i := len(s.close) - 1; i >= 0; i-- {
		s.close[i]()
	}
}

func openDB(cfg config.Database) (*dbpg.DB, error) {
	opts := &dbpg.Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Slaves))
	for _, s := range cfg.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return db, nil
}

func closeDB(db *dbpg.DB) {
	if err := db.Master.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close master DB")
	}

	for i, s := range db.Slaves {
		if err := s.Close(); err != nil {
			zlog.Logger.Error().Err(err).Int("slave", i).Msg("failed to close slave DB")
		}
	}
}
