package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/bus"
	"github.com/aliskhannn/debt-notifier/internal/dispatcher"
	"github.com/aliskhannn/debt-notifier/internal/metrics"
	"github.com/aliskhannn/debt-notifier/internal/model"
	"github.com/aliskhannn/debt-notifier/internal/preference"
	notificationrepo "github.com/aliskhannn/debt-notifier/internal/repository/notification"
	"github.com/aliskhannn/debt-notifier/internal/scheduler"
)

//go:generate mockgen -source=service.go -destination=../../mocks/service/notification/mock.go -package=mocks

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

type preferenceProvider interface {
	Get(ctx context.Context, userID string) (model.Preferences, error)
}

type channelDispatcher interface {
	Dispatch(ctx context.Context, d dispatcher.Delivery) model.DispatchReport
}

type publisher interface {
	Publish(e bus.Event)
}

type deferrer interface {
	Schedule(e scheduler.Entry)
	Cancel(id uuid.UUID) bool
}

// Service is the notification store: the authoritative per-user collection.
// It is safe for concurrent use.
type Service struct {
	repo       notificationRepository
	prefs      preferenceProvider
	dispatcher channelDispatcher
	bus        publisher
	scheduler  deferrer
	validator  *validator.Validate
	now        func() time.Time
	inflight   sync.WaitGroup
}

func NewService(
	repo notificationRepository,
	prefs preferenceProvider,
	d channelDispatcher,
	pub publisher,
	sched deferrer,
	v *validator.Validate,
) *Service {
	return &Service{
		repo:       repo,
		prefs:      prefs,
		dispatcher: d,
		bus:        pub,
		scheduler:  sched,
		validator:  v,
		now:        time.Now,
	}
}

// Create validates spec, stores the notification and dispatches it, now or
// when it is due. Dispatch outlives ctx.
func (s *Service) Create(ctx context.Context, spec model.CreateSpec) (model.Notification, error) {
	if spec.Priority == "" {
		spec.Priority = model.PriorityMedium
	}

	if err := s.validate(spec); err != nil {
		return model.Notification{}, err
	}

	n := model.Notification{
		ID:           uuid.New(),
		UserID:       spec.UserID,
		Title:        strings.TrimSpace(spec.Title),
		Message:      strings.TrimSpace(spec.Message),
		Type:         spec.Type,
		Priority:     spec.Priority,
		Channels:     dedupe(spec.Channels),
		CreatedAt:    s.now().UTC(),
		ScheduledFor: spec.ScheduledFor,
		Tags:         spec.Tags,
		Actions:      spec.Actions,
	}

	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return model.Notification{}, fmt.Errorf("create notification: %w", err)
	}

	metrics.NotificationsCreated.WithLabelValues(string(n.Type), string(n.Priority)).Inc()
	s.publish(bus.ChangeCreated, n)

	if !n.DueAt(s.now()) {
		s.postpone(n, *n.ScheduledFor, scheduler.KindScheduled)
		return n, nil
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.dispatch(context.WithoutCancel(ctx), n, false)
	}()

	return n, nil
}

// Wait blocks until every in-flight dispatch has finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// List returns the owner's notifications matching f, newest first.
func (s *Service) List(ctx context.Context, userID string, f model.Filter) ([]model.Notification, error) {
	switch f.ReadState {
	case "", model.ReadAll, model.ReadUnread, model.ReadRead:
	default:
		return nil, model.NewValidationError("read", "must be one of all, unread, read")
	}

	if f.Type != "" && !f.Type.Valid() {
		return nil, model.NewValidationError("type", "unknown notification type")
	}

	list, err := s.repo.ListNotifications(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return list, nil
}

func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (model.Notification, error) {
	n, err := s.repo.GetNotification(ctx, userID, id)
	if err != nil {
		return model.Notification{}, notFound(err, id)
	}

	return n, nil
}

// MarkRead sets the read flag. Marking an already-read notification changes nothing.
func (s *Service) MarkRead(ctx context.Context, userID string, id uuid.UUID) error {
	changed, err := s.repo.MarkRead(ctx, userID, id, s.now().UTC())
	if err != nil {
		return notFound(err, id)
	}

	if changed {
		s.publish(bus.ChangeRead, model.Notification{ID: id, UserID: userID})
	}

	return nil
}

// Archive hides the notification from the default feed.
func (s *Service) Archive(ctx context.Context, userID string, id uuid.UUID) error {
	changed, err := s.repo.Archive(ctx, userID, id)
	if err != nil {
		return notFound(err, id)
	}

	if changed {
		s.publish(bus.ChangeArchived, model.Notification{ID: id, UserID: userID})
	}

	return nil
}

// Delete removes the notification. Unknown ids are ignored.
func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	deleted, err := s.repo.DeleteNotification(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	if deleted {
		s.scheduler.Cancel(id)
		s.publish(bus.ChangeDeleted, model.Notification{ID: id, UserID: userID})
	}

	return nil
}

func (s *Service) Stats(ctx context.Context, userID string) (model.Stats, error) {
	st, err := s.repo.Stats(ctx, userID)
	if err != nil {
		return model.Stats{}, fmt.Errorf("get stats: %w", err)
	}

	return st, nil
}

// PruneArchived removes archived notifications older than retention and
// returns how many were removed.
func (s *Service) PruneArchived(ctx context.Context, retention time.Duration) (int, error) {
	removed, err := s.repo.DeleteArchivedBefore(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("prune archived: %w", err)
	}

	for _, n := range removed {
		s.scheduler.Cancel(n.ID)
		s.publish(bus.ChangePruned, n)
	}

	return len(removed), nil
}

// DispatchDue is the scheduler callback. The record is re-read so that a
// notification deleted in the meantime is not delivered. Delivery runs in the
// background, detached from ctx, and is tracked by Wait.
func (s *Service) DispatchDue(ctx context.Context, e scheduler.Entry) {
	ctx = context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.dispatchDue(ctx, e)
	}()
}

func (s *Service) dispatchDue(ctx context.Context, e scheduler.Entry) {
	n, err := s.repo.GetNotification(ctx, e.UserID, e.ID)
	if err != nil {
		if errors.Is(err, notificationrepo.ErrNotificationNotFound) {
			zlog.Logger.Debug().Str("notification_id", e.ID.String()).Msg("deferred notification gone, skipping")
			return
		}

		zlog.Logger.Error().Err(err).Str("notification_id", e.ID.String()).Msg("failed to load deferred notification")
		return
	}

	s.dispatch(ctx, n, e.Kind == scheduler.KindDigest)
}

// RestorePending re-registers notifications that were deferred but never
// dispatched before the last shutdown. Overdue ones are dispatched right away.
func (s *Service) RestorePending(ctx context.Context) (int, error) {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("restore pending: %w", err)
	}

	now := s.now()
	for _, n := range pending {
		if n.DueAt(now) {
			s.inflight.Add(1)
			go func(n model.Notification) {
				defer s.inflight.Done()
				s.dispatch(context.WithoutCancel(ctx), n, false)
			}(n)
			continue
		}

		s.postpone(n, *n.ScheduledFor, scheduler.KindScheduled)
	}

	return len(pending), nil
}

// dispatch evaluates preferences and hands the eligible channels to the
// dispatcher. fromDigest skips the digest deferral.
func (s *Service) dispatch(ctx context.Context, n model.Notification, fromDigest bool) {
	var prefs *model.Preferences
	p, err := s.prefs.Get(ctx, n.UserID)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("user_id", n.UserID).Msg("preferences unavailable, using defaults")
	} else {
		prefs = &p
	}

	now := s.now()
	decision := preference.Evaluate(n, prefs, now)

	if decision.Deferred && !fromDigest {
		s.postpone(n, decision.DeferUntil, scheduler.KindDigest)
		return
	}

	if err := s.repo.MarkDispatched(ctx, n.ID, now.UTC()); err != nil {
		zlog.Logger.Error().Err(err).Str("notification_id", n.ID.String()).Msg("failed to mark notification dispatched")
	}

	if len(decision.Channels) == 0 {
		zlog.Logger.Debug().Str("notification_id", n.ID.String()).Msg("no eligible channels")
		return
	}

	d := dispatcher.Delivery{
		Notification: n,
		Channels:     decision.Channels,
		Silent:       decision.Silent,
	}
	if prefs != nil {
		d.Preferences = *prefs
	}

	report := s.dispatcher.Dispatch(ctx, d)

	zlog.Logger.Info().
		Str("notification_id", n.ID.String()).
		Int("delivered", len(report.Delivered())).
		Int("failed", len(report.Failed())).
		Msg("notification dispatched")
}

func (s *Service) postpone(n model.Notification, at time.Time, kind scheduler.Kind) {
	s.scheduler.Schedule(scheduler.Entry{ID: n.ID, UserID: n.UserID, At: at, Kind: kind})
	metrics.DeferredDispatches.WithLabelValues(string(kind)).Inc()
}

func (s *Service) publish(change bus.Change, n model.Notification) {
	s.bus.Publish(bus.Event{
		Topic:        bus.TopicChanged,
		UserID:       n.UserID,
		Change:       change,
		Notification: &n,
	})
}

func (s *Service) validate(spec model.CreateSpec) error {
	var fields []model.FieldError
	add := func(field, reason string) {
		fields = append(fields, model.FieldError{Field: field, Reason: reason})
	}

	if err := s.validator.Struct(spec); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			add(fe.Field(), "failed on "+fe.Tag())
		}
	}

	if spec.Title != "" && strings.TrimSpace(spec.Title) == "" {
		add("Title", "must not be blank")
	}
	if spec.Message != "" && strings.TrimSpace(spec.Message) == "" {
		add("Message", "must not be blank")
	}
	if spec.Type != "" && !spec.Type.Valid() {
		add("Type", "unknown notification type")
	}
	if !spec.Priority.Valid() {
		add("Priority", "unknown priority")
	}
	for _, c := range spec.Channels {
		if !c.Valid() {
			add("Channels", "unknown channel "+string(c))
		}
	}

	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}

	return nil
}

func notFound(err error, id uuid.UUID) error {
	if errors.Is(err, notificationrepo.ErrNotificationNotFound) {
		return &model.NotFoundError{Resource: "notification", ID: id.String()}
	}

	return err
}

func dedupe(channels []model.Channel) []model.Channel {
	out := make([]model.Channel, 0, len(channels))
	for _, c := range channels {
		seen := false
		for _, o := range out {
			if o == c {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, c)
		}
	}
	return out
}
