package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/debt-notifier/internal/bus"
	"github.com/aliskhannn/debt-notifier/internal/channel/inapp"
	pushchannel "github.com/aliskhannn/debt-notifier/internal/channel/push"
	"github.com/aliskhannn/debt-notifier/internal/dispatcher"
	mocks "github.com/aliskhannn/debt-notifier/internal/mocks/service/notification"
	"github.com/aliskhannn/debt-notifier/internal/model"
	"github.com/aliskhannn/debt-notifier/internal/preference"
	pushsvc "github.com/aliskhannn/debt-notifier/internal/push"
	notificationrepo "github.com/aliskhannn/debt-notifier/internal/repository/notification"
	"github.com/aliskhannn/debt-notifier/internal/repository/subscription"
	"github.com/aliskhannn/debt-notifier/internal/scheduler"
)

type recordingDispatcher struct {
	mu         sync.Mutex
	deliveries []dispatcher.Delivery
}

func (d *recordingDispatcher) Dispatch(_ context.Context, del dispatcher.Delivery) model.DispatchReport {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.deliveries = append(d.deliveries, del)
	return model.DispatchReport{NotificationID: del.Notification.ID, UserID: del.Notification.UserID}
}

func (d *recordingDispatcher) ids() []uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []uuid.UUID
	for _, del := range d.deliveries {
		out = append(out, del.Notification.ID)
	}
	return out
}

type staticPrefs map[string]model.Preferences

func (p staticPrefs) Get(_ context.Context, userID string) (model.Preferences, error) {
	if prefs, ok := p[userID]; ok {
		return prefs, nil
	}
	return preference.Defaults(userID), nil
}

type fixture struct {
	svc   *Service
	repo  *notificationrepo.MemoryRepository
	disp  *recordingDispatcher
	bus   *bus.Bus
	sched *scheduler.Scheduler
}

func newFixture(prefs staticPrefs) *fixture {
	f := &fixture{
		repo:  notificationrepo.NewMemoryRepository(),
		disp:  &recordingDispatcher{},
		bus:   bus.New(32),
		sched: scheduler.New(),
	}
	f.svc = NewService(f.repo, prefs, f.disp, f.bus, f.sched, validator.New())

	return f
}

func paymentDue(userID string) model.CreateSpec {
	return model.CreateSpec{
		UserID:   userID,
		Title:    "Payment Due",
		Message:  "$500 due tomorrow",
		Type:     model.TypePaymentDue,
		Priority: model.PriorityMedium,
		Channels: []model.Channel{model.ChannelInApp, model.ChannelPush},
	}
}

func TestService_CreateIncrementsTotalAndUnread(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	before, err := f.svc.Stats(ctx, "u1")
	require.NoError(t, err)

	n, err := f.svc.Create(ctx, paymentDue("u1"))
	require.NoError(t, err)
	f.svc.Wait()

	after, err := f.svc.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, before.Total+1, after.Total)
	assert.Equal(t, before.Unread+1, after.Unread)

	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.False(t, n.Read)
	assert.False(t, n.CreatedAt.IsZero())
	assert.Equal(t, []uuid.UUID{n.ID}, f.disp.ids())
}

func TestService_CreatePublishesChange(t *testing.T) {
	f := newFixture(nil)
	events, cancel := f.bus.Subscribe(bus.TopicChanged)
	defer cancel()

	n, err := f.svc.Create(context.Background(), paymentDue("u1"))
	require.NoError(t, err)
	f.svc.Wait()

	e := <-events
	assert.Equal(t, bus.ChangeCreated, e.Change)
	assert.Equal(t, n.ID, e.Notification.ID)
}

func TestService_CreateDefaultsPriority(t *testing.T) {
	f := newFixture(nil)

	spec := paymentDue("u1")
	spec.Priority = ""

	n, err := f.svc.Create(context.Background(), spec)
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, model.PriorityMedium, n.Priority)
}

func TestService_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.CreateSpec)
		field  string
	}{
		{"missing title", func(s *model.CreateSpec) { s.Title = "" }, "Title"},
		{"blank message", func(s *model.CreateSpec) { s.Message = "   " }, "Message"},
		{"no channels", func(s *model.CreateSpec) { s.Channels = nil }, "Channels"},
		{"unknown channel", func(s *model.CreateSpec) { s.Channels = []model.Channel{"pigeon"} }, "Channels"},
		{"unknown type", func(s *model.CreateSpec) { s.Type = "invoice" }, "Type"},
		{"unknown priority", func(s *model.CreateSpec) { s.Priority = "critical" }, "Priority"},
		{"action without label", func(s *model.CreateSpec) { s.Actions = []model.Action{{Action: "open"}} }, "Label"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			spec := paymentDue("u1")
			tt.mutate(&spec)

			_, err := f.svc.Create(context.Background(), spec)

			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, model.CategoryValidation, model.Categorize(err))

			var fields []string
			for _, fe := range verr.Fields {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)

			s, _ := f.svc.Stats(context.Background(), "u1")
			assert.Zero(t, s.Total)
		})
	}
}

func TestService_MarkReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	n, err := f.svc.Create(ctx, paymentDue("u1"))
	require.NoError(t, err)
	f.svc.Wait()

	events, cancel := f.bus.Subscribe(bus.TopicChanged)
	defer cancel()

	require.NoError(t, f.svc.MarkRead(ctx, "u1", n.ID))
	require.NoError(t, f.svc.MarkRead(ctx, "u1", n.ID))

	s, err := f.svc.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Unread)
	assert.Equal(t, 1, s.Read)

	got, err := f.svc.Get(ctx, "u1", n.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)
	assert.NotNil(t, got.ReadAt)

	require.Len(t, events, 1)
	assert.Equal(t, bus.ChangeRead, (<-events).Change)
}

func TestService_ArchiveKeepsTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	n, err := f.svc.Create(ctx, paymentDue("u1"))
	require.NoError(t, err)
	f.svc.Wait()

	before, _ := f.svc.Stats(ctx, "u1")
	require.NoError(t, f.svc.Archive(ctx, "u1", n.ID))
	require.NoError(t, f.svc.Archive(ctx, "u1", n.ID))

	active, err := f.svc.List(ctx, "u1", model.Filter{Archived: false})
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := f.svc.List(ctx, "u1", model.Filter{Archived: true})
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, n.ID, archived[0].ID)

	after, _ := f.svc.Stats(ctx, "u1")
	assert.Equal(t, before.Total, after.Total)
	assert.Equal(t, 1, after.Archived)
}

func TestService_UnknownIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	id := uuid.New()

	var nf *model.NotFoundError
	assert.ErrorAs(t, f.svc.MarkRead(ctx, "u1", id), &nf)
	assert.ErrorAs(t, f.svc.Archive(ctx, "u1", id), &nf)
	_, err := f.svc.Get(ctx, "u1", id)
	assert.ErrorAs(t, err, &nf)

	assert.NoError(t, f.svc.Delete(ctx, "u1", id))
}

func TestService_DeleteCancelsPendingDispatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	at := time.Now().Add(time.Hour)
	spec := paymentDue("u1")
	spec.ScheduledFor = &at

	n, err := f.svc.Create(ctx, spec)
	require.NoError(t, err)
	require.True(t, f.sched.Pending(n.ID))

	require.NoError(t, f.svc.Delete(ctx, "u1", n.ID))
	assert.False(t, f.sched.Pending(n.ID))

	_, err = f.svc.Get(ctx, "u1", n.ID)
	assert.Error(t, err)
}

func TestService_ScheduledRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	now := time.Now()
	at := now.Add(10 * time.Minute)
	spec := paymentDue("u1")
	spec.ScheduledFor = &at

	n, err := f.svc.Create(ctx, spec)
	require.NoError(t, err)
	f.svc.Wait()

	assert.Empty(t, f.disp.ids())
	assert.Empty(t, f.sched.Due(now))

	due := f.sched.Due(at)
	require.Len(t, due, 1)
	assert.Equal(t, scheduler.KindScheduled, due[0].Kind)

	f.svc.DispatchDue(ctx, due[0])
	f.svc.Wait()
	assert.Equal(t, []uuid.UUID{n.ID}, f.disp.ids())

	got, err := f.svc.Get(ctx, "u1", n.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.DispatchedAt)
}

func TestService_DispatchDueSkipsDeleted(t *testing.T) {
	f := newFixture(nil)

	f.svc.DispatchDue(context.Background(), scheduler.Entry{ID: uuid.New(), UserID: "u1", Kind: scheduler.KindScheduled})
	f.svc.Wait()
	assert.Empty(t, f.disp.ids())
}

func TestService_DigestDefersLowPriority(t *testing.T) {
	ctx := context.Background()
	prefs := preference.Defaults("u1")
	prefs.Digest = model.Digest{Enabled: true, Time: "09:00"}
	f := newFixture(staticPrefs{"u1": prefs})

	spec := paymentDue("u1")
	spec.Priority = model.PriorityLow
	spec.Channels = []model.Channel{model.ChannelInApp}

	n, err := f.svc.Create(ctx, spec)
	require.NoError(t, err)
	f.svc.Wait()

	assert.Empty(t, f.disp.ids())
	require.True(t, f.sched.Pending(n.ID))

	due := f.sched.Due(time.Now().Add(25 * time.Hour))
	require.Len(t, due, 1)
	assert.Equal(t, scheduler.KindDigest, due[0].Kind)

	f.svc.DispatchDue(ctx, due[0])
	f.svc.Wait()
	assert.Equal(t, []uuid.UUID{n.ID}, f.disp.ids())
	assert.False(t, f.sched.Pending(n.ID))
}

type gatedDispatcher struct {
	recordingDispatcher
	release chan struct{}
}

func (d *gatedDispatcher) Dispatch(ctx context.Context, del dispatcher.Delivery) model.DispatchReport {
	<-d.release
	return d.recordingDispatcher.Dispatch(ctx, del)
}

func TestService_DispatchDueDoesNotBlockTick(t *testing.T) {
	repo := notificationrepo.NewMemoryRepository()
	disp := &gatedDispatcher{release: make(chan struct{})}
	sched := scheduler.New()
	svc := NewService(repo, staticPrefs(nil), disp, bus.New(32), sched, validator.New())

	at := time.Now().Add(10 * time.Minute)
	spec := paymentDue("u1")
	spec.ScheduledFor = &at

	n, err := svc.Create(context.Background(), spec)
	require.NoError(t, err)
	svc.Wait()

	due := sched.Due(at)
	require.Len(t, due, 1)

	tick, cancel := context.WithCancel(context.Background())
	returned := make(chan struct{})
	go func() {
		svc.DispatchDue(tick, due[0])
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("DispatchDue waited for a slow delivery")
	}

	cancel()
	close(disp.release)
	svc.Wait()

	assert.Equal(t, []uuid.UUID{n.ID}, disp.ids())

	got, err := svc.Get(context.Background(), "u1", n.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.DispatchedAt)
}

func TestService_DispatchAppliesPreferences(t *testing.T) {
	prefs := preference.Defaults("u1")
	prefs.Channels.Push = true
	prefs.Types = map[model.Type]model.TypeOverride{model.TypePaymentDue: {Enabled: false}}
	f := newFixture(staticPrefs{"u1": prefs})

	_, err := f.svc.Create(context.Background(), paymentDue("u1"))
	require.NoError(t, err)
	f.svc.Wait()

	assert.Empty(t, f.disp.ids())
}

func TestService_CreateOutlivesCaller(t *testing.T) {
	f := newFixture(nil)
	ctx, cancel := context.WithCancel(context.Background())

	n, err := f.svc.Create(ctx, paymentDue("u1"))
	require.NoError(t, err)
	cancel()
	f.svc.Wait()

	assert.Equal(t, []uuid.UUID{n.ID}, f.disp.ids())
}

func TestService_RestorePending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	overdue := model.Notification{ID: uuid.New(), UserID: "u1", Type: model.TypeReminder, Priority: model.PriorityMedium,
		Channels: []model.Channel{model.ChannelInApp}, CreatedAt: past, ScheduledFor: &past}
	later := model.Notification{ID: uuid.New(), UserID: "u1", Type: model.TypeReminder, Priority: model.PriorityMedium,
		Channels: []model.Channel{model.ChannelInApp}, CreatedAt: past, ScheduledFor: &future}
	require.NoError(t, f.repo.CreateNotification(ctx, overdue))
	require.NoError(t, f.repo.CreateNotification(ctx, later))

	count, err := f.svc.RestorePending(ctx)
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, 2, count)
	assert.Equal(t, []uuid.UUID{overdue.ID}, f.disp.ids())
	assert.True(t, f.sched.Pending(later.ID))
}

func TestService_PruneArchived(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	n, err := f.svc.Create(ctx, paymentDue("u1"))
	require.NoError(t, err)
	f.svc.Wait()
	require.NoError(t, f.svc.Archive(ctx, "u1", n.ID))

	removed, err := f.svc.PruneArchived(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	f.svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	removed, err = f.svc.PruneArchived(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestService_ListRejectsUnknownFilter(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.List(context.Background(), "u1", model.Filter{ReadState: "maybe"})

	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestService_CreateRepositoryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMocknotificationRepository(ctrl)
	pubMock := mocks.NewMockpublisher(ctrl)
	schedMock := mocks.NewMockdeferrer(ctrl)
	dispMock := mocks.NewMockchannelDispatcher(ctrl)

	svc := NewService(repoMock, staticPrefs{}, dispMock, pubMock, schedMock, validator.New())

	repoMock.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	_, err := svc.Create(context.Background(), paymentDue("u1"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "create notification")
}

func TestService_DeliversInAppWhenPushDenied(t *testing.T) {
	ctx := context.Background()

	b := bus.New(32)
	inApp, cancelInApp := b.Subscribe(bus.TopicInApp)
	defer cancelInApp()
	reports, cancelReports := b.Subscribe(bus.TopicDispatched)
	defer cancelReports()

	subs := subscription.NewMemoryRepository()
	require.NoError(t, subs.SetPermission(ctx, "U", "laptop", model.PermissionDenied))

	d := dispatcher.New(map[model.Channel]dispatcher.Deliverer{
		model.ChannelInApp: inapp.New(b),
		model.ChannelPush:  pushchannel.New(subs, pushsvc.NewLocalTransport(nil), nil, pushsvc.PayloadOptions{}),
	}, time.Second, b)

	prefs := preference.Defaults("U")
	prefs.Channels.Push = true

	repo := notificationrepo.NewMemoryRepository()
	svc := NewService(repo, staticPrefs{"U": prefs}, d, b, scheduler.New(), validator.New())

	n, err := svc.Create(ctx, paymentDue("U"))
	require.NoError(t, err)
	svc.Wait()

	e := <-inApp
	assert.Equal(t, n.ID, e.Notification.ID)
	assert.False(t, e.Silent)

	r := <-reports
	require.NotNil(t, r.Report)
	assert.Equal(t, []model.Channel{model.ChannelInApp}, r.Report.Delivered())
	push := r.Report.Results[model.ChannelPush]
	require.Error(t, push.Err)
	assert.False(t, push.Retryable)

	var perr *model.PermissionError
	assert.ErrorAs(t, push.Err, &perr)

	s, err := svc.Stats(ctx, "U")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Unread)
}
