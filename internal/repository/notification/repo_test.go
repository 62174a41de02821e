package notification

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

var notificationColumns = []string{
	"id", "user_id", "title", "message", "type", "priority", "channels", "read", "read_at",
	"archived", "created_at", "scheduled_for", "dispatched_at", "tags", "actions",
}

func setupMockDB(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}

	wrappedDB := &dbpg.DB{Master: db}
	repo := NewRepository(wrappedDB)

	return repo, mock
}

func TestCreateNotification(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := model.Notification{
		ID:        uuid.New(),
		UserID:    "u1",
		Title:     "Payment Due",
		Message:   "Invoice #12 is due tomorrow",
		Type:      model.TypePaymentDue,
		Priority:  model.PriorityHigh,
		Channels:  []model.Channel{model.ChannelInApp, model.ChannelPush},
		CreatedAt: time.Now(),
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO notifications (`)).
		WithArgs(
			n.ID, n.UserID, n.Title, n.Message, string(n.Type), string(n.Priority), sqlmock.AnyArg(),
			false, sqlmock.AnyArg(), false, n.CreatedAt, sqlmock.AnyArg(), sqlmock.AnyArg(), []byte("null"),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateNotification(context.Background(), n)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotification(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()
	created := time.Now().Add(-time.Hour)
	readAt := time.Now()

	rows := sqlmock.NewRows(notificationColumns).AddRow(
		id.String(), "u1", "Payment Received", "Got 100", "payment_received", "medium", "{in_app,email}", true, readAt,
		false, created, nil, created, "{invoice,acme}", []byte(`[{"label":"Open","action":"open","style":"primary"}]`),
	)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND user_id = $2;`)).
		WithArgs(id, "u1").
		WillReturnRows(rows)

	n, err := repo.GetNotification(context.Background(), "u1", id)
	require.NoError(t, err)
	assert.Equal(t, id, n.ID)
	assert.Equal(t, model.TypePaymentReceived, n.Type)
	assert.Equal(t, []model.Channel{model.ChannelInApp, model.ChannelEmail}, n.Channels)
	assert.Equal(t, []string{"invoice", "acme"}, n.Tags)
	assert.True(t, n.Read)
	require.NotNil(t, n.ReadAt)
	assert.Nil(t, n.ScheduledFor)
	require.NotNil(t, n.DispatchedAt)
	require.Len(t, n.Actions, 1)
	assert.Equal(t, "open", n.Actions[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND user_id = $2;`)).
		WithArgs(id, "u1").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetNotification(context.Background(), "u1", id)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListNotifications_BuildsFilter(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`WHERE user_id = $1 AND archived = $2 AND read = FALSE AND type = $3 AND ` +
			`(title ILIKE $4 OR message ILIKE $4 OR array_to_string(tags, ' ') ILIKE $4)`,
	)).
		WithArgs("u1", false, "payment_due", `%50\%%`, 10).
		WillReturnRows(sqlmock.NewRows(notificationColumns))

	list, err := repo.ListNotifications(context.Background(), "u1", model.Filter{
		ReadState: model.ReadUnread,
		Type:      model.TypePaymentDue,
		Query:     " 50% ",
		Limit:     10,
	})
	assert.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRead(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()
	at := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`SET read = TRUE, read_at = $3`)).
		WithArgs(id, "u1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed, err := repo.MarkRead(context.Background(), "u1", id, at)
	assert.NoError(t, err)
	assert.True(t, changed)

	// already read
	mock.ExpectExec(regexp.QuoteMeta(`SET read = TRUE, read_at = $3`)).
		WithArgs(id, "u1", at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(id, "u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	changed, err = repo.MarkRead(context.Background(), "u1", id, at)
	assert.NoError(t, err)
	assert.False(t, changed)

	// unknown id
	mock.ExpectExec(regexp.QuoteMeta(`SET read = TRUE, read_at = $3`)).
		WithArgs(id, "u1", at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(id, "u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err = repo.MarkRead(context.Background(), "u1", id, at)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotification(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notifications`)).
		WithArgs(id, "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.DeleteNotification(context.Background(), "u1", id)
	assert.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStats(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`COUNT(*) FILTER (WHERE archived)`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "unread", "read", "archived"}).AddRow(5, 2, 2, 1))

	s, err := repo.Stats(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, model.Stats{Total: 5, Unread: 2, Read: 2, Archived: 1}, s)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteArchivedBefore(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()
	before := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`RETURNING id, user_id;`)).
		WithArgs(before).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(id.String(), "u1"))

	removed, err := repo.DeleteArchivedBefore(context.Background(), before)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, id, removed[0].ID)
	assert.Equal(t, "u1", removed[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
