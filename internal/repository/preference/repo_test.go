package preference

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

func setupMockDB(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}

	return NewRepository(&dbpg.DB{Master: db}), mock
}

func TestGetPreferences(t *testing.T) {
	repo, mock := setupMockDB(t)

	stored := model.Preferences{
		Channels:   model.ChannelSwitches{InApp: true, Push: true},
		QuietHours: model.QuietHours{Enabled: true, Start: "22:00", End: "07:00"},
		Types: map[model.Type]model.TypeOverride{
			model.TypePaymentDue: {Enabled: false},
		},
	}
	raw, err := json.Marshal(stored)
	require.NoError(t, err)
	updated := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM notification_preferences`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"settings", "updated_at"}).AddRow(raw, updated))

	p, err := repo.GetPreferences(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.True(t, p.Channels.Push)
	assert.Equal(t, "22:00", p.QuietHours.Start)
	assert.False(t, p.Types[model.TypePaymentDue].Enabled)
	assert.True(t, updated.Equal(p.UpdatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM notification_preferences`)).
		WithArgs("u2").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetPreferences(context.Background(), "u2")
	assert.ErrorIs(t, err, ErrPreferencesNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePreferences(t *testing.T) {
	repo, mock := setupMockDB(t)

	p := model.Preferences{UserID: "u1", Channels: model.ChannelSwitches{InApp: true}, UpdatedAt: time.Now()}

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (user_id) DO UPDATE`)).
		WithArgs("u1", sqlmock.AnyArg(), p.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.SavePreferences(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}
