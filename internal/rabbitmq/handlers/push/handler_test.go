package push

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/wb-go/wbf/retry"

	mocks "github.com/aliskhannn/debt-notifier/internal/mocks/rabbitmq/handlers/push"
	"github.com/aliskhannn/debt-notifier/internal/model"
	"github.com/aliskhannn/debt-notifier/internal/rabbitmq/queue"
)

func message() queue.PushMessage {
	return queue.PushMessage{
		ID:       uuid.New(),
		DeviceID: "laptop",
		Endpoint: "local://laptop",
		Payload:  model.PushPayload{Title: "Payment Due", Data: model.PushData{PrimaryKey: "n1"}},
	}
}

func TestHandler_HandleMessage_RetriesThenDelivers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boundaryMock := mocks.NewMockboundary(ctrl)
	dlqMock := mocks.NewMockdeadLetterer(ctrl)
	h := NewHandler(boundaryMock, dlqMock)

	msg := message()

	gomock.InOrder(
		boundaryMock.EXPECT().Push(gomock.Any(), "local://laptop", gomock.Any()).Return(errors.New("busy")),
		boundaryMock.EXPECT().Push(gomock.Any(), "local://laptop", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, data []byte) error {
				var p model.PushPayload
				assert.NoError(t, json.Unmarshal(data, &p))
				assert.Equal(t, "n1", p.Data.PrimaryKey)
				return nil
			},
		),
	)

	h.HandleMessage(context.Background(), msg, retry.Strategy{Attempts: 3})
}

func TestHandler_HandleMessage_DeadLettersAfterRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boundaryMock := mocks.NewMockboundary(ctrl)
	dlqMock := mocks.NewMockdeadLetterer(ctrl)
	h := NewHandler(boundaryMock, dlqMock)

	msg := message()

	boundaryMock.EXPECT().Push(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("boundary down")).Times(2)
	dlqMock.EXPECT().DeadLetter(msg, gomock.Any()).Return(nil)

	h.HandleMessage(context.Background(), msg, retry.Strategy{Attempts: 2})
}
