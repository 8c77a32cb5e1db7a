package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/amhamid/go-marketplace/internal/messaging"
	"github.com/amhamid/go-marketplace/internal/stats"
	"github.com/amhamid/go-marketplace/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockMessenger struct {
	mock.Mock
}

func (m *mockMessenger) Send(from types.UserSummary, params messaging.SendParams) (types.Message, error) {
	args := m.Called(from, params)
	return args.Get(0).(types.Message), args.Error(1)
}

func (m *mockMessenger) MarkSeen(readerId, otherId int) error {
	args := m.Called(readerId, otherId)
	return args.Error(0)
}

func newDispatchClient(t *testing.T, messenger Messenger) *Client {
	cs := newTestChatServer(t, &stats.MockStatsUpdater{})
	c := newTestClient(cs, types.User{Id: 1, Name: "Anis", Role: types.RoleClient}, "c1")
	c.messenger = messenger
	return c
}

func TestDispatchSend(t *testing.T) {
	messenger := &mockMessenger{}
	defer messenger.AssertExpectations(t)

	created := types.Message{Id: 10, SenderId: 1, RecipientId: 2, Body: "hi", Status: types.MessageDelivered, RoomId: "1:2"}
	messenger.On("Send", types.UserSummary{Id: 1, Name: "Anis", Role: types.RoleClient}, messaging.SendParams{To: 2, Body: "hi"}).
		Return(created, nil).Once()

	c := newDispatchClient(t, messenger)
	c.dispatch(&ClientMessage{
		BaseMessage: BaseMessage{Id: 1},
		Send:        &SendCommand{To: 2, Body: "hi"},
	})

	msg := recvMessage(t, c)
	assert.Equal(t, http.StatusCreated, msg.Response.ResponseCode, "expected created ack")
	assert.Equal(t, created, msg.Response.Data, "expected created message echoed in ack")
}

func TestDispatchSendErrors(t *testing.T) {
	tcases := []struct {
		name         string
		err          error
		expectedCode int
	}{
		{name: "self message", err: messaging.ErrSelfMessage, expectedCode: http.StatusBadRequest},
		{name: "validation", err: &messaging.ValidationError{Field: "body", Reason: "must not be empty"}, expectedCode: http.StatusBadRequest},
		{name: "permission denied", err: messaging.ErrPermissionDenied, expectedCode: http.StatusForbidden},
		{name: "recipient not found", err: messaging.ErrRecipientNotFound, expectedCode: http.StatusNotFound},
		{name: "store failure", err: assert.AnError, expectedCode: http.StatusInternalServerError},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			messenger := &mockMessenger{}
			defer messenger.AssertExpectations(t)
			messenger.On("Send", mock.Anything, mock.Anything).Return(types.Message{}, tc.err).Once()

			c := newDispatchClient(t, messenger)
			c.dispatch(&ClientMessage{
				BaseMessage: BaseMessage{Id: 1},
				Send:        &SendCommand{To: 2, Body: "hi"},
			})

			msg := recvMessage(t, c)
			assert.Equal(t, tc.expectedCode, msg.Response.ResponseCode, "expected error mapped to response code")
		})
	}
}

func TestDispatchSeen(t *testing.T) {
	messenger := &mockMessenger{}
	defer messenger.AssertExpectations(t)
	messenger.On("MarkSeen", 1, 2).Return(nil).Once()

	c := newDispatchClient(t, messenger)
	c.dispatch(&ClientMessage{
		BaseMessage: BaseMessage{Id: 3},
		Seen:        &SeenCommand{UserId: 2},
	})

	msg := recvMessage(t, c)
	assert.Equal(t, http.StatusOK, msg.Response.ResponseCode, "expected ok ack for seen command")
}

func TestDispatchTyping(t *testing.T) {
	c := newDispatchClient(t, &mockMessenger{})
	go c.chatServer.Run()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		c.chatServer.Shutdown(ctx)
	}()

	other := newTestClient(c.chatServer, types.User{Id: 2, Name: "Maya", Role: types.RoleModerator}, "m1")
	c.chatServer.RegisterClient(other)

	c.dispatch(&ClientMessage{Typing: &TypingCommand{To: 2}})

	msg := recvMessage(t, other)
	assert.Equal(t, EventTyping, msg.Event, "expected typing relayed to the counterpart")
	payload, ok := msg.Data.(TypingPayload)
	assert.True(t, ok, "expected typing payload")
	assert.Equal(t, 1, payload.From.Id, "expected sender identity in payload")

	c.dispatch(&ClientMessage{StopTyping: &TypingCommand{To: 2}})
	msg = recvMessage(t, other)
	assert.Equal(t, EventStopTyping, msg.Event, "expected stop typing relayed")
}

func TestDispatchUnknownCommand(t *testing.T) {
	c := newDispatchClient(t, &mockMessenger{})
	c.dispatch(&ClientMessage{BaseMessage: BaseMessage{Id: 9}})

	msg := recvMessage(t, c)
	assert.Equal(t, http.StatusBadRequest, msg.Response.ResponseCode, "expected unknown command rejected")
}
