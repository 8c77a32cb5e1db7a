package server

import (
	"net/http"
	"time"

	"github.com/amhamid/go-marketplace/internal/types"
)

// Event names emitted to live connections.
const (
	EventMessageReceived    = "message:received"
	EventMessageSent        = "message:sent"
	EventMessageSeen        = "message:seen"
	EventUnreadCount        = "unread:count"
	EventTyping             = "typing"
	EventStopTyping         = "stopTyping"
	EventOrderCreated       = "order:created"
	EventOrderStatusUpdated = "order:status:updated"
	EventProductStock       = "product:quantity_in_stock"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is the tagged union of commands a connection may send.
// Exactly one command field is set per message.
type ClientMessage struct {
	BaseMessage
	Send       *SendCommand   `json:"send,omitempty"`
	Seen       *SeenCommand   `json:"seen,omitempty"`
	Typing     *TypingCommand `json:"typing,omitempty"`
	StopTyping *TypingCommand `json:"stop_typing,omitempty"`
	client     *Client
}

type SendCommand struct {
	To        int    `json:"to"`
	Body      string `json:"body"`
	Warning   bool   `json:"warning,omitempty"`
	Important bool   `json:"important,omitempty"`
	ReplyTo   *int   `json:"reply_to,omitempty"`
}

type SeenCommand struct {
	// UserId is the other participant of the conversation being read.
	UserId int `json:"user_id"`
}

type TypingCommand struct {
	To int `json:"to"`
}

// ServerMessage is either a named event with a payload or a response to a
// client command. The unexported-routing fields direct delivery and are
// never serialized.
type ServerMessage struct {
	BaseMessage
	Event    string    `json:"event,omitempty"`
	Data     any       `json:"data,omitempty"`
	Response *Response `json:"response,omitempty"`

	UserId    int  `json:"-"`
	Operators bool `json:"-"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
	Data         any    `json:"data,omitempty"`
}

type UnreadCountPayload struct {
	From  int `json:"from"`
	Count int `json:"count"`
	Total int `json:"total"`
}

type SeenPayload struct {
	RoomId string `json:"room_id"`
	By     int    `json:"by"`
}

type TypingPayload struct {
	From types.UserSummary `json:"from"`
}

type OrderStatusPayload struct {
	OrderNumber string            `json:"order_number"`
	Status      types.OrderStatus `json:"status"`
	UserId      int               `json:"user_id"`
	UpdatedBy   string            `json:"updated_by,omitempty"`
}

func NoErrOK(id int, data any) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
			Data:         data,
		},
	}
}

func NoErrCreated(id int, data any) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusCreated,
			Data:         data,
		},
	}
}

func ErrBadRequest(id int, reason string) *ServerMessage {
	if reason == "" {
		reason = "bad request"
	}
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        reason,
		},
	}
}

func ErrNotFound(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusNotFound,
			Error:        "not found",
		},
	}
}

func ErrForbidden(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusForbidden,
			Error:        "forbidden",
		},
	}
}

func ErrInternalError(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
