package server

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/amhamid/go-marketplace/internal/messaging"
	"github.com/amhamid/go-marketplace/internal/types"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 2048
)

// Messenger is the slice of the messaging service a connection needs for
// commands arriving over the socket.
type Messenger interface {
	Send(from types.UserSummary, params messaging.SendParams) (types.Message, error)
	MarkSeen(readerId, otherId int) error
}

type Client struct {
	conn       *websocket.Conn
	connId     string
	chatServer *ChatServer
	messenger  Messenger
	log        *log.Logger
	user       types.User
	send       chan *ServerMessage
	stop       chan struct{}
}

func NewClient(user types.User, conn *websocket.Conn, cs *ChatServer, messenger Messenger, l *log.Logger) *Client {
	return &Client{
		conn:       conn,
		connId:     uuid.NewString(),
		chatServer: cs,
		messenger:  messenger,
		log:        l,
		user:       user,
		send:       make(chan *ServerMessage, 256),
		stop:       make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(msg)
			if err != nil {
				c.log.Println("failed to serialize message:", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Println("error parsing message:", err)
			c.queueMessage(ErrInvalidMessage(-1))
			continue
		}

		msg.client = c
		c.dispatch(&msg)
	}
}

// dispatch routes one inbound command. Exactly one command field must be
// set; anything else is rejected as malformed.
func (c *Client) dispatch(msg *ClientMessage) {
	switch {
	case msg.Send != nil:
		c.handleSend(msg)
	case msg.Seen != nil:
		c.handleSeen(msg)
	case msg.Typing != nil:
		c.chatServer.Typing(msg.Typing.To, c.user.Summary(), false)
	case msg.StopTyping != nil:
		c.chatServer.Typing(msg.StopTyping.To, c.user.Summary(), true)
	default:
		c.queueMessage(ErrInvalidMessage(msg.Id))
	}
}

func (c *Client) handleSend(msg *ClientMessage) {
	created, err := c.messenger.Send(c.user.Summary(), messaging.SendParams{
		To:        msg.Send.To,
		Body:      msg.Send.Body,
		Warning:   msg.Send.Warning,
		Important: msg.Send.Important,
		ReplyTo:   msg.Send.ReplyTo,
	})
	if err != nil {
		c.queueMessage(sendError(msg.Id, err))
		return
	}

	c.queueMessage(NoErrCreated(msg.Id, created))
}

func (c *Client) handleSeen(msg *ClientMessage) {
	if err := c.messenger.MarkSeen(c.user.Id, msg.Seen.UserId); err != nil {
		c.log.Println("mark seen:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	c.queueMessage(NoErrOK(msg.Id, nil))
}

func sendError(id int, err error) *ServerMessage {
	var verr *messaging.ValidationError

	switch {
	case errors.Is(err, messaging.ErrSelfMessage):
		return ErrBadRequest(id, err.Error())
	case errors.As(err, &verr):
		return ErrBadRequest(id, verr.Error())
	case errors.Is(err, messaging.ErrPermissionDenied):
		return ErrForbidden(id)
	case errors.Is(err, messaging.ErrRecipientNotFound):
		return ErrNotFound(id)
	default:
		return ErrInternalError(id)
	}
}

func (c *Client) queueMessage(msg *ServerMessage) bool {
	select {
	case c.send <- msg:
	default:
		c.log.Printf("send buffer full for connection %q", c.connId)
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}

func (c *Client) cleanup() {
	// skip deregistration when the server already stopped us during shutdown
	select {
	case c.chatServer.deRegisterChan <- c:
	case <-c.stop:
	}
	c.stopClient()
}
