package server

import (
	"context"
	"log"
	"strconv"

	"github.com/amhamid/go-marketplace/internal/presence"
	"github.com/amhamid/go-marketplace/internal/stats"
	"github.com/amhamid/go-marketplace/internal/types"
)

const operatorsRoom = "operators"

type shutdownReq struct {
	done chan struct{}
}

// ChatServer owns the live-connection state: the presence registry, the
// connection index and the broadcast rooms. All mutation happens on the Run
// loop; producers enqueue on buffered channels and never block.
type ChatServer struct {
	log            *log.Logger
	presence       *presence.Registry
	stats          stats.StatsProvider
	clients        map[*Client]struct{}
	byConn         map[string]*Client
	rooms          map[string]map[*Client]struct{}
	RegisterChan   chan *Client
	deRegisterChan chan *Client
	broadcastChan  chan *ServerMessage
	stop           chan shutdownReq
}

func NewChatServer(logger *log.Logger, registry *presence.Registry, su stats.StatsProvider) (*ChatServer, error) {
	cs := &ChatServer{
		log:            logger,
		presence:       registry,
		stats:          su,
		clients:        make(map[*Client]struct{}),
		byConn:         make(map[string]*Client),
		rooms:          make(map[string]map[*Client]struct{}),
		RegisterChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		broadcastChan:  make(chan *ServerMessage, 256),
		stop:           make(chan shutdownReq),
	}

	su.RegisterMetric("NumConnections")
	su.RegisterMetric("NumOnlineUsers")
	su.RegisterMetric("NumEventsDelivered")
	su.RegisterMetric("NumDroppedEvents")

	return cs, nil
}

func (cs *ChatServer) Run() {
	for {
		select {
		case client := <-cs.RegisterChan:
			cs.log.Printf("adding connection %q for user %q", client.connId, client.user.Name)
			cs.addClient(client)
		case client := <-cs.deRegisterChan:
			cs.log.Printf("removing connection %q for user %q", client.connId, client.user.Name)
			cs.removeClient(client)
		case msg := <-cs.broadcastChan:
			cs.deliver(msg)
		case req := <-cs.stop:
			cs.log.Println("closing client connections")
			for c := range cs.clients {
				c.stopClient()
			}
			close(req.done)
			return
		}
	}
}

// RegisterClient hands a freshly upgraded connection to the run loop.
func (cs *ChatServer) RegisterClient(c *Client) {
	cs.RegisterChan <- c
}

func (cs *ChatServer) addClient(c *Client) {
	cs.clients[c] = struct{}{}
	cs.byConn[c.connId] = c

	wasOnline := cs.presence.Online(c.user.Id)
	cs.presence.Register(c.user.Id, c.connId)

	// every connection joins the personal room of its owning user
	cs.joinRoom(personalRoom(c.user.Id), c)
	if c.user.Role.Elevated() {
		cs.joinRoom(operatorsRoom, c)
	}

	cs.stats.Incr("NumConnections")
	if !wasOnline {
		cs.stats.Incr("NumOnlineUsers")
	}
}

func (cs *ChatServer) removeClient(c *Client) {
	if _, ok := cs.clients[c]; !ok {
		return
	}

	delete(cs.clients, c)
	delete(cs.byConn, c.connId)
	cs.presence.Unregister(c.user.Id, c.connId)

	cs.leaveRoom(personalRoom(c.user.Id), c)
	if c.user.Role.Elevated() {
		cs.leaveRoom(operatorsRoom, c)
	}

	cs.stats.Decr("NumConnections")
	if !cs.presence.Online(c.user.Id) {
		cs.stats.Decr("NumOnlineUsers")
	}
}

func (cs *ChatServer) joinRoom(name string, c *Client) {
	if cs.rooms[name] == nil {
		cs.rooms[name] = make(map[*Client]struct{})
	}
	cs.rooms[name][c] = struct{}{}
}

func (cs *ChatServer) leaveRoom(name string, c *Client) {
	room, ok := cs.rooms[name]
	if !ok {
		return
	}

	delete(room, c)
	if len(room) == 0 {
		delete(cs.rooms, name)
	}
}

// deliver resolves the message's target to live connections and queues it on
// each. Every per-connection send is independent: a full or dead connection
// is skipped and counted, never surfaced.
func (cs *ChatServer) deliver(msg *ServerMessage) {
	switch {
	case msg.UserId != 0:
		for _, connId := range cs.presence.ConnectionsFor(msg.UserId) {
			c, ok := cs.byConn[connId]
			if !ok {
				continue
			}
			cs.queueToClient(c, msg)
		}
	case msg.Operators:
		for c := range cs.rooms[operatorsRoom] {
			cs.queueToClient(c, msg)
		}
	default:
		for c := range cs.clients {
			cs.queueToClient(c, msg)
		}
	}
}

func (cs *ChatServer) queueToClient(c *Client, msg *ServerMessage) {
	if !c.queueMessage(msg) {
		cs.log.Printf("dropping %q event for connection %q", msg.Event, c.connId)
		cs.stats.Incr("NumDroppedEvents")
		return
	}
	cs.stats.Incr("NumEventsDelivered")
}

// send enqueues a message for the run loop without blocking the caller.
func (cs *ChatServer) send(msg *ServerMessage) {
	select {
	case cs.broadcastChan <- msg:
	default:
		cs.log.Printf("broadcast channel full, dropping %q event", msg.Event)
		cs.stats.Incr("NumDroppedEvents")
	}
}

// SendToUser delivers an event to every live connection of userId. Offline
// users are a silent no-op.
func (cs *ChatServer) SendToUser(userId int, event string, data any) {
	cs.send(&ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Event:       event,
		Data:        data,
		UserId:      userId,
	})
}

// SendToOperators delivers an event to every connection in the shared
// operators room.
func (cs *ChatServer) SendToOperators(event string, data any) {
	cs.send(&ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Event:       event,
		Data:        data,
		Operators:   true,
	})
}

// Broadcast delivers an event to every live connection.
func (cs *ChatServer) Broadcast(event string, data any) {
	cs.send(&ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Event:       event,
		Data:        data,
	})
}

// MessageReceived, MessageSent, MessagesSeen and UnreadCount satisfy the
// messaging notifier contract.

func (cs *ChatServer) MessageReceived(to int, msg types.Message) {
	cs.SendToUser(to, EventMessageReceived, msg)
}

func (cs *ChatServer) MessageSent(from int, msg types.Message) {
	// echo to the sender's own room for multi-device sync
	cs.SendToUser(from, EventMessageSent, msg)
}

func (cs *ChatServer) MessagesSeen(to int, roomId string, by int) {
	cs.SendToUser(to, EventMessageSeen, SeenPayload{RoomId: roomId, By: by})
}

func (cs *ChatServer) UnreadCount(to, from, count, total int) {
	cs.SendToUser(to, EventUnreadCount, UnreadCountPayload{From: from, Count: count, Total: total})
}

func (cs *ChatServer) Typing(to int, from types.UserSummary, stopped bool) {
	event := EventTyping
	if stopped {
		event = EventStopTyping
	}
	cs.SendToUser(to, event, TypingPayload{From: from})
}

func (cs *ChatServer) Shutdown(ctx context.Context) error {
	req := shutdownReq{done: make(chan struct{})}

	select {
	case cs.stop <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func personalRoom(userId int) string {
	return "user:" + strconv.Itoa(userId)
}
