package events

import (
	"log"

	"github.com/amhamid/go-marketplace/internal/server"
	"github.com/amhamid/go-marketplace/internal/types"
)

// Broadcaster is the slice of the chat server the relay needs.
type Broadcaster interface {
	Broadcast(event string, data any)
	SendToUser(userId int, event string, data any)
	SendToOperators(event string, data any)
}

// Relay fans order and catalog mutations out to live connections. It is
// stateless and strictly best-effort: it never blocks or fails the mutation
// that triggered it.
type Relay struct {
	log *log.Logger
	hub Broadcaster
}

func NewRelay(logger *log.Logger, hub Broadcaster) *Relay {
	return &Relay{
		log: logger,
		hub: hub,
	}
}

// StockChanged broadcasts the product's new stock level to every connection.
func (r *Relay) StockChanged(p types.Product) {
	r.hub.Broadcast(server.EventProductStock, p)
}

// OrderCreated notifies the operators group of a new order.
func (r *Relay) OrderCreated(o types.Order) {
	r.hub.SendToOperators(server.EventOrderCreated, server.OrderStatusPayload{
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		UserId:      o.AccountId,
	})
}

// OrderStatusChanged notifies the order's owner and, separately, the
// operators group of a status change.
func (r *Relay) OrderStatusChanged(o types.Order, updatedBy string) {
	payload := server.OrderStatusPayload{
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		UserId:      o.AccountId,
		UpdatedBy:   updatedBy,
	}

	r.hub.SendToUser(o.AccountId, server.EventOrderStatusUpdated, payload)
	r.hub.SendToOperators(server.EventOrderStatusUpdated, payload)
}
