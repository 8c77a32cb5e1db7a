package events

import (
	"testing"

	"github.com/amhamid/go-marketplace/internal/server"
	"github.com/amhamid/go-marketplace/internal/testutil"
	"github.com/amhamid/go-marketplace/internal/types"
	"github.com/stretchr/testify/mock"
)

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) Broadcast(event string, data any) {
	m.Called(event, data)
}
func (m *mockBroadcaster) SendToUser(userId int, event string, data any) {
	m.Called(userId, event, data)
}
func (m *mockBroadcaster) SendToOperators(event string, data any) {
	m.Called(event, data)
}

func TestStockChanged(t *testing.T) {
	hub := &mockBroadcaster{}
	defer hub.AssertExpectations(t)

	product := types.Product{Id: 1, Name: "olive oil", QuantityInStock: 7}
	hub.On("Broadcast", server.EventProductStock, product).Once()

	relay := NewRelay(testutil.TestLogger(t), hub)
	relay.StockChanged(product)
}

func TestOrderCreated(t *testing.T) {
	hub := &mockBroadcaster{}
	defer hub.AssertExpectations(t)

	order := types.Order{Id: 1, OrderNumber: "ord-1", AccountId: 5, Status: types.OrderPending}
	hub.On("SendToOperators", server.EventOrderCreated, server.OrderStatusPayload{
		OrderNumber: "ord-1",
		Status:      types.OrderPending,
		UserId:      5,
	}).Once()

	relay := NewRelay(testutil.TestLogger(t), hub)
	relay.OrderCreated(order)
}

func TestOrderStatusChanged(t *testing.T) {
	hub := &mockBroadcaster{}
	defer hub.AssertExpectations(t)

	order := types.Order{Id: 1, OrderNumber: "ord-1", AccountId: 5, Status: types.OrderShipped}
	payload := server.OrderStatusPayload{
		OrderNumber: "ord-1",
		Status:      types.OrderShipped,
		UserId:      5,
		UpdatedBy:   "Maya",
	}

	hub.On("SendToUser", 5, server.EventOrderStatusUpdated, payload).Once()
	hub.On("SendToOperators", server.EventOrderStatusUpdated, payload).Once()

	relay := NewRelay(testutil.TestLogger(t), hub)
	relay.OrderStatusChanged(order, "Maya")
}
