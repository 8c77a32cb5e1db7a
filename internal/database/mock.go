package database

import (
	"github.com/stretchr/testify/mock"
)

type MockMarketRepository struct {
	mock.Mock
}

func (m *MockMarketRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockMarketRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockMarketRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockMarketRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockMarketRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockMarketRepository) GetMessageById(id int) (Message, error) {
	args := m.Called(id)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockMarketRepository) GetConversation(roomId string) ([]Message, error) {
	args := m.Called(roomId)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockMarketRepository) ListMessagesForAccount(accountId int) ([]Message, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockMarketRepository) MarkConversationSeen(roomId string, recipientId int) (int, error) {
	args := m.Called(roomId, recipientId)
	return args.Int(0), args.Error(1)
}
func (m *MockMarketRepository) CountUnread(recipientId int) (int, error) {
	args := m.Called(recipientId)
	return args.Int(0), args.Error(1)
}
func (m *MockMarketRepository) CountUnreadFrom(recipientId, senderId int) (int, error) {
	args := m.Called(recipientId, senderId)
	return args.Int(0), args.Error(1)
}
func (m *MockMarketRepository) CreateProduct(params CreateProductParams) (Product, error) {
	args := m.Called(params)
	return args.Get(0).(Product), args.Error(1)
}
func (m *MockMarketRepository) GetProductById(id int) (Product, error) {
	args := m.Called(id)
	return args.Get(0).(Product), args.Error(1)
}
func (m *MockMarketRepository) ListProducts() ([]Product, error) {
	args := m.Called()
	return args.Get(0).([]Product), args.Error(1)
}
func (m *MockMarketRepository) AdjustProductStock(productId, delta int) (Product, error) {
	args := m.Called(productId, delta)
	return args.Get(0).(Product), args.Error(1)
}
func (m *MockMarketRepository) CreateOrder(params CreateOrderParams) (Order, error) {
	args := m.Called(params)
	return args.Get(0).(Order), args.Error(1)
}
func (m *MockMarketRepository) GetOrderByNumber(orderNumber string) (Order, error) {
	args := m.Called(orderNumber)
	return args.Get(0).(Order), args.Error(1)
}
func (m *MockMarketRepository) ListOrdersForAccount(accountId int) ([]Order, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Order), args.Error(1)
}
func (m *MockMarketRepository) ListOrders() ([]Order, error) {
	args := m.Called()
	return args.Get(0).([]Order), args.Error(1)
}
func (m *MockMarketRepository) UpdateOrderStatus(orderNumber, status string) (Order, error) {
	args := m.Called(orderNumber, status)
	return args.Get(0).(Order), args.Error(1)
}
