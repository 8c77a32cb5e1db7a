package database

type MarketRepository interface {
	Ping() error

	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)

	CreateMessage(params CreateMessageParams) (Message, error)
	GetMessageById(id int) (Message, error)
	GetConversation(roomId string) ([]Message, error)
	ListMessagesForAccount(accountId int) ([]Message, error)
	MarkConversationSeen(roomId string, recipientId int) (int, error)
	CountUnread(recipientId int) (int, error)
	CountUnreadFrom(recipientId, senderId int) (int, error)

	CreateProduct(params CreateProductParams) (Product, error)
	GetProductById(id int) (Product, error)
	ListProducts() ([]Product, error)
	AdjustProductStock(productId, delta int) (Product, error)

	CreateOrder(params CreateOrderParams) (Order, error)
	GetOrderByNumber(orderNumber string) (Order, error)
	ListOrdersForAccount(accountId int) ([]Order, error)
	ListOrders() ([]Order, error)
	UpdateOrderStatus(orderNumber, status string) (Order, error)
}
