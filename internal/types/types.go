package types

import (
	"time"
)

type Role string

const (
	RoleClient    Role = "Client"
	RoleModerator Role = "Moderator"
	RoleAdmin     Role = "Admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Elevated reports whether the role belongs to the shared operators group.
func (r Role) Elevated() bool {
	return r == RoleModerator || r == RoleAdmin
}

type User struct {
	Id           int       `json:"id"`
	Name         string    `json:"name"`
	EmailAddress string    `json:"email_address,omitempty"`
	Role         Role      `json:"role"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// UserSummary is the minimal identity attached to events and auth contexts.
type UserSummary struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (u User) Summary() UserSummary {
	return UserSummary{Id: u.Id, Name: u.Name, Role: u.Role}
}

type MessageStatus string

const (
	// MessageSent exists in stored data but is never produced: messages are
	// persisted as delivered.
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageSeen      MessageStatus = "seen"
)

type Message struct {
	Id          int           `json:"id"`
	SenderId    int           `json:"sender_id"`
	RecipientId int           `json:"recipient_id"`
	Body        string        `json:"body"`
	Warning     bool          `json:"warning,omitempty"`
	Important   bool          `json:"important,omitempty"`
	ReplyTo     *int          `json:"reply_to,omitempty"`
	Status      MessageStatus `json:"status"`
	RoomId      string        `json:"room_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at,omitempty"`
}

// MessageDetail is a message with its references expanded. Reply is nil when
// the referenced message no longer resolves.
type MessageDetail struct {
	Message
	Sender    UserSummary `json:"sender"`
	Recipient UserSummary `json:"recipient"`
	Reply     *Message    `json:"reply,omitempty"`
}

type ConversationSummary struct {
	User        UserSummary `json:"user"`
	LastMessage Message     `json:"last_message"`
	UnreadCount int         `json:"unread_count"`
}

type Product struct {
	Id              int       `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Price           float64   `json:"price"`
	QuantityInStock int       `json:"quantity_in_stock"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type Order struct {
	Id          int         `json:"id"`
	OrderNumber string      `json:"order_number"`
	AccountId   int         `json:"account_id"`
	Status      OrderStatus `json:"status"`
	Total       float64     `json:"total"`
	Items       []OrderItem `json:"items,omitempty"`
	CreatedAt   time.Time   `json:"created_at,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at,omitempty"`
}

type OrderItem struct {
	Id        int     `json:"id"`
	ProductId int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
