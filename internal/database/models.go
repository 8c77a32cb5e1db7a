package database

import (
	"database/sql"
	"time"
)

type User struct {
	Id           int
	Name         string
	EmailAddress string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Message struct {
	Id          int
	SenderId    int
	RecipientId int
	Body        string
	Warning     bool
	Important   bool
	ReplyTo     sql.NullInt64
	Status      string
	RoomId      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Product struct {
	Id              int
	Name            string
	Category        string
	Price           float64
	QuantityInStock int
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Order struct {
	Id          int
	OrderNumber string
	AccountId   int
	Status      string
	Total       float64
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OrderItem struct {
	Id        int
	OrderId   int
	ProductId int
	Quantity  int
	UnitPrice float64
}

type CreateAccountParams struct {
	Name         string
	EmailAddress string
	PasswordHash string
	Role         string
}

type CreateMessageParams struct {
	SenderId    int
	RecipientId int
	Body        string
	Warning     bool
	Important   bool
	ReplyTo     *int
	Status      string
	RoomId      string
}

type CreateProductParams struct {
	Name            string
	Category        string
	Price           float64
	QuantityInStock int
	Description     string
}

type CreateOrderParams struct {
	OrderNumber string
	AccountId   int
	Status      string
	Total       float64
	Items       []OrderItem
}
