package database

import (
	"database/sql"
	"fmt"
	"time"
)

const messageColumns = "id, sender_id, recipient_id, body, warning, important, reply_to, status, room_id, created_at, updated_at"

func (db *PgMarketRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (name, email, password_hash, role, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $5) RETURNING id, name, email, role, created_at, updated_at",
		params.Name,
		params.EmailAddress,
		params.PasswordHash,
		params.Role,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Name,
		&u.EmailAddress,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgMarketRepository) GetAccountById(id int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, role, created_at, updated_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Name,
		&user.EmailAddress,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgMarketRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, password_hash, role, created_at, updated_at FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Name,
		&user.EmailAddress,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgMarketRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	var replyTo sql.NullInt64
	if params.ReplyTo != nil {
		replyTo = sql.NullInt64{Int64: int64(*params.ReplyTo), Valid: true}
	}

	res := db.conn.QueryRow(
		"INSERT INTO messages (sender_id, recipient_id, body, warning, important, reply_to, status, room_id, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING "+messageColumns,
		params.SenderId,
		params.RecipientId,
		params.Body,
		params.Warning,
		params.Important,
		replyTo,
		params.Status,
		params.RoomId,
		time.Now().UTC(),
	)

	return scanMessageRow(res)
}

func (db *PgMarketRepository) GetMessageById(id int) (Message, error) {
	row := db.conn.QueryRow(
		"SELECT "+messageColumns+" FROM messages WHERE id = $1 LIMIT 1",
		id,
	)

	return scanMessageRow(row)
}

func (db *PgMarketRepository) GetConversation(roomId string) ([]Message, error) {
	rows, err := db.conn.Query(
		"SELECT "+messageColumns+" FROM messages "+
			"WHERE room_id = $1 ORDER BY created_at ASC, id ASC",
		roomId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessageRows(rows)
}

func (db *PgMarketRepository) ListMessagesForAccount(accountId int) ([]Message, error) {
	rows, err := db.conn.Query(
		"SELECT "+messageColumns+" FROM messages "+
			"WHERE sender_id = $1 OR recipient_id = $1 "+
			"ORDER BY created_at DESC, id DESC",
		accountId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessageRows(rows)
}

func (db *PgMarketRepository) MarkConversationSeen(roomId string, recipientId int) (int, error) {
	res, err := db.conn.Exec(
		"UPDATE messages SET status = 'seen', updated_at = $3 "+
			"WHERE room_id = $1 AND recipient_id = $2 AND status != 'seen'",
		roomId,
		recipientId,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return int(count), nil
}

func (db *PgMarketRepository) CountUnread(recipientId int) (int, error) {
	row := db.conn.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND status != 'seen'",
		recipientId,
	)

	var count int
	err := row.Scan(&count)
	return count, err
}

func (db *PgMarketRepository) CountUnreadFrom(recipientId, senderId int) (int, error) {
	row := db.conn.QueryRow(
		"SELECT COUNT(*) FROM messages "+
			"WHERE recipient_id = $1 AND sender_id = $2 AND status != 'seen'",
		recipientId,
		senderId,
	)

	var count int
	err := row.Scan(&count)
	return count, err
}

func (db *PgMarketRepository) CreateProduct(params CreateProductParams) (Product, error) {
	res := db.conn.QueryRow(
		"INSERT INTO products (name, category, price, quantity_in_stock, description, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $6) "+
			"RETURNING id, name, category, price, quantity_in_stock, description, created_at, updated_at",
		params.Name,
		params.Category,
		params.Price,
		params.QuantityInStock,
		params.Description,
		time.Now().UTC(),
	)

	return scanProductRow(res)
}

func (db *PgMarketRepository) GetProductById(id int) (Product, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, category, price, quantity_in_stock, description, created_at, updated_at "+
			"FROM products WHERE id = $1 LIMIT 1",
		id,
	)

	return scanProductRow(row)
}

func (db *PgMarketRepository) ListProducts() ([]Product, error) {
	rows, err := db.conn.Query(
		"SELECT id, name, category, price, quantity_in_stock, description, created_at, updated_at " +
			"FROM products ORDER BY name ASC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.Id,
			&p.Name,
			&p.Category,
			&p.Price,
			&p.QuantityInStock,
			&p.Description,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (db *PgMarketRepository) AdjustProductStock(productId, delta int) (Product, error) {
	row := db.conn.QueryRow(
		"UPDATE products SET quantity_in_stock = quantity_in_stock + $2, updated_at = $3 "+
			"WHERE id = $1 "+
			"RETURNING id, name, category, price, quantity_in_stock, description, created_at, updated_at",
		productId,
		delta,
		time.Now().UTC(),
	)

	return scanProductRow(row)
}

func (db *PgMarketRepository) CreateOrder(params CreateOrderParams) (Order, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRow(
		"INSERT INTO orders (order_number, account_id, status, total, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $5) "+
			"RETURNING id, order_number, account_id, status, total, created_at, updated_at",
		params.OrderNumber,
		params.AccountId,
		params.Status,
		params.Total,
		time.Now().UTC(),
	)

	var o Order
	if err := row.Scan(
		&o.Id,
		&o.OrderNumber,
		&o.AccountId,
		&o.Status,
		&o.Total,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return Order{}, err
	}

	for _, item := range params.Items {
		itemRow := tx.QueryRow(
			"INSERT INTO order_items (order_id, product_id, quantity, unit_price) "+
				"VALUES ($1, $2, $3, $4) RETURNING id, order_id, product_id, quantity, unit_price",
			o.Id,
			item.ProductId,
			item.Quantity,
			item.UnitPrice,
		)

		var oi OrderItem
		if err := itemRow.Scan(&oi.Id, &oi.OrderId, &oi.ProductId, &oi.Quantity, &oi.UnitPrice); err != nil {
			return Order{}, err
		}
		o.Items = append(o.Items, oi)
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}

	return o, nil
}

func (db *PgMarketRepository) GetOrderByNumber(orderNumber string) (Order, error) {
	row := db.conn.QueryRow(
		"SELECT id, order_number, account_id, status, total, created_at, updated_at "+
			"FROM orders WHERE order_number = $1 LIMIT 1",
		orderNumber,
	)

	var o Order
	err := row.Scan(
		&o.Id,
		&o.OrderNumber,
		&o.AccountId,
		&o.Status,
		&o.Total,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return Order{}, err
	}

	o.Items, err = db.listOrderItems(o.Id)
	return o, err
}

func (db *PgMarketRepository) ListOrdersForAccount(accountId int) ([]Order, error) {
	rows, err := db.conn.Query(
		"SELECT id, order_number, account_id, status, total, created_at, updated_at "+
			"FROM orders WHERE account_id = $1 ORDER BY created_at ASC",
		accountId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrderRows(rows)
}

func (db *PgMarketRepository) ListOrders() ([]Order, error) {
	rows, err := db.conn.Query(
		"SELECT id, order_number, account_id, status, total, created_at, updated_at " +
			"FROM orders ORDER BY created_at ASC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrderRows(rows)
}

func (db *PgMarketRepository) UpdateOrderStatus(orderNumber, status string) (Order, error) {
	row := db.conn.QueryRow(
		"UPDATE orders SET status = $2, updated_at = $3 WHERE order_number = $1 "+
			"RETURNING id, order_number, account_id, status, total, created_at, updated_at",
		orderNumber,
		status,
		time.Now().UTC(),
	)

	var o Order
	err := row.Scan(
		&o.Id,
		&o.OrderNumber,
		&o.AccountId,
		&o.Status,
		&o.Total,
		&o.CreatedAt,
		&o.UpdatedAt,
	)

	return o, err
}

func (db *PgMarketRepository) listOrderItems(orderId int) ([]OrderItem, error) {
	rows, err := db.conn.Query(
		"SELECT id, order_id, product_id, quantity, unit_price FROM order_items "+
			"WHERE order_id = $1 ORDER BY id ASC",
		orderId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var oi OrderItem
		if err := rows.Scan(&oi.Id, &oi.OrderId, &oi.ProductId, &oi.Quantity, &oi.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, oi)
	}

	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessageRow(row rowScanner) (Message, error) {
	var m Message
	err := row.Scan(
		&m.Id,
		&m.SenderId,
		&m.RecipientId,
		&m.Body,
		&m.Warning,
		&m.Important,
		&m.ReplyTo,
		&m.Status,
		&m.RoomId,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

func scanMessageRows(rows *sql.Rows) ([]Message, error) {
	var messages []Message
	for rows.Next() {
		m, err := scanMessageRow(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func scanProductRow(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(
		&p.Id,
		&p.Name,
		&p.Category,
		&p.Price,
		&p.QuantityInStock,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func scanOrderRows(rows *sql.Rows) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.Id,
			&o.OrderNumber,
			&o.AccountId,
			&o.Status,
			&o.Total,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
