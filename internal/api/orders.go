package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/amhamid/go-marketplace/internal/database"
	"github.com/amhamid/go-marketplace/internal/types"
)

type CreateProductRequest struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Price           float64 `json:"price"`
	QuantityInStock int     `json:"quantity_in_stock"`
	Description     string  `json:"description"`
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	ProductId int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (s *MarketApp) listProducts(w http.ResponseWriter, r *http.Request) {
	dbProducts, err := s.db.ListProducts()
	if err != nil {
		s.log.Println("list products:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	products := make([]types.Product, len(dbProducts))
	for i, p := range dbProducts {
		products[i] = toWireProduct(p)
	}

	s.writeJson(w, http.StatusOK, products)
}

func (s *MarketApp) createProduct(w http.ResponseWriter, r *http.Request) {
	identity, ok := Identity(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !identity.Role.Elevated() {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" || req.Price < 0 || req.QuantityInStock < 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbProduct, err := s.db.CreateProduct(database.CreateProductParams{
		Name:            req.Name,
		Category:        req.Category,
		Price:           req.Price,
		QuantityInStock: req.QuantityInStock,
		Description:     req.Description,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, toWireProduct(dbProduct))
}

func (s *MarketApp) createOrder(w http.ResponseWriter, r *http.Request) {
	identity, ok := Identity(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if len(req.Items) == 0 {
		errResp := NewValidationError("order must contain at least one item")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var total float64
	items := make([]database.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			errResp := NewValidationError("item quantity must be positive")
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		product, err := s.db.GetProductById(item.ProductId)
		if err != nil {
			var errResp *ApiError
			if errors.Is(err, sql.ErrNoRows) {
				errResp = NewValidationError(fmt.Sprintf("product %d does not exist", item.ProductId))
			} else {
				errResp = NewInternalServerError(err)
			}
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		if product.QuantityInStock < item.Quantity {
			errResp := NewValidationError(fmt.Sprintf("insufficient stock for product %d", item.ProductId))
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		total += product.Price * float64(item.Quantity)
		items = append(items, database.OrderItem{
			ProductId: item.ProductId,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
	}

	orderNumber, err := s.generateShortId()
	if err != nil {
		s.log.Print("generateShortId:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbOrder, err := s.db.CreateOrder(database.CreateOrderParams{
		OrderNumber: orderNumber,
		AccountId:   identity.Id,
		Status:      string(types.OrderPending),
		Total:       total,
		Items:       items,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	order := toWireOrder(dbOrder)

	// stock adjustments and fan-out are best effort, the order is already
	// committed
	for _, item := range items {
		updated, err := s.db.AdjustProductStock(item.ProductId, -item.Quantity)
		if err != nil {
			s.log.Printf("adjust stock for product %d: %v", item.ProductId, err)
			continue
		}
		s.relay.StockChanged(toWireProduct(updated))
	}

	s.relay.OrderCreated(order)

	s.writeJson(w, http.StatusCreated, order)
}

func (s *MarketApp) listOrders(w http.ResponseWriter, r *http.Request) {
	identity, ok := Identity(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var dbOrders []database.Order
	var err error
	if identity.Role.Elevated() {
		dbOrders, err = s.db.ListOrders()
	} else {
		dbOrders, err = s.db.ListOrdersForAccount(identity.Id)
	}
	if err != nil {
		s.log.Println("list orders:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	orders := make([]types.Order, len(dbOrders))
	for i, o := range dbOrders {
		orders[i] = toWireOrder(o)
	}

	s.writeJson(w, http.StatusOK, orders)
}

func (s *MarketApp) getOrder(w http.ResponseWriter, r *http.Request) {
	identity, ok := Identity(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	orderNumber := r.PathValue("orderNumber")
	if orderNumber == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbOrder, err := s.db.GetOrderByNumber(orderNumber)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// orders are visible to their owner and to operators
	if dbOrder.AccountId != identity.Id && !identity.Role.Elevated() {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, toWireOrder(dbOrder))
}

func (s *MarketApp) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := Identity(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !identity.Role.Elevated() {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	orderNumber := r.PathValue("orderNumber")
	if orderNumber == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !types.OrderStatus(req.Status).Valid() {
		errResp := NewValidationError(fmt.Sprintf("invalid order status %q", req.Status))
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbOrder, err := s.db.UpdateOrderStatus(orderNumber, req.Status)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	order := toWireOrder(dbOrder)
	s.relay.OrderStatusChanged(order, identity.Name)

	s.writeJson(w, http.StatusOK, order)
}

func toWireProduct(p database.Product) types.Product {
	return types.Product{
		Id:              p.Id,
		Name:            p.Name,
		Category:        p.Category,
		Price:           p.Price,
		QuantityInStock: p.QuantityInStock,
		Description:     p.Description,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toWireOrder(o database.Order) types.Order {
	order := types.Order{
		Id:          o.Id,
		OrderNumber: o.OrderNumber,
		AccountId:   o.AccountId,
		Status:      types.OrderStatus(o.Status),
		Total:       o.Total,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}

	for _, item := range o.Items {
		order.Items = append(order.Items, types.OrderItem{
			Id:        item.Id,
			ProductId: item.ProductId,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return order
}
