package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amhamid/go-marketplace/internal/database"
	"github.com/amhamid/go-marketplace/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestListProductsHandler(t *testing.T) {
	dbProducts := []database.Product{
		{Id: 1, Name: "widget", Category: "tools", Price: 9.99, QuantityInStock: 5},
		{Id: 2, Name: "gadget", Category: "tools", Price: 19.99, QuantityInStock: 0},
	}

	mockRepo := &database.MockMarketRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("ListProducts").Return(dbProducts, nil).Once()

	app := newTestApp(t, mockRepo)

	req := identified(httptest.NewRequest(http.MethodGet, "/api/products", nil),
		types.UserSummary{Id: 1, Role: types.RoleClient})
	rr := httptest.NewRecorder()
	app.listProducts(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var products []types.Product
	err := json.NewDecoder(rr.Body).Decode(&products)
	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, "widget", products[0].Name)
}

func TestCreateProductHandler(t *testing.T) {
	tcases := []struct {
		name         string
		caller       types.UserSummary
		body         CreateProductRequest
		setupMocks   func(m *database.MockMarketRepository)
		expectedCode int
	}{
		{
			name:   "admin creates a product",
			caller: types.UserSummary{Id: 1, Name: "admin", Role: types.RoleAdmin},
			body:   CreateProductRequest{Name: "widget", Category: "tools", Price: 9.99, QuantityInStock: 5},
			setupMocks: func(m *database.MockMarketRepository) {
				m.On("CreateProduct", database.CreateProductParams{
					Name:            "widget",
					Category:        "tools",
					Price:           9.99,
					QuantityInStock: 5,
				}).Return(database.Product{Id: 1, Name: "widget", Category: "tools", Price: 9.99, QuantityInStock: 5}, nil).Once()
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "client is refused",
			caller:       types.UserSummary{Id: 2, Name: "client", Role: types.RoleClient},
			body:         CreateProductRequest{Name: "widget", Price: 9.99},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "missing name",
			caller:       types.UserSummary{Id: 1, Name: "admin", Role: types.RoleAdmin},
			body:         CreateProductRequest{Price: 9.99},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "negative price",
			caller:       types.UserSummary{Id: 1, Name: "admin", Role: types.RoleAdmin},
			body:         CreateProductRequest{Name: "widget", Price: -1},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockMarketRepository{}
			defer mockRepo.AssertExpectations(t)

			if tc.setupMocks != nil {
				tc.setupMocks(mockRepo)
			}

			app := newTestApp(t, mockRepo)

			body, err := json.Marshal(tc.body)
			assert.NoError(t, err)
			req := identified(httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBuffer(body)), tc.caller)

			rr := httptest.NewRecorder()
			app.createProduct(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}

func TestCreateOrderHandler(t *testing.T) {
	caller := types.UserSummary{Id: 4, Name: "buyer", Role: types.RoleClient}

	product := database.Product{Id: 1, Name: "widget", Price: 10.0, QuantityInStock: 5}

	t.Run("creates an order and adjusts stock", func(t *testing.T) {
		mockRepo := &database.MockMarketRepository{}
		defer mockRepo.AssertExpectations(t)

		mockRepo.On("GetProductById", product.Id).Return(product, nil).Once()
		mockRepo.On("CreateOrder", mock.MatchedBy(func(params database.CreateOrderParams) bool {
			return params.AccountId == caller.Id &&
				params.Status == string(types.OrderPending) &&
				params.Total == 30.0 &&
				len(params.Items) == 1 &&
				params.OrderNumber != ""
		})).Return(database.Order{
			Id:          1,
			OrderNumber: "EoGKUXPHgz",
			AccountId:   caller.Id,
			Status:      string(types.OrderPending),
			Total:       30.0,
			Items:       []database.OrderItem{{Id: 1, OrderId: 1, ProductId: product.Id, Quantity: 3, UnitPrice: 10.0}},
		}, nil).Once()
		mockRepo.On("AdjustProductStock", product.Id, -3).
			Return(database.Product{Id: 1, Name: "widget", Price: 10.0, QuantityInStock: 2}, nil).Once()

		app := newTestApp(t, mockRepo)

		body, err := json.Marshal(CreateOrderRequest{
			Items: []OrderItemRequest{{ProductId: product.Id, Quantity: 3}},
		})
		assert.NoError(t, err)
		req := identified(httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBuffer(body)), caller)

		rr := httptest.NewRecorder()
		app.createOrder(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var order types.Order
		err = json.NewDecoder(rr.Body).Decode(&order)
		assert.NoError(t, err)
		assert.Equal(t, "EoGKUXPHgz", order.OrderNumber)
		assert.Equal(t, types.OrderPending, order.Status)
		assert.Equal(t, 30.0, order.Total)
		assert.Len(t, order.Items, 1)
	})

	t.Run("rejects insufficient stock", func(t *testing.T) {
		mockRepo := &database.MockMarketRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetProductById", product.Id).Return(product, nil).Once()

		app := newTestApp(t, mockRepo)

		body, err := json.Marshal(CreateOrderRequest{
			Items: []OrderItemRequest{{ProductId: product.Id, Quantity: 6}},
		})
		assert.NoError(t, err)
		req := identified(httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBuffer(body)), caller)

		rr := httptest.NewRecorder()
		app.createOrder(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects an unknown product", func(t *testing.T) {
		mockRepo := &database.MockMarketRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetProductById", 99).Return(database.Product{}, sql.ErrNoRows).Once()

		app := newTestApp(t, mockRepo)

		body, err := json.Marshal(CreateOrderRequest{
			Items: []OrderItemRequest{{ProductId: 99, Quantity: 1}},
		})
		assert.NoError(t, err)
		req := identified(httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBuffer(body)), caller)

		rr := httptest.NewRecorder()
		app.createOrder(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects an empty order", func(t *testing.T) {
		app := newTestApp(t, &database.MockMarketRepository{})

		body, err := json.Marshal(CreateOrderRequest{})
		assert.NoError(t, err)
		req := identified(httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBuffer(body)), caller)

		rr := httptest.NewRecorder()
		app.createOrder(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects a non-positive quantity", func(t *testing.T) {
		app := newTestApp(t, &database.MockMarketRepository{})

		body, err := json.Marshal(CreateOrderRequest{
			Items: []OrderItemRequest{{ProductId: product.Id, Quantity: 0}},
		})
		assert.NoError(t, err)
		req := identified(httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBuffer(body)), caller)

		rr := httptest.NewRecorder()
		app.createOrder(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListOrdersHandler(t *testing.T) {
	t.Run("clients see only their own orders", func(t *testing.T) {
		mockRepo := &database.MockMarketRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("ListOrdersForAccount", 4).
			Return([]database.Order{{Id: 1, OrderNumber: "abc", AccountId: 4}}, nil).Once()

		app := newTestApp(t, mockRepo)

		req := identified(httptest.NewRequest(http.MethodGet, "/api/orders", nil),
			types.UserSummary{Id: 4, Role: types.RoleClient})
		rr := httptest.NewRecorder()
		app.listOrders(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var orders []types.Order
		err := json.NewDecoder(rr.Body).Decode(&orders)
		assert.NoError(t, err)
		assert.Len(t, orders, 1)
		assert.Equal(t, 4, orders[0].AccountId)
	})

	t.Run("moderators see all orders", func(t *testing.T) {
		mockRepo := &database.MockMarketRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("ListOrders").
			Return([]database.Order{
				{Id: 1, OrderNumber: "abc", AccountId: 4},
				{Id: 2, OrderNumber: "def", AccountId: 5},
			}, nil).Once()

		app := newTestApp(t, mockRepo)

		req := identified(httptest.NewRequest(http.MethodGet, "/api/orders", nil),
			types.UserSummary{Id: 1, Role: types.RoleModerator})
		rr := httptest.NewRecorder()
		app.listOrders(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var orders []types.Order
		err := json.NewDecoder(rr.Body).Decode(&orders)
		assert.NoError(t, err)
		assert.Len(t, orders, 2)
	})
}

func TestGetOrderHandler(t *testing.T) {
	dbOrder := database.Order{
		Id:          1,
		OrderNumber: "abc",
		AccountId:   4,
		Status:      string(types.OrderPending),
		Total:       30.0,
	}

	tcases := []struct {
		name         string
		caller       types.UserSummary
		setupMocks   func(m *database.MockMarketRepository)
		expectedCode int
	}{
		{
			name:   "owner reads the order",
			caller: types.UserSummary{Id: 4, Role: types.RoleClient},
			setupMocks: func(m *database.MockMarketRepository) {
				m.On("GetOrderByNumber", "abc").Return(dbOrder, nil).Once()
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "moderator reads any order",
			caller: types.UserSummary{Id: 1, Role: types.RoleModerator},
			setupMocks: func(m *database.MockMarketRepository) {
				m.On("GetOrderByNumber", "abc").Return(dbOrder, nil).Once()
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "other clients are refused",
			caller: types.UserSummary{Id: 5, Role: types.RoleClient},
			setupMocks: func(m *database.MockMarketRepository) {
				m.On("GetOrderByNumber", "abc").Return(dbOrder, nil).Once()
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name:   "unknown order",
			caller: types.UserSummary{Id: 4, Role: types.RoleClient},
			setupMocks: func(m *database.MockMarketRepository) {
				m.On("GetOrderByNumber", "abc").Return(database.Order{}, sql.ErrNoRows).Once()
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockMarketRepository{}
			defer mockRepo.AssertExpectations(t)

			if tc.setupMocks != nil {
				tc.setupMocks(mockRepo)
			}

			app := newTestApp(t, mockRepo)

			req := identified(httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil), tc.caller)
			req.SetPathValue("orderNumber", "abc")

			rr := httptest.NewRecorder()
			app.getOrder(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)

			if tc.expectedCode == http.StatusOK {
				var order types.Order
				err := json.NewDecoder(rr.Body).Decode(&order)
				assert.NoError(t, err)
				assert.Equal(t, dbOrder.OrderNumber, order.OrderNumber)
			}
		})
	}
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	admin := types.UserSummary{Id: 1, Name: "admin", Role: types.RoleAdmin}

	tcases := []struct {
		name         string
		caller       types.UserSummary
		orderNumber  string
		body         UpdateOrderStatusRequest
		setupMocks   func(m *database.MockMarketRepository)
		expectedCode int
	}{
		{
			name:        "admin updates the status",
			caller:      admin,
			orderNumber: "abc",
			body:        UpdateOrderStatusRequest{Status: string(types.OrderShipped)},
			setupMocks: func(m *database.MockMarketRepository) {
				m.On("UpdateOrderStatus", "abc", string(types.OrderShipped)).
					Return(database.Order{Id: 1, OrderNumber: "abc", AccountId: 4, Status: string(types.OrderShipped)}, nil).Once()
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "client is refused",
			caller:       types.UserSummary{Id: 4, Name: "buyer", Role: types.RoleClient},
			orderNumber:  "abc",
			body:         UpdateOrderStatusRequest{Status: string(types.OrderShipped)},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "invalid status",
			caller:       admin,
			orderNumber:  "abc",
			body:         UpdateOrderStatusRequest{Status: "lost"},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:        "unknown order",
			caller:      admin,
			orderNumber: "missing",
			body:        UpdateOrderStatusRequest{Status: string(types.OrderShipped)},
			setupMocks: func(m *database.MockMarketRepository) {
				m.On("UpdateOrderStatus", "missing", string(types.OrderShipped)).
					Return(database.Order{}, sql.ErrNoRows).Once()
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockMarketRepository{}
			defer mockRepo.AssertExpectations(t)

			if tc.setupMocks != nil {
				tc.setupMocks(mockRepo)
			}

			app := newTestApp(t, mockRepo)

			body, err := json.Marshal(tc.body)
			assert.NoError(t, err)
			req := identified(httptest.NewRequest(http.MethodPatch, "/api/orders/"+tc.orderNumber, bytes.NewBuffer(body)), tc.caller)
			req.SetPathValue("orderNumber", tc.orderNumber)

			rr := httptest.NewRecorder()
			app.updateOrderStatus(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)

			if tc.expectedCode == http.StatusOK {
				var order types.Order
				err := json.NewDecoder(rr.Body).Decode(&order)
				assert.NoError(t, err)
				assert.Equal(t, types.OrderShipped, order.Status)
			}
		})
	}
}
