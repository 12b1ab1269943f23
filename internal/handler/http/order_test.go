package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JJ-Sinklaire/desesperanza/internal/domain"
	apperrors "github.com/JJ-Sinklaire/desesperanza/pkg/errors"
)

func deliveredOrder() *domain.Order {
	return &domain.Order{
		ID:         12,
		CustomerID: testCustomerID,
		Status:     domain.OrderStatusDelivered,
		Total:      1160.00,
		OrderedAt:  time.Date(2025, 5, 10, 18, 30, 0, 0, time.UTC),
	}
}

func TestListMyOrders(t *testing.T) {
	router, deps := setupRouter(t)

	deps.orders.On("ListByCustomer", mock.Anything, testCustomerID).
		Return([]domain.Order{*deliveredOrder()}, nil)

	rec := doRequest(t, router, deps, http.MethodGet, "/api/pedidos/mis-pedidos", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var orders []domain.Order
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, int64(12), orders[0].ID)
	assert.Equal(t, domain.OrderStatusDelivered, orders[0].Status)
}

func TestGetOrder(t *testing.T) {
	router, deps := setupRouter(t)

	deps.orders.On("GetByID", mock.Anything, testCustomerID, int64(12)).Return(deliveredOrder(), nil)
	deps.orders.On("ListItems", mock.Anything, testCustomerID, int64(12)).
		Return([]domain.OrderItem{{Name: "Tanque 20L", UnitPrice: 580, Quantity: 2}}, nil)

	rec := doRequest(t, router, deps, http.MethodGet, "/api/pedidos/12", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, string(env.Data), `"Tanque 20L"`)
}

func TestGetOrder_OtherCustomer(t *testing.T) {
	router, deps := setupRouter(t)

	deps.orders.On("GetByID", mock.Anything, testCustomerID, int64(12)).
		Return(nil, apperrors.NotFound("pedido", 12))

	rec := doRequest(t, router, deps, http.MethodGet, "/api/pedidos/12", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	deps.orders.AssertNotCalled(t, "ListItems")
}

func TestOrderTicket(t *testing.T) {
	router, deps := setupRouter(t)

	deps.orders.On("GetByID", mock.Anything, testCustomerID, int64(12)).Return(deliveredOrder(), nil)
	deps.orders.On("ListItems", mock.Anything, testCustomerID, int64(12)).
		Return([]domain.OrderItem{{Name: "Tanque 20L", UnitPrice: 580, Quantity: 2}}, nil)

	rec := doRequest(t, router, deps, http.MethodGet, "/api/pedidos/12/ticket", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)

	var ticket domain.Ticket
	require.NoError(t, json.Unmarshal(env.Data, &ticket))
	assert.InDelta(t, 1000.00, ticket.Subtotal, 1e-9)
	assert.InDelta(t, 160.00, ticket.Tax, 1e-9)
	assert.InDelta(t, 1160.00, ticket.Total, 1e-9)
}

func TestOrderTicket_NotFound(t *testing.T) {
	router, deps := setupRouter(t)

	deps.orders.On("GetByID", mock.Anything, testCustomerID, int64(99)).
		Return(nil, apperrors.NotFound("pedido", 99))

	rec := doRequest(t, router, deps, http.MethodGet, "/api/pedidos/99/ticket", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
