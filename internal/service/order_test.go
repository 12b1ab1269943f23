package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JJ-Sinklaire/desesperanza/internal/domain"
	apperrors "github.com/JJ-Sinklaire/desesperanza/pkg/errors"
)

// --- Mock Order Repository ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, customerID, id int64) (*domain.Order, error) {
	args := m.Called(ctx, customerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListItems(ctx context.Context, customerID, orderID int64) ([]domain.OrderItem, error) {
	args := m.Called(ctx, customerID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderItem), args.Error(1)
}

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:         12,
		CustomerID: 42,
		Status:     domain.OrderStatusDelivered,
		Total:      1160.00,
		OrderedAt:  time.Date(2025, 5, 10, 18, 30, 0, 0, time.UTC),
	}
}

func TestOrderService_ListMine(t *testing.T) {
	repo := new(mockOrderRepository)
	svc := NewOrderService(repo, 0.16, testLogger())

	repo.On("ListByCustomer", mock.Anything, int64(42)).
		Return([]domain.Order{*sampleOrder()}, nil)

	got, err := svc.ListMine(context.Background(), 42)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(12), got[0].ID)
}

func TestOrderService_Get(t *testing.T) {
	repo := new(mockOrderRepository)
	svc := NewOrderService(repo, 0.16, testLogger())

	repo.On("GetByID", mock.Anything, int64(42), int64(12)).Return(sampleOrder(), nil)
	repo.On("ListItems", mock.Anything, int64(42), int64(12)).
		Return([]domain.OrderItem{{Name: "Tanque 20L", UnitPrice: 580, Quantity: 2}}, nil)

	got, err := svc.Get(context.Background(), 42, 12)

	require.NoError(t, err)
	assert.Equal(t, int64(12), got.Order.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Tanque 20L", got.Items[0].Name)
}

func TestOrderService_Get_OtherCustomer(t *testing.T) {
	repo := new(mockOrderRepository)
	svc := NewOrderService(repo, 0.16, testLogger())

	repo.On("GetByID", mock.Anything, int64(999), int64(12)).
		Return(nil, apperrors.NotFound("pedido", 12))

	got, err := svc.Get(context.Background(), 999, 12)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "ListItems")
}

func TestOrderService_Ticket(t *testing.T) {
	repo := new(mockOrderRepository)
	svc := NewOrderService(repo, 0.16, testLogger())

	repo.On("GetByID", mock.Anything, int64(42), int64(12)).Return(sampleOrder(), nil)
	repo.On("ListItems", mock.Anything, int64(42), int64(12)).
		Return([]domain.OrderItem{{Name: "Tanque 20L", UnitPrice: 580, Quantity: 2}}, nil)

	ticket, err := svc.Ticket(context.Background(), 42, 12)

	require.NoError(t, err)
	assert.InDelta(t, 1000.00, ticket.Subtotal, 1e-9)
	assert.InDelta(t, 160.00, ticket.Tax, 1e-9)
	assert.InDelta(t, 1160.00, ticket.Total, 1e-9)
	require.Len(t, ticket.Items, 1)
}

func TestOrderService_Ticket_NotFound(t *testing.T) {
	repo := new(mockOrderRepository)
	svc := NewOrderService(repo, 0.16, testLogger())

	repo.On("GetByID", mock.Anything, int64(42), int64(99)).
		Return(nil, apperrors.NotFound("pedido", 99))

	ticket, err := svc.Ticket(context.Background(), 42, 99)

	assert.Nil(t, ticket)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
