package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JJ-Sinklaire/desesperanza/internal/domain"
	"github.com/JJ-Sinklaire/desesperanza/internal/repository"
)

// OrderService implements read access to the customer's order history and
// the ticket breakdown.
type OrderService struct {
	repo    repository.OrderRepository
	taxRate float64
	logger  *slog.Logger
}

// NewOrderService creates an order service with the configured tax rate.
func NewOrderService(repo repository.OrderRepository, taxRate float64, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:    repo,
		taxRate: taxRate,
		logger:  logger,
	}
}

// OrderDetail is an order together with its line items.
type OrderDetail struct {
	Order domain.Order       `json:"pedido"`
	Items []domain.OrderItem `json:"detalles"`
}

// ListMine returns the customer's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, customerID int64) ([]domain.Order, error) {
	orders, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Get returns one order with its items. Orders of other customers are
// reported as not found.
func (s *OrderService) Get(ctx context.Context, customerID, orderID int64) (*OrderDetail, error) {
	order, err := s.repo.GetByID(ctx, customerID, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := s.repo.ListItems(ctx, customerID, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}

	return &OrderDetail{Order: *order, Items: items}, nil
}

// Ticket returns the printable receipt for an order. The tax breakdown is
// derived here from the configured rate; the stored total is authoritative.
func (s *OrderService) Ticket(ctx context.Context, customerID, orderID int64) (*domain.Ticket, error) {
	detail, err := s.Get(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}

	ticket := domain.NewTicket(detail.Order, detail.Items, s.taxRate)

	s.logger.DebugContext(ctx, "ticket generated",
		slog.Int64("order_id", orderID),
		slog.Float64("tax_rate", s.taxRate),
	)

	return &ticket, nil
}
