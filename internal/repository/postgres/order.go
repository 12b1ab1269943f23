package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JJ-Sinklaire/desesperanza/internal/domain"
	"github.com/JJ-Sinklaire/desesperanza/pkg/database"
	apperrors "github.com/JJ-Sinklaire/desesperanza/pkg/errors"
)

const orderColumns = "id_pedido, id_cliente, estado, total, fecha_pedido, id_direccion"

// OrderRepository implements repository.OrderRepository using PostgreSQL.
// The order history is read-only in this service; orders are written by the
// checkout flow elsewhere.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func scanOrder(row pgx.Row, o *domain.Order) error {
	return row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.Status,
		&o.Total,
		&o.OrderedAt,
		&o.AddressID,
	)
}

// ListByCustomer returns the customer's orders, newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM pedidos
		WHERE id_cliente = $1
		ORDER BY fecha_pedido DESC, id_pedido DESC`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

// GetByID retrieves one order owned by the customer. Another customer's
// order is reported as not found.
func (r *OrderRepository) GetByID(ctx context.Context, customerID, id int64) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM pedidos
		WHERE id_pedido = $1 AND id_cliente = $2`

	var o domain.Order
	if err := scanOrder(r.pool.QueryRow(ctx, query, id, customerID), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("pedido", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	return &o, nil
}

// ListItems returns the line items of an order owned by the customer. The
// join keeps the ownership scoping in the query itself.
func (r *OrderRepository) ListItems(ctx context.Context, customerID, orderID int64) ([]domain.OrderItem, error) {
	query := `
		SELECT d.nombre, d.precio_unitario, d.cantidad
		FROM detalle_pedido d
		JOIN pedidos p ON p.id_pedido = d.id_pedido
		WHERE d.id_pedido = $1 AND p.id_cliente = $2
		ORDER BY d.id_detalle`

	rows, err := r.pool.Query(ctx, query, orderID, customerID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.Name, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}
