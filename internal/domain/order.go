package domain

import (
	"math"
	"time"
)

// Order status values.
const (
	OrderStatusPending   = "pendiente"
	OrderStatusShipped   = "enviado"
	OrderStatusDelivered = "entregado"
	OrderStatusCanceled  = "cancelado"
)

// ActiveOrderStatuses are the statuses during which an order still depends
// on its delivery address. An address referenced by an order in one of these
// states cannot be deleted.
func ActiveOrderStatuses() []string {
	return []string{OrderStatusPending, OrderStatusShipped}
}

// Order is a customer's order as shown in the order history.
type Order struct {
	ID         int64     `json:"id_pedido"`
	CustomerID int64     `json:"id_cliente"`
	Status     string    `json:"estado"`
	Total      float64   `json:"total"`
	OrderedAt  time.Time `json:"fecha_pedido"`
	AddressID  *int64    `json:"id_direccion,omitempty"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	Name      string  `json:"nombre"`
	UnitPrice float64 `json:"precio_unitario"`
	Quantity  int     `json:"cantidad"`
}

// Ticket is the printable receipt for an order, with the tax breakdown
// computed server-side from the configured rate.
type Ticket struct {
	Order    Order       `json:"pedido"`
	Items    []OrderItem `json:"detalles"`
	Subtotal float64     `json:"subtotal"`
	Tax      float64     `json:"iva"`
	Total    float64     `json:"total"`
}

// NewTicket derives the receipt breakdown from a tax-inclusive total. The
// subtotal is total/(1+rate) rounded to cents and the tax is the remainder,
// so subtotal+tax always reproduces the total exactly.
func NewTicket(order Order, items []OrderItem, taxRate float64) Ticket {
	subtotal := roundCents(order.Total / (1 + taxRate))
	tax := roundCents(order.Total - subtotal)

	return Ticket{
		Order:    order,
		Items:    items,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    order.Total,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
