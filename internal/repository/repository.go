package repository

import (
	"context"

	"github.com/JJ-Sinklaire/desesperanza/internal/domain"
)

// AddressRepository defines persistence for customer delivery addresses.
// Every operation is scoped by customer ID; an address belonging to another
// customer behaves exactly like a missing one.
type AddressRepository interface {
	// ListByCustomer returns the customer's addresses, newest first.
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Address, error)

	// GetByID retrieves one address owned by the customer.
	GetByID(ctx context.Context, customerID, id int64) (*domain.Address, error)

	// Create inserts a new address, enforcing the per-customer cap inside
	// one transaction. Fills the generated ID and creation timestamp.
	Create(ctx context.Context, a *domain.Address) error

	// Update applies a partial update to an address owned by the customer
	// and returns the updated row.
	Update(ctx context.Context, customerID, id int64, patch *domain.AddressPatch) (*domain.Address, error)

	// Delete removes an address owned by the customer unless an active
	// order still references it.
	Delete(ctx context.Context, customerID, id int64) error
}

// OrderRepository defines read access to the customer's order history.
type OrderRepository interface {
	// ListByCustomer returns the customer's orders, newest first.
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)

	// GetByID retrieves one order owned by the customer.
	GetByID(ctx context.Context, customerID, id int64) (*domain.Order, error)

	// ListItems returns the line items of an order owned by the customer.
	ListItems(ctx context.Context, customerID, orderID int64) ([]domain.OrderItem, error)
}

// CustomerRepository defines persistence for customer accounts.
type CustomerRepository interface {
	// Create inserts a new customer and fills the generated ID.
	Create(ctx context.Context, c *domain.Customer) error

	// GetByEmail retrieves a customer by email for login.
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)

	// GetByID retrieves a customer by ID.
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
}
