package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/JJ-Sinklaire/desesperanza/internal/domain"
	"github.com/JJ-Sinklaire/desesperanza/pkg/database"
	apperrors "github.com/JJ-Sinklaire/desesperanza/pkg/errors"
)

// CustomerRepository implements repository.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	pool database.DBTX
}

// NewCustomerRepository creates a PostgreSQL-backed customer repository.
func NewCustomerRepository(pool database.DBTX) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create inserts a new customer account.
func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	query := `
		INSERT INTO clientes (nombre, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id_cliente, fecha_registro`

	err := r.pool.QueryRow(ctx, query, c.Name, c.Email, c.PasswordHash).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("cliente", "email", c.Email)
		}
		return fmt.Errorf("insert customer: %w", err)
	}

	return nil
}

// GetByEmail retrieves a customer by email.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `
		SELECT id_cliente, nombre, email, password_hash, fecha_registro
		FROM clientes
		WHERE email = $1`

	var c domain.Customer
	err := r.pool.QueryRow(ctx, query, email).
		Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("cliente", email)
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}

	return &c, nil
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	query := `
		SELECT id_cliente, nombre, email, password_hash, fecha_registro
		FROM clientes
		WHERE id_cliente = $1`

	var c domain.Customer
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("cliente", id)
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}

	return &c, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
