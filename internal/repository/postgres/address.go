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

const addressColumns = "id_direccion, id_cliente, alias, calle, colonia, codigo_postal, ciudad, estado, referencias, latitud, longitud, fecha_creacion"

// AddressRepository implements repository.AddressRepository using PostgreSQL.
type AddressRepository struct {
	pool database.DBTX
}

// NewAddressRepository creates a PostgreSQL-backed address repository.
func NewAddressRepository(pool database.DBTX) *AddressRepository {
	return &AddressRepository{pool: pool}
}

func scanAddress(row pgx.Row, a *domain.Address) error {
	return row.Scan(
		&a.ID,
		&a.CustomerID,
		&a.Alias,
		&a.Street,
		&a.Neighborhood,
		&a.PostalCode,
		&a.City,
		&a.State,
		&a.References,
		&a.Latitude,
		&a.Longitude,
		&a.CreatedAt,
	)
}

// ListByCustomer returns the customer's addresses, newest first.
func (r *AddressRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Address, error) {
	query := `
		SELECT ` + addressColumns + `
		FROM direcciones
		WHERE id_cliente = $1
		ORDER BY fecha_creacion DESC, id_direccion DESC`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []domain.Address{}
	for rows.Next() {
		var a domain.Address
		if err := scanAddress(rows, &a); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addresses: %w", err)
	}

	return addresses, nil
}

// GetByID retrieves one address owned by the customer. An address belonging
// to another customer is reported as not found.
func (r *AddressRepository) GetByID(ctx context.Context, customerID, id int64) (*domain.Address, error) {
	query := `
		SELECT ` + addressColumns + `
		FROM direcciones
		WHERE id_direccion = $1 AND id_cliente = $2`

	var a domain.Address
	if err := scanAddress(r.pool.QueryRow(ctx, query, id, customerID), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("direccion", id)
		}
		return nil, fmt.Errorf("scan address: %w", err)
	}

	return &a, nil
}

// Create inserts a new address. The per-customer cap is checked and the row
// inserted within one transaction so two concurrent creates cannot both pass
// the count.
func (r *AddressRepository) Create(ctx context.Context, a *domain.Address) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	err = tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM direcciones WHERE id_cliente = $1", a.CustomerID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("count addresses: %w", err)
	}
	if count >= domain.MaxAddressesPerCustomer {
		return apperrors.LimitExceeded("direcciones", domain.MaxAddressesPerCustomer)
	}

	query := `
		INSERT INTO direcciones (id_cliente, alias, calle, colonia, codigo_postal, ciudad, estado, referencias, latitud, longitud)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id_direccion, fecha_creacion`

	err = tx.QueryRow(ctx, query,
		a.CustomerID,
		a.Alias,
		a.Street,
		a.Neighborhood,
		a.PostalCode,
		a.City,
		a.State,
		a.References,
		a.Latitude,
		a.Longitude,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Update applies a partial update. The SET clause is assembled only from the
// fixed column list below with positional parameters; nothing request-supplied
// is ever interpolated into the SQL text. The customer ID column is not
// updatable.
func (r *AddressRepository) Update(ctx context.Context, customerID, id int64, patch *domain.AddressPatch) (*domain.Address, error) {
	var (
		set  []string
		args []any
	)

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Alias != nil {
		add("alias", *patch.Alias)
	}
	if patch.Street != nil {
		add("calle", *patch.Street)
	}
	if patch.Neighborhood != nil {
		add("colonia", *patch.Neighborhood)
	}
	if patch.PostalCode != nil {
		add("codigo_postal", *patch.PostalCode)
	}
	if patch.City != nil {
		add("ciudad", *patch.City)
	}
	if patch.State != nil {
		add("estado", *patch.State)
	}
	if patch.References != nil {
		add("referencias", *patch.References)
	}
	if patch.Latitude != nil {
		add("latitud", *patch.Latitude)
	}
	if patch.Longitude != nil {
		add("longitud", *patch.Longitude)
	}

	if len(set) == 0 {
		return nil, apperrors.InvalidInput("nothing to update")
	}

	args = append(args, id, customerID)
	query := fmt.Sprintf(`
		UPDATE direcciones
		SET %s
		WHERE id_direccion = $%d AND id_cliente = $%d
		RETURNING %s`,
		strings.Join(set, ", "), len(args)-1, len(args), addressColumns)

	var a domain.Address
	if err := scanAddress(r.pool.QueryRow(ctx, query, args...), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("direccion", id)
		}
		return nil, fmt.Errorf("update address: %w", err)
	}

	return &a, nil
}

// Delete removes an address within one transaction: ownership is checked
// first so a foreign address yields 404 rather than leaking its existence
// through the order-conflict check, then active order references block the
// delete with a conflict.
func (r *AddressRepository) Delete(ctx context.Context, customerID, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var owned bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM direcciones WHERE id_direccion = $1 AND id_cliente = $2)",
		id, customerID,
	).Scan(&owned)
	if err != nil {
		return fmt.Errorf("check address ownership: %w", err)
	}
	if !owned {
		return apperrors.NotFound("direccion", id)
	}

	var referenced bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pedidos WHERE id_direccion = $1 AND estado = ANY($2))",
		id, domain.ActiveOrderStatuses(),
	).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("check active orders: %w", err)
	}
	if referenced {
		return apperrors.Conflict("no se puede eliminar una direccion con pedidos activos")
	}

	ct, err := tx.Exec(ctx,
		"DELETE FROM direcciones WHERE id_direccion = $1 AND id_cliente = $2",
		id, customerID,
	)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("direccion", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
