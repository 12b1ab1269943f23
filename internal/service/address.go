package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/JJ-Sinklaire/desesperanza/internal/domain"
	"github.com/JJ-Sinklaire/desesperanza/internal/event"
	"github.com/JJ-Sinklaire/desesperanza/internal/repository"
	apperrors "github.com/JJ-Sinklaire/desesperanza/pkg/errors"
)

var postalCodeRe = regexp.MustCompile(`^\d{5}$`)

// AddressService implements the business rules for delivery addresses.
type AddressService struct {
	repo      repository.AddressRepository
	publisher event.Publisher
	logger    *slog.Logger
}

// NewAddressService creates an address service.
func NewAddressService(repo repository.AddressRepository, publisher event.Publisher, logger *slog.Logger) *AddressService {
	return &AddressService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateAddressInput holds the parameters for saving a new address.
type CreateAddressInput struct {
	Alias        string
	Street       string
	Neighborhood string
	PostalCode   string
	City         string
	State        string
	References   string
	Latitude     *float64
	Longitude    *float64
}

// UpdateAddressInput holds the fields of a partial update. Nil means "leave
// unchanged"; present fields are validated individually.
type UpdateAddressInput struct {
	Alias        *string
	Street       *string
	Neighborhood *string
	PostalCode   *string
	City         *string
	State        *string
	References   *string
	Latitude     *float64
	Longitude    *float64
}

// List returns the customer's saved addresses, newest first.
func (s *AddressService) List(ctx context.Context, customerID int64) ([]domain.Address, error) {
	addresses, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addresses, nil
}

// Get returns one address owned by the customer.
func (s *AddressService) Get(ctx context.Context, customerID, id int64) (*domain.Address, error) {
	a, err := s.repo.GetByID(ctx, customerID, id)
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	return a, nil
}

// Create validates and saves a new address for the customer.
func (s *AddressService) Create(ctx context.Context, customerID int64, input *CreateAddressInput) (*domain.Address, error) {
	fields := map[string]string{}

	requireField(fields, "alias", input.Alias)
	requireField(fields, "calle", input.Street)
	requireField(fields, "colonia", input.Neighborhood)
	requireField(fields, "codigo_postal", input.PostalCode)
	requireField(fields, "ciudad", input.City)
	requireField(fields, "estado", input.State)

	if input.PostalCode != "" && !postalCodeRe.MatchString(input.PostalCode) {
		fields["codigo_postal"] = "debe tener 5 digitos"
	}

	if input.Latitude == nil {
		fields["latitud"] = "es requerido"
	} else if *input.Latitude < -90 || *input.Latitude > 90 {
		fields["latitud"] = "fuera de rango"
	}
	if input.Longitude == nil {
		fields["longitud"] = "es requerido"
	} else if *input.Longitude < -180 || *input.Longitude > 180 {
		fields["longitud"] = "fuera de rango"
	}

	if len(fields) > 0 {
		return nil, apperrors.Validation("datos de direccion invalidos", fields)
	}

	a := &domain.Address{
		CustomerID:   customerID,
		Alias:        strings.TrimSpace(input.Alias),
		Street:       strings.TrimSpace(input.Street),
		Neighborhood: strings.TrimSpace(input.Neighborhood),
		PostalCode:   input.PostalCode,
		City:         strings.TrimSpace(input.City),
		State:        strings.TrimSpace(input.State),
		References:   strings.TrimSpace(input.References),
		Latitude:     *input.Latitude,
		Longitude:    *input.Longitude,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	s.publisher.AddressCreated(ctx, a)

	s.logger.InfoContext(ctx, "address created",
		slog.Int64("address_id", a.ID),
		slog.Int64("customer_id", customerID),
	)

	return a, nil
}

// Update applies a partial update to an address owned by the customer.
func (s *AddressService) Update(ctx context.Context, customerID, id int64, input *UpdateAddressInput) (*domain.Address, error) {
	fields := map[string]string{}

	checkPresent(fields, "alias", input.Alias)
	checkPresent(fields, "calle", input.Street)
	checkPresent(fields, "colonia", input.Neighborhood)
	checkPresent(fields, "ciudad", input.City)
	checkPresent(fields, "estado", input.State)

	if input.PostalCode != nil && !postalCodeRe.MatchString(*input.PostalCode) {
		fields["codigo_postal"] = "debe tener 5 digitos"
	}
	if input.Latitude != nil && (*input.Latitude < -90 || *input.Latitude > 90) {
		fields["latitud"] = "fuera de rango"
	}
	if input.Longitude != nil && (*input.Longitude < -180 || *input.Longitude > 180) {
		fields["longitud"] = "fuera de rango"
	}

	if len(fields) > 0 {
		return nil, apperrors.Validation("datos de direccion invalidos", fields)
	}

	patch := &domain.AddressPatch{
		Alias:        trimmed(input.Alias),
		Street:       trimmed(input.Street),
		Neighborhood: trimmed(input.Neighborhood),
		PostalCode:   input.PostalCode,
		City:         trimmed(input.City),
		State:        trimmed(input.State),
		References:   trimmed(input.References),
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
	}

	if patch.IsEmpty() {
		return nil, apperrors.InvalidInput("nada que actualizar")
	}

	a, err := s.repo.Update(ctx, customerID, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}

	s.publisher.AddressUpdated(ctx, a)

	s.logger.InfoContext(ctx, "address updated",
		slog.Int64("address_id", id),
		slog.Int64("customer_id", customerID),
	)

	return a, nil
}

// Delete removes an address owned by the customer unless an active order
// still references it.
func (s *AddressService) Delete(ctx context.Context, customerID, id int64) error {
	if err := s.repo.Delete(ctx, customerID, id); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}

	s.publisher.AddressDeleted(ctx, customerID, id)

	s.logger.InfoContext(ctx, "address deleted",
		slog.Int64("address_id", id),
		slog.Int64("customer_id", customerID),
	)

	return nil
}

func requireField(fields map[string]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		fields[name] = "es requerido"
	}
}

// checkPresent rejects a present-but-blank value on partial updates.
func checkPresent(fields map[string]string, name string, value *string) {
	if value != nil && strings.TrimSpace(*value) == "" {
		fields[name] = "no puede estar vacio"
	}
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
