package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JJ-Sinklaire/desesperanza/internal/domain"
	apperrors "github.com/JJ-Sinklaire/desesperanza/pkg/errors"
)

// --- Mock Address Repository ---

type mockAddressRepository struct {
	mock.Mock
}

func (m *mockAddressRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Address, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *mockAddressRepository) GetByID(ctx context.Context, customerID, id int64) (*domain.Address, error) {
	args := m.Called(ctx, customerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *mockAddressRepository) Create(ctx context.Context, a *domain.Address) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAddressRepository) Update(ctx context.Context, customerID, id int64, patch *domain.AddressPatch) (*domain.Address, error) {
	args := m.Called(ctx, customerID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *mockAddressRepository) Delete(ctx context.Context, customerID, id int64) error {
	args := m.Called(ctx, customerID, id)
	return args.Error(0)
}

// --- Recording publisher ---

type recordingPublisher struct {
	created []int64
	updated []int64
	deleted []int64
}

func (r *recordingPublisher) AddressCreated(_ context.Context, a *domain.Address) {
	r.created = append(r.created, a.ID)
}

func (r *recordingPublisher) AddressUpdated(_ context.Context, a *domain.Address) {
	r.updated = append(r.updated, a.ID)
}

func (r *recordingPublisher) AddressDeleted(_ context.Context, _ int64, addressID int64) {
	r.deleted = append(r.deleted, addressID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func validCreateInput() *CreateAddressInput {
	return &CreateAddressInput{
		Alias:        "Casa",
		Street:       "Av. Juarez 123",
		Neighborhood: "Centro",
		PostalCode:   "06000",
		City:         "Ciudad de Mexico",
		State:        "CDMX",
		References:   "porton azul",
		Latitude:     ptr(19.4326),
		Longitude:    ptr(-99.1332),
	}
}

func TestAddressService_Create(t *testing.T) {
	repo := new(mockAddressRepository)
	pub := &recordingPublisher{}
	svc := NewAddressService(repo, pub, testLogger())

	repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Address) bool {
		return a.CustomerID == 42 && a.Alias == "Casa" && a.PostalCode == "06000"
	})).Run(func(args mock.Arguments) {
		a := args.Get(1).(*domain.Address)
		a.ID = 7
		a.CreatedAt = time.Now().UTC()
	}).Return(nil)

	got, err := svc.Create(context.Background(), 42, validCreateInput())

	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, []int64{7}, pub.created)
	repo.AssertExpectations(t)
}

func TestAddressService_Create_MissingFields(t *testing.T) {
	repo := new(mockAddressRepository)
	svc := NewAddressService(repo, &recordingPublisher{}, testLogger())

	input := validCreateInput()
	input.Alias = ""
	input.Street = "  "
	input.Latitude = nil

	got, err := svc.Create(context.Background(), 42, input)

	assert.Nil(t, got)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "alias")
	assert.Contains(t, appErr.Fields, "calle")
	assert.Contains(t, appErr.Fields, "latitud")
	repo.AssertNotCalled(t, "Create")
}

func TestAddressService_Create_InvalidPostalCode(t *testing.T) {
	tests := []struct {
		name string
		cp   string
	}{
		{"letters", "abc12"},
		{"too short", "1234"},
		{"too long", "123456"},
		{"mixed", "12a45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockAddressRepository)
			svc := NewAddressService(repo, &recordingPublisher{}, testLogger())

			input := validCreateInput()
			input.PostalCode = tt.cp

			got, err := svc.Create(context.Background(), 42, input)

			assert.Nil(t, got)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Contains(t, appErr.Fields, "codigo_postal")
			repo.AssertNotCalled(t, "Create")
		})
	}
}

func TestAddressService_Create_CoordinatesOutOfRange(t *testing.T) {
	repo := new(mockAddressRepository)
	svc := NewAddressService(repo, &recordingPublisher{}, testLogger())

	input := validCreateInput()
	input.Latitude = ptr(91.0)
	input.Longitude = ptr(-181.0)

	got, err := svc.Create(context.Background(), 42, input)

	assert.Nil(t, got)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "latitud")
	assert.Contains(t, appErr.Fields, "longitud")
}

func TestAddressService_Create_LimitPropagates(t *testing.T) {
	repo := new(mockAddressRepository)
	pub := &recordingPublisher{}
	svc := NewAddressService(repo, pub, testLogger())

	repo.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.LimitExceeded("direcciones", domain.MaxAddressesPerCustomer))

	got, err := svc.Create(context.Background(), 42, validCreateInput())

	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrLimitExceeded)
	assert.Empty(t, pub.created)
}

func TestAddressService_Update_Partial(t *testing.T) {
	repo := new(mockAddressRepository)
	pub := &recordingPublisher{}
	svc := NewAddressService(repo, pub, testLogger())

	updated := &domain.Address{ID: 5, CustomerID: 42, Alias: "Oficina", PostalCode: "06600"}
	repo.On("Update", mock.Anything, int64(42), int64(5), mock.MatchedBy(func(p *domain.AddressPatch) bool {
		return p.Alias != nil && *p.Alias == "Oficina" && p.Street == nil
	})).Return(updated, nil)

	got, err := svc.Update(context.Background(), 42, 5, &UpdateAddressInput{Alias: ptr("Oficina")})

	require.NoError(t, err)
	assert.Equal(t, "Oficina", got.Alias)
	assert.Equal(t, []int64{5}, pub.updated)
	repo.AssertExpectations(t)
}

func TestAddressService_Update_Empty(t *testing.T) {
	repo := new(mockAddressRepository)
	svc := NewAddressService(repo, &recordingPublisher{}, testLogger())

	got, err := svc.Update(context.Background(), 42, 5, &UpdateAddressInput{})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Update")
}

func TestAddressService_Update_InvalidPostalCode(t *testing.T) {
	repo := new(mockAddressRepository)
	svc := NewAddressService(repo, &recordingPublisher{}, testLogger())

	got, err := svc.Update(context.Background(), 42, 5, &UpdateAddressInput{PostalCode: ptr("abc12")})

	assert.Nil(t, got)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "codigo_postal")
	repo.AssertNotCalled(t, "Update")
}

func TestAddressService_Update_NotFoundPropagates(t *testing.T) {
	repo := new(mockAddressRepository)
	pub := &recordingPublisher{}
	svc := NewAddressService(repo, pub, testLogger())

	repo.On("Update", mock.Anything, int64(42), int64(99), mock.Anything).
		Return(nil, apperrors.NotFound("direccion", 99))

	got, err := svc.Update(context.Background(), 42, 99, &UpdateAddressInput{Alias: ptr("X")})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, pub.updated)
}

func TestAddressService_Delete(t *testing.T) {
	repo := new(mockAddressRepository)
	pub := &recordingPublisher{}
	svc := NewAddressService(repo, pub, testLogger())

	repo.On("Delete", mock.Anything, int64(42), int64(5)).Return(nil)

	err := svc.Delete(context.Background(), 42, 5)

	require.NoError(t, err)
	assert.Equal(t, []int64{5}, pub.deleted)
	repo.AssertExpectations(t)
}

func TestAddressService_Delete_ConflictPropagates(t *testing.T) {
	repo := new(mockAddressRepository)
	pub := &recordingPublisher{}
	svc := NewAddressService(repo, pub, testLogger())

	repo.On("Delete", mock.Anything, int64(42), int64(5)).
		Return(apperrors.Conflict("no se puede eliminar una direccion con pedidos activos"))

	err := svc.Delete(context.Background(), 42, 5)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Empty(t, pub.deleted)
}

func TestAddressService_List(t *testing.T) {
	repo := new(mockAddressRepository)
	svc := NewAddressService(repo, &recordingPublisher{}, testLogger())

	repo.On("ListByCustomer", mock.Anything, int64(42)).
		Return([]domain.Address{{ID: 2}, {ID: 1}}, nil)

	got, err := svc.List(context.Background(), 42)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAddressService_List_Error(t *testing.T) {
	repo := new(mockAddressRepository)
	svc := NewAddressService(repo, &recordingPublisher{}, testLogger())

	repo.On("ListByCustomer", mock.Anything, int64(42)).
		Return(nil, errors.New("connection refused"))

	got, err := svc.List(context.Background(), 42)

	assert.Nil(t, got)
	assert.Error(t, err)
}
