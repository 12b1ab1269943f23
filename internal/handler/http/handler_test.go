package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JJ-Sinklaire/desesperanza/internal/auth"
	"github.com/JJ-Sinklaire/desesperanza/internal/domain"
	"github.com/JJ-Sinklaire/desesperanza/internal/event"
	"github.com/JJ-Sinklaire/desesperanza/internal/geocode"
	"github.com/JJ-Sinklaire/desesperanza/internal/service"
	"github.com/JJ-Sinklaire/desesperanza/pkg/health"
	"github.com/JJ-Sinklaire/desesperanza/pkg/middleware"
)

const testCustomerID int64 = 42

// ============================================================================
// Mock Repositories
// ============================================================================

type mockAddressRepo struct {
	mock.Mock
}

func (m *mockAddressRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Address, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *mockAddressRepo) GetByID(ctx context.Context, customerID, id int64) (*domain.Address, error) {
	args := m.Called(ctx, customerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *mockAddressRepo) Create(ctx context.Context, a *domain.Address) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAddressRepo) Update(ctx context.Context, customerID, id int64, patch *domain.AddressPatch) (*domain.Address, error) {
	args := m.Called(ctx, customerID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *mockAddressRepo) Delete(ctx context.Context, customerID, id int64) error {
	args := m.Called(ctx, customerID, id)
	return args.Error(0)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, customerID, id int64) (*domain.Order, error) {
	args := m.Called(ctx, customerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) ListItems(ctx context.Context, customerID, orderID int64) ([]domain.OrderItem, error) {
	args := m.Called(ctx, customerID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderItem), args.Error(1)
}

type mockCustomerRepo struct {
	mock.Mock
}

func (m *mockCustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

// stubGeocoder returns canned results without touching the network.
type stubGeocoder struct {
	result *geocode.Result
	err    error
}

func (s *stubGeocoder) Reverse(context.Context, float64, float64) (*geocode.Result, error) {
	return s.result, s.err
}

func (s *stubGeocoder) Search(context.Context, string) (*geocode.Result, error) {
	return s.result, s.err
}

// ============================================================================
// Test Fixtures
// ============================================================================

type testDeps struct {
	addresses *mockAddressRepo
	orders    *mockOrderRepo
	customers *mockCustomerRepo
	geocoder  *stubGeocoder
	tokens    *auth.Manager
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupRouter builds the full route tree backed by mocks, with the real auth
// middleware in front of the protected routes.
func setupRouter(t *testing.T) (http.Handler, *testDeps) {
	t.Helper()

	logger := testLogger()
	deps := &testDeps{
		addresses: new(mockAddressRepo),
		orders:    new(mockOrderRepo),
		customers: new(mockCustomerRepo),
		geocoder:  &stubGeocoder{},
		tokens:    auth.NewManager("handler-test-secret", time.Hour),
	}

	router := NewRouter(RouterDeps{
		Addresses: service.NewAddressService(deps.addresses, event.NopPublisher{}, logger),
		Orders:    service.NewOrderService(deps.orders, 0.16, logger),
		Customers: service.NewCustomerService(deps.customers, deps.tokens, logger),
		Geocoder:  deps.geocoder,
		Tokens:    deps.tokens,
		Health:    health.NewHandler(),
		CORS:      middleware.DefaultCORSConfig(),
		Logger:    logger,
	})

	return router, deps
}

// doRequest performs an authenticated request against the router.
func doRequest(t *testing.T, router http.Handler, deps *testDeps, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	token, err := deps.tokens.Generate(testCustomerID, "maria@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors the response wrapper for assertions.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}
