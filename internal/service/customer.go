package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/JJ-Sinklaire/desesperanza/internal/auth"
	"github.com/JJ-Sinklaire/desesperanza/internal/domain"
	"github.com/JJ-Sinklaire/desesperanza/internal/repository"
	apperrors "github.com/JJ-Sinklaire/desesperanza/pkg/errors"
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
)

// CustomerService implements customer registration and login.
type CustomerService struct {
	repo   repository.CustomerRepository
	tokens *auth.Manager
	logger *slog.Logger
}

// NewCustomerService creates a customer service.
func NewCustomerService(repo repository.CustomerRepository, tokens *auth.Manager, logger *slog.Logger) *CustomerService {
	return &CustomerService{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

// RegisterInput holds the parameters for creating an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput holds the login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Register creates a customer account and returns an authenticated session.
func (s *CustomerService) Register(ctx context.Context, input RegisterInput) (*domain.Session, error) {
	fields := map[string]string{}
	if strings.TrimSpace(input.Name) == "" {
		fields["nombre"] = "es requerido"
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		fields["email"] = "debe ser un correo valido"
	}
	if len(input.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("debe tener al menos %d caracteres", minPasswordLength)
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("datos de registro invalidos", fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	customer := &domain.Customer{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	token, err := s.tokens.Generate(customer.ID, customer.Email)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	s.logger.InfoContext(ctx, "customer registered",
		slog.Int64("customer_id", customer.ID),
		slog.String("email", customer.Email),
	)

	return &domain.Session{Token: token, Customer: *customer}, nil
}

// Login verifies credentials and returns an authenticated session. Wrong
// email and wrong password are indistinguishable to the caller.
func (s *CustomerService) Login(ctx context.Context, input LoginInput) (*domain.Session, error) {
	if input.Email == "" || input.Password == "" {
		return nil, apperrors.InvalidInput("email y password son requeridos")
	}

	customer, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return nil, apperrors.Unauthorized("credenciales invalidas")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.Unauthorized("credenciales invalidas")
	}

	token, err := s.tokens.Generate(customer.ID, customer.Email)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	s.logger.InfoContext(ctx, "customer logged in",
		slog.Int64("customer_id", customer.ID),
	)

	return &domain.Session{Token: token, Customer: *customer}, nil
}
