package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"branch-ledger/internal/domain"
	apperrors "branch-ledger/internal/errors"
)

type CustomerService struct {
	registry domain.Registry
	journal  domain.Journal
	logger   *slog.Logger
}

func NewCustomerService(deps Deps) *CustomerService {
	deps = deps.withDefaults()
	return &CustomerService{
		registry: deps.Registry,
		journal:  deps.Journal,
		logger:   deps.Logger,
	}
}

type RegisterCustomerRequest struct {
	TaxID     string
	Name      string
	BirthDate string
	Address   string
}

func (s *CustomerService) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*domain.Customer, error) {
	req.TaxID = strings.TrimSpace(req.TaxID)
	s.logger.InfoContext(ctx, "Registering customer", "tax_id", req.TaxID)

	if err := domain.ValidateTaxID(req.TaxID); err != nil {
		return nil, err
	}
	if _, err := s.registry.FindCustomerByID(req.TaxID); err == nil {
		s.logger.WarnContext(ctx, "Customer already registered", "tax_id", req.TaxID)
		return nil, apperrors.ErrDuplicateCustomer
	} else if !errors.Is(err, apperrors.ErrCustomerNotFound) {
		return nil, err
	}

	birthDate, err := domain.ParseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	customer, err := domain.NewCustomer(req.TaxID, req.Name, birthDate, req.Address)
	if err != nil {
		return nil, err
	}

	if err := s.journal.SaveCustomer(ctx, customer); err != nil {
		return nil, err
	}
	if err := s.registry.RegisterCustomer(customer); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Customer registered successfully", "tax_id", customer.ID())
	return customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, taxID string) (*domain.Customer, error) {
	return s.registry.FindCustomerByID(taxID)
}

// ListCustomers returns every customer in registration order.
func (s *CustomerService) ListCustomers(ctx context.Context) []*domain.Customer {
	return s.registry.Customers()
}
