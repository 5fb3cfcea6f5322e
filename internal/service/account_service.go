package service

import (
	"context"
	"log/slog"
	"strconv"

	"branch-ledger/internal/domain"
	apperrors "branch-ledger/internal/errors"
	"branch-ledger/internal/statement"
)

type AccountService struct {
	registry domain.Registry
	journal  domain.Journal
	policy   domain.CheckingPolicy
	opts     []domain.AccountOption
	logger   *slog.Logger
}

func NewAccountService(deps Deps, policy domain.CheckingPolicy, opts ...domain.AccountOption) *AccountService {
	deps = deps.withDefaults()
	return &AccountService{
		registry: deps.Registry,
		journal:  deps.Journal,
		policy:   policy,
		opts:     opts,
		logger:   deps.Logger,
	}
}

// OpenCheckingAccount opens a zero-balance checking account with the next
// account number and attaches it to the customer.
func (s *AccountService) OpenCheckingAccount(ctx context.Context, taxID string) (*domain.Account, error) {
	customer, err := s.registry.FindCustomerByID(taxID)
	if err != nil {
		s.logger.WarnContext(ctx, "Cannot open account for unknown customer", "tax_id", taxID)
		return nil, err
	}

	number := s.registry.NextAccountNumber()
	opts := append([]domain.AccountOption{domain.WithPolicy(s.policy)}, s.opts...)
	account := domain.OpenCheckingAccount(customer, number, opts...)

	if err := s.journal.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	if err := s.registry.RegisterAccount(account); err != nil {
		return nil, err
	}
	customer.AddAccount(account)

	s.logger.InfoContext(ctx, "Checking account opened",
		"tax_id", taxID,
		"account_number", number,
		"branch", account.Branch())
	return account, nil
}

// GetAccount looks an account up by its number as typed by a user.
func (s *AccountService) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	id, err := strconv.ParseInt(number, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperrors.NewAppErrorf(apperrors.InvalidInput, "invalid account number %q", number)
	}
	return s.registry.FindAccountByNumber(id)
}

// Statement returns the statement of the customer's first account.
func (s *AccountService) Statement(ctx context.Context, taxID string) (statement.Statement, error) {
	customer, err := s.registry.FindCustomerByID(taxID)
	if err != nil {
		return statement.Statement{}, err
	}
	account, err := customer.PrimaryAccount()
	if err != nil {
		return statement.Statement{}, err
	}
	return statement.Build(account), nil
}
