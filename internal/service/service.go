package service

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"branch-ledger/internal/domain"
	apperrors "branch-ledger/internal/errors"
	"branch-ledger/internal/events"
)

// Deps are the collaborators shared by the ledger services.
type Deps struct {
	Registry  domain.Registry
	Journal   domain.Journal
	Publisher events.Publisher
	Logger    *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Journal == nil {
		d.Journal = domain.NopJournal{}
	}
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// Services groups the ledger use cases.
type Services struct {
	Customers    *CustomerService
	Accounts     *AccountService
	Transactions *TransactionService
}

// New wires every service over the same dependencies. opts are applied to
// each newly opened checking account, after the policy.
func New(deps Deps, policy domain.CheckingPolicy, opts ...domain.AccountOption) *Services {
	deps = deps.withDefaults()
	return &Services{
		Customers:    NewCustomerService(deps),
		Accounts:     NewAccountService(deps, policy, opts...),
		Transactions: NewTransactionService(deps),
	}
}

// ParseAmount parses user supplied money. Only plain decimal numbers are
// accepted; the sign is left for the account rules to judge.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, apperrors.NewAppError(apperrors.InvalidInput, "amount must be a number").WithDetails(err.Error())
	}
	return amount, nil
}
