package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"branch-ledger/internal/domain"
	apperrors "branch-ledger/internal/errors"
	"branch-ledger/internal/events"
)

type TransactionService struct {
	registry  domain.Registry
	journal   domain.Journal
	publisher events.Publisher
	logger    *slog.Logger
}

func NewTransactionService(deps Deps) *TransactionService {
	deps = deps.withDefaults()
	return &TransactionService{
		registry:  deps.Registry,
		journal:   deps.Journal,
		publisher: deps.Publisher,
		logger:    deps.Logger,
	}
}

type TransactionResult struct {
	AccountNumber int64
	Entry         domain.Entry
	Balance       decimal.Decimal
}

func (s *TransactionService) Deposit(ctx context.Context, taxID string, amount decimal.Decimal) (*TransactionResult, error) {
	return s.apply(ctx, taxID, domain.Deposit(amount))
}

func (s *TransactionService) Withdraw(ctx context.Context, taxID string, amount decimal.Decimal) (*TransactionResult, error) {
	return s.apply(ctx, taxID, domain.Withdrawal(amount))
}

// apply runs tx against the customer's first account. The journal write
// happens while the account is locked, so the journal sees transactions in
// history order; if it fails the account is left as it was.
func (s *TransactionService) apply(ctx context.Context, taxID string, tx domain.Transaction) (*TransactionResult, error) {
	s.logger.InfoContext(ctx, "Processing transaction",
		"tax_id", taxID,
		"kind", tx.Kind,
		"amount", tx.Amount)

	customer, err := s.registry.FindCustomerByID(taxID)
	if err != nil {
		return nil, err
	}
	account, err := customer.PrimaryAccount()
	if err != nil {
		return nil, err
	}

	entry, balance, err := customer.ApplyAndCommit(account, tx, func(e domain.Entry, _ decimal.Decimal) error {
		if err := s.journal.SaveTransaction(ctx, account, e); err != nil {
			s.logger.ErrorContext(ctx, "Failed to journal transaction, rolled back",
				"account_number", account.Number(),
				"transaction_id", e.ID,
				"error", err)
			return apperrors.NewAppError(apperrors.InternalError, "transaction could not be journaled").
				WithDetails(err.Error())
		}
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Transaction rejected",
			"account_number", account.Number(),
			"kind", tx.Kind,
			"amount", tx.Amount,
			"error", err)
		return nil, err
	}

	msg := events.NewTransactionRecorded(account, entry, balance)
	if err := s.publisher.PublishTransaction(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish transaction event",
			"transaction_id", entry.ID,
			"error", err)
	}

	s.logger.InfoContext(ctx, "Transaction completed successfully",
		"transaction_id", entry.ID,
		"account_number", account.Number(),
		"balance", balance)
	return &TransactionResult{
		AccountNumber: account.Number(),
		Entry:         entry,
		Balance:       balance,
	}, nil
}
