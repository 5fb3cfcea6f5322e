package repository

import (
	"context"
	"log/slog"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"branch-ledger/internal/domain"
	apperrors "branch-ledger/internal/errors"
)

type TransactionRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransactionRepository(db SQLExecutor, logger *slog.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// TransactionRow is a history entry with the account it belongs to.
type TransactionRow struct {
	AccountNumber int64
	Entry         domain.Entry
}

func (r *TransactionRepository) CreateTransaction(ctx context.Context, accountNumber int64, e domain.Entry) error {
	query := `
		INSERT INTO transactions (id, account_number, kind, amount, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		accountNumber,
		string(e.Kind),
		e.Amount.String(),
		e.RecordedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			r.logger.Warn("Duplicate transaction entry", "transaction_id", e.ID)
			return apperrors.NewAppError(apperrors.InternalError, "transaction already recorded").WithDetails(e.ID.String())
		}
		r.logger.Error("Failed to create transaction",
			"account_number", accountNumber,
			"kind", e.Kind,
			"amount", e.Amount,
			"error", err)
		return apperrors.NewAppError(apperrors.InternalError, "failed to create transaction").WithDetails(err.Error())
	}

	r.logger.Info("Transaction created successfully", "transaction_id", e.ID, "account_number", accountNumber)
	return nil
}

// ListTransactions returns every entry in insertion order.
func (r *TransactionRepository) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	query := `
		SELECT id, account_number, kind, amount, recorded_at
		FROM transactions ORDER BY seq
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list transactions", "error", err)
		return nil, apperrors.NewAppError(apperrors.InternalError, "failed to list transactions").WithDetails(err.Error())
	}
	defer rows.Close()

	var out []TransactionRow
	for rows.Next() {
		var (
			row       TransactionRow
			kind      string
			amountStr string
		)
		if err := rows.Scan(&row.Entry.ID, &row.AccountNumber, &kind, &amountStr, &row.Entry.RecordedAt); err != nil {
			return nil, apperrors.NewAppError(apperrors.InternalError, "failed to scan transaction").WithDetails(err.Error())
		}

		k, err := domain.ParseTransactionKind(kind)
		if err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.InternalError, "failed to parse amount").WithDetails(err.Error())
		}
		row.Entry.Kind = k
		row.Entry.Amount = amount
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(apperrors.InternalError, "failed to list transactions").WithDetails(err.Error())
	}
	return out, nil
}
