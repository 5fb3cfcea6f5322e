package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"branch-ledger/internal/domain"
	apperrors "branch-ledger/internal/errors"
)

type AccountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) *AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

// AccountRow is an account as stored. Policy columns are NULL for basic
// accounts.
type AccountRow struct {
	Number        int64
	Branch        string
	CustomerTaxID string
	Kind          domain.AccountKind
	Balance       decimal.Decimal
	Policy        *domain.CheckingPolicy
}

func (r *AccountRepository) CreateAccount(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts
		(number, branch, customer_tax_id, kind, balance, withdrawal_limit, max_withdrawals, withdrawal_window, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var limit, maxWithdrawals, window interface{}
	if p, ok := a.Policy().(domain.CheckingPolicy); ok {
		limit = p.Limit.String()
		maxWithdrawals = p.MaxWithdrawals
		window = string(p.Window)
	}

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		a.Number(),
		a.Branch(),
		a.Owner().ID(),
		string(a.Kind()),
		a.Balance().String(),
		limit,
		maxWithdrawals,
		window,
		now,
		now,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			r.logger.Warn("Duplicate account creation attempt", "account_number", a.Number())
			return apperrors.ErrDuplicateAccount
		}
		r.logger.Error("Failed to create account", "account_number", a.Number(), "error", err)
		return apperrors.NewAppError(apperrors.InternalError, "failed to create account").WithDetails(err.Error())
	}

	r.logger.Info("Account created successfully", "account_number", a.Number())
	return nil
}

// AdjustAccountBalance adds delta to the stored balance. Applying deltas
// keeps the stored balance right when entries from concurrent requests are
// written out of order.
func (r *AccountRepository) AdjustAccountBalance(ctx context.Context, number int64, delta decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = $2
		WHERE number = $3
	`

	result, err := r.db.ExecContext(ctx, query, delta.String(), time.Now(), number)
	if err != nil {
		r.logger.Error("Failed to update account balance", "account_number", number, "error", err)
		return apperrors.NewAppError(apperrors.InternalError, "failed to update account balance").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewAppError(apperrors.InternalError, "failed to get rows affected").WithDetails(err.Error())
	}

	if rowsAffected == 0 {
		r.logger.Warn("No account found to update", "account_number", number)
		return apperrors.ErrAccountNotFound
	}

	r.logger.Info("Account balance updated", "account_number", number, "delta", delta)
	return nil
}

func (r *AccountRepository) ListAccounts(ctx context.Context) ([]AccountRow, error) {
	query := `
		SELECT number, branch, customer_tax_id, kind, balance, withdrawal_limit, max_withdrawals, withdrawal_window
		FROM accounts ORDER BY number
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list accounts", "error", err)
		return nil, apperrors.NewAppError(apperrors.InternalError, "failed to list accounts").WithDetails(err.Error())
	}
	defer rows.Close()

	var out []AccountRow
	for rows.Next() {
		row, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(apperrors.InternalError, "failed to list accounts").WithDetails(err.Error())
	}
	return out, nil
}

func (r *AccountRepository) scanAccount(rows *sql.Rows) (AccountRow, error) {
	var (
		row            AccountRow
		kind           string
		balanceStr     string
		limitStr       sql.NullString
		maxWithdrawals sql.NullInt64
		window         sql.NullString
	)

	err := rows.Scan(
		&row.Number,
		&row.Branch,
		&row.CustomerTaxID,
		&kind,
		&balanceStr,
		&limitStr,
		&maxWithdrawals,
		&window,
	)
	if err != nil {
		r.logger.Error("Failed to scan account", "error", err)
		return AccountRow{}, apperrors.NewAppError(apperrors.InternalError, "failed to scan account").WithDetails(err.Error())
	}
	row.Kind = domain.AccountKind(kind)

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		r.logger.Error("Failed to parse balance", "account_number", row.Number, "balance_str", balanceStr, "error", err)
		return AccountRow{}, apperrors.NewAppError(apperrors.InternalError, "failed to parse balance").WithDetails(err.Error())
	}
	row.Balance = balance

	if limitStr.Valid {
		limit, err := decimal.NewFromString(limitStr.String)
		if err != nil {
			return AccountRow{}, apperrors.NewAppError(apperrors.InternalError, "failed to parse withdrawal limit").WithDetails(err.Error())
		}
		w, err := domain.ParseWithdrawalWindow(window.String)
		if err != nil {
			return AccountRow{}, err
		}
		row.Policy = &domain.CheckingPolicy{
			Limit:          limit,
			MaxWithdrawals: int(maxWithdrawals.Int64),
			Window:         w,
		}
	}

	return row, nil
}
