package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"branch-ledger/internal/domain"
	apperrors "branch-ledger/internal/errors"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type CustomerRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewCustomerRepository(db SQLExecutor, logger *slog.Logger) *CustomerRepository {
	return &CustomerRepository{
		db:     db,
		logger: logger,
	}
}

// CustomerRow is a customer as stored, without its accounts.
type CustomerRow struct {
	TaxID     string
	Name      string
	BirthDate time.Time
	Address   string
	Kind      string
}

func (r *CustomerRepository) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	query := `
		INSERT INTO customers (tax_id, name, birth_date, address, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID(),
		c.Name(),
		c.BirthDate(),
		c.Address(),
		string(c.Kind()),
		time.Now(),
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			r.logger.Warn("Duplicate customer registration attempt", "tax_id", c.ID())
			return apperrors.ErrDuplicateCustomer
		}
		r.logger.Error("Failed to create customer", "tax_id", c.ID(), "error", err)
		return apperrors.NewAppError(apperrors.InternalError, "failed to create customer").WithDetails(err.Error())
	}

	r.logger.Info("Customer created successfully", "tax_id", c.ID())
	return nil
}

func (r *CustomerRepository) ListCustomers(ctx context.Context) ([]CustomerRow, error) {
	query := `
		SELECT tax_id, name, birth_date, address, kind
		FROM customers ORDER BY created_at, tax_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list customers", "error", err)
		return nil, apperrors.NewAppError(apperrors.InternalError, "failed to list customers").WithDetails(err.Error())
	}
	defer rows.Close()

	var out []CustomerRow
	for rows.Next() {
		var row CustomerRow
		if err := rows.Scan(&row.TaxID, &row.Name, &row.BirthDate, &row.Address, &row.Kind); err != nil {
			return nil, apperrors.NewAppError(apperrors.InternalError, "failed to scan customer").WithDetails(err.Error())
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(apperrors.InternalError, "failed to list customers").WithDetails(err.Error())
	}
	return out, nil
}
