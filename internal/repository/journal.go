package repository

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"branch-ledger/internal/domain"
)

// PostgresJournal writes customers, accounts and history entries to
// PostgreSQL and can rebuild a registry from them.
type PostgresJournal struct {
	store  *Store
	logger *slog.Logger
}

var _ domain.Journal = (*PostgresJournal)(nil)

func NewPostgresJournal(store *Store, logger *slog.Logger) *PostgresJournal {
	return &PostgresJournal{
		store:  store,
		logger: logger,
	}
}

func (j *PostgresJournal) SaveCustomer(ctx context.Context, c *domain.Customer) error {
	return j.store.Customer().CreateCustomer(ctx, c)
}

func (j *PostgresJournal) SaveAccount(ctx context.Context, a *domain.Account) error {
	return j.store.Account().CreateAccount(ctx, a)
}

func (j *PostgresJournal) SaveTransaction(ctx context.Context, a *domain.Account, e domain.Entry) error {
	delta := e.Amount
	if e.Kind == domain.KindWithdrawal {
		delta = delta.Neg()
	}

	return j.store.WithTransaction(ctx, func(tx *Store) error {
		if err := tx.Account().AdjustAccountBalance(ctx, a.Number(), delta); err != nil {
			return err
		}
		return tx.Transaction().CreateTransaction(ctx, a.Number(), e)
	})
}

// Restore loads every stored customer and account into reg. Stored policies
// win over the defaults in opts.
func (j *PostgresJournal) Restore(ctx context.Context, reg domain.Registry, opts ...domain.AccountOption) error {
	customers, err := j.store.Customer().ListCustomers(ctx)
	if err != nil {
		return err
	}
	for _, row := range customers {
		c, err := domain.NewCustomer(row.TaxID, row.Name, row.BirthDate, row.Address)
		if err != nil {
			return err
		}
		if err := reg.RegisterCustomer(c); err != nil {
			return err
		}
	}

	transactions, err := j.store.Transaction().ListTransactions(ctx)
	if err != nil {
		return err
	}
	entries := make(map[int64][]domain.Entry)
	for _, row := range transactions {
		entries[row.AccountNumber] = append(entries[row.AccountNumber], row.Entry)
	}

	accounts, err := j.store.Account().ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, row := range accounts {
		owner, err := reg.FindCustomerByID(row.CustomerTaxID)
		if err != nil {
			return err
		}

		state := domain.AccountState{
			Number:  row.Number,
			Kind:    row.Kind,
			Balance: row.Balance,
			Entries: entries[row.Number],
		}
		if row.Policy != nil {
			state.Policy = *row.Policy
		}
		if replayed := replayBalance(state.Entries); !replayed.Equal(row.Balance) {
			j.logger.Warn("Stored balance differs from replayed history",
				"account_number", row.Number,
				"stored_balance", row.Balance,
				"replayed_balance", replayed)
		}

		acc, err := domain.RestoreAccount(owner, state, opts...)
		if err != nil {
			return err
		}
		if err := reg.RegisterAccount(acc); err != nil {
			return err
		}
		owner.AddAccount(acc)
	}

	j.logger.Info("Ledger restored from journal",
		"customers", len(customers),
		"accounts", len(accounts),
		"transactions", len(transactions))
	return nil
}

func replayBalance(entries []domain.Entry) decimal.Decimal {
	balance := decimal.Zero
	for _, e := range entries {
		if e.Kind == domain.KindWithdrawal {
			balance = balance.Sub(e.Amount)
		} else {
			balance = balance.Add(e.Amount)
		}
	}
	return balance
}
