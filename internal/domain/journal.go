package domain

import "context"

// Journal mirrors ledger changes to an external store after the in-memory
// model accepted them.
type Journal interface {
	SaveCustomer(ctx context.Context, c *Customer) error
	SaveAccount(ctx context.Context, a *Account) error
	// SaveTransaction stores the entry and applies its amount to the stored
	// balance of the account.
	SaveTransaction(ctx context.Context, a *Account, e Entry) error
}

// NopJournal discards everything; it is used when the ledger runs in memory only.
type NopJournal struct{}

func (NopJournal) SaveCustomer(context.Context, *Customer) error          { return nil }
func (NopJournal) SaveAccount(context.Context, *Account) error            { return nil }
func (NopJournal) SaveTransaction(context.Context, *Account, Entry) error { return nil }
