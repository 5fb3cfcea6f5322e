package domain

import (
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "branch-ledger/internal/errors"
)

// BirthDateLayout is the dd-mm-yyyy format accepted at registration.
const BirthDateLayout = "02-01-2006"

type CustomerKind string

const CustomerIndividual CustomerKind = "individual"

// Customer owns references to its accounts; account lifetime is managed by
// the registry.
type Customer struct {
	mu        sync.RWMutex
	taxID     string
	name      string
	birthDate time.Time
	address   string
	kind      CustomerKind
	accounts  []*Account
}

// NewCustomer returns an individual customer. The tax ID must be digits only.
func NewCustomer(taxID, name string, birthDate time.Time, address string) (*Customer, error) {
	taxID = strings.TrimSpace(taxID)
	if err := ValidateTaxID(taxID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewAppError(apperrors.InvalidInput, "name is required")
	}

	return &Customer{
		taxID:     taxID,
		name:      name,
		birthDate: birthDate,
		address:   strings.TrimSpace(address),
		kind:      CustomerIndividual,
	}, nil
}

func ValidateTaxID(taxID string) error {
	if taxID == "" {
		return apperrors.NewAppError(apperrors.InvalidInput, "tax ID is required")
	}
	for _, r := range taxID {
		if r < '0' || r > '9' {
			return apperrors.NewAppErrorf(apperrors.InvalidInput, "tax ID %q must contain digits only", taxID)
		}
	}
	return nil
}

// ParseBirthDate parses a dd-mm-yyyy date and rejects anything else,
// including out-of-range days such as 31-02-2000.
func ParseBirthDate(s string) (time.Time, error) {
	t, err := time.Parse(BirthDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperrors.NewAppError(apperrors.InvalidInput, "birth date must use the dd-mm-yyyy format").
			WithDetails(err.Error())
	}
	return t, nil
}

func (c *Customer) ID() string           { return c.taxID }
func (c *Customer) Name() string         { return c.name }
func (c *Customer) BirthDate() time.Time { return c.birthDate }
func (c *Customer) Address() string      { return c.address }
func (c *Customer) Kind() CustomerKind   { return c.kind }

// Accounts returns the owned accounts in the order they were added.
func (c *Customer) Accounts() []*Account {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Account, len(c.accounts))
	copy(out, c.accounts)
	return out
}

func (c *Customer) AddAccount(a *Account) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts = append(c.accounts, a)
}

// PrimaryAccount returns the first account added to the customer.
func (c *Customer) PrimaryAccount() (*Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.accounts) == 0 {
		return nil, apperrors.ErrNoAccount
	}
	return c.accounts[0], nil
}

// CommitFunc persists an applied entry while the account is still locked.
// balance is the account balance after the entry.
type CommitFunc func(e Entry, balance decimal.Decimal) error

// ApplyTransaction applies tx to the account and, on success, records it in
// the account history. Both steps happen under the account lock so
// concurrent callers observe the withdrawal cap exactly.
func (c *Customer) ApplyTransaction(a *Account, tx Transaction) (Entry, error) {
	e, _, err := c.ApplyAndCommit(a, tx, nil)
	return e, err
}

// ApplyAndCommit is ApplyTransaction followed by commit, with the account
// locked throughout. If commit fails the balance and history are restored and
// the commit error is returned. The returned balance is the one the entry
// produced.
func (c *Customer) ApplyAndCommit(a *Account, tx Transaction, commit CommitFunc) (Entry, decimal.Decimal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.balance
	if err := tx.apply(a); err != nil {
		return Entry{}, decimal.Zero, err
	}
	e := a.history.Record(tx.Kind, tx.Amount)

	if commit != nil {
		if err := commit(e, a.balance); err != nil {
			a.balance = prev
			a.history.discard(e.ID)
			return Entry{}, decimal.Zero, err
		}
	}
	return e, a.balance, nil
}
