package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "branch-ledger/internal/errors"
)

// Branch is the code shared by every account of this ledger.
const Branch = "0001"

type AccountKind string

const (
	AccountBasic    AccountKind = "basic"
	AccountChecking AccountKind = "checking"
)

// Account holds a non-negative balance and its history. All methods are safe
// for concurrent use.
type Account struct {
	mu      sync.Mutex
	number  int64
	kind    AccountKind
	balance decimal.Decimal
	owner   *Customer
	history *History
	policy  WithdrawalPolicy
	now     func() time.Time
}

type AccountOption func(*Account)

// WithClock sets the time source used for history timestamps and policy
// windows.
func WithClock(now func() time.Time) AccountOption {
	return func(a *Account) {
		a.now = now
	}
}

// WithPolicy replaces the withdrawal policy of the account.
func WithPolicy(p WithdrawalPolicy) AccountOption {
	return func(a *Account) {
		a.policy = p
	}
}

// NewAccount returns a basic account with zero balance and no withdrawal policy.
func NewAccount(owner *Customer, number int64, opts ...AccountOption) *Account {
	return newAccount(owner, number, AccountBasic, nil, opts)
}

// OpenCheckingAccount returns a zero-balance checking account using
// DefaultCheckingPolicy unless WithPolicy overrides it. The account is not
// added to the owner; callers do that once the registry accepted it.
func OpenCheckingAccount(owner *Customer, number int64, opts ...AccountOption) *Account {
	return newAccount(owner, number, AccountChecking, DefaultCheckingPolicy(), opts)
}

func newAccount(owner *Customer, number int64, kind AccountKind, policy WithdrawalPolicy, opts []AccountOption) *Account {
	a := &Account{
		number:  number,
		kind:    kind,
		balance: decimal.Zero,
		owner:   owner,
		policy:  policy,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.history = NewHistory(a.now)
	return a
}

func (a *Account) Number() int64     { return a.number }
func (a *Account) Branch() string    { return Branch }
func (a *Account) Kind() AccountKind { return a.kind }
func (a *Account) Owner() *Customer  { return a.owner }
func (a *Account) History() *History { return a.history }

func (a *Account) Policy() WithdrawalPolicy {
	return a.policy
}

func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

func (a *Account) Deposit(amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deposit(amount)
}

func (a *Account) Withdraw(amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.withdraw(amount)
}

// validAmount reports whether amount is a positive number of whole cents.
func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Truncate(2))
}

func (a *Account) deposit(amount decimal.Decimal) error {
	if !validAmount(amount) {
		return apperrors.ErrInvalidAmount
	}
	a.balance = a.balance.Add(amount)
	return nil
}

// withdraw runs the policy first so a checking account reports limit
// violations before balance problems.
func (a *Account) withdraw(amount decimal.Decimal) error {
	if a.policy != nil {
		if err := a.policy.Allow(amount, a.history, a.now()); err != nil {
			return err
		}
	}

	if !validAmount(amount) {
		return apperrors.ErrInvalidAmount
	}
	if amount.GreaterThan(a.balance) {
		return apperrors.ErrInsufficientFunds
	}
	a.balance = a.balance.Sub(amount)
	return nil
}

// AccountState is a point-in-time copy of an account, used to persist and
// rebuild it.
type AccountState struct {
	Number  int64
	Kind    AccountKind
	Balance decimal.Decimal
	Policy  WithdrawalPolicy
	Entries []Entry
}

func (a *Account) State() AccountState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AccountState{
		Number:  a.number,
		Kind:    a.kind,
		Balance: a.balance,
		Policy:  a.policy,
		Entries: a.history.Entries(),
	}
}

// RestoreAccount rebuilds an account from a previously saved state.
func RestoreAccount(owner *Customer, state AccountState, opts ...AccountOption) (*Account, error) {
	if state.Balance.IsNegative() {
		return nil, apperrors.NewAppErrorf(apperrors.InvalidAmount,
			"account %d has a negative balance %s", state.Number, state.Balance.StringFixed(2))
	}
	if state.Kind != AccountBasic && state.Kind != AccountChecking {
		return nil, apperrors.NewAppErrorf(apperrors.InvalidInput, "unknown account kind %q", state.Kind)
	}

	a := newAccount(owner, state.Number, state.Kind, state.Policy, opts)
	a.balance = state.Balance
	a.history.restore(state.Entries)
	return a, nil
}
