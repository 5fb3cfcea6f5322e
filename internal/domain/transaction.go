package domain

import (
	"github.com/shopspring/decimal"

	apperrors "branch-ledger/internal/errors"
)

type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
)

// Label is the human readable name used on statements.
func (k TransactionKind) Label() string {
	switch k {
	case KindDeposit:
		return "Deposit"
	case KindWithdrawal:
		return "Withdrawal"
	default:
		return string(k)
	}
}

func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(s) {
	case KindDeposit, KindWithdrawal:
		return TransactionKind(s), nil
	}
	return "", apperrors.NewAppErrorf(apperrors.InvalidInput, "unknown transaction kind %q", s)
}

// Transaction is a deposit or withdrawal of Amount. The amount is not
// validated here; the target account decides whether it is acceptable.
type Transaction struct {
	Kind   TransactionKind `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
}

func Deposit(amount decimal.Decimal) Transaction {
	return Transaction{Kind: KindDeposit, Amount: amount}
}

func Withdrawal(amount decimal.Decimal) Transaction {
	return Transaction{Kind: KindWithdrawal, Amount: amount}
}

// Apply runs the transaction against the account without touching its
// history. Use Customer.ApplyTransaction to apply and record atomically.
func (t Transaction) Apply(a *Account) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return t.apply(a)
}

// apply expects a.mu to be held.
func (t Transaction) apply(a *Account) error {
	switch t.Kind {
	case KindDeposit:
		return a.deposit(t.Amount)
	case KindWithdrawal:
		return a.withdraw(t.Amount)
	default:
		return apperrors.NewAppErrorf(apperrors.InvalidInput, "unknown transaction kind %q", t.Kind)
	}
}
