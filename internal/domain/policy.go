package domain

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "branch-ledger/internal/errors"
)

// WithdrawalPolicy is consulted before the base balance rules on every
// withdrawal. It must not mutate the history.
type WithdrawalPolicy interface {
	Allow(amount decimal.Decimal, history *History, now time.Time) error
}

// WithdrawalWindow selects which history entries count toward the
// withdrawal cap.
type WithdrawalWindow string

const (
	WindowAllTime WithdrawalWindow = "all-time"
	WindowDaily   WithdrawalWindow = "daily"
)

func ParseWithdrawalWindow(s string) (WithdrawalWindow, error) {
	switch WithdrawalWindow(s) {
	case WindowAllTime, WindowDaily:
		return WithdrawalWindow(s), nil
	}
	return "", apperrors.NewAppErrorf(apperrors.InvalidInput, "unknown withdrawal window %q", s)
}

// Since returns the earliest timestamp that counts, or the zero time when the
// whole history counts.
func (w WithdrawalWindow) Since(now time.Time) time.Time {
	if w == WindowDaily {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}
	return time.Time{}
}

const (
	DefaultWithdrawalLimit = 500
	DefaultMaxWithdrawals  = 3
)

// CheckingPolicy caps a single withdrawal at Limit and the number of
// withdrawals inside Window at MaxWithdrawals.
type CheckingPolicy struct {
	Limit          decimal.Decimal  `json:"withdrawal_limit"`
	MaxWithdrawals int              `json:"max_withdrawals"`
	Window         WithdrawalWindow `json:"window"`
}

func DefaultCheckingPolicy() CheckingPolicy {
	return CheckingPolicy{
		Limit:          decimal.NewFromInt(DefaultWithdrawalLimit),
		MaxWithdrawals: DefaultMaxWithdrawals,
		Window:         WindowAllTime,
	}
}

func (p CheckingPolicy) Allow(amount decimal.Decimal, history *History, now time.Time) error {
	if amount.GreaterThan(p.Limit) {
		return apperrors.NewAppErrorf(apperrors.LimitExceeded,
			"withdrawal of R$ %s exceeds the limit of R$ %s", amount.StringFixed(2), p.Limit.StringFixed(2))
	}

	if history.CountKind(KindWithdrawal, p.Window.Since(now)) >= p.MaxWithdrawals {
		return apperrors.NewAppErrorf(apperrors.MaxWithdrawalsExceeded,
			"maximum of %d withdrawals exceeded", p.MaxWithdrawals)
	}

	return nil
}
