package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "branch-ledger/internal/errors"
)

func TestTransaction_ApplyDoesNotRecord(t *testing.T) {
	acc := NewAccount(newTestCustomer(t), 1)

	require.NoError(t, Deposit(d("50")).Apply(acc))
	require.NoError(t, Withdrawal(d("20")).Apply(acc))

	assert.True(t, d("30").Equal(acc.Balance()))
	assert.Equal(t, 0, acc.History().Len())
}

func TestTransaction_UnknownKind(t *testing.T) {
	acc := NewAccount(newTestCustomer(t), 1)

	err := Transaction{Kind: "transfer", Amount: d("1")}.Apply(acc)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestParseTransactionKind(t *testing.T) {
	k, err := ParseTransactionKind("withdrawal")
	require.NoError(t, err)
	assert.Equal(t, KindWithdrawal, k)
	assert.Equal(t, "Withdrawal", k.Label())

	_, err = ParseTransactionKind("Saque")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestHistory_OrderAndCount(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	h := NewHistory(func() time.Time { return now })

	h.Record(KindDeposit, d("10"))
	now = now.Add(time.Hour)
	h.Record(KindWithdrawal, d("1"))
	now = now.Add(24 * time.Hour)
	h.Record(KindWithdrawal, d("2"))

	entries := h.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, KindDeposit, entries[0].Kind)
	assert.True(t, d("2").Equal(entries[2].Amount))
	assert.True(t, entries[1].RecordedAt.Before(entries[2].RecordedAt))

	assert.Equal(t, 2, h.CountKind(KindWithdrawal, time.Time{}))
	assert.Equal(t, 1, h.CountKind(KindWithdrawal, WindowDaily.Since(now)))
	assert.Equal(t, 1, h.CountKind(KindDeposit, time.Time{}))

	entries[0].Kind = KindWithdrawal
	assert.Equal(t, KindDeposit, h.Entries()[0].Kind, "Entries returns a copy")
}

func TestParseWithdrawalWindow(t *testing.T) {
	w, err := ParseWithdrawalWindow("daily")
	require.NoError(t, err)
	assert.Equal(t, WindowDaily, w)

	_, err = ParseWithdrawalWindow("weekly")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	assert.True(t, WindowAllTime.Since(time.Now()).IsZero())
}
