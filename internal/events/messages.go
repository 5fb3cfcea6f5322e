package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"branch-ledger/internal/domain"
)

// TransactionRecorded is published after a transaction was applied and
// recorded in an account history.
type TransactionRecorded struct {
	ID            uuid.UUID              `json:"id"`
	AccountNumber int64                  `json:"account_number"`
	Branch        string                 `json:"branch"`
	CustomerTaxID string                 `json:"customer_tax_id"`
	Kind          domain.TransactionKind `json:"kind"`
	Amount        decimal.Decimal        `json:"amount"`
	Balance       decimal.Decimal        `json:"balance"`
	RecordedAt    time.Time              `json:"recorded_at"`
}

func NewTransactionRecorded(a *domain.Account, e domain.Entry, balance decimal.Decimal) TransactionRecorded {
	return TransactionRecorded{
		ID:            e.ID,
		AccountNumber: a.Number(),
		Branch:        a.Branch(),
		CustomerTaxID: a.Owner().ID(),
		Kind:          e.Kind,
		Amount:        e.Amount,
		Balance:       balance,
		RecordedAt:    e.RecordedAt,
	}
}

func (m TransactionRecorded) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedFromJSON(data []byte) (TransactionRecorded, error) {
	var msg TransactionRecorded
	if err := json.Unmarshal(data, &msg); err != nil {
		return TransactionRecorded{}, err
	}
	return msg, nil
}
