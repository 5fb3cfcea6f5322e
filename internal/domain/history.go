package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is the projection of an applied transaction kept in an account history.
type Entry struct {
	ID         uuid.UUID       `json:"id"`
	Kind       TransactionKind `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// History is the append-only, chronological log of one account.
type History struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

func NewHistory(now func() time.Time) *History {
	if now == nil {
		now = time.Now
	}
	return &History{now: now}
}

// Record appends an entry stamped with the current time and returns it.
func (h *History) Record(kind TransactionKind, amount decimal.Decimal) Entry {
	e := Entry{
		ID:         uuid.New(),
		Kind:       kind,
		Amount:     amount,
		RecordedAt: h.now(),
	}

	h.mu.Lock()
	h.entries = append(h.entries, e)
	h.mu.Unlock()
	return e
}

// Entries returns a copy of the log in insertion order.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// CountKind counts entries of kind recorded at or after since. A zero since
// counts the whole log.
func (h *History) CountKind(kind TransactionKind, since time.Time) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, e := range h.entries {
		if e.Kind != kind {
			continue
		}
		if !since.IsZero() && e.RecordedAt.Before(since) {
			continue
		}
		n++
	}
	return n
}

// discard drops the entry of a transaction whose commit failed.
func (h *History) discard(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].ID == id {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return
		}
	}
}

func (h *History) restore(entries []Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:0], entries...)
}
