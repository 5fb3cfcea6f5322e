package repository

import (
	"log/slog"
	"sync"

	"branch-ledger/internal/domain"
	apperrors "branch-ledger/internal/errors"
)

// MemoryRegistry keeps customers and accounts for the lifetime of the process.
type MemoryRegistry struct {
	mu         sync.RWMutex
	customers  map[string]*domain.Customer
	order      []string
	accounts   map[int64]*domain.Account
	lastNumber int64
	logger     *slog.Logger
}

var _ domain.Registry = (*MemoryRegistry)(nil)

func NewMemoryRegistry(logger *slog.Logger) *MemoryRegistry {
	return &MemoryRegistry{
		customers: make(map[string]*domain.Customer),
		accounts:  make(map[int64]*domain.Account),
		logger:    logger,
	}
}

func (r *MemoryRegistry) FindCustomerByID(id string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, apperrors.ErrCustomerNotFound
	}
	return c, nil
}

func (r *MemoryRegistry) FindAccountByNumber(number int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[number]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return a, nil
}

func (r *MemoryRegistry) NextAccountNumber() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastNumber++
	return r.lastNumber
}

func (r *MemoryRegistry) RegisterCustomer(c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.customers[c.ID()]; exists {
		r.logger.Warn("Duplicate customer registration attempt", "tax_id", c.ID())
		return apperrors.ErrDuplicateCustomer
	}
	r.customers[c.ID()] = c
	r.order = append(r.order, c.ID())
	r.logger.Info("Customer registered", "tax_id", c.ID())
	return nil
}

// RegisterAccount stores the account and moves the number sequence past it,
// so restored accounts never collide with newly issued numbers.
func (r *MemoryRegistry) RegisterAccount(a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[a.Number()]; exists {
		r.logger.Warn("Duplicate account registration attempt", "account_number", a.Number())
		return apperrors.ErrDuplicateAccount
	}
	r.accounts[a.Number()] = a
	if a.Number() > r.lastNumber {
		r.lastNumber = a.Number()
	}
	r.logger.Info("Account registered", "account_number", a.Number(), "tax_id", a.Owner().ID())
	return nil
}

// Customers returns all customers in registration order.
func (r *MemoryRegistry) Customers() []*domain.Customer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Customer, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.customers[id])
	}
	return out
}
