package domain

// Registry stores every customer and account of the ledger.
type Registry interface {
	FindCustomerByID(id string) (*Customer, error)
	FindAccountByNumber(number int64) (*Account, error)
	// NextAccountNumber returns 1 on first use and increases by one on each call.
	NextAccountNumber() int64
	RegisterCustomer(c *Customer) error
	RegisterAccount(a *Account) error
	Customers() []*Customer
}
