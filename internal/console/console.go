// Package console runs the interactive teller menu over plain text streams.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "branch-ledger/internal/errors"
	"branch-ledger/internal/service"
	"branch-ledger/internal/statement"
)

const menu = `
================ MENU ================
[1] Withdraw
[2] Deposit
[3] Statement
[4] New customer
[5] New checking account
[6] Quit
=> `

type Console struct {
	services *service.Services
	in       *bufio.Scanner
	out      io.Writer
}

func New(services *service.Services, in io.Reader, out io.Writer) *Console {
	return &Console{
		services: services,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run shows the menu until the user quits or the input ends.
func (c *Console) Run(ctx context.Context) error {
	for {
		fmt.Fprint(c.out, menu)
		option, ok := c.readLine()
		if !ok {
			return c.in.Err()
		}

		switch option {
		case "1":
			c.withdraw(ctx)
		case "2":
			c.deposit(ctx)
		case "3":
			c.showStatement(ctx)
		case "4":
			c.createCustomer(ctx)
		case "5":
			c.createAccount(ctx)
		case "6":
			c.notice("Thank you for banking with us. Goodbye!")
			return nil
		default:
			c.notice("--- Invalid option, please choose again. ---")
		}
	}
}

func (c *Console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) prompt(label string) string {
	fmt.Fprint(c.out, label)
	line, _ := c.readLine()
	return line
}

func (c *Console) notice(msg string) {
	fmt.Fprintf(c.out, "\n%s\n", msg)
}

func (c *Console) failure(err error) {
	c.notice("--- " + describe(err) + " ---")
}

func (c *Console) withdraw(ctx context.Context) {
	c.transact(ctx, "withdrawal", c.services.Transactions.Withdraw)
}

func (c *Console) deposit(ctx context.Context) {
	c.transact(ctx, "deposit", c.services.Transactions.Deposit)
}

type transactionFunc func(ctx context.Context, taxID string, amount decimal.Decimal) (*service.TransactionResult, error)

func (c *Console) transact(ctx context.Context, label string, apply transactionFunc) {
	taxID := c.prompt("Customer tax ID (digits only): ")
	if _, err := c.services.Customers.GetCustomer(ctx, taxID); err != nil {
		c.failure(err)
		return
	}

	amount, err := service.ParseAmount(c.prompt(fmt.Sprintf("Amount of the %s: ", label)))
	if err != nil {
		c.notice("--- Invalid amount! Use digits only. ---")
		return
	}

	result, err := apply(ctx, taxID, amount)
	if err != nil {
		c.notice(fmt.Sprintf("--- %s failed: %s ---", capitalize(label), describe(err)))
		return
	}
	c.notice(fmt.Sprintf("--- %s of %s completed successfully! ---",
		capitalize(label), statement.Money(result.Entry.Amount)))
}

func (c *Console) showStatement(ctx context.Context) {
	taxID := c.prompt("Customer tax ID (digits only): ")
	st, err := c.services.Accounts.Statement(ctx, taxID)
	if err != nil {
		c.failure(err)
		return
	}
	fmt.Fprintln(c.out)
	_ = statement.WriteText(c.out, st)
}

func (c *Console) createCustomer(ctx context.Context) {
	taxID := c.prompt("Tax ID (digits only): ")
	if _, err := c.services.Customers.GetCustomer(ctx, taxID); err == nil {
		c.notice("--- A customer with this tax ID already exists! ---")
		return
	}

	req := service.RegisterCustomerRequest{
		TaxID:     taxID,
		Name:      c.prompt("Full name: "),
		BirthDate: c.prompt("Birth date (dd-mm-yyyy): "),
		Address:   c.prompt("Address (street, number - district - city/state): "),
	}
	if _, err := c.services.Customers.RegisterCustomer(ctx, req); err != nil {
		c.notice("--- " + describe(err) + " Registration cancelled. ---")
		return
	}
	c.notice("--- Customer created successfully! ---")
}

func (c *Console) createAccount(ctx context.Context) {
	taxID := c.prompt("Holder tax ID (digits only): ")
	account, err := c.services.Accounts.OpenCheckingAccount(ctx, taxID)
	if err != nil {
		c.failure(err)
		return
	}
	c.notice("--- Account created successfully! ---")
	fmt.Fprintf(c.out, "Branch:\t%s\nAccount:\t%d\nHolder:\t%s\n",
		account.Branch(), account.Number(), account.Owner().Name())
}

// describe turns a service error into the sentence shown to the user.
func describe(err error) string {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return "Unexpected error."
	}
	switch appErr.Code {
	case apperrors.CustomerNotFound:
		return "Customer not found!"
	case apperrors.NoAccount:
		return "Customer has no account!"
	case apperrors.InvalidAmount:
		return "The amount is invalid."
	case apperrors.InsufficientFunds:
		return "Insufficient balance."
	default:
		if appErr.Message == "" {
			return string(appErr.Code) + "."
		}
		return capitalize(appErr.Message) + "."
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
