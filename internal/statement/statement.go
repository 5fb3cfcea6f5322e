// Package statement builds and renders account statements.
package statement

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"branch-ledger/internal/domain"
)

// DateLayout is the day-first layout used on statements.
const DateLayout = "02-01-2006"

type Statement struct {
	Branch        string          `json:"branch"`
	AccountNumber int64           `json:"account_number"`
	Holder        string          `json:"holder"`
	HolderTaxID   string          `json:"holder_tax_id"`
	Entries       []domain.Entry  `json:"entries"`
	Balance       decimal.Decimal `json:"balance"`
}

// Build takes a consistent snapshot of the account balance and history.
func Build(a *domain.Account) Statement {
	state := a.State()
	return Statement{
		Branch:        a.Branch(),
		AccountNumber: state.Number,
		Holder:        a.Owner().Name(),
		HolderTaxID:   a.Owner().ID(),
		Entries:       state.Entries,
		Balance:       state.Balance,
	}
}

func Money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

// WriteText renders the statement the way the teller console prints it.
func WriteText(w io.Writer, st Statement) error {
	var b strings.Builder
	b.WriteString("\n================ STATEMENT ================\n")
	fmt.Fprintf(&b, "Branch:\t\t%s\nAccount:\t%d\nHolder:\t\t%s\n\n", st.Branch, st.AccountNumber, st.Holder)

	if len(st.Entries) == 0 {
		b.WriteString("No transactions recorded.\n")
	}
	for _, e := range st.Entries {
		fmt.Fprintf(&b, "%s | %s:\t\t%s\n", e.RecordedAt.Format(DateLayout), e.Kind.Label(), Money(e.Amount))
	}

	fmt.Fprintf(&b, "\nBalance:\t%s\n", Money(st.Balance))
	b.WriteString("===========================================\n")

	_, err := io.WriteString(w, b.String())
	return err
}
