package statement

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Statement"

// WriteXLSX writes the statement as a single-sheet workbook: a header block,
// one row per entry and a closing balance row.
func WriteXLSX(w io.Writer, st Statement) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Branch", st.Branch},
		{"Account", st.AccountNumber},
		{"Holder", st.Holder},
		{},
		{"Date", "Kind", "Amount", "Transaction ID"},
	}
	for _, e := range st.Entries {
		amount, _ := e.Amount.Float64()
		rows = append(rows, []interface{}{e.RecordedAt.Format(DateLayout), e.Kind.Label(), amount, e.ID.String()})
	}
	balance, _ := st.Balance.Float64()
	rows = append(rows, []interface{}{}, []interface{}{"Balance", "", balance})

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "D", "D", 38); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
