package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"branch-ledger/internal/domain"
	apperrors "branch-ledger/internal/errors"
	"branch-ledger/internal/service"
	"branch-ledger/internal/statement"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type AccountResponse struct {
	Number        int64  `json:"number"`
	Branch        string `json:"branch"`
	Kind          string `json:"kind"`
	CustomerTaxID string `json:"customer_tax_id"`
	Balance       string `json:"balance"`
}

func newAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		Number:        a.Number(),
		Branch:        a.Branch(),
		Kind:          string(a.Kind()),
		CustomerTaxID: a.Owner().ID(),
		Balance:       a.Balance().StringFixed(2),
	}
}

type EntryResponse struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
	RecordedAt string `json:"recorded_at"`
}

type StatementResponse struct {
	Branch        string          `json:"branch"`
	AccountNumber int64           `json:"account_number"`
	Holder        string          `json:"holder"`
	Entries       []EntryResponse `json:"entries"`
	Balance       string          `json:"balance"`
}

func (h *AccountHandler) OpenCheckingAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.OpenCheckingAccount(r.Context(), mux.Vars(r)["tax_id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAccountResponse(account))
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.GetAccount(r.Context(), mux.Vars(r)["number"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

// Statement renders JSON by default, plain text with ?format=text and a
// spreadsheet with ?format=xlsx.
func (h *AccountHandler) Statement(w http.ResponseWriter, r *http.Request) {
	st, err := h.accountService.Statement(r.Context(), mux.Vars(r)["tax_id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, newStatementResponse(st))
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		// Headers are already sent; a failed write means the client went away.
		_ = statement.WriteText(w, st)
	case "xlsx":
		// Rendered up front so a failure can still produce a JSON error.
		var buf bytes.Buffer
		if err := statement.WriteXLSX(&buf, st); err != nil {
			writeError(w, apperrors.ErrInternal.WithDetails(err.Error()))
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=\"statement-%s-%d.xlsx\"", st.Branch, st.AccountNumber))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	default:
		writeError(w, apperrors.NewAppErrorf(apperrors.InvalidInput, "unsupported statement format %q", format))
	}
}

func newStatementResponse(st statement.Statement) StatementResponse {
	entries := make([]EntryResponse, 0, len(st.Entries))
	for _, e := range st.Entries {
		entries = append(entries, EntryResponse{
			ID:         e.ID.String(),
			Kind:       string(e.Kind),
			Amount:     e.Amount.StringFixed(2),
			RecordedAt: e.RecordedAt.UTC().Format(time.RFC3339),
		})
	}
	return StatementResponse{
		Branch:        st.Branch,
		AccountNumber: st.AccountNumber,
		Holder:        st.Holder,
		Entries:       entries,
		Balance:       st.Balance.StringFixed(2),
	}
}
