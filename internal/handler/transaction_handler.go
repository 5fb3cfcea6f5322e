package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"branch-ledger/internal/service"
)

type TransactionHandler struct {
	transactionService *service.TransactionService
}

func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

type AmountRequest struct {
	Amount string `json:"amount"`
}

type TransactionResponse struct {
	TransactionID string `json:"transaction_id"`
	AccountNumber int64  `json:"account_number"`
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	Balance       string `json:"balance"`
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.transactionService.Deposit)
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.transactionService.Withdraw)
}

type transactionFunc func(ctx context.Context, taxID string, amount decimal.Decimal) (*service.TransactionResult, error)

func (h *TransactionHandler) handle(w http.ResponseWriter, r *http.Request, apply transactionFunc) {
	var req AmountRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	amount, err := service.ParseAmount(req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := apply(r.Context(), mux.Vars(r)["tax_id"], amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, TransactionResponse{
		TransactionID: result.Entry.ID.String(),
		AccountNumber: result.AccountNumber,
		Kind:          string(result.Entry.Kind),
		Amount:        result.Entry.Amount.StringFixed(2),
		Balance:       result.Balance.StringFixed(2),
	})
}
