package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"branch-ledger/internal/domain"
	"branch-ledger/internal/service"
)

type CustomerHandler struct {
	customerService *service.CustomerService
}

func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

type CreateCustomerRequest struct {
	TaxID     string `json:"tax_id"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	Address   string `json:"address"`
}

type CustomerResponse struct {
	TaxID     string  `json:"tax_id"`
	Name      string  `json:"name"`
	BirthDate string  `json:"birth_date"`
	Address   string  `json:"address"`
	Accounts  []int64 `json:"accounts"`
}

func newCustomerResponse(c *domain.Customer) CustomerResponse {
	accounts := c.Accounts()
	numbers := make([]int64, 0, len(accounts))
	for _, a := range accounts {
		numbers = append(numbers, a.Number())
	}
	return CustomerResponse{
		TaxID:     c.ID(),
		Name:      c.Name(),
		BirthDate: c.BirthDate().Format(domain.BirthDateLayout),
		Address:   c.Address(),
		Accounts:  numbers,
	}
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	customer, err := h.customerService.RegisterCustomer(r.Context(), service.RegisterCustomerRequest{
		TaxID:     req.TaxID,
		Name:      req.Name,
		BirthDate: req.BirthDate,
		Address:   req.Address,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newCustomerResponse(customer))
}

func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customerService.GetCustomer(r.Context(), mux.Vars(r)["tax_id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newCustomerResponse(customer))
}

func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers := h.customerService.ListCustomers(r.Context())
	response := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		response = append(response, newCustomerResponse(c))
	}

	writeJSON(w, http.StatusOK, response)
}
