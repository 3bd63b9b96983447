package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/progresar/progresar-core/internal/domain"
	"github.com/progresar/progresar-core/internal/service"
	"github.com/progresar/progresar-core/pkg/response"
)

type TransactionHandler struct {
	accounts  *service.AccountService
	validator *validator.Validate
}

func NewTransactionHandler(accounts *service.AccountService) *TransactionHandler {
	return &TransactionHandler{
		accounts:  accounts,
		validator: validator.New(),
	}
}

// Deposit handles POST /transactions/deposit
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var request domain.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	transaction, err := h.accounts.Deposit(r.Context(), &request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, transaction)
}

// Withdraw handles POST /transactions/withdrawal
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var request domain.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	transaction, err := h.accounts.Withdraw(r.Context(), &request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, transaction)
}

// Transfer handles POST /transactions/transfer
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var request domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	transfer, err := h.accounts.Transfer(r.Context(), &request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, transfer)
}
