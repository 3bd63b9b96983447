package handler

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/progresar/progresar-core/internal/service"
	"github.com/progresar/progresar-core/pkg/response"
)

type AccountHandler struct {
	accounts  *service.AccountService
	validator *validator.Validate
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		validator: validator.New(),
	}
}

// GetAccount handles GET /accounts/{accountId}
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountId")
	if err != nil {
		response.BadRequest(w, "invalid account id", err)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, account)
}

// ListUserAccounts handles GET /users/{userId}/accounts
func (h *AccountHandler) ListUserAccounts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userId")
	if err != nil {
		response.BadRequest(w, "invalid user id", err)
		return
	}

	accounts, err := h.accounts.ListUserAccounts(r.Context(), userID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, accounts)
}

// GetTransactions handles GET /accounts/{accountId}/transactions?page=&limit=
func (h *AccountHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountId")
	if err != nil {
		response.BadRequest(w, "invalid account id", err)
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	transactionPage, err := h.accounts.GetTransactions(r.Context(), accountID, page, limit)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, transactionPage)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
