package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/progresar/progresar-core/internal/domain"
	"github.com/progresar/progresar-core/internal/service"
	"github.com/progresar/progresar-core/pkg/response"
)

type LoanHandler struct {
	loans     *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(loans *service.LoanService) *LoanHandler {
	return &LoanHandler{
		loans:     loans,
		validator: validator.New(),
	}
}

// Calculate handles POST /loans/calculate
func (h *LoanHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var request domain.CalculateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	calculation, err := h.loans.Calculate(&request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, calculation)
}

// ListLoans handles GET /loans (admin)
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.loans.ListLoans(r.Context())
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loans)
}

// ListAccountLoans handles GET /accounts/{accountId}/loans
func (h *LoanHandler) ListAccountLoans(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountId")
	if err != nil {
		response.BadRequest(w, "invalid account id", err)
		return
	}

	loans, err := h.loans.ListAccountLoans(r.Context(), accountID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loans)
}

// RequestLoan handles POST /accounts/{accountId}/loans
func (h *LoanHandler) RequestLoan(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountId")
	if err != nil {
		response.BadRequest(w, "invalid account id", err)
		return
	}

	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	loan, err := h.loans.RequestLoan(r.Context(), accountID, &request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, loan)
}

// GetLoan handles GET /loans/{loanId}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	loan, err := h.loans.GetLoan(r.Context(), loanID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

// GetLoanStatus handles GET /loans/{loanId}/status
func (h *LoanHandler) GetLoanStatus(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	summary, err := h.loans.Status(r.Context(), loanID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, summary)
}

// PayInstallments handles POST /loans/{loanId}/payments
func (h *LoanHandler) PayInstallments(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	var request domain.PayInstallmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	result, err := h.loans.PayInstallments(r.Context(), loanID, request.Installments)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, result)
}
