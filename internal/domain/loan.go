package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive    = "active"
	LoanStatusCompleted = "completed"
	LoanStatusCancelled = "cancelled"
)

const (
	InstallmentStatusPending = "pending"
	InstallmentStatusPaid    = "paid"
	InstallmentStatusOverdue = "overdue"
)

// Loan represents a fixed-rate installment loan disbursed into an account.
type Loan struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	AccountID            uuid.UUID       `json:"account_id" db:"account_id"`
	Principal            decimal.Decimal `json:"principal" db:"principal"`
	InstallmentCount     int             `json:"installment_count" db:"installment_count"`
	InstallmentAmount    decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	TotalAmount          decimal.Decimal `json:"total_amount" db:"total_amount"`
	TotalInterest        decimal.Decimal `json:"total_interest" db:"total_interest"`
	InstallmentsPaid     int             `json:"installments_paid" db:"installments_paid"`
	Description          string          `json:"description" db:"description"`
	ApprovalScore        int             `json:"approval_score" db:"approval_score"`
	PaymentCapacityRatio decimal.Decimal `json:"payment_capacity_ratio" db:"payment_capacity_ratio"`
	Status               string          `json:"status" db:"status"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	DueAt                time.Time       `json:"due_at" db:"due_at"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	Installments         []*Installment  `json:"installments,omitempty" db:"-"`
}

// Installment is one entry of a loan's repayment schedule.
type Installment struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	LoanID            uuid.UUID       `json:"loan_id" db:"loan_id"`
	InstallmentNumber int             `json:"installment_number" db:"installment_number"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	DueAt             time.Time       `json:"due_at" db:"due_at"`
	PaidAt            *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	Status            string          `json:"status" db:"status"`
}

// Payable reports whether the installment can still be paid. Overdue is a
// display state; for payment eligibility it counts as pending.
func (i *Installment) Payable() bool {
	return i.Status == InstallmentStatusPending || i.Status == InstallmentStatusOverdue
}

// DTOs for requests and responses

type CalculateLoanRequest struct {
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	Installments int             `json:"installments" validate:"required"`
}

type LoanCalculation struct {
	Principal         decimal.Decimal `json:"principal"`
	InstallmentCount  int             `json:"installment_count"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	TotalInterest     decimal.Decimal `json:"total_interest"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
}

type CreateLoanRequest struct {
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	Installments int             `json:"installments" validate:"required"`
	Description  string          `json:"description"`
}

type PayInstallmentsRequest struct {
	Installments int `json:"installments" validate:"required,gt=0"`
}

type PayInstallmentsResponse struct {
	Loan         *Loan          `json:"loan"`
	Paid         []*Installment `json:"paid"`
	Transactions []*Transaction `json:"transactions"`
}

type LoanStatusSummary struct {
	LoanID           uuid.UUID       `json:"loan_id"`
	PendingCount     int             `json:"pending_count"`
	OverdueCount     int             `json:"overdue_count"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	NextInstallment  *Installment    `json:"next_installment,omitempty"`
}
