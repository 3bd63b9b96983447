package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
	AccountStatusBlocked  = "blocked"
)

const (
	AccountKindSavings  = "savings"
	AccountKindChecking = "checking"
)

// Account represents a deposit account. Balance is only ever mutated through
// recorded Transactions.
type Account struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	AccountNumber string          `json:"account_number" db:"account_number"`
	Kind          string          `json:"kind" db:"kind"`
	Balance       decimal.Decimal `json:"balance" db:"balance"`
	Currency      string          `json:"currency" db:"currency"`
	Status        string          `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// IsOperational reports whether the account accepts balance-mutating operations.
func (a *Account) IsOperational() bool {
	return a.Status == AccountStatusActive
}

// DTOs for requests and responses

type DepositRequest struct {
	AccountID   uuid.UUID       `json:"account_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description"`
}

type WithdrawalRequest struct {
	AccountID   uuid.UUID       `json:"account_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description"`
}

type TransferRequest struct {
	SourceAccountID          uuid.UUID       `json:"source_account_id" validate:"required"`
	DestinationAccountNumber string          `json:"destination_account_number" validate:"required"`
	Amount                   decimal.Decimal `json:"amount" validate:"required"`
	Description              string          `json:"description"`
}

type TransferResponse struct {
	Outgoing *Transaction `json:"outgoing"`
	Incoming *Transaction `json:"incoming"`
}
