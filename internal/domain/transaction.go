package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionKindDeposit          = "deposit"
	TransactionKindWithdrawal       = "withdrawal"
	TransactionKindTransferIn       = "transfer_in"
	TransactionKindTransferOut      = "transfer_out"
	TransactionKindLoanDisbursement = "loan_disbursement"
	TransactionKindLoanPayment      = "loan_installment_payment"
)

// Transaction is an append-only ledger entry. BalanceAfter must equal
// BalanceBefore plus or minus Amount according to the kind's sign.
type Transaction struct {
	ID                    uuid.UUID       `json:"id" db:"id"`
	AccountID             uuid.UUID       `json:"account_id" db:"account_id"`
	CounterpartyAccountID *uuid.UUID      `json:"counterparty_account_id,omitempty" db:"counterparty_account_id"`
	LoanID                *uuid.UUID      `json:"loan_id,omitempty" db:"loan_id"`
	InstallmentID         *uuid.UUID      `json:"installment_id,omitempty" db:"installment_id"`
	Kind                  string          `json:"kind" db:"kind"`
	Amount                decimal.Decimal `json:"amount" db:"amount"`
	Description           string          `json:"description" db:"description"`
	BalanceBefore         decimal.Decimal `json:"balance_before" db:"balance_before"`
	BalanceAfter          decimal.Decimal `json:"balance_after" db:"balance_after"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
}

// IsCredit reports whether the kind increases the account balance.
func IsCredit(kind string) bool {
	switch kind {
	case TransactionKindDeposit, TransactionKindTransferIn, TransactionKindLoanDisbursement:
		return true
	}
	return false
}

type TransactionPage struct {
	Transactions []*Transaction `json:"transactions"`
	Page         int            `json:"page"`
	Limit        int            `json:"limit"`
	Total        int            `json:"total"`
}
