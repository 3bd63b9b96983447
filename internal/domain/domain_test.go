package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCredit(t *testing.T) {
	credits := []string{TransactionKindDeposit, TransactionKindTransferIn, TransactionKindLoanDisbursement}
	debits := []string{TransactionKindWithdrawal, TransactionKindTransferOut, TransactionKindLoanPayment}

	for _, kind := range credits {
		assert.True(t, IsCredit(kind), kind)
	}
	for _, kind := range debits {
		assert.False(t, IsCredit(kind), kind)
	}
}

func TestAccountIsOperational(t *testing.T) {
	account := &Account{Status: AccountStatusActive}
	assert.True(t, account.IsOperational())

	for _, status := range []string{AccountStatusInactive, AccountStatusBlocked} {
		account.Status = status
		assert.False(t, account.IsOperational(), status)
	}
}

func TestInstallmentPayable(t *testing.T) {
	installment := &Installment{Status: InstallmentStatusPending}
	assert.True(t, installment.Payable())

	installment.Status = InstallmentStatusOverdue
	assert.True(t, installment.Payable(), "overdue stays payable")

	installment.Status = InstallmentStatusPaid
	assert.False(t, installment.Payable())
}
