package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/progresar/progresar-core/internal/config"
	"github.com/progresar/progresar-core/internal/domain"
	"github.com/progresar/progresar-core/internal/mocks"
	customError "github.com/progresar/progresar-core/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			InstallmentInterestRate: "0.015",
			MinInstallments:         1,
			MaxInstallments:         6,
			MaxDepositPerOperation:  "50000",
			MaxTransferPerOperation: "20000",
			LoanLeverageMultiple:    "5",
			PaymentCapacityRatio:    "0.7",
			InstallmentPeriodMonths: 1,
			LoanCacheTTL:            "24h",
		},
	}
}

func activeAccount(balance string) *domain.Account {
	b, _ := decimal.NewFromString(balance)
	return &domain.Account{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		AccountNumber: "ACC-" + uuid.NewString()[:8],
		Kind:          domain.AccountKindSavings,
		Balance:       b,
		Currency:      "PEN",
		Status:        domain.AccountStatusActive,
		CreatedAt:     time.Now(),
	}
}

func TestDeposit(t *testing.T) {
	tests := []struct {
		name          string
		balance       string
		amount        string
		status        string
		expectedError error
		expectedAfter string
	}{
		{
			name:          "success",
			balance:       "100.00",
			amount:        "250.50",
			status:        domain.AccountStatusActive,
			expectedAfter: "350.50",
		},
		{
			name:          "exactly the per-operation cap",
			balance:       "0",
			amount:        "50000",
			status:        domain.AccountStatusActive,
			expectedAfter: "50000.00",
		},
		{
			name:          "one cent above the cap",
			balance:       "0",
			amount:        "50000.01",
			status:        domain.AccountStatusActive,
			expectedError: customError.ErrInvalidAmount,
		},
		{
			name:          "zero amount",
			balance:       "100",
			amount:        "0",
			status:        domain.AccountStatusActive,
			expectedError: customError.ErrInvalidAmount,
		},
		{
			name:          "negative amount",
			balance:       "100",
			amount:        "-5",
			status:        domain.AccountStatusActive,
			expectedError: customError.ErrInvalidAmount,
		},
		{
			name:          "blocked account",
			balance:       "100",
			amount:        "50",
			status:        domain.AccountStatusBlocked,
			expectedError: customError.ErrAccountNotOperational,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, accountRepo, transactionRepo, _ := mocks.NewMockStore()
			svc := NewAccountService(store, testConfig())

			account := activeAccount(tt.balance)
			account.Status = tt.status
			amount, _ := decimal.NewFromString(tt.amount)

			if amount.IsPositive() && amount.LessThanOrEqual(decimal.NewFromInt(50000)) {
				accountRepo.On("GetByIDForUpdate", mock.Anything, account.ID).Return(account, nil)
				if tt.status == domain.AccountStatusActive {
					transactionRepo.On("Create", mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
						return tx.Kind == domain.TransactionKindDeposit &&
							tx.Amount.Equal(amount) &&
							tx.BalanceAfter.Equal(tx.BalanceBefore.Add(amount))
					})).Return(nil)
					accountRepo.On("UpdateBalance", mock.Anything, account.ID, mock.MatchedBy(func(b decimal.Decimal) bool {
						return b.Equal(account.Balance.Add(amount))
					})).Return(nil)
				}
			}

			transaction, err := svc.Deposit(context.Background(), &domain.DepositRequest{
				AccountID:   account.ID,
				Amount:      amount,
				Description: "test deposit",
			})

			if tt.expectedError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedError))
				assert.Nil(t, transaction)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedAfter, transaction.BalanceAfter.StringFixed(2))
			accountRepo.AssertExpectations(t)
			transactionRepo.AssertExpectations(t)
		})
	}
}

func TestWithdraw(t *testing.T) {
	t.Run("withdrawing exactly the balance empties the account", func(t *testing.T) {
		store, _, accountRepo, transactionRepo, _ := mocks.NewMockStore()
		svc := NewAccountService(store, testConfig())

		account := activeAccount("431.17")
		accountRepo.On("GetByIDForUpdate", mock.Anything, account.ID).Return(account, nil)
		transactionRepo.On("Create", mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
			return tx.Kind == domain.TransactionKindWithdrawal && tx.BalanceAfter.IsZero()
		})).Return(nil)
		accountRepo.On("UpdateBalance", mock.Anything, account.ID, mock.MatchedBy(func(b decimal.Decimal) bool {
			return b.IsZero()
		})).Return(nil)

		transaction, err := svc.Withdraw(context.Background(), &domain.WithdrawalRequest{
			AccountID: account.ID,
			Amount:    decimal.RequireFromString("431.17"),
		})

		require.NoError(t, err)
		assert.Equal(t, "0.00", transaction.BalanceAfter.StringFixed(2))
		transactionRepo.AssertExpectations(t)
	})

	t.Run("one cent over the balance is rejected", func(t *testing.T) {
		store, _, accountRepo, transactionRepo, _ := mocks.NewMockStore()
		svc := NewAccountService(store, testConfig())

		account := activeAccount("431.17")
		accountRepo.On("GetByIDForUpdate", mock.Anything, account.ID).Return(account, nil)

		_, err := svc.Withdraw(context.Background(), &domain.WithdrawalRequest{
			AccountID: account.ID,
			Amount:    decimal.RequireFromString("431.18"),
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrInsufficientFunds))
		transactionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("account not found", func(t *testing.T) {
		store, _, accountRepo, _, _ := mocks.NewMockStore()
		svc := NewAccountService(store, testConfig())

		missing := uuid.New()
		accountRepo.On("GetByIDForUpdate", mock.Anything, missing).Return(nil, sql.ErrNoRows)

		_, err := svc.Withdraw(context.Background(), &domain.WithdrawalRequest{
			AccountID: missing,
			Amount:    decimal.NewFromInt(10),
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrAccountNotFound))
	})
}

func TestTransfer(t *testing.T) {
	t.Run("moves funds and records both legs", func(t *testing.T) {
		store, _, accountRepo, transactionRepo, _ := mocks.NewMockStore()
		svc := NewAccountService(store, testConfig())

		source := activeAccount("1000")
		destination := activeAccount("200")
		destination.AccountNumber = "ACC-DEST"

		accountRepo.On("GetByAccountNumber", mock.Anything, "ACC-DEST").Return(destination, nil)
		accountRepo.On("GetByIDForUpdate", mock.Anything, source.ID).Return(source, nil)
		accountRepo.On("GetByIDForUpdate", mock.Anything, destination.ID).Return(destination, nil)

		transactionRepo.On("Create", mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
			return tx.Kind == domain.TransactionKindTransferOut &&
				tx.AccountID == source.ID &&
				tx.CounterpartyAccountID != nil && *tx.CounterpartyAccountID == destination.ID &&
				tx.BalanceAfter.Equal(decimal.NewFromInt(500))
		})).Return(nil)
		transactionRepo.On("Create", mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
			return tx.Kind == domain.TransactionKindTransferIn &&
				tx.AccountID == destination.ID &&
				tx.CounterpartyAccountID != nil && *tx.CounterpartyAccountID == source.ID &&
				tx.BalanceAfter.Equal(decimal.NewFromInt(700))
		})).Return(nil)

		accountRepo.On("UpdateBalance", mock.Anything, source.ID, mock.MatchedBy(func(b decimal.Decimal) bool {
			return b.Equal(decimal.NewFromInt(500))
		})).Return(nil)
		accountRepo.On("UpdateBalance", mock.Anything, destination.ID, mock.MatchedBy(func(b decimal.Decimal) bool {
			return b.Equal(decimal.NewFromInt(700))
		})).Return(nil)

		transfer, err := svc.Transfer(context.Background(), &domain.TransferRequest{
			SourceAccountID:          source.ID,
			DestinationAccountNumber: "ACC-DEST",
			Amount:                   decimal.NewFromInt(500),
			Description:              "rent",
		})

		require.NoError(t, err)
		assert.Equal(t, "500.00", transfer.Outgoing.BalanceAfter.StringFixed(2))
		assert.Equal(t, "700.00", transfer.Incoming.BalanceAfter.StringFixed(2))
		accountRepo.AssertExpectations(t)
		transactionRepo.AssertExpectations(t)
	})

	t.Run("destination not found", func(t *testing.T) {
		store, _, accountRepo, _, _ := mocks.NewMockStore()
		svc := NewAccountService(store, testConfig())

		accountRepo.On("GetByAccountNumber", mock.Anything, "ACC-MISSING").Return(nil, sql.ErrNoRows)

		_, err := svc.Transfer(context.Background(), &domain.TransferRequest{
			SourceAccountID:          uuid.New(),
			DestinationAccountNumber: "ACC-MISSING",
			Amount:                   decimal.NewFromInt(100),
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrAccountNotFound))
	})

	t.Run("self transfer is rejected", func(t *testing.T) {
		store, _, accountRepo, _, _ := mocks.NewMockStore()
		svc := NewAccountService(store, testConfig())

		account := activeAccount("1000")
		accountRepo.On("GetByAccountNumber", mock.Anything, account.AccountNumber).Return(account, nil)

		_, err := svc.Transfer(context.Background(), &domain.TransferRequest{
			SourceAccountID:          account.ID,
			DestinationAccountNumber: account.AccountNumber,
			Amount:                   decimal.NewFromInt(100),
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrSameAccountTransfer))
	})

	t.Run("amount above the transfer cap", func(t *testing.T) {
		store, _, accountRepo, _, _ := mocks.NewMockStore()
		svc := NewAccountService(store, testConfig())

		_, err := svc.Transfer(context.Background(), &domain.TransferRequest{
			SourceAccountID:          uuid.New(),
			DestinationAccountNumber: "ACC-DEST",
			Amount:                   decimal.RequireFromString("20000.01"),
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrInvalidAmount))
		accountRepo.AssertNotCalled(t, "GetByAccountNumber", mock.Anything, mock.Anything)
	})

	t.Run("insufficient source balance rolls the unit back", func(t *testing.T) {
		store, _, accountRepo, transactionRepo, _ := mocks.NewMockStore()
		svc := NewAccountService(store, testConfig())

		source := activeAccount("50")
		destination := activeAccount("200")
		destination.AccountNumber = "ACC-DEST"

		accountRepo.On("GetByAccountNumber", mock.Anything, "ACC-DEST").Return(destination, nil)
		accountRepo.On("GetByIDForUpdate", mock.Anything, source.ID).Return(source, nil)
		accountRepo.On("GetByIDForUpdate", mock.Anything, destination.ID).Return(destination, nil)

		_, err := svc.Transfer(context.Background(), &domain.TransferRequest{
			SourceAccountID:          source.ID,
			DestinationAccountNumber: "ACC-DEST",
			Amount:                   decimal.NewFromInt(100),
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrInsufficientFunds))
		transactionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		accountRepo.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCheckLoanEligibility(t *testing.T) {
	store, _, _, _, _ := mocks.NewMockStore()
	svc := NewAccountService(store, testConfig())

	account := activeAccount("1000")

	// 6000 > 5 * 1000
	err := svc.CheckLoanEligibility(account, decimal.NewFromInt(6000), decimal.NewFromInt(500))
	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrLoanLimitExceeded))
	assert.Contains(t, err.Error(), "5000.00")

	// installment 800 > 0.7 * 1000
	err = svc.CheckLoanEligibility(account, decimal.NewFromInt(3000), decimal.NewFromInt(800))
	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrPaymentCapacityExceeded))
	assert.Contains(t, err.Error(), "700.00")

	// within both limits
	err = svc.CheckLoanEligibility(account, decimal.NewFromInt(3000), decimal.NewFromInt(600))
	assert.NoError(t, err)
}

func TestGetTransactions(t *testing.T) {
	store, _, accountRepo, transactionRepo, _ := mocks.NewMockStore()
	svc := NewAccountService(store, testConfig())

	account := activeAccount("100")
	entries := []*domain.Transaction{
		{ID: uuid.New(), AccountID: account.ID, Kind: domain.TransactionKindDeposit, Amount: decimal.NewFromInt(100)},
	}

	accountRepo.On("GetByID", mock.Anything, account.ID).Return(account, nil)
	transactionRepo.On("ListByAccount", mock.Anything, account.ID, 10, 10).Return(entries, nil)
	transactionRepo.On("CountByAccount", mock.Anything, account.ID).Return(11, nil)

	page, err := svc.GetTransactions(context.Background(), account.ID, 2, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 11, page.Total)
	assert.Len(t, page.Transactions, 1)
}
