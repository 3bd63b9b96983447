package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/progresar/progresar-core/internal/config"
	"github.com/progresar/progresar-core/internal/domain"
	"github.com/progresar/progresar-core/internal/repository"
	customError "github.com/progresar/progresar-core/pkg/errors"
)

// Store is the persistence boundary the services commit through.
type Store interface {
	Repos() *repository.Repositories
	WithinTx(ctx context.Context, fn func(r *repository.Repositories) error) error
}

// AccountService is the account balance ledger: the balance is only ever
// mutated together with an appended Transaction, inside one commit unit.
type AccountService struct {
	store  Store
	config *config.Config
	locks  *accountLocks
}

func NewAccountService(store Store, cfg *config.Config) *AccountService {
	return &AccountService{
		store:  store,
		config: cfg,
		locks:  newAccountLocks(),
	}
}

// GetAccount returns an account by id
func (s *AccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.store.Repos().Accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapAccountNotFound(accountID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return account, nil
}

// ListUserAccounts returns all accounts owned by a user
func (s *AccountService) ListUserAccounts(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	accounts, err := s.store.Repos().Accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return accounts, nil
}

// Deposit credits an account and appends a deposit Transaction
func (s *AccountService) Deposit(ctx context.Context, request *domain.DepositRequest) (*domain.Transaction, error) {
	if request.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, customError.WrapInvalidAmount("deposit amount must be greater than 0")
	}

	maxDeposit := s.config.MaxDepositPerOperation()
	if request.Amount.GreaterThan(maxDeposit) {
		return nil, customError.WrapInvalidAmount(
			fmt.Sprintf("deposit amount %s exceeds maximum per operation: %s", request.Amount.StringFixed(2), maxDeposit.StringFixed(2)),
		)
	}

	unlock := s.locks.Acquire(request.AccountID)
	defer unlock()

	var transaction *domain.Transaction
	err := s.store.WithinTx(ctx, func(r *repository.Repositories) error {
		account, err := s.getOperationalAccount(ctx, r, request.AccountID)
		if err != nil {
			return err
		}

		transaction = &domain.Transaction{
			ID:            uuid.New(),
			AccountID:     account.ID,
			Kind:          domain.TransactionKindDeposit,
			Amount:        request.Amount,
			Description:   request.Description,
			BalanceBefore: account.Balance,
			BalanceAfter:  account.Balance.Add(request.Amount),
			CreatedAt:     time.Now(),
		}

		if err := r.Transactions.Create(ctx, transaction); err != nil {
			return customError.WrapDatabaseError(err)
		}

		if err := r.Accounts.UpdateBalance(ctx, account.ID, transaction.BalanceAfter); err != nil {
			return customError.WrapDatabaseError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// Withdraw debits an account and appends a withdrawal Transaction
func (s *AccountService) Withdraw(ctx context.Context, request *domain.WithdrawalRequest) (*domain.Transaction, error) {
	if request.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, customError.WrapInvalidAmount("withdrawal amount must be greater than 0")
	}

	unlock := s.locks.Acquire(request.AccountID)
	defer unlock()

	var transaction *domain.Transaction
	err := s.store.WithinTx(ctx, func(r *repository.Repositories) error {
		account, err := s.getOperationalAccount(ctx, r, request.AccountID)
		if err != nil {
			return err
		}

		if request.Amount.GreaterThan(account.Balance) {
			return customError.WrapInsufficientFunds(request.Amount, account.Balance)
		}

		transaction = &domain.Transaction{
			ID:            uuid.New(),
			AccountID:     account.ID,
			Kind:          domain.TransactionKindWithdrawal,
			Amount:        request.Amount,
			Description:   request.Description,
			BalanceBefore: account.Balance,
			BalanceAfter:  account.Balance.Sub(request.Amount),
			CreatedAt:     time.Now(),
		}

		if err := r.Transactions.Create(ctx, transaction); err != nil {
			return customError.WrapDatabaseError(err)
		}

		if err := r.Accounts.UpdateBalance(ctx, account.ID, transaction.BalanceAfter); err != nil {
			return customError.WrapDatabaseError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// Transfer moves funds between two accounts, appending a paired
// transfer_out/transfer_in entry. Both legs commit or neither does.
func (s *AccountService) Transfer(ctx context.Context, request *domain.TransferRequest) (*domain.TransferResponse, error) {
	if request.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, customError.WrapInvalidAmount("transfer amount must be greater than 0")
	}

	maxTransfer := s.config.MaxTransferPerOperation()
	if request.Amount.GreaterThan(maxTransfer) {
		return nil, customError.WrapInvalidAmount(
			fmt.Sprintf("transfer amount %s exceeds maximum per operation: %s", request.Amount.StringFixed(2), maxTransfer.StringFixed(2)),
		)
	}

	// Resolve the destination before locking so both account ids are known.
	destination, err := s.store.Repos().Accounts.GetByAccountNumber(ctx, request.DestinationAccountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapAccountNotFound(request.DestinationAccountNumber)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if destination.ID == request.SourceAccountID {
		return nil, customError.WrapSameAccountTransfer(request.DestinationAccountNumber)
	}

	unlock := s.locks.Acquire(request.SourceAccountID, destination.ID)
	defer unlock()

	var outgoing, incoming *domain.Transaction
	err = s.store.WithinTx(ctx, func(r *repository.Repositories) error {
		// Row locks follow the same ascending-id order as the in-process locks.
		first, second := request.SourceAccountID, destination.ID
		if second.String() < first.String() {
			first, second = second, first
		}

		locked := make(map[uuid.UUID]*domain.Account, 2)
		for _, id := range []uuid.UUID{first, second} {
			account, err := s.getOperationalAccount(ctx, r, id)
			if err != nil {
				return err
			}
			locked[id] = account
		}

		source := locked[request.SourceAccountID]
		target := locked[destination.ID]

		if request.Amount.GreaterThan(source.Balance) {
			return customError.WrapInsufficientFunds(request.Amount, source.Balance)
		}

		now := time.Now()
		outgoing = &domain.Transaction{
			ID:                    uuid.New(),
			AccountID:             source.ID,
			CounterpartyAccountID: &target.ID,
			Kind:                  domain.TransactionKindTransferOut,
			Amount:                request.Amount,
			Description:           request.Description,
			BalanceBefore:         source.Balance,
			BalanceAfter:          source.Balance.Sub(request.Amount),
			CreatedAt:             now,
		}
		incoming = &domain.Transaction{
			ID:                    uuid.New(),
			AccountID:             target.ID,
			CounterpartyAccountID: &source.ID,
			Kind:                  domain.TransactionKindTransferIn,
			Amount:                request.Amount,
			Description:           request.Description,
			BalanceBefore:         target.Balance,
			BalanceAfter:          target.Balance.Add(request.Amount),
			CreatedAt:             now,
		}

		if err := r.Transactions.Create(ctx, outgoing); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := r.Transactions.Create(ctx, incoming); err != nil {
			return customError.WrapDatabaseError(err)
		}

		if err := r.Accounts.UpdateBalance(ctx, source.ID, outgoing.BalanceAfter); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := r.Accounts.UpdateBalance(ctx, target.ID, incoming.BalanceAfter); err != nil {
			return customError.WrapDatabaseError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &domain.TransferResponse{Outgoing: outgoing, Incoming: incoming}, nil
}

// GetTransactions returns a page of an account's ledger entries, newest first
func (s *AccountService) GetTransactions(ctx context.Context, accountID uuid.UUID, page, limit int) (*domain.TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	repos := s.store.Repos()
	transactions, err := repos.Transactions.ListByAccount(ctx, accountID, limit, (page-1)*limit)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	total, err := repos.Transactions.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.TransactionPage{
		Transactions: transactions,
		Page:         page,
		Limit:        limit,
		Total:        total,
	}, nil
}

// CheckLoanEligibility enforces the leverage and payment-capacity rules
// against the account's current balance
func (s *AccountService) CheckLoanEligibility(account *domain.Account, principal, installmentAmount decimal.Decimal) error {
	leverageLimit := account.Balance.Mul(s.config.LoanLeverageMultiple())
	if principal.GreaterThan(leverageLimit) {
		return customError.WrapLoanLimitExceeded(principal, leverageLimit)
	}

	capacityLimit := account.Balance.Mul(s.config.PaymentCapacityRatio())
	if installmentAmount.GreaterThan(capacityLimit) {
		return customError.WrapPaymentCapacityExceeded(installmentAmount, capacityLimit)
	}

	return nil
}

func (s *AccountService) getOperationalAccount(ctx context.Context, r *repository.Repositories, accountID uuid.UUID) (*domain.Account, error) {
	account, err := r.Accounts.GetByIDForUpdate(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapAccountNotFound(accountID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if !account.IsOperational() {
		return nil, customError.WrapAccountNotOperational(account.AccountNumber, account.Status)
	}

	return account, nil
}
