package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/progresar/progresar-core/internal/amortization"
	"github.com/progresar/progresar-core/internal/config"
	"github.com/progresar/progresar-core/internal/domain"
	"github.com/progresar/progresar-core/internal/repository"
	customError "github.com/progresar/progresar-core/pkg/errors"
	"github.com/progresar/progresar-core/pkg/utils"
)

// LoanService is the loan ledger: it owns the loan lifecycle and its
// installment schedule, and settles every funds movement against the account
// balance ledger inside the same commit unit.
type LoanService struct {
	store      Store
	accounts   *AccountService
	calculator *amortization.Calculator
	redis      *redis.Client
	config     *config.Config
	locks      *accountLocks
}

// NewLoanService shares the account lock table of the given AccountService so
// loan disbursements and payments serialize with deposits and withdrawals on
// the same account.
func NewLoanService(
	store Store,
	accounts *AccountService,
	redisClient *redis.Client,
	cfg *config.Config,
) *LoanService {
	return &LoanService{
		store:    store,
		accounts: accounts,
		calculator: &amortization.Calculator{
			Rate:            cfg.InstallmentInterestRate(),
			MinInstallments: cfg.Business.MinInstallments,
			MaxInstallments: cfg.Business.MaxInstallments,
			PeriodMonths:    cfg.Business.InstallmentPeriodMonths,
		},
		redis:  redisClient,
		config: cfg,
		locks:  accounts.locks,
	}
}

// Calculate previews the amortization for a principal and installment count
// without touching any account
func (s *LoanService) Calculate(request *domain.CalculateLoanRequest) (*domain.LoanCalculation, error) {
	schedule, err := s.calculator.Calculate(request.Amount, request.Installments)
	if err != nil {
		return nil, err
	}

	return &domain.LoanCalculation{
		Principal:         schedule.Principal,
		InstallmentCount:  schedule.InstallmentCount,
		InstallmentAmount: schedule.InstallmentAmount,
		TotalAmount:       schedule.TotalAmount,
		TotalInterest:     schedule.TotalInterest,
		InterestRate:      s.calculator.Rate,
	}, nil
}

// RequestLoan creates a loan with its installment schedule and disburses the
// principal into the account
func (s *LoanService) RequestLoan(ctx context.Context, accountID uuid.UUID, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	schedule, err := s.calculator.Calculate(request.Amount, request.Installments)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Acquire(accountID)
	defer unlock()

	var loan *domain.Loan
	err = s.store.WithinTx(ctx, func(r *repository.Repositories) error {
		account, err := s.accounts.getOperationalAccount(ctx, r, accountID)
		if err != nil {
			return err
		}

		if err := s.accounts.CheckLoanEligibility(account, schedule.Principal, schedule.InstallmentAmount); err != nil {
			return err
		}

		now := time.Now()
		dueDates := s.calculator.DueDates(now, schedule.InstallmentCount)

		leverageLimit := account.Balance.Mul(s.config.LoanLeverageMultiple())
		capacityLimit := account.Balance.Mul(s.config.PaymentCapacityRatio())

		loan = &domain.Loan{
			ID:                   uuid.New(),
			AccountID:            account.ID,
			Principal:            schedule.Principal,
			InstallmentCount:     schedule.InstallmentCount,
			InstallmentAmount:    schedule.InstallmentAmount,
			TotalAmount:          schedule.TotalAmount,
			TotalInterest:        schedule.TotalInterest,
			InstallmentsPaid:     0,
			Description:          request.Description,
			ApprovalScore:        amortization.ApprovalScore(schedule.Principal, schedule.InstallmentAmount, leverageLimit, capacityLimit),
			PaymentCapacityRatio: utils.CapacityRatio(schedule.InstallmentAmount, account.Balance),
			Status:               domain.LoanStatusActive,
			CreatedAt:            now,
			DueAt:                dueDates[len(dueDates)-1],
		}

		installments := make([]*domain.Installment, 0, schedule.InstallmentCount)
		for i, amount := range schedule.Amounts {
			installments = append(installments, &domain.Installment{
				ID:                uuid.New(),
				LoanID:            loan.ID,
				InstallmentNumber: i + 1,
				Amount:            amount,
				DueAt:             dueDates[i],
				Status:            domain.InstallmentStatusPending,
			})
		}
		loan.Installments = installments

		if err := r.Loans.Create(ctx, loan); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := r.Loans.CreateInstallments(ctx, installments); err != nil {
			return customError.WrapDatabaseError(err)
		}

		disbursement := &domain.Transaction{
			ID:            uuid.New(),
			AccountID:     account.ID,
			LoanID:        &loan.ID,
			Kind:          domain.TransactionKindLoanDisbursement,
			Amount:        schedule.Principal,
			Description:   fmt.Sprintf("loan disbursement %s", loan.ID),
			BalanceBefore: account.Balance,
			BalanceAfter:  account.Balance.Add(schedule.Principal),
			CreatedAt:     now,
		}

		if err := r.Transactions.Create(ctx, disbursement); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := r.Accounts.UpdateBalance(ctx, account.ID, disbursement.BalanceAfter); err != nil {
			return customError.WrapDatabaseError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cacheLoan(ctx, loan)

	return loan, nil
}

// PayInstallments pays the given number of lowest-numbered payable
// installments, debiting the account once per installment. Paying more
// installments than are pending is rejected, not clamped.
func (s *LoanService) PayInstallments(ctx context.Context, loanID uuid.UUID, count int) (*domain.PayInstallmentsResponse, error) {
	if count < 1 {
		return nil, customError.WrapInvalidInstallmentCount(count, 1, s.config.Business.MaxInstallments)
	}

	// Plain read to learn the owning account for lock ordering; everything
	// is re-read under row locks inside the transaction.
	peek, err := s.store.Repos().Loans.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	unlock := s.locks.Acquire(peek.AccountID)
	defer unlock()

	var result *domain.PayInstallmentsResponse
	err = s.store.WithinTx(ctx, func(r *repository.Repositories) error {
		loan, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapLoanNotFound(loanID.String())
			}
			return customError.WrapDatabaseError(err)
		}

		if loan.Status != domain.LoanStatusActive {
			return customError.WrapLoanNotActive(loan.ID.String(), loan.Status)
		}

		installments, err := r.Loans.GetInstallments(ctx, loan.ID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		loan.Installments = installments

		// Payable installments in ascending number order; overdue counts as
		// pending for eligibility.
		payable := make([]*domain.Installment, 0, len(installments))
		for _, installment := range installments {
			if installment.Payable() {
				payable = append(payable, installment)
			}
		}

		if count > len(payable) {
			return customError.WrapInsufficientPendingInstallments(count, len(payable))
		}
		selected := payable[:count]

		total := decimal.Zero
		for _, installment := range selected {
			total = total.Add(installment.Amount)
		}

		account, err := s.accounts.getOperationalAccount(ctx, r, loan.AccountID)
		if err != nil {
			return err
		}

		if total.GreaterThan(account.Balance) {
			return customError.WrapInsufficientFunds(total, account.Balance)
		}

		now := time.Now()
		balance := account.Balance
		transactions := make([]*domain.Transaction, 0, count)

		for _, installment := range selected {
			if err := r.Loans.MarkInstallmentPaid(ctx, installment.ID, now); err != nil {
				return customError.WrapDatabaseError(err)
			}
			installment.Status = domain.InstallmentStatusPaid
			paidAt := now
			installment.PaidAt = &paidAt

			transaction := &domain.Transaction{
				ID:            uuid.New(),
				AccountID:     account.ID,
				LoanID:        &loan.ID,
				InstallmentID: &installment.ID,
				Kind:          domain.TransactionKindLoanPayment,
				Amount:        installment.Amount,
				Description:   fmt.Sprintf("installment %d of loan %s", installment.InstallmentNumber, loan.ID),
				BalanceBefore: balance,
				BalanceAfter:  balance.Sub(installment.Amount),
				CreatedAt:     now,
			}
			if err := r.Transactions.Create(ctx, transaction); err != nil {
				return customError.WrapDatabaseError(err)
			}

			balance = transaction.BalanceAfter
			transactions = append(transactions, transaction)
		}

		if err := r.Accounts.UpdateBalance(ctx, account.ID, balance); err != nil {
			return customError.WrapDatabaseError(err)
		}

		loan.InstallmentsPaid += count
		if loan.InstallmentsPaid == loan.InstallmentCount {
			loan.Status = domain.LoanStatusCompleted
			completedAt := now
			loan.CompletedAt = &completedAt
		}

		if err := r.Loans.UpdateProgress(ctx, loan); err != nil {
			return customError.WrapDatabaseError(err)
		}

		result = &domain.PayInstallmentsResponse{
			Loan:         loan,
			Paid:         selected,
			Transactions: transactions,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateLoan(ctx, loanID)

	return result, nil
}

// GetLoan returns a loan with its installments, served from cache when fresh
func (s *LoanService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	if cached := s.cachedLoan(ctx, loanID); cached != nil {
		return cached, nil
	}

	repos := s.store.Repos()
	loan, err := repos.Loans.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	loan.Installments, err = repos.Loans.GetInstallments(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.cacheLoan(ctx, loan)

	return loan, nil
}

// ListLoans returns all loans
func (s *LoanService) ListLoans(ctx context.Context) ([]*domain.Loan, error) {
	loans, err := s.store.Repos().Loans.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// ListAccountLoans returns all loans for an account with their installments
func (s *LoanService) ListAccountLoans(ctx context.Context, accountID uuid.UUID) ([]*domain.Loan, error) {
	if _, err := s.accounts.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	repos := s.store.Repos()
	loans, err := repos.Loans.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	for _, loan := range loans {
		loan.Installments, err = repos.Loans.GetInstallments(ctx, loan.ID)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
	}

	return loans, nil
}

// Status summarizes a loan's repayment progress
func (s *LoanService) Status(ctx context.Context, loanID uuid.UUID) (*domain.LoanStatusSummary, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	summary := &domain.LoanStatusSummary{
		LoanID:           loan.ID,
		PendingCount:     PendingCount(loan),
		OverdueCount:     OverdueCount(loan, time.Now()),
		RemainingBalance: RemainingBalance(loan),
		NextInstallment:  NextInstallment(loan),
	}

	return summary, nil
}

// PendingCount counts the loan's still-payable installments
func PendingCount(loan *domain.Loan) int {
	count := 0
	for _, installment := range loan.Installments {
		if installment.Payable() {
			count++
		}
	}
	return count
}

// OverdueCount counts payable installments whose due date has passed. It
// compares against now rather than trusting the persisted overdue flag, which
// only advances on the scheduler's daily pass.
func OverdueCount(loan *domain.Loan, now time.Time) int {
	count := 0
	for _, installment := range loan.Installments {
		if installment.Payable() && utils.IsDateOverdue(installment.DueAt, now) {
			count++
		}
	}
	return count
}

// RemainingBalance is the amount left to repay: pending installments times
// the installment amount
func RemainingBalance(loan *domain.Loan) decimal.Decimal {
	pending := decimal.NewFromInt(int64(loan.InstallmentCount - loan.InstallmentsPaid))
	return pending.Mul(loan.InstallmentAmount)
}

// NextInstallment returns the lowest-numbered payable installment, or nil
func NextInstallment(loan *domain.Loan) *domain.Installment {
	for _, installment := range loan.Installments {
		if installment.Payable() {
			return installment
		}
	}
	return nil
}

func loanCacheKey(loanID uuid.UUID) string {
	return fmt.Sprintf("loan:%s", loanID)
}

// Cache reads and writes are best effort; the database stays authoritative.
func (s *LoanService) cachedLoan(ctx context.Context, loanID uuid.UUID) *domain.Loan {
	if s.redis == nil {
		return nil
	}

	payload, err := s.redis.Get(ctx, loanCacheKey(loanID)).Bytes()
	if err != nil {
		return nil
	}

	var loan domain.Loan
	if err := json.Unmarshal(payload, &loan); err != nil {
		return nil
	}
	return &loan
}

func (s *LoanService) cacheLoan(ctx context.Context, loan *domain.Loan) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(loan)
	if err != nil {
		return
	}
	s.redis.Set(ctx, loanCacheKey(loan.ID), payload, s.config.LoanCacheTTL())
}

func (s *LoanService) invalidateLoan(ctx context.Context, loanID uuid.UUID) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, loanCacheKey(loanID))
}
