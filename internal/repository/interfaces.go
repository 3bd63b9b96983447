package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/progresar/progresar-core/internal/domain"
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx so the same repository
// queries run standalone or inside a Store.WithinTx unit.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*domain.User, error)
}

// AccountRepository defines the interface for account data operations
type AccountRepository interface {
	// GetByID retrieves an account by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// GetByIDForUpdate retrieves an account by id with a row lock
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// GetByAccountNumber retrieves an account by its externally visible number
	GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// ListByUser retrieves all accounts owned by a user
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error)

	// UpdateBalance sets the account balance
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error

	// UpdateStatus sets the account status
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// TransactionRepository defines the interface for ledger entry operations.
// Entries are append-only; there is no update or delete.
type TransactionRepository interface {
	// Create appends a new ledger entry
	Create(ctx context.Context, transaction *domain.Transaction) error

	// ListByAccount retrieves a page of entries for an account, newest first
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Transaction, error)

	// CountByAccount counts entries for an account
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error)
}

// LoanRepository defines the interface for loan and installment operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// CreateInstallments creates the loan's installment schedule
	CreateInstallments(ctx context.Context, installments []*domain.Installment) error

	// GetByID retrieves a loan by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// GetByIDForUpdate retrieves a loan by id with a row lock
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// List retrieves all loans
	List(ctx context.Context) ([]*domain.Loan, error)

	// ListByAccount retrieves all loans for an account
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Loan, error)

	// GetInstallments retrieves a loan's installments ordered by number
	GetInstallments(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error)

	// MarkInstallmentPaid sets an installment to paid at the given time
	MarkInstallmentPaid(ctx context.Context, installmentID uuid.UUID, paidAt time.Time) error

	// UpdateProgress persists installments_paid, status and completed_at
	UpdateProgress(ctx context.Context, loan *domain.Loan) error

	// MarkOverdueInstallments flags pending installments past due as overdue
	// and returns how many rows changed
	MarkOverdueInstallments(ctx context.Context, now time.Time) (int64, error)
}
