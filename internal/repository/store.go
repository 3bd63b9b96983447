package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repositories bundles all repositories bound to the same DBTX.
type Repositories struct {
	Users        UserRepository
	Accounts     AccountRepository
	Transactions TransactionRepository
	Loans        LoanRepository
}

func bind(db DBTX) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(db),
		Accounts:     NewAccountRepository(db),
		Transactions: NewTransactionRepository(db),
		Loans:        NewLoanRepository(db),
	}
}

// Store owns the database handle and hands out repositories, either bound to
// the pool for plain reads or bound to a transaction for atomic units.
type Store struct {
	db *sqlx.DB
	*Repositories
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:           db,
		Repositories: bind(db),
	}
}

// Repos returns the pool-bound repositories for plain reads.
func (s *Store) Repos() *Repositories {
	return s.Repositories
}

// WithinTx runs fn with transaction-bound repositories. Either every write
// made inside fn commits, or all of them roll back.
func (s *Store) WithinTx(ctx context.Context, fn func(r *Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(bind(tx)); err != nil {
		return err
	}

	return tx.Commit()
}
