package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/progresar/progresar-core/internal/domain"
)

type transactionRepository struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, transaction *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_id, counterparty_account_id, loan_id, installment_id, kind, amount, description, balance_before, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		transaction.ID,
		transaction.AccountID,
		transaction.CounterpartyAccountID,
		transaction.LoanID,
		transaction.InstallmentID,
		transaction.Kind,
		transaction.Amount,
		transaction.Description,
		transaction.BalanceBefore,
		transaction.BalanceAfter,
		transaction.CreatedAt,
	)

	return err
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, account_id, counterparty_account_id, loan_id, installment_id, kind, amount, description, balance_before, balance_after, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	var transactions []*domain.Transaction
	err := r.db.SelectContext(ctx, &transactions, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (r *transactionRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE account_id = $1
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, accountID)
	if err != nil {
		return 0, err
	}

	return count, nil
}
