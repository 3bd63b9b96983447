package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/progresar/progresar-core/internal/domain"
)

type loanRepository struct {
	db DBTX
}

func NewLoanRepository(db DBTX) LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, account_id, principal, installment_count, installment_amount, total_amount, total_interest, installments_paid, description, approval_score, payment_capacity_ratio, status, created_at, due_at, completed_at`

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.AccountID,
		loan.Principal,
		loan.InstallmentCount,
		loan.InstallmentAmount,
		loan.TotalAmount,
		loan.TotalInterest,
		loan.InstallmentsPaid,
		loan.Description,
		loan.ApprovalScore,
		loan.PaymentCapacityRatio,
		loan.Status,
		loan.CreatedAt,
		loan.DueAt,
		loan.CompletedAt,
	)

	return err
}

func (r *loanRepository) CreateInstallments(ctx context.Context, installments []*domain.Installment) error {
	query := `
		INSERT INTO installments (id, loan_id, installment_number, amount, due_at, paid_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, installment := range installments {
		_, err := r.db.ExecContext(ctx, query,
			installment.ID,
			installment.LoanID,
			installment.InstallmentNumber,
			installment.Amount,
			installment.DueAt,
			installment.PaidAt,
			installment.Status,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE id = $1
	`

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, id)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE id = $1
		FOR UPDATE
	`

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, id)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		ORDER BY created_at DESC
	`

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, query)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE account_id = $1
		ORDER BY created_at DESC
	`

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, query, accountID)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) GetInstallments(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	query := `
		SELECT id, loan_id, installment_number, amount, due_at, paid_at, status
		FROM installments
		WHERE loan_id = $1
		ORDER BY installment_number
	`

	var installments []*domain.Installment
	err := r.db.SelectContext(ctx, &installments, query, loanID)
	if err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *loanRepository) MarkInstallmentPaid(ctx context.Context, installmentID uuid.UUID, paidAt time.Time) error {
	query := `
		UPDATE installments
		SET status = $2, paid_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, installmentID, domain.InstallmentStatusPaid, paidAt)
	return err
}

func (r *loanRepository) UpdateProgress(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET installments_paid = $2, status = $3, completed_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.InstallmentsPaid,
		loan.Status,
		loan.CompletedAt,
	)

	return err
}

func (r *loanRepository) MarkOverdueInstallments(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE installments
		SET status = $1
		WHERE status = $2 AND due_at < $3
	`

	result, err := r.db.ExecContext(ctx, query, domain.InstallmentStatusOverdue, domain.InstallmentStatusPending, now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
