package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/internal/domain/port"
	"github.com/bibbank/microcred/internal/domain/valueobject"
	pgutil "github.com/bibbank/microcred/pkg/postgres"
)

// Compile-time interface check.
var _ port.LoanRepository = (*LoanRepo)(nil)

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	db DB
}

// NewLoanRepo creates a new PostgreSQL-backed loan repository.
func NewLoanRepo(db DB) *LoanRepo {
	return &LoanRepo{db: db}
}

const loanColumns = `
	id, owner_id, client_id, type, principal, interest_rate,
	start_date, due_date, remaining_balance, status,
	payment_history, reversed_payments, notes,
	version, created_at, updated_at`

// Save persists a loan, its schedule and renewals, and its domain events.
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	return pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := saveLoan(ctx, tx, loan); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, loan.DomainEvents())
	})
}

// FindByID retrieves a loan owned by ownerID.
func (r *LoanRepo) FindByID(ctx context.Context, ownerID, id string) (model.Loan, error) {
	row := r.db.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE owner_id = $1 AND id = $2`, ownerID, id)
	s, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Loan{}, model.ErrLoanNotFound
		}
		return model.Loan{}, fmt.Errorf("query loan: %w", err)
	}
	return r.hydrate(ctx, s)
}

// ListOpen returns every unpaid loan of ownerID, earliest due first.
func (r *LoanRepo) ListOpen(ctx context.Context, ownerID string) ([]model.Loan, error) {
	return r.list(ctx, `
		SELECT `+loanColumns+` FROM loans
		WHERE owner_id = $1 AND status <> 'paid'
		ORDER BY due_date, id
	`, ownerID)
}

// ListOpenInstallments returns unpaid amortized loans across all owners.
func (r *LoanRepo) ListOpenInstallments(ctx context.Context) ([]model.Loan, error) {
	return r.list(ctx, `
		SELECT `+loanColumns+` FROM loans
		WHERE type = 'installments' AND status <> 'paid'
		ORDER BY due_date, id
	`)
}

// Delete removes a loan without payments. Schedule and renewals cascade.
func (r *LoanRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM loans
		WHERE owner_id = $1 AND id = $2 AND cardinality(payment_history) = 0
	`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLoanNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

func (r *LoanRepo) list(ctx context.Context, query string, args ...any) ([]model.Loan, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	var snapshots []model.LoanSnapshot
	for rows.Next() {
		s, err := scanLoan(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loans: %w", err)
	}

	loans := make([]model.Loan, 0, len(snapshots))
	for _, s := range snapshots {
		loan, err := r.hydrate(ctx, s)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

// hydrate loads the child rows of a loan.
func (r *LoanRepo) hydrate(ctx context.Context, s model.LoanSnapshot) (model.Loan, error) {
	var err error
	if s.Schedule, err = loadSchedule(ctx, r.db, s.ID); err != nil {
		return model.Loan{}, err
	}
	if s.RenewalHistory, err = loadRenewals(ctx, r.db, s.ID); err != nil {
		return model.Loan{}, err
	}
	return model.ReconstructLoan(s), nil
}

// saveLoan upserts the loan row conditionally on its version and writes its
// child rows, returning the stored version. A stale version yields
// model.ErrConcurrentModification.
func saveLoan(ctx context.Context, tx pgx.Tx, loan model.Loan) (int, error) {
	var version int
	err := tx.QueryRow(ctx, `
		INSERT INTO loans (`+loanColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			due_date          = EXCLUDED.due_date,
			remaining_balance = EXCLUDED.remaining_balance,
			status            = EXCLUDED.status,
			payment_history   = EXCLUDED.payment_history,
			reversed_payments = EXCLUDED.reversed_payments,
			notes             = EXCLUDED.notes,
			version           = loans.version + 1,
			updated_at        = EXCLUDED.updated_at
		WHERE loans.version = $14
		RETURNING version
	`,
		loan.ID(), loan.OwnerID(), loan.ClientID(), loan.Type().String(),
		loan.Principal(), loan.InterestRate(),
		loan.StartDate(), loan.DueDate(), loan.RemainingBalance(), loan.Status().String(),
		nonNil(loan.PaymentHistory()), nonNil(loan.ReversedPayments()), loan.Notes(),
		loan.Version(), loan.CreatedAt(), loan.UpdatedAt(),
	).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("save loan %s: %w", loan.ID(), model.ErrConcurrentModification)
	}
	if err != nil {
		return 0, fmt.Errorf("save loan: %w", err)
	}

	for _, inst := range loan.Schedule() {
		_, err := tx.Exec(ctx, `
			INSERT INTO installments (
				loan_id, number, due_date, amount, principal_amount, interest_amount,
				remaining_balance, status, paid_amount, late_fee
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (loan_id, number) DO UPDATE SET
				status      = EXCLUDED.status,
				paid_amount = EXCLUDED.paid_amount,
				late_fee    = EXCLUDED.late_fee
		`,
			loan.ID(), inst.Number, inst.DueDate, inst.Amount, inst.PrincipalAmount, inst.InterestAmount,
			inst.RemainingBalanceAfterPayment, inst.Status.String(), inst.PaidAmount, inst.LateFee,
		)
		if err != nil {
			return 0, fmt.Errorf("save installment %d: %w", inst.Number, err)
		}
	}

	for i, rn := range loan.RenewalHistory() {
		_, err := tx.Exec(ctx, `
			INSERT INTO renewals (loan_id, seq, date, new_due_date)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (loan_id, seq) DO NOTHING
		`, loan.ID(), i+1, rn.Date, rn.NewDueDate)
		if err != nil {
			return 0, fmt.Errorf("save renewal %d: %w", i+1, err)
		}
	}
	return version, nil
}

func scanLoan(s scannable) (model.LoanSnapshot, error) {
	var (
		snap                  model.LoanSnapshot
		typeStr, statusStr    string
		startDate, dueDate    time.Time
		createdAt, updatedAt  time.Time
		principal, rate, bal  decimal.Decimal
		history, reversedList []string
	)
	err := s.Scan(
		&snap.ID, &snap.OwnerID, &snap.ClientID, &typeStr, &principal, &rate,
		&startDate, &dueDate, &bal, &statusStr,
		&history, &reversedList, &snap.Notes,
		&snap.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.LoanSnapshot{}, err
	}

	loanType, err := valueobject.NewLoanType(typeStr)
	if err != nil {
		return model.LoanSnapshot{}, fmt.Errorf("loan %s: %w", snap.ID, err)
	}
	status, err := valueobject.NewLoanStatus(statusStr)
	if err != nil {
		return model.LoanSnapshot{}, fmt.Errorf("loan %s: %w", snap.ID, err)
	}

	snap.Type = loanType
	snap.Status = status
	snap.Principal = principal
	snap.InterestRate = rate
	snap.RemainingBalance = bal
	snap.StartDate = startDate.UTC()
	snap.DueDate = dueDate.UTC()
	snap.PaymentHistory = history
	snap.ReversedPayments = reversedList
	snap.CreatedAt = createdAt.UTC()
	snap.UpdatedAt = updatedAt.UTC()
	return snap, nil
}

func loadSchedule(ctx context.Context, db pgutil.Querier, loanID string) ([]model.Installment, error) {
	rows, err := db.Query(ctx, `
		SELECT number, due_date, amount, principal_amount, interest_amount,
		       remaining_balance, status, paid_amount, late_fee
		FROM installments
		WHERE loan_id = $1
		ORDER BY number
	`, loanID)
	if err != nil {
		return nil, fmt.Errorf("query installments: %w", err)
	}
	defer rows.Close()

	var schedule []model.Installment
	for rows.Next() {
		var (
			inst      model.Installment
			dueDate   time.Time
			statusStr string
		)
		if err := rows.Scan(
			&inst.Number, &dueDate, &inst.Amount, &inst.PrincipalAmount, &inst.InterestAmount,
			&inst.RemainingBalanceAfterPayment, &statusStr, &inst.PaidAmount, &inst.LateFee,
		); err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		status, err := valueobject.NewInstallmentStatus(statusStr)
		if err != nil {
			return nil, fmt.Errorf("installment %d: %w", inst.Number, err)
		}
		inst.DueDate = dueDate.UTC()
		inst.Status = status
		schedule = append(schedule, inst)
	}
	return schedule, rows.Err()
}

func loadRenewals(ctx context.Context, db pgutil.Querier, loanID string) ([]model.RenewalEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT date, new_due_date FROM renewals WHERE loan_id = $1 ORDER BY seq
	`, loanID)
	if err != nil {
		return nil, fmt.Errorf("query renewals: %w", err)
	}
	defer rows.Close()

	var renewals []model.RenewalEntry
	for rows.Next() {
		var date, newDue time.Time
		if err := rows.Scan(&date, &newDue); err != nil {
			return nil, fmt.Errorf("scan renewal: %w", err)
		}
		renewals = append(renewals, model.RenewalEntry{Date: date.UTC(), NewDueDate: newDue.UTC()})
	}
	return renewals, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
