package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/internal/domain/port"
	"github.com/bibbank/microcred/internal/domain/valueobject"
)

// Compile-time interface checks.
var (
	_ port.PaymentRepository = (*PaymentRepo)(nil)
	_ port.PaymentStore      = (*PaymentRepo)(nil)
)

// PaymentRepo reads payments and commits payment events atomically with the
// loan and client they touch.
type PaymentRepo struct {
	db DB
}

// NewPaymentRepo creates a new PostgreSQL-backed payment repository.
func NewPaymentRepo(db DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

const paymentColumns = `
	id, owner_id, loan_id, client_id, date, amount, method, notes, is_interest_only,
	principal_paid, interest_paid, classification, score_delta, installment_number,
	previous_status, previous_due_date, previous_balance, reversed_at`

// FindByID retrieves a payment owned by ownerID.
func (r *PaymentRepo) FindByID(ctx context.Context, ownerID, id string) (model.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE owner_id = $1 AND id = $2`, ownerID, id)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Payment{}, model.ErrPaymentNotFound
		}
		return model.Payment{}, fmt.Errorf("query payment: %w", err)
	}
	return p, nil
}

// ListByLoan returns a loan's payments in the order they were made.
func (r *PaymentRepo) ListByLoan(ctx context.Context, ownerID, loanID string) ([]model.Payment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE owner_id = $1 AND loan_id = $2
		ORDER BY date, id
	`, ownerID, loanID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanPayment(s scannable) (model.Payment, error) {
	var (
		d                               model.PaymentDraft
		date, prevDue                   time.Time
		methodStr, classStr, prevStatus string
		reversedAt                      *time.Time
	)
	err := s.Scan(
		&d.ID, &d.OwnerID, &d.LoanID, &d.ClientID, &date, &d.Amount, &methodStr, &d.Notes, &d.IsInterestOnly,
		&d.PrincipalPaid, &d.InterestPaid, &classStr, &d.ScoreDelta, &d.InstallmentNumber,
		&prevStatus, &prevDue, &d.PreviousBalance, &reversedAt,
	)
	if err != nil {
		return model.Payment{}, err
	}

	if d.Method, err = valueobject.NewPaymentMethod(methodStr); err != nil {
		return model.Payment{}, fmt.Errorf("payment %s: %w", d.ID, err)
	}
	if d.Classification, err = valueobject.NewClassification(classStr); err != nil {
		return model.Payment{}, fmt.Errorf("payment %s: %w", d.ID, err)
	}
	if d.PreviousStatus, err = valueobject.NewLoanStatus(prevStatus); err != nil {
		return model.Payment{}, fmt.Errorf("payment %s: %w", d.ID, err)
	}
	d.Date = date.UTC()
	d.PreviousDueDate = prevDue.UTC()
	if reversedAt != nil {
		t := reversedAt.UTC()
		reversedAt = &t
	}
	return model.ReconstructPayment(d, reversedAt), nil
}
