package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/internal/domain/valueobject"
)

// Score history reasons.
const (
	ReasonRenewedOnTime   = "Loan renewed on time"
	ReasonPaidInFull      = "Loan paid in full"
	ReasonPartialPayment  = "Partial payment made"
	ReasonInstallmentPaid = "Installment paid"
	ReasonPaymentReversed = "Payment reversed"
)

// ScorePolicy holds the score deltas. Late payments lose LatePenaltyPerDay
// for each day past due, up to LatePenaltyCap.
type ScorePolicy struct {
	RenewedOnTime      decimal.Decimal
	PaidInFull         decimal.Decimal
	PartialPayment     decimal.Decimal
	InstallmentCleared decimal.Decimal
	LatePenaltyPerDay  decimal.Decimal
	LatePenaltyCap     decimal.Decimal
}

// DefaultScorePolicy returns the standard deltas.
func DefaultScorePolicy() ScorePolicy {
	return ScorePolicy{
		RenewedOnTime:      decimal.NewFromInt(1),
		PaidInFull:         decimal.NewFromInt(2),
		PartialPayment:     decimal.RequireFromString("0.5"),
		InstallmentCleared: decimal.RequireFromString("0.5"),
		LatePenaltyPerDay:  decimal.RequireFromString("0.1"),
		LatePenaltyCap:     decimal.NewFromInt(1),
	}
}

// ---------------------------------------------------------------------------
// ScoreLedger – domain service maintaining client trust scores
// ---------------------------------------------------------------------------

// ScoreLedger turns payment classifications into score history entries.
type ScoreLedger struct {
	policy ScorePolicy
}

// NewScoreLedger returns a ledger applying policy.
func NewScoreLedger(policy ScorePolicy) *ScoreLedger {
	return &ScoreLedger{policy: policy}
}

// Evaluate computes the score delta and reason for a payment outcome.
//
// Rules:
//
//	renewed on time             -> +RenewedOnTime, whatever the timing
//	late (daysPastDue > 0)      -> -min(cap, perDay * daysPastDue)
//	paid in full / partial / installment cleared on time -> fixed bonus
func (s *ScoreLedger) Evaluate(c valueobject.Classification, daysPastDue int) (decimal.Decimal, string) {
	if c.Equal(valueobject.ClassificationRenewedOnTime) {
		return s.policy.RenewedOnTime, ReasonRenewedOnTime
	}

	if daysPastDue > 0 {
		penalty := decimal.Min(s.policy.LatePenaltyCap, s.policy.LatePenaltyPerDay.Mul(decimal.NewFromInt(int64(daysPastDue))))
		return penalty.Neg(), fmt.Sprintf("Late payment (%d days past due)", daysPastDue)
	}

	switch {
	case c.Equal(valueobject.ClassificationPaidInFull):
		return s.policy.PaidInFull, ReasonPaidInFull
	case c.Equal(valueobject.ClassificationInstallmentCleared):
		return s.policy.InstallmentCleared, ReasonInstallmentPaid
	default:
		return s.policy.PartialPayment, ReasonPartialPayment
	}
}

// Apply appends exactly one score history entry for a payment outcome and
// returns the updated client with the delta that was requested.
func (s *ScoreLedger) Apply(
	client model.Client,
	c valueobject.Classification,
	daysPastDue int,
	now time.Time,
) (model.Client, decimal.Decimal) {
	delta, reason := s.Evaluate(c, daysPastDue)
	return client.AdjustScore(delta, reason, now), delta
}

// Revert appends the inverse of a payment's recorded score delta.
func (s *ScoreLedger) Revert(client model.Client, payment model.Payment, now time.Time) model.Client {
	return client.AdjustScore(payment.ScoreDelta().Neg(), ReasonPaymentReversed, now)
}
