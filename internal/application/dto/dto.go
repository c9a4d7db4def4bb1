package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// ProcessPaymentRequest carries one payment against a loan. ClientID is
// optional; when set it must match the loan's client.
type ProcessPaymentRequest struct {
	OwnerID        string          `json:"owner_id"`
	LoanID         string          `json:"loan_id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	Notes          string          `json:"notes,omitempty"`
	IsInterestOnly bool            `json:"is_interest_only"`
	ClientID       string          `json:"client_id,omitempty"`
}

// ReversePaymentRequest identifies the payment to undo.
type ReversePaymentRequest struct {
	OwnerID   string `json:"owner_id"`
	PaymentID string `json:"payment_id"`
}

// OriginateLoanRequest carries the terms of a new loan. TermDays applies to
// single loans and Installments to amortized ones; zero picks the default.
type OriginateLoanRequest struct {
	OwnerID      string          `json:"owner_id"`
	ClientID     string          `json:"client_id"`
	Type         string          `json:"type"`
	Principal    decimal.Decimal `json:"principal"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	StartDate    time.Time       `json:"start_date"`
	TermDays     int             `json:"term_days,omitempty"`
	Installments int             `json:"installments,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// GetLoanRequest identifies a loan to retrieve.
type GetLoanRequest struct {
	OwnerID string `json:"owner_id"`
	LoanID  string `json:"loan_id"`
}

// DeleteLoanRequest identifies a loan to delete.
type DeleteLoanRequest struct {
	OwnerID string `json:"owner_id"`
	LoanID  string `json:"loan_id"`
}

// RegisterClientRequest carries a new borrower's contact details.
type RegisterClientRequest struct {
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// GetClientRequest identifies a client to retrieve.
type GetClientRequest struct {
	OwnerID  string `json:"owner_id"`
	ClientID string `json:"client_id"`
}

// ListPaymentsRequest identifies the loan whose payments to list.
type ListPaymentsRequest struct {
	OwnerID string `json:"owner_id"`
	LoanID  string `json:"loan_id"`
}

// ListAlertsRequest scopes alerts to one lender.
type ListAlertsRequest struct {
	OwnerID string `json:"owner_id"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// InstallmentResponse represents one period of an amortized loan.
type InstallmentResponse struct {
	Number                       int             `json:"installment_number"`
	DueDate                      time.Time       `json:"due_date"`
	Amount                       decimal.Decimal `json:"amount"`
	PrincipalAmount              decimal.Decimal `json:"principal_amount"`
	InterestAmount               decimal.Decimal `json:"interest_amount"`
	RemainingBalanceAfterPayment decimal.Decimal `json:"remaining_balance_after_payment"`
	Status                       string          `json:"status"`
	PaidAmount                   decimal.Decimal `json:"paid_amount"`
	LateFee                      decimal.Decimal `json:"late_fee"`
}

// RenewalResponse represents one renewal of a single loan.
type RenewalResponse struct {
	Date       time.Time `json:"date"`
	NewDueDate time.Time `json:"new_due_date"`
}

// LoanResponse is the external representation of a loan. Status is the
// read-time view, so it may be overdue.
type LoanResponse struct {
	ID               string                `json:"id"`
	ClientID         string                `json:"client_id"`
	Type             string                `json:"type"`
	Principal        decimal.Decimal       `json:"principal"`
	InterestRate     decimal.Decimal       `json:"interest_rate"`
	StartDate        time.Time             `json:"start_date"`
	DueDate          time.Time             `json:"due_date"`
	RemainingBalance decimal.Decimal       `json:"remaining_balance"`
	Status           string                `json:"status"`
	PaymentHistory   []string              `json:"payment_history"`
	RenewalHistory   []RenewalResponse     `json:"renewal_history,omitempty"`
	Schedule         []InstallmentResponse `json:"payment_schedule,omitempty"`
	Notes            string                `json:"notes,omitempty"`
	Version          int                   `json:"version"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// ScoreEntryResponse represents one line of a client's score history.
type ScoreEntryResponse struct {
	Date        time.Time       `json:"date"`
	Reason      string          `json:"reason"`
	Delta       decimal.Decimal `json:"delta"`
	ScoreBefore decimal.Decimal `json:"score_before"`
	ScoreAfter  decimal.Decimal `json:"score_after"`
}

// ClientResponse is the external representation of a client.
type ClientResponse struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Phone            string               `json:"phone,omitempty"`
	Email            string               `json:"email,omitempty"`
	Address          string               `json:"address,omitempty"`
	Notes            string               `json:"notes,omitempty"`
	RegistrationDate time.Time            `json:"registration_date"`
	Score            decimal.Decimal      `json:"score"`
	ScoreHistory     []ScoreEntryResponse `json:"score_history"`
	Version          int                  `json:"version"`
}

// PaymentResponse is the external representation of a payment.
type PaymentResponse struct {
	ID                string          `json:"id"`
	LoanID            string          `json:"loan_id"`
	ClientID          string          `json:"client_id"`
	Date              time.Time       `json:"date"`
	Amount            decimal.Decimal `json:"amount"`
	Method            string          `json:"method"`
	Notes             string          `json:"notes,omitempty"`
	IsInterestOnly    bool            `json:"is_interest_only"`
	PrincipalPaid     decimal.Decimal `json:"principal_paid"`
	InterestPaid      decimal.Decimal `json:"interest_paid"`
	Classification    string          `json:"classification"`
	ScoreDelta        decimal.Decimal `json:"score_delta"`
	InstallmentNumber int             `json:"installment_number,omitempty"`
	Reversed          bool            `json:"reversed"`
	ReversedAt        *time.Time      `json:"reversed_at,omitempty"`
}

// ListPaymentsResponse is a loan's payment history, oldest first.
// ReversiblePaymentID names the only payment a reversal would accept.
type ListPaymentsResponse struct {
	LoanID              string            `json:"loan_id"`
	Payments            []PaymentResponse `json:"payments"`
	ReversiblePaymentID string            `json:"reversible_payment_id,omitempty"`
}

// ProcessPaymentResponse returns every record touched by a payment.
type ProcessPaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Loan    LoanResponse    `json:"loan"`
	Client  ClientResponse  `json:"client"`
}

// ReversePaymentResponse returns every record touched by a reversal.
type ReversePaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Loan    LoanResponse    `json:"loan"`
	Client  ClientResponse  `json:"client"`
}

// AlertResponse flags a loan that is overdue or falls due soon.
type AlertResponse struct {
	LoanID           string          `json:"loan_id"`
	ClientID         string          `json:"client_id"`
	Severity         string          `json:"severity"`
	Message          string          `json:"message"`
	DueDate          time.Time       `json:"due_date"`
	Days             int             `json:"days"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// ListAlertsResponse lists dangers first, then warnings.
type ListAlertsResponse struct {
	Alerts []AlertResponse `json:"alerts"`
}

// DeleteLoanResponse confirms a deletion.
type DeleteLoanResponse struct {
	LoanID string `json:"loan_id"`
}

// LateFeeSweepResponse summarises one late fee run.
type LateFeeSweepResponse struct {
	LoansScanned        int `json:"loans_scanned"`
	LoansCharged        int `json:"loans_charged"`
	InstallmentsCharged int `json:"installments_charged"`
}

// RelayOutboxResponse summarises one outbox relay run.
type RelayOutboxResponse struct {
	Published int `json:"published"`
}
