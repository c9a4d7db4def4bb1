package model

import "errors"

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	// Not found / not owned by the caller.
	ErrLoanNotFound    = errors.New("loan not found")
	ErrClientNotFound  = errors.New("client not found")
	ErrPaymentNotFound = errors.New("payment not found")

	// Payment validation.
	ErrInvalidPaymentAmount   = errors.New("payment amount must be positive")
	ErrInterestAmountMismatch = errors.New("interest-only payment does not match expected interest")
	ErrLoanAlreadyPaid        = errors.New("loan is already paid")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")

	// Reversal.
	ErrReversalOutOfOrder     = errors.New("only the most recent payment of a loan can be reversed")
	ErrPaymentAlreadyReversed = errors.New("payment already reversed")

	// Origination and lifecycle.
	ErrInvalidInput    = errors.New("invalid loan terms")
	ErrLoanHasPayments = errors.New("loan with recorded payments cannot be deleted")

	// Storage.
	ErrConcurrentModification = errors.New("concurrent modification")
)
