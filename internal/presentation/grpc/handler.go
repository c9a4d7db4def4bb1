package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/microcred/internal/application/dto"
	"github.com/bibbank/microcred/internal/application/usecase"
	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/pkg/auth"
	"github.com/bibbank/microcred/pkg/money"
)

// Roles allowed to change the ledger and to read it.
var (
	writerRoles = []string{auth.RoleLender, auth.RoleOperator}
	readerRoles = []string{auth.RoleLender, auth.RoleOperator, auth.RoleAuditor}
)

// requireRole checks that the caller holds at least one of roles.
func requireRole(ctx context.Context, roles ...string) error {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "authentication required")
	}
	for _, role := range roles {
		if claims.HasRole(role) {
			return nil
		}
	}
	return status.Error(codes.PermissionDenied, "insufficient permissions")
}

// ownerFromContext returns the lender account every record is scoped to.
func ownerFromContext(ctx context.Context) (string, error) {
	owner, ok := auth.OwnerFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "authentication required")
	}
	return owner, nil
}

var errNilRequest = status.Error(codes.InvalidArgument, "request is required")

// Request messages. Amounts and rates are decimal strings.

type ProcessPaymentRequest struct {
	LoanID         string `json:"loan_id"`
	ClientID       string `json:"client_id,omitempty"`
	Amount         string `json:"amount"`
	Method         string `json:"method"`
	Notes          string `json:"notes,omitempty"`
	IsInterestOnly bool   `json:"is_interest_only"`
}

type ReversePaymentRequest struct {
	PaymentID string `json:"payment_id"`
}

// OriginateLoanRequest accepts StartDate as RFC 3339 or YYYY-MM-DD. An
// empty StartDate books the loan today.
type OriginateLoanRequest struct {
	ClientID     string `json:"client_id"`
	Type         string `json:"type"`
	Principal    string `json:"principal"`
	InterestRate string `json:"interest_rate"`
	StartDate    string `json:"start_date,omitempty"`
	TermDays     int32  `json:"term_days,omitempty"`
	Installments int32  `json:"installments,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type GetLoanRequest struct {
	LoanID string `json:"loan_id"`
}

type DeleteLoanRequest struct {
	LoanID string `json:"loan_id"`
}

type RegisterClientRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type GetClientRequest struct {
	ClientID string `json:"client_id"`
}

type ListAlertsRequest struct{}

type ListPaymentsRequest struct {
	LoanID string `json:"loan_id"`
}

// Compile-time assertion that LedgerHandler implements LedgerServiceServer.
var _ LedgerServiceServer = (*LedgerHandler)(nil)

// LedgerHandler implements the gRPC LedgerService server.
type LedgerHandler struct {
	UnimplementedLedgerServiceServer
	processPayment *usecase.ProcessPaymentUseCase
	reversePayment *usecase.ReversePaymentUseCase
	originateLoan  *usecase.OriginateLoanUseCase
	getLoan        *usecase.GetLoanUseCase
	deleteLoan     *usecase.DeleteLoanUseCase
	registerClient *usecase.RegisterClientUseCase
	getClient      *usecase.GetClientUseCase
	listAlerts     *usecase.ListAlertsUseCase
	listPayments   *usecase.ListPaymentsUseCase

	logger *slog.Logger
}

// NewLedgerHandler creates a new handler with all use-case dependencies.
func NewLedgerHandler(
	processPayment *usecase.ProcessPaymentUseCase,
	reversePayment *usecase.ReversePaymentUseCase,
	originateLoan *usecase.OriginateLoanUseCase,
	getLoan *usecase.GetLoanUseCase,
	deleteLoan *usecase.DeleteLoanUseCase,
	registerClient *usecase.RegisterClientUseCase,
	getClient *usecase.GetClientUseCase,
	listAlerts *usecase.ListAlertsUseCase,
	listPayments *usecase.ListPaymentsUseCase,
	logger *slog.Logger,
) *LedgerHandler {
	return &LedgerHandler{
		processPayment: processPayment,
		reversePayment: reversePayment,
		originateLoan:  originateLoan,
		getLoan:        getLoan,
		deleteLoan:     deleteLoan,
		registerClient: registerClient,
		getClient:      getClient,
		listAlerts:     listAlerts,
		listPayments:   listPayments,
		logger:         logger,
	}
}

// ProcessPayment records a payment and returns the payment, loan and client.
func (h *LedgerHandler) ProcessPayment(ctx context.Context, req *ProcessPaymentRequest) (*dto.ProcessPaymentResponse, error) {
	owner, err := h.authorize(ctx, writerRoles)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errNilRequest
	}
	if req.LoanID == "" {
		return nil, status.Error(codes.InvalidArgument, "loan_id is required")
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid amount: %v", err)
	}

	resp, err := h.processPayment.Execute(ctx, dto.ProcessPaymentRequest{
		OwnerID:        owner,
		LoanID:         req.LoanID,
		Amount:         amount,
		Method:         req.Method,
		Notes:          req.Notes,
		IsInterestOnly: req.IsInterestOnly,
		ClientID:       req.ClientID,
	})
	if err != nil {
		return nil, h.toStatus("ProcessPayment", err)
	}
	return &resp, nil
}

// ReversePayment undoes the most recent payment of a loan.
func (h *LedgerHandler) ReversePayment(ctx context.Context, req *ReversePaymentRequest) (*dto.ReversePaymentResponse, error) {
	owner, err := h.authorize(ctx, writerRoles)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errNilRequest
	}
	if req.PaymentID == "" {
		return nil, status.Error(codes.InvalidArgument, "payment_id is required")
	}

	resp, err := h.reversePayment.Execute(ctx, dto.ReversePaymentRequest{
		OwnerID:   owner,
		PaymentID: req.PaymentID,
	})
	if err != nil {
		return nil, h.toStatus("ReversePayment", err)
	}
	return &resp, nil
}

// OriginateLoan books a new single or installments loan.
func (h *LedgerHandler) OriginateLoan(ctx context.Context, req *OriginateLoanRequest) (*dto.LoanResponse, error) {
	owner, err := h.authorize(ctx, writerRoles)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errNilRequest
	}
	if req.ClientID == "" {
		return nil, status.Error(codes.InvalidArgument, "client_id is required")
	}
	principal, err := money.Parse(req.Principal)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid principal: %v", err)
	}
	rate, err := money.Parse(req.InterestRate)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid interest_rate: %v", err)
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid start_date: %v", err)
	}
	if req.TermDays < 0 || req.Installments < 0 {
		return nil, status.Error(codes.InvalidArgument, "term_days and installments must not be negative")
	}
	if req.Installments > model.MaxInstallments {
		return nil, status.Errorf(codes.InvalidArgument, "installments must not exceed %d", model.MaxInstallments)
	}

	resp, err := h.originateLoan.Execute(ctx, dto.OriginateLoanRequest{
		OwnerID:      owner,
		ClientID:     req.ClientID,
		Type:         req.Type,
		Principal:    principal,
		InterestRate: rate,
		StartDate:    start,
		TermDays:     int(req.TermDays),
		Installments: int(req.Installments),
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, h.toStatus("OriginateLoan", err)
	}
	return &resp, nil
}

// GetLoan returns a loan with its read-time status.
func (h *LedgerHandler) GetLoan(ctx context.Context, req *GetLoanRequest) (*dto.LoanResponse, error) {
	owner, err := h.authorize(ctx, readerRoles)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errNilRequest
	}
	if req.LoanID == "" {
		return nil, status.Error(codes.InvalidArgument, "loan_id is required")
	}

	resp, err := h.getLoan.Execute(ctx, dto.GetLoanRequest{OwnerID: owner, LoanID: req.LoanID})
	if err != nil {
		return nil, h.toStatus("GetLoan", err)
	}
	return &resp, nil
}

// DeleteLoan removes a loan that has no recorded payments.
func (h *LedgerHandler) DeleteLoan(ctx context.Context, req *DeleteLoanRequest) (*dto.DeleteLoanResponse, error) {
	owner, err := h.authorize(ctx, writerRoles)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errNilRequest
	}
	if req.LoanID == "" {
		return nil, status.Error(codes.InvalidArgument, "loan_id is required")
	}

	resp, err := h.deleteLoan.Execute(ctx, dto.DeleteLoanRequest{OwnerID: owner, LoanID: req.LoanID})
	if err != nil {
		return nil, h.toStatus("DeleteLoan", err)
	}
	return &resp, nil
}

func (h *LedgerHandler) RegisterClient(ctx context.Context, req *RegisterClientRequest) (*dto.ClientResponse, error) {
	owner, err := h.authorize(ctx, writerRoles)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errNilRequest
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}

	resp, err := h.registerClient.Execute(ctx, dto.RegisterClientRequest{
		OwnerID: owner,
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		return nil, h.toStatus("RegisterClient", err)
	}
	return &resp, nil
}

func (h *LedgerHandler) GetClient(ctx context.Context, req *GetClientRequest) (*dto.ClientResponse, error) {
	owner, err := h.authorize(ctx, readerRoles)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errNilRequest
	}
	if req.ClientID == "" {
		return nil, status.Error(codes.InvalidArgument, "client_id is required")
	}

	resp, err := h.getClient.Execute(ctx, dto.GetClientRequest{OwnerID: owner, ClientID: req.ClientID})
	if err != nil {
		return nil, h.toStatus("GetClient", err)
	}
	return &resp, nil
}

// ListPayments returns a loan's payments, reversed ones included, and the
// payment a reversal would currently accept.
func (h *LedgerHandler) ListPayments(ctx context.Context, req *ListPaymentsRequest) (*dto.ListPaymentsResponse, error) {
	owner, err := h.authorize(ctx, readerRoles)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errNilRequest
	}
	if req.LoanID == "" {
		return nil, status.Error(codes.InvalidArgument, "loan_id is required")
	}

	resp, err := h.listPayments.Execute(ctx, dto.ListPaymentsRequest{OwnerID: owner, LoanID: req.LoanID})
	if err != nil {
		return nil, h.toStatus("ListPayments", err)
	}
	return &resp, nil
}

// ListAlerts returns overdue and due-soon loans for the caller.
func (h *LedgerHandler) ListAlerts(ctx context.Context, req *ListAlertsRequest) (*dto.ListAlertsResponse, error) {
	owner, err := h.authorize(ctx, readerRoles)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errNilRequest
	}

	resp, err := h.listAlerts.Execute(ctx, dto.ListAlertsRequest{OwnerID: owner})
	if err != nil {
		return nil, h.toStatus("ListAlerts", err)
	}
	return &resp, nil
}

// authorize checks roles and resolves the owner.
func (h *LedgerHandler) authorize(ctx context.Context, roles []string) (string, error) {
	if err := requireRole(ctx, roles...); err != nil {
		return "", err
	}
	return ownerFromContext(ctx)
}

// toStatus maps domain errors to gRPC codes. Unexpected errors are logged
// and hidden behind a generic message.
func (h *LedgerHandler) toStatus(method string, err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, model.ErrLoanNotFound),
		errors.Is(err, model.ErrClientNotFound),
		errors.Is(err, model.ErrPaymentNotFound):
		code = codes.NotFound
	case errors.Is(err, model.ErrInvalidPaymentAmount),
		errors.Is(err, model.ErrInterestAmountMismatch),
		errors.Is(err, model.ErrInvalidPaymentMethod),
		errors.Is(err, model.ErrInvalidInput):
		code = codes.InvalidArgument
	case errors.Is(err, model.ErrLoanAlreadyPaid),
		errors.Is(err, model.ErrReversalOutOfOrder),
		errors.Is(err, model.ErrPaymentAlreadyReversed),
		errors.Is(err, model.ErrLoanHasPayments):
		code = codes.FailedPrecondition
	case errors.Is(err, model.ErrConcurrentModification):
		code = codes.Aborted
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	default:
		h.logger.Error("handler error", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}
