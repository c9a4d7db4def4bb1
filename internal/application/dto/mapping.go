package dto

import (
	"fmt"
	"time"

	"github.com/bibbank/microcred/internal/domain/model"
)

// FromLoan maps a loan to its response, computing the read-time status.
func FromLoan(l model.Loan, now time.Time) LoanResponse {
	resp := LoanResponse{
		ID:               l.ID(),
		ClientID:         l.ClientID(),
		Type:             l.Type().String(),
		Principal:        l.Principal(),
		InterestRate:     l.InterestRate(),
		StartDate:        l.StartDate(),
		DueDate:          l.DueDate(),
		RemainingBalance: l.RemainingBalance(),
		Status:           l.EffectiveStatus(now).String(),
		PaymentHistory:   l.PaymentHistory(),
		Notes:            l.Notes(),
		Version:          l.Version(),
		CreatedAt:        l.CreatedAt(),
		UpdatedAt:        l.UpdatedAt(),
	}
	if resp.PaymentHistory == nil {
		resp.PaymentHistory = []string{}
	}
	for _, r := range l.RenewalHistory() {
		resp.RenewalHistory = append(resp.RenewalHistory, RenewalResponse{Date: r.Date, NewDueDate: r.NewDueDate})
	}
	for _, inst := range l.Schedule() {
		resp.Schedule = append(resp.Schedule, InstallmentResponse{
			Number:                       inst.Number,
			DueDate:                      inst.DueDate,
			Amount:                       inst.Amount,
			PrincipalAmount:              inst.PrincipalAmount,
			InterestAmount:               inst.InterestAmount,
			RemainingBalanceAfterPayment: inst.RemainingBalanceAfterPayment,
			Status:                       inst.Status.String(),
			PaidAmount:                   inst.PaidAmount,
			LateFee:                      inst.LateFee,
		})
	}
	return resp
}

// FromClient maps a client to its response.
func FromClient(c model.Client) ClientResponse {
	p := c.Profile()
	resp := ClientResponse{
		ID:               c.ID(),
		Name:             p.Name,
		Phone:            p.Phone,
		Email:            p.Email,
		Address:          p.Address,
		Notes:            p.Notes,
		RegistrationDate: c.RegistrationDate(),
		Score:            c.Score(),
		ScoreHistory:     []ScoreEntryResponse{},
		Version:          c.Version(),
	}
	for _, e := range c.ScoreHistory() {
		resp.ScoreHistory = append(resp.ScoreHistory, ScoreEntryResponse{
			Date:        e.Date,
			Reason:      e.Reason,
			Delta:       e.Delta,
			ScoreBefore: e.ScoreBefore,
			ScoreAfter:  e.ScoreAfter,
		})
	}
	return resp
}

// FromPayment maps a payment to its response.
func FromPayment(p model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                p.ID(),
		LoanID:            p.LoanID(),
		ClientID:          p.ClientID(),
		Date:              p.Date(),
		Amount:            p.Amount(),
		Method:            p.Method().String(),
		Notes:             p.Notes(),
		IsInterestOnly:    p.IsInterestOnly(),
		PrincipalPaid:     p.PrincipalPaid(),
		InterestPaid:      p.InterestPaid(),
		Classification:    p.Classification().String(),
		ScoreDelta:        p.ScoreDelta(),
		InstallmentNumber: p.InstallmentNumber(),
		Reversed:          p.IsReversed(),
		ReversedAt:        p.ReversedAt(),
	}
}

// FromAlert maps a loan alert to its response.
func FromAlert(a model.Alert) AlertResponse {
	msg := fmt.Sprintf("Loan due in %d day(s).", a.Days)
	if a.Severity == model.AlertDanger {
		msg = fmt.Sprintf("Loan overdue by %d day(s).", a.Days)
	}
	return AlertResponse{
		LoanID:           a.LoanID,
		ClientID:         a.ClientID,
		Severity:         a.Severity,
		Message:          msg,
		DueDate:          a.DueDate,
		Days:             a.Days,
		RemainingBalance: a.RemainingBalance,
	}
}
