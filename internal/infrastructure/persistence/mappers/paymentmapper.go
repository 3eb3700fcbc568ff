package mappers

import (
	"fmt"

	"github.com/orris-inc/orrisdesk/internal/domain/payment"
	vo "github.com/orris-inc/orrisdesk/internal/domain/payment/valueobjects"
	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/models"
)

func PaymentToModel(p *payment.Payment) *models.PaymentModel {
	return &models.PaymentModel{
		ID:          p.ID(),
		SID:         p.SID(),
		TicketID:    p.TicketID(),
		GuildID:     p.GuildID(),
		UserID:      p.UserID(),
		PlanID:      p.PlanID(),
		MethodID:    p.MethodID(),
		Amount:      p.Amount().Amount(),
		Currency:    p.Amount().Currency(),
		Status:      p.Status().String(),
		ConfirmedBy: p.ConfirmedBy(),
		ConfirmedAt: p.ConfirmedAt(),
		CreatedAt:   p.CreatedAt(),
	}
}

func PaymentToDomain(m *models.PaymentModel) (*payment.Payment, error) {
	status, err := vo.NewPaymentStatus(m.Status)
	if err != nil {
		return nil, err
	}
	amount, err := money.NewMoney(m.Amount, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("payment %d: %w", m.ID, err)
	}
	return payment.ReconstructPayment(payment.PaymentState{
		ID:          m.ID,
		SID:         m.SID,
		TicketID:    m.TicketID,
		GuildID:     m.GuildID,
		UserID:      m.UserID,
		PlanID:      m.PlanID,
		MethodID:    m.MethodID,
		Amount:      amount,
		Status:      status,
		ConfirmedBy: m.ConfirmedBy,
		ConfirmedAt: m.ConfirmedAt,
		CreatedAt:   m.CreatedAt,
	})
}
