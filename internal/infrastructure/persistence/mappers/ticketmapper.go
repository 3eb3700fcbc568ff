package mappers

import (
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	vo "github.com/orris-inc/orrisdesk/internal/domain/ticket/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/models"
)

func TicketToModel(t *ticket.Ticket) *models.TicketModel {
	return &models.TicketModel{
		ID:                 t.ID(),
		SID:                t.SID(),
		GuildID:            t.GuildID(),
		PanelID:            t.PanelID(),
		OpenerID:           t.OpenerID(),
		ChannelID:          t.ChannelID(),
		PlanID:             t.PlanID(),
		PaymentMethodID:    t.PaymentMethodID(),
		Status:             t.Status().String(),
		ClaimedBy:          t.ClaimedBy(),
		PaymentConfirmed:   t.IsPaymentConfirmed(),
		PaymentConfirmedBy: t.PaymentConfirmedBy(),
		PaymentConfirmedAt: t.PaymentConfirmedAt(),
		Email:              t.Email(),
		ClosedBy:           t.ClosedBy(),
		ClosedAt:           t.ClosedAt(),
		CreatedAt:          t.CreatedAt(),
		UpdatedAt:          t.UpdatedAt(),
	}
}

func TicketToDomain(m *models.TicketModel) (*ticket.Ticket, error) {
	status, err := vo.NewTicketStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return ticket.ReconstructTicket(ticket.TicketState{
		ID:                 m.ID,
		SID:                m.SID,
		GuildID:            m.GuildID,
		PanelID:            m.PanelID,
		OpenerID:           m.OpenerID,
		ChannelID:          m.ChannelID,
		PlanID:             m.PlanID,
		PaymentMethodID:    m.PaymentMethodID,
		Status:             status,
		ClaimedBy:          m.ClaimedBy,
		PaymentConfirmed:   m.PaymentConfirmed,
		PaymentConfirmedBy: m.PaymentConfirmedBy,
		PaymentConfirmedAt: m.PaymentConfirmedAt,
		Email:              m.Email,
		ClosedBy:           m.ClosedBy,
		ClosedAt:           m.ClosedAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	})
}
