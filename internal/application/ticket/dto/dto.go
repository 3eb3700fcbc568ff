package dto

import (
	"time"

	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
)

type TicketDTO struct {
	ID                 uint       `json:"id"`
	SID                string     `json:"sid"`
	GuildID            string     `json:"guild_id"`
	PanelID            uint       `json:"panel_id"`
	OpenerID           string     `json:"opener_id"`
	ChannelID          string     `json:"channel_id"`
	PlanID             *uint      `json:"plan_id,omitempty"`
	PaymentMethodID    *uint      `json:"payment_method_id,omitempty"`
	Status             string     `json:"status"`
	Stage              string     `json:"stage"`
	ClaimedBy          *string    `json:"claimed_by,omitempty"`
	PaymentConfirmed   bool       `json:"payment_confirmed"`
	PaymentConfirmedBy *string    `json:"payment_confirmed_by,omitempty"`
	PaymentConfirmedAt *time.Time `json:"payment_confirmed_at,omitempty"`
	Email              *string    `json:"email,omitempty"`
	ClosedBy           *string    `json:"closed_by,omitempty"`
	ClosedAt           *time.Time `json:"closed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type TicketStatsDTO struct {
	GuildID string `json:"guild_id"`
	Open    int64  `json:"open"`
	Closed  int64  `json:"closed"`
	Total   int64  `json:"total"`
}

func ToTicketDTO(t *ticket.Ticket) *TicketDTO {
	if t == nil {
		return nil
	}
	return &TicketDTO{
		ID:                 t.ID(),
		SID:                t.SID(),
		GuildID:            t.GuildID(),
		PanelID:            t.PanelID(),
		OpenerID:           t.OpenerID(),
		ChannelID:          t.ChannelID(),
		PlanID:             t.PlanID(),
		PaymentMethodID:    t.PaymentMethodID(),
		Status:             t.Status().String(),
		Stage:              t.Stage().String(),
		ClaimedBy:          t.ClaimedBy(),
		PaymentConfirmed:   t.IsPaymentConfirmed(),
		PaymentConfirmedBy: t.PaymentConfirmedBy(),
		PaymentConfirmedAt: t.PaymentConfirmedAt(),
		Email:              t.Email(),
		ClosedBy:           t.ClosedBy(),
		ClosedAt:           t.ClosedAt(),
		CreatedAt:          t.CreatedAt(),
	}
}
