package models

import (
	"time"

	"github.com/orris-inc/orrisdesk/internal/shared/constants"
)

type TicketModel struct {
	ID                 uint   `gorm:"primarykey"`
	SID                string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: tkt_xxx"`
	GuildID            string `gorm:"not null;size:32;index:idx_ticket_guild_status,priority:1"`
	PanelID            uint   `gorm:"not null;index:idx_ticket_opener_panel,priority:2"`
	OpenerID           string `gorm:"not null;size:32;index:idx_ticket_opener_panel,priority:1"`
	ChannelID          string `gorm:"uniqueIndex;not null;size:32"`
	PlanID             *uint
	PaymentMethodID    *uint
	Status             string  `gorm:"not null;size:20;index:idx_ticket_guild_status,priority:2"`
	ClaimedBy          *string `gorm:"size:32"`
	PaymentConfirmed   bool    `gorm:"not null;default:false"`
	PaymentConfirmedBy *string `gorm:"size:32"`
	PaymentConfirmedAt *time.Time
	Email              *string `gorm:"size:254"`
	ClosedBy           *string `gorm:"size:32"`
	ClosedAt           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (TicketModel) TableName() string {
	return constants.TableTickets
}
