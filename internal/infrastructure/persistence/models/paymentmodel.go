package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/orrisdesk/internal/shared/constants"
)

// PaymentModel is a member's claim of having paid, reviewed by staff.
type PaymentModel struct {
	ID          uint            `gorm:"primarykey"`
	SID         string          `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: pay_xxx"`
	TicketID    uint            `gorm:"not null;index:idx_payment_ticket_status,priority:1"`
	GuildID     string          `gorm:"not null;size:32"`
	UserID      string          `gorm:"not null;size:32"`
	PlanID      uint            `gorm:"not null"`
	MethodID    uint            `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency    string          `gorm:"size:3;not null"`
	Status      string          `gorm:"not null;size:20;index:idx_payment_ticket_status,priority:2"`
	ConfirmedBy *string         `gorm:"size:32"`
	ConfirmedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PaymentModel) TableName() string {
	return constants.TablePayments
}
