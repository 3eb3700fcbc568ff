package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/orrisdesk/internal/shared/constants"
)

// SubscriptionModel snapshots plan name, price and method label at purchase
// time so later catalog edits do not rewrite history.
type SubscriptionModel struct {
	ID                 uint            `gorm:"primarykey"`
	SID                string          `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: sub_xxx"`
	GuildID            string          `gorm:"not null;size:32;index:idx_sub_guild_status,priority:1"`
	UserID             string          `gorm:"not null;size:32;index:idx_sub_user"`
	TicketID           uint            `gorm:"uniqueIndex;not null"`
	PlanID             uint            `gorm:"not null"`
	Email              string          `gorm:"not null;size:254"`
	PlanName           string          `gorm:"not null;size:100"`
	Price              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency           string          `gorm:"size:3;not null"`
	PaymentMethodLabel string          `gorm:"size:100"`
	StartDate          time.Time       `gorm:"not null"`
	EndDate            time.Time       `gorm:"not null;index:idx_sub_status_end,priority:2"`
	Status             string          `gorm:"not null;size:20;index:idx_sub_guild_status,priority:2;index:idx_sub_status_end,priority:1"`
	CancelledAt        *time.Time
	ExpiredAt          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

type ReminderModel struct {
	ID             uint   `gorm:"primarykey"`
	SubscriptionID uint   `gorm:"not null;uniqueIndex:uk_reminder_sub_date,priority:1"`
	UserID         string `gorm:"not null;size:32"`
	GuildID        string `gorm:"not null;size:32"`
	// ReminderDate is a business-timezone calendar date (YYYY-MM-DD).
	ReminderDate string `gorm:"not null;size:10;uniqueIndex:uk_reminder_sub_date,priority:2;index:idx_reminder_due,priority:2"`
	DaysBefore   int    `gorm:"not null"`
	Sent         bool   `gorm:"not null;default:false;index:idx_reminder_due,priority:1"`
	SentAt       *time.Time
	LastError    *string `gorm:"size:500"`
	ErroredAt    *time.Time
	CreatedAt    time.Time
}

func (ReminderModel) TableName() string {
	return constants.TableReminders
}
