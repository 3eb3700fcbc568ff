package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/orrisdesk/internal/shared/constants"
)

type PanelModel struct {
	ID                uint   `gorm:"primarykey"`
	GuildID           string `gorm:"not null;size:32;index:idx_panel_guild"`
	Name              string `gorm:"not null;size:100"`
	CategoryID        string `gorm:"size:32"`
	StaffRoleID       string `gorm:"size:32"`
	LogChannelID      string `gorm:"size:32"`
	MaxTicketsPerUser int    `gorm:"not null;default:1"`
	CooldownSeconds   int    `gorm:"not null;default:0"`
	Enabled           bool   `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (PanelModel) TableName() string {
	return constants.TablePanels
}

type PlanModel struct {
	ID              uint            `gorm:"primarykey"`
	GuildID         string          `gorm:"not null;size:32;index:idx_plan_guild"`
	Name            string          `gorm:"not null;size:100"`
	Description     string          `gorm:"size:500"`
	DurationDays    int             `gorm:"not null"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency        string          `gorm:"size:3;not null"`
	DiscountPercent int             `gorm:"not null;default:0"`
	Enabled         bool            `gorm:"not null;default:true"`
	SortOrder       int             `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (PlanModel) TableName() string {
	return constants.TablePlans
}

type PaymentMethodModel struct {
	ID           uint   `gorm:"primarykey"`
	GuildID      string `gorm:"not null;size:32;index:idx_method_guild"`
	Label        string `gorm:"not null;size:100"`
	Instructions string `gorm:"type:text"`
	Recommended  bool   `gorm:"not null;default:false"`
	Enabled      bool   `gorm:"not null;default:true"`
	SortOrder    int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (PaymentMethodModel) TableName() string {
	return constants.TablePaymentMethods
}

// PlanPricingModel overrides a plan's price for one payment method.
type PlanPricingModel struct {
	ID        uint            `gorm:"primarykey"`
	PlanID    uint            `gorm:"not null;uniqueIndex:uk_plan_method,priority:1"`
	MethodID  uint            `gorm:"not null;uniqueIndex:uk_plan_method,priority:2"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency  string          `gorm:"size:3;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PlanPricingModel) TableName() string {
	return constants.TablePlanPricing
}
