// Package payment records a member's claim to have paid. It is an attestation
// confirmed by staff, not a verified gateway transaction.
package payment

import (
	"fmt"
	"time"

	vo "github.com/orris-inc/orrisdesk/internal/domain/payment/valueobjects"
	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
)

type Payment struct {
	id          uint
	sid         string
	ticketID    uint
	guildID     string
	userID      string
	planID      uint
	methodID    uint
	amount      money.Money
	status      vo.PaymentStatus
	confirmedBy *string
	confirmedAt *time.Time
	createdAt   time.Time
}

type NewPaymentParams struct {
	SID      string
	TicketID uint
	GuildID  string
	UserID   string
	PlanID   uint
	MethodID uint
	Amount   money.Money
	Now      time.Time
}

func NewPayment(p NewPaymentParams) (*Payment, error) {
	if p.SID == "" {
		return nil, fmt.Errorf("payment SID is required")
	}
	if p.TicketID == 0 || p.PlanID == 0 || p.MethodID == 0 {
		return nil, fmt.Errorf("ticket, plan and method are required")
	}
	if p.UserID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	return &Payment{
		sid:       p.SID,
		ticketID:  p.TicketID,
		guildID:   p.GuildID,
		userID:    p.UserID,
		planID:    p.PlanID,
		methodID:  p.MethodID,
		amount:    p.Amount,
		status:    vo.PaymentStatusPending,
		createdAt: p.Now,
	}, nil
}

type PaymentState struct {
	ID          uint
	SID         string
	TicketID    uint
	GuildID     string
	UserID      string
	PlanID      uint
	MethodID    uint
	Amount      money.Money
	Status      vo.PaymentStatus
	ConfirmedBy *string
	ConfirmedAt *time.Time
	CreatedAt   time.Time
}

func ReconstructPayment(s PaymentState) (*Payment, error) {
	if s.ID == 0 {
		return nil, fmt.Errorf("payment ID cannot be zero")
	}
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", s.Status)
	}
	return &Payment{
		id:          s.ID,
		sid:         s.SID,
		ticketID:    s.TicketID,
		guildID:     s.GuildID,
		userID:      s.UserID,
		planID:      s.PlanID,
		methodID:    s.MethodID,
		amount:      s.Amount,
		status:      s.Status,
		confirmedBy: s.ConfirmedBy,
		confirmedAt: s.ConfirmedAt,
		createdAt:   s.CreatedAt,
	}, nil
}

func (p *Payment) ID() uint                 { return p.id }
func (p *Payment) SID() string              { return p.sid }
func (p *Payment) TicketID() uint           { return p.ticketID }
func (p *Payment) GuildID() string          { return p.guildID }
func (p *Payment) UserID() string           { return p.userID }
func (p *Payment) PlanID() uint             { return p.planID }
func (p *Payment) MethodID() uint           { return p.methodID }
func (p *Payment) Amount() money.Money      { return p.amount }
func (p *Payment) Status() vo.PaymentStatus { return p.status }
func (p *Payment) ConfirmedBy() *string     { return p.confirmedBy }
func (p *Payment) ConfirmedAt() *time.Time  { return p.confirmedAt }
func (p *Payment) CreatedAt() time.Time     { return p.createdAt }

func (p *Payment) IsPending() bool {
	return p.status == vo.PaymentStatusPending
}

// Covers reports whether the claim was made for this plan and method.
func (p *Payment) Covers(planID, methodID *uint) bool {
	return planID != nil && methodID != nil && p.planID == *planID && p.methodID == *methodID
}

func (p *Payment) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("payment ID is already set")
	}
	p.id = id
	return nil
}
