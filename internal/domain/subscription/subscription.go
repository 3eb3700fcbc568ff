package subscription

import (
	"fmt"
	"time"

	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
	vo "github.com/orris-inc/orrisdesk/internal/domain/subscription/valueobjects"
)

const day = 24 * time.Hour

// Subscription is the entitlement produced when a ticket completes.
// Plan name, price and method label are copied at creation so later catalog
// edits do not rewrite history.
type Subscription struct {
	id                 uint
	sid                string
	guildID            string
	userID             string
	ticketID           uint
	planID             uint
	email              string
	planName           string
	price              money.Money
	paymentMethodLabel string
	startDate          time.Time
	endDate            time.Time
	status             vo.SubscriptionStatus
	cancelledAt        *time.Time
	expiredAt          *time.Time
	createdAt          time.Time
	updatedAt          time.Time
}

type NewSubscriptionParams struct {
	SID                string
	GuildID            string
	UserID             string
	TicketID           uint
	PlanID             uint
	Email              string
	PlanName           string
	DurationDays       int
	Price              money.Money
	PaymentMethodLabel string
	Start              time.Time
}

// NewSubscription creates an active subscription whose end date is exactly
// DurationDays after Start.
func NewSubscription(p NewSubscriptionParams) (*Subscription, error) {
	if p.SID == "" {
		return nil, fmt.Errorf("subscription SID is required")
	}
	if p.GuildID == "" || p.UserID == "" {
		return nil, fmt.Errorf("guild and user are required")
	}
	if p.TicketID == 0 || p.PlanID == 0 {
		return nil, fmt.Errorf("ticket and plan are required")
	}
	if p.DurationDays <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", p.DurationDays)
	}
	if p.Email == "" {
		return nil, fmt.Errorf("email is required")
	}

	start := p.Start.UTC()
	return &Subscription{
		sid:                p.SID,
		guildID:            p.GuildID,
		userID:             p.UserID,
		ticketID:           p.TicketID,
		planID:             p.PlanID,
		email:              p.Email,
		planName:           p.PlanName,
		price:              p.Price,
		paymentMethodLabel: p.PaymentMethodLabel,
		startDate:          start,
		endDate:            start.Add(time.Duration(p.DurationDays) * day),
		status:             vo.StatusActive,
		createdAt:          start,
		updatedAt:          start,
	}, nil
}

// SubscriptionState carries persisted fields into ReconstructSubscription.
type SubscriptionState struct {
	ID                 uint
	SID                string
	GuildID            string
	UserID             string
	TicketID           uint
	PlanID             uint
	Email              string
	PlanName           string
	Price              money.Money
	PaymentMethodLabel string
	StartDate          time.Time
	EndDate            time.Time
	Status             vo.SubscriptionStatus
	CancelledAt        *time.Time
	ExpiredAt          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func ReconstructSubscription(s SubscriptionState) (*Subscription, error) {
	if s.ID == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("invalid subscription status: %s", s.Status)
	}
	return &Subscription{
		id:                 s.ID,
		sid:                s.SID,
		guildID:            s.GuildID,
		userID:             s.UserID,
		ticketID:           s.TicketID,
		planID:             s.PlanID,
		email:              s.Email,
		planName:           s.PlanName,
		price:              s.Price,
		paymentMethodLabel: s.PaymentMethodLabel,
		startDate:          s.StartDate,
		endDate:            s.EndDate,
		status:             s.Status,
		cancelledAt:        s.CancelledAt,
		expiredAt:          s.ExpiredAt,
		createdAt:          s.CreatedAt,
		updatedAt:          s.UpdatedAt,
	}, nil
}

func (s *Subscription) ID() uint                      { return s.id }
func (s *Subscription) SID() string                   { return s.sid }
func (s *Subscription) GuildID() string               { return s.guildID }
func (s *Subscription) UserID() string                { return s.userID }
func (s *Subscription) TicketID() uint                { return s.ticketID }
func (s *Subscription) PlanID() uint                  { return s.planID }
func (s *Subscription) Email() string                 { return s.email }
func (s *Subscription) PlanName() string              { return s.planName }
func (s *Subscription) Price() money.Money            { return s.price }
func (s *Subscription) PaymentMethodLabel() string    { return s.paymentMethodLabel }
func (s *Subscription) StartDate() time.Time          { return s.startDate }
func (s *Subscription) EndDate() time.Time            { return s.endDate }
func (s *Subscription) Status() vo.SubscriptionStatus { return s.status }
func (s *Subscription) CancelledAt() *time.Time       { return s.cancelledAt }
func (s *Subscription) ExpiredAt() *time.Time         { return s.expiredAt }
func (s *Subscription) CreatedAt() time.Time          { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time          { return s.updatedAt }

func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

// Extend pushes the end date forward by days and reactivates an expired
// subscription.
func (s *Subscription) Extend(days int, now time.Time) error {
	if days <= 0 {
		return fmt.Errorf("extension must be positive, got %d days", days)
	}
	if !s.status.CanExtend() {
		return errNotActive(s.status.String())
	}
	s.endDate = s.endDate.Add(time.Duration(days) * day)
	s.status = vo.StatusActive
	s.expiredAt = nil
	s.updatedAt = now
	return nil
}

func (s *Subscription) Cancel(now time.Time) error {
	if !s.status.IsActive() {
		return errNotActive(s.status.String())
	}
	s.status = vo.StatusCancelled
	s.cancelledAt = &now
	s.updatedAt = now
	return nil
}

// IsLapsed reports whether an active subscription has passed its end date.
func (s *Subscription) IsLapsed(now time.Time) bool {
	return s.status.IsActive() && !s.endDate.After(now)
}

// MarkExpired is owned by the scheduler sweep.
func (s *Subscription) MarkExpired(now time.Time) error {
	if !s.IsLapsed(now) {
		return fmt.Errorf("subscription %d is not lapsed", s.id)
	}
	s.status = vo.StatusExpired
	s.expiredAt = &now
	s.updatedAt = now
	return nil
}
