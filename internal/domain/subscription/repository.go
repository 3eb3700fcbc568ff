package subscription

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/orris-inc/orrisdesk/internal/domain/subscription/valueobjects"
)

type Filter struct {
	GuildID  string
	UserID   string
	Status   vo.SubscriptionStatus
	Page     int
	PageSize int
}

// Stats aggregates one guild's subscriptions.
type Stats struct {
	Active    int64
	Expired   int64
	Cancelled int64
	// ActiveRevenue sums the price of active subscriptions per currency.
	ActiveRevenue map[string]decimal.Decimal
}

// Repository persists subscriptions. Getters return nil, nil for missing rows;
// the bool results report whether a conditional update matched.
type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	GetByTicketID(ctx context.Context, ticketID uint) (*Subscription, error)
	List(ctx context.Context, filter Filter) ([]*Subscription, int64, error)
	// ListExpiringWithin returns active subscriptions ending in (now, now+days].
	ListExpiringWithin(ctx context.Context, guildID string, now time.Time, days int) ([]*Subscription, error)
	// FindLapsed returns active subscriptions with end_date <= now.
	FindLapsed(ctx context.Context, now time.Time) ([]*Subscription, error)

	// UpdateEndDate applies an extension to an active or expired subscription.
	UpdateEndDate(ctx context.Context, id uint, endDate time.Time, at time.Time) (bool, error)
	Cancel(ctx context.Context, id uint, at time.Time) (bool, error)
	// MarkExpired only matches an active subscription whose end date is <= at.
	MarkExpired(ctx context.Context, id uint, at time.Time) (bool, error)

	Stats(ctx context.Context, guildID string) (*Stats, error)
}

// ReminderRepository persists reminders.
type ReminderRepository interface {
	// BulkCreate inserts reminders, skipping any whose (subscription, date)
	// already exists, and returns how many rows were inserted.
	BulkCreate(ctx context.Context, reminders []*Reminder) (int, error)
	GetByID(ctx context.Context, id uint) (*Reminder, error)
	ListBySubscription(ctx context.Context, subscriptionID uint) ([]*Reminder, error)
	// ListDue returns unsent reminders dated on or before asOfDate whose
	// subscription is active. Reminders that errored after retryAfter are skipped.
	ListDue(ctx context.Context, asOfDate string, retryAfter time.Time) ([]*Reminder, error)
	// MarkSent only matches an unsent reminder.
	MarkSent(ctx context.Context, id uint, at time.Time) (bool, error)
	MarkError(ctx context.Context, id uint, reason string, at time.Time) error
}
