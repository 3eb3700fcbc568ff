package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/catalog"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
)

type mockSubscriptionRepository struct {
	CreateFunc             func(ctx context.Context, s *subscription.Subscription) error
	GetByIDFunc            func(ctx context.Context, id uint) (*subscription.Subscription, error)
	GetByTicketIDFunc      func(ctx context.Context, ticketID uint) (*subscription.Subscription, error)
	ListFunc               func(ctx context.Context, filter subscription.Filter) ([]*subscription.Subscription, int64, error)
	ListExpiringWithinFunc func(ctx context.Context, guildID string, now time.Time, days int) ([]*subscription.Subscription, error)
	FindLapsedFunc         func(ctx context.Context, now time.Time) ([]*subscription.Subscription, error)
	UpdateEndDateFunc      func(ctx context.Context, id uint, endDate, at time.Time) (bool, error)
	CancelFunc             func(ctx context.Context, id uint, at time.Time) (bool, error)
	MarkExpiredFunc        func(ctx context.Context, id uint, at time.Time) (bool, error)
	StatsFunc              func(ctx context.Context, guildID string) (*subscription.Stats, error)
}

func (m *mockSubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	return s.SetID(1)
}

func (m *mockSubscriptionRepository) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSubscriptionRepository) GetByTicketID(ctx context.Context, ticketID uint) (*subscription.Subscription, error) {
	if m.GetByTicketIDFunc != nil {
		return m.GetByTicketIDFunc(ctx, ticketID)
	}
	return nil, nil
}

func (m *mockSubscriptionRepository) List(ctx context.Context, filter subscription.Filter) ([]*subscription.Subscription, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockSubscriptionRepository) ListExpiringWithin(ctx context.Context, guildID string, now time.Time, days int) ([]*subscription.Subscription, error) {
	if m.ListExpiringWithinFunc != nil {
		return m.ListExpiringWithinFunc(ctx, guildID, now, days)
	}
	return nil, nil
}

func (m *mockSubscriptionRepository) FindLapsed(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	if m.FindLapsedFunc != nil {
		return m.FindLapsedFunc(ctx, now)
	}
	return nil, nil
}

func (m *mockSubscriptionRepository) UpdateEndDate(ctx context.Context, id uint, endDate, at time.Time) (bool, error) {
	if m.UpdateEndDateFunc != nil {
		return m.UpdateEndDateFunc(ctx, id, endDate, at)
	}
	return true, nil
}

func (m *mockSubscriptionRepository) Cancel(ctx context.Context, id uint, at time.Time) (bool, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, id, at)
	}
	return true, nil
}

func (m *mockSubscriptionRepository) MarkExpired(ctx context.Context, id uint, at time.Time) (bool, error) {
	if m.MarkExpiredFunc != nil {
		return m.MarkExpiredFunc(ctx, id, at)
	}
	return true, nil
}

func (m *mockSubscriptionRepository) Stats(ctx context.Context, guildID string) (*subscription.Stats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, guildID)
	}
	return &subscription.Stats{}, nil
}

// memReminderRepository enforces the (subscription, date) uniqueness the
// database index provides.
type memReminderRepository struct {
	mu        sync.Mutex
	reminders []*subscription.Reminder
}

func (m *memReminderRepository) BulkCreate(_ context.Context, reminders []*subscription.Reminder) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inserted := 0
	for _, r := range reminders {
		if m.exists(r.SubscriptionID(), r.ReminderDate()) {
			continue
		}
		r.SetID(uint(len(m.reminders) + 1))
		m.reminders = append(m.reminders, r)
		inserted++
	}
	return inserted, nil
}

func (m *memReminderRepository) exists(subID uint, date string) bool {
	for _, r := range m.reminders {
		if r.SubscriptionID() == subID && r.ReminderDate() == date {
			return true
		}
	}
	return false
}

func (m *memReminderRepository) GetByID(_ context.Context, id uint) (*subscription.Reminder, error) {
	for _, r := range m.reminders {
		if r.ID() == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memReminderRepository) ListBySubscription(_ context.Context, subID uint) ([]*subscription.Reminder, error) {
	var out []*subscription.Reminder
	for _, r := range m.reminders {
		if r.SubscriptionID() == subID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReminderRepository) ListDue(context.Context, string, time.Time) ([]*subscription.Reminder, error) {
	return nil, nil
}

func (m *memReminderRepository) MarkSent(context.Context, uint, time.Time) (bool, error) {
	return true, nil
}

func (m *memReminderRepository) MarkError(context.Context, uint, string, time.Time) error {
	return nil
}

type mockCatalog struct {
	plan   *catalog.Plan
	method *catalog.PaymentMethod
	price  *money.Money
}

func (m *mockCatalog) Plan(context.Context, uint) (*catalog.Plan, error) { return m.plan, nil }

func (m *mockCatalog) PaymentMethod(context.Context, uint) (*catalog.PaymentMethod, error) {
	return m.method, nil
}

func (m *mockCatalog) ResolvePrice(_ context.Context, plan *catalog.Plan, _ uint) (money.Money, error) {
	if m.price != nil {
		return *m.price, nil
	}
	return plan.BasePrice(), nil
}

type mockSettingsRepository struct {
	settings *guild.Settings
}

func (m *mockSettingsRepository) Get(context.Context, string) (*guild.Settings, error) {
	return m.settings, nil
}

func (m *mockSettingsRepository) Upsert(context.Context, *guild.Settings) error { return nil }

type mockRecorder struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

func (m *mockRecorder) Record(_ context.Context, e *audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockRecorder) actions() []audit.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audit.Action, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}
