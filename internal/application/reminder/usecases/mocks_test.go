package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
)

// memReminderRepository stores reminder state so tests can inspect the
// sent and error fields after a sweep.
type memReminderRepository struct {
	subscription.ReminderRepository
	mu   sync.Mutex
	rows map[uint]*subscription.ReminderState

	ListDueFunc func(ctx context.Context, asOfDate string, retryAfter time.Time) ([]*subscription.Reminder, error)
}

func newMemReminderRepository(states ...subscription.ReminderState) *memReminderRepository {
	m := &memReminderRepository{rows: map[uint]*subscription.ReminderState{}}
	for i := range states {
		s := states[i]
		m.rows[s.ID] = &s
	}
	return m
}

func (m *memReminderRepository) reminder(id uint) *subscription.Reminder {
	s, ok := m.rows[id]
	if !ok {
		return nil
	}
	r, err := subscription.ReconstructReminder(*s)
	if err != nil {
		panic(err)
	}
	return r
}

func (m *memReminderRepository) GetByID(_ context.Context, id uint) (*subscription.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reminder(id), nil
}

func (m *memReminderRepository) ListDue(ctx context.Context, asOfDate string, retryAfter time.Time) ([]*subscription.Reminder, error) {
	if m.ListDueFunc != nil {
		return m.ListDueFunc(ctx, asOfDate, retryAfter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*subscription.Reminder
	for id := uint(1); id <= uint(len(m.rows)); id++ {
		s, ok := m.rows[id]
		if !ok || s.Sent || s.ReminderDate > asOfDate {
			continue
		}
		if s.ErroredAt != nil && s.ErroredAt.After(retryAfter) {
			continue
		}
		out = append(out, m.reminder(id))
	}
	return out, nil
}

func (m *memReminderRepository) MarkSent(_ context.Context, id uint, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok || s.Sent {
		return false, nil
	}
	s.Sent = true
	s.SentAt = &at
	return true, nil
}

func (m *memReminderRepository) MarkError(_ context.Context, id uint, reason string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.rows[id]; ok {
		s.LastError = &reason
		s.ErroredAt = &at
	}
	return nil
}

func (m *memReminderRepository) state(id uint) subscription.ReminderState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

type mockSubscriptionRepository struct {
	subscription.Repository
	subs map[uint]*subscription.Subscription
}

func (m *mockSubscriptionRepository) GetByID(_ context.Context, id uint) (*subscription.Subscription, error) {
	return m.subs[id], nil
}

type mockSettingsRepository struct{}

func (mockSettingsRepository) Get(context.Context, string) (*guild.Settings, error) { return nil, nil }
func (mockSettingsRepository) Upsert(context.Context, *guild.Settings) error        { return nil }

// mockDirectory knows a fixed set of users. Lookups for users in lookupErr
// fail and sends to users in unreachable fail.
type mockDirectory struct {
	messaging.Directory
	mu          sync.Mutex
	users       map[string]bool
	lookupErr   map[string]bool
	unreachable map[string]bool
	dms         map[string][]messaging.Message
}

func (m *mockDirectory) UserExists(_ context.Context, userID string) (bool, error) {
	if m.lookupErr[userID] {
		return false, messaging.ErrUnreachable
	}
	return m.users[userID], nil
}

func (m *mockDirectory) SendToUser(_ context.Context, userID string, msg messaging.Message) error {
	if m.unreachable[userID] {
		return messaging.ErrUnreachable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dms == nil {
		m.dms = map[string][]messaging.Message{}
	}
	m.dms[userID] = append(m.dms[userID], msg)
	return nil
}

type mockExpirer struct {
	count int
	err   error
	calls int

	OnExecute func()
}

func (m *mockExpirer) Execute(context.Context) (int, error) {
	m.calls++
	if m.OnExecute != nil {
		m.OnExecute()
	}
	return m.count, m.err
}

type mockLock struct {
	held     bool
	released int
}

func (m *mockLock) Acquire(context.Context, string, time.Duration) (bool, error) {
	if m.held {
		return false, nil
	}
	m.held = true
	return true, nil
}

func (m *mockLock) Release(context.Context, string) error {
	m.held = false
	m.released++
	return nil
}

type mockRecorder struct {
	mu      sync.Mutex
	actions []audit.Action
}

func (m *mockRecorder) Record(_ context.Context, e *audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, e.Action)
	return nil
}
