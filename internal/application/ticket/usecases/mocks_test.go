package usecases

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/catalog"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/domain/payment"
	payvo "github.com/orris-inc/orrisdesk/internal/domain/payment/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	vo "github.com/orris-inc/orrisdesk/internal/domain/ticket/valueobjects"
)

// memTicketRepository applies the same conditional patches as the gorm
// repository.
type memTicketRepository struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*ticket.TicketState

	CreateFunc func(ctx context.Context, t *ticket.Ticket) error
}

func newMemTicketRepository() *memTicketRepository {
	return &memTicketRepository{rows: map[uint]*ticket.TicketState{}}
}

func (m *memTicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, t); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if err := t.SetID(m.nextID); err != nil {
		return err
	}
	m.rows[t.ID()] = &ticket.TicketState{
		ID: t.ID(), SID: t.SID(), GuildID: t.GuildID(), PanelID: t.PanelID(),
		OpenerID: t.OpenerID(), ChannelID: t.ChannelID(), Status: t.Status(),
		CreatedAt: t.CreatedAt(), UpdatedAt: t.UpdatedAt(),
	}
	return nil
}

func (m *memTicketRepository) get(id uint) *ticket.Ticket {
	s, ok := m.rows[id]
	if !ok {
		return nil
	}
	t, err := ticket.ReconstructTicket(*s)
	if err != nil {
		panic(err)
	}
	return t
}

func (m *memTicketRepository) GetByID(_ context.Context, id uint) (*ticket.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id), nil
}

func (m *memTicketRepository) GetByChannel(_ context.Context, channelID string) (*ticket.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.rows {
		if s.ChannelID == channelID {
			return m.get(id), nil
		}
	}
	return nil, nil
}

func (m *memTicketRepository) ListOpenByUser(_ context.Context, guildID, userID string) ([]*ticket.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ticket.Ticket
	for id, s := range m.rows {
		if s.GuildID == guildID && s.OpenerID == userID && s.Status == vo.StatusOpen {
			out = append(out, m.get(id))
		}
	}
	return out, nil
}

func (m *memTicketRepository) CountOpenByUserPanel(_ context.Context, userID string, panelID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.rows {
		if s.OpenerID == userID && s.PanelID == panelID && s.Status == vo.StatusOpen {
			n++
		}
	}
	return n, nil
}

func (m *memTicketRepository) ListClosed(context.Context) ([]*ticket.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ticket.Ticket
	for id, s := range m.rows {
		if s.Status == vo.StatusClosed {
			out = append(out, m.get(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (m *memTicketRepository) patch(id uint, cond func(s *ticket.TicketState) bool, apply func(s *ticket.TicketState)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok || !cond(s) {
		return false
	}
	apply(s)
	return true
}

func editable(s *ticket.TicketState) bool {
	return s.Status == vo.StatusOpen && !s.PaymentConfirmed
}

func (m *memTicketRepository) SetPlan(_ context.Context, id, planID uint) (bool, error) {
	return m.patch(id, editable, func(s *ticket.TicketState) {
		s.PlanID = &planID
		s.PaymentMethodID = nil
	}), nil
}

func (m *memTicketRepository) SetPaymentMethod(_ context.Context, id, methodID uint) (bool, error) {
	return m.patch(id, func(s *ticket.TicketState) bool { return editable(s) && s.PlanID != nil }, func(s *ticket.TicketState) {
		s.PaymentMethodID = &methodID
	}), nil
}

func (m *memTicketRepository) ConfirmPayment(_ context.Context, id uint, staffID string, at time.Time) (bool, error) {
	return m.patch(id, editable, func(s *ticket.TicketState) {
		s.PaymentConfirmed = true
		s.PaymentConfirmedBy = &staffID
		s.PaymentConfirmedAt = &at
	}), nil
}

func (m *memTicketRepository) SetEmail(_ context.Context, id uint, email string) error {
	m.patch(id, func(*ticket.TicketState) bool { return true }, func(s *ticket.TicketState) { s.Email = &email })
	return nil
}

func (m *memTicketRepository) Close(_ context.Context, id uint, actorID string, at time.Time) (bool, error) {
	return m.patch(id, func(s *ticket.TicketState) bool { return s.Status == vo.StatusOpen }, func(s *ticket.TicketState) {
		s.Status = vo.StatusClosed
		s.ClosedBy = &actorID
		s.ClosedAt = &at
	}), nil
}

func (m *memTicketRepository) Claim(_ context.Context, id uint, staffID string) (bool, error) {
	return m.patch(id, func(s *ticket.TicketState) bool { return s.Status == vo.StatusOpen && s.ClaimedBy == nil }, func(s *ticket.TicketState) {
		s.ClaimedBy = &staffID
	}), nil
}

func (m *memTicketRepository) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memTicketRepository) StatusCounts(_ context.Context, guildID string) (map[vo.TicketStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[vo.TicketStatus]int64{}
	for _, s := range m.rows {
		if s.GuildID == guildID {
			out[s.Status]++
		}
	}
	return out, nil
}

type memPaymentRepository struct {
	mu   sync.Mutex
	rows []*payment.Payment
}

func (m *memPaymentRepository) Create(_ context.Context, p *payment.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := p.SetID(uint(len(m.rows) + 1)); err != nil {
		return err
	}
	m.rows = append(m.rows, p)
	return nil
}

func (m *memPaymentRepository) GetLatestPendingByTicket(_ context.Context, ticketID uint) (*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].TicketID() == ticketID && m.rows[i].IsPending() {
			return m.rows[i], nil
		}
	}
	return nil, nil
}

func (m *memPaymentRepository) ListByTicket(_ context.Context, ticketID uint) ([]*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*payment.Payment
	for _, p := range m.rows {
		if p.TicketID() == ticketID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPaymentRepository) Confirm(_ context.Context, id uint, staffID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.rows {
		if p.ID() != id || !p.IsPending() {
			continue
		}
		confirmed, err := payment.ReconstructPayment(payment.PaymentState{
			ID: p.ID(), SID: p.SID(), TicketID: p.TicketID(), GuildID: p.GuildID(), UserID: p.UserID(),
			PlanID: p.PlanID(), MethodID: p.MethodID(), Amount: p.Amount(), Status: payvo.PaymentStatusConfirmed,
			ConfirmedBy: &staffID, ConfirmedAt: &at, CreatedAt: p.CreatedAt(),
		})
		if err != nil {
			return false, err
		}
		m.rows[i] = confirmed
		return true, nil
	}
	return false, nil
}

type memCatalogRepository struct {
	catalog.Repository
	panels    []*catalog.Panel
	plans     []*catalog.Plan
	methods   []*catalog.PaymentMethod
	overrides []*catalog.PriceOverride
}

func (m *memCatalogRepository) GetPanel(_ context.Context, id uint) (*catalog.Panel, error) {
	for _, p := range m.panels {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memCatalogRepository) GetPlan(_ context.Context, id uint) (*catalog.Plan, error) {
	for _, p := range m.plans {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memCatalogRepository) GetPaymentMethod(_ context.Context, id uint) (*catalog.PaymentMethod, error) {
	for _, p := range m.methods {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memCatalogRepository) GetOverride(_ context.Context, planID, methodID uint) (*catalog.PriceOverride, error) {
	for _, o := range m.overrides {
		if o.PlanID() == planID && o.MethodID() == methodID {
			return o, nil
		}
	}
	return nil, nil
}

func (m *memCatalogRepository) ListPlans(context.Context, string) ([]*catalog.Plan, error) {
	return m.plans, nil
}

func (m *memCatalogRepository) ListPaymentMethods(context.Context, string) ([]*catalog.PaymentMethod, error) {
	return m.methods, nil
}

func (m *memCatalogRepository) ListOverrides(_ context.Context, planID uint) ([]*catalog.PriceOverride, error) {
	var out []*catalog.PriceOverride
	for _, o := range m.overrides {
		if o.PlanID() == planID {
			out = append(out, o)
		}
	}
	return out, nil
}

type mockSettingsRepository struct {
	settings *guild.Settings
}

func (m *mockSettingsRepository) Get(context.Context, string) (*guild.Settings, error) {
	return m.settings, nil
}

func (m *mockSettingsRepository) Upsert(context.Context, *guild.Settings) error { return nil }

type sentMessage struct {
	ChannelID string
	Message   messaging.Message
}

type mockDirectory struct {
	mu       sync.Mutex
	members  map[string]*messaging.Member
	sent     []sentMessage
	deleted  []string
	channels int

	CreatePrivateChannelFunc func(ctx context.Context, spec messaging.ChannelSpec) (string, error)
	SendToChannelFunc        func(ctx context.Context, channelID string, msg messaging.Message) error
	DeleteChannelFunc        func(ctx context.Context, channelID string) error
}

func (m *mockDirectory) CreatePrivateChannel(ctx context.Context, spec messaging.ChannelSpec) (string, error) {
	if m.CreatePrivateChannelFunc != nil {
		return m.CreatePrivateChannelFunc(ctx, spec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels++
	return "chan-" + uintValue(uint(m.channels)), nil
}

func (m *mockDirectory) DeleteChannel(ctx context.Context, channelID string) error {
	if m.DeleteChannelFunc != nil {
		return m.DeleteChannelFunc(ctx, channelID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, channelID)
	return nil
}

func (m *mockDirectory) SendToChannel(ctx context.Context, channelID string, msg messaging.Message) error {
	if m.SendToChannelFunc != nil {
		return m.SendToChannelFunc(ctx, channelID, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{ChannelID: channelID, Message: msg})
	return nil
}

func (m *mockDirectory) SendToUser(context.Context, string, messaging.Message) error { return nil }

func (m *mockDirectory) GetMember(_ context.Context, _ string, userID string) (*messaging.Member, error) {
	if mem, ok := m.members[userID]; ok {
		return mem, nil
	}
	return nil, messaging.ErrNotFound
}

func (m *mockDirectory) UserExists(_ context.Context, userID string) (bool, error) {
	_, ok := m.members[userID]
	return ok, nil
}

func (m *mockDirectory) lastMessage() messaging.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return messaging.Message{}
	}
	return m.sent[len(m.sent)-1].Message
}

type mockCooldown struct {
	held     map[string]bool
	released []string
}

func (m *mockCooldown) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	if m.held == nil {
		m.held = map[string]bool{}
	}
	if m.held[key] {
		return false, nil
	}
	m.held[key] = true
	return true, nil
}

func (m *mockCooldown) Release(_ context.Context, key string) error {
	delete(m.held, key)
	m.released = append(m.released, key)
	return nil
}

type scheduledDeletion struct {
	TicketID  uint
	ChannelID string
	Delay     time.Duration
}

type mockCleanup struct {
	scheduled []scheduledDeletion
}

func (m *mockCleanup) ScheduleDeletion(_ context.Context, ticketID uint, channelID string, delay time.Duration) error {
	m.scheduled = append(m.scheduled, scheduledDeletion{TicketID: ticketID, ChannelID: channelID, Delay: delay})
	return nil
}

// passthroughTx runs fn without a transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockReceipts struct {
	sent []Receipt
}

func (m *mockReceipts) SendReceipt(_ context.Context, r Receipt) error {
	m.sent = append(m.sent, r)
	return nil
}

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

func (m *mockRecorder) count(action audit.Action) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

// memSubscriptionRepository covers what materialization touches.
type memSubscriptionRepository struct {
	subscription.Repository
	mu   sync.Mutex
	rows []*subscription.Subscription
}

func (m *memSubscriptionRepository) Create(_ context.Context, s *subscription.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.TicketID() == s.TicketID() {
			return errDuplicateTicket
		}
	}
	if err := s.SetID(uint(len(m.rows) + 1)); err != nil {
		return err
	}
	m.rows = append(m.rows, s)
	return nil
}

func (m *memSubscriptionRepository) GetByTicketID(_ context.Context, ticketID uint) (*subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.TicketID() == ticketID {
			return r, nil
		}
	}
	return nil, nil
}

type memReminderRepository struct {
	subscription.ReminderRepository
	mu   sync.Mutex
	rows []*subscription.Reminder
}

func (m *memReminderRepository) BulkCreate(_ context.Context, reminders []*subscription.Reminder) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
outer:
	for _, r := range reminders {
		for _, existing := range m.rows {
			if existing.SubscriptionID() == r.SubscriptionID() && existing.ReminderDate() == r.ReminderDate() {
				continue outer
			}
		}
		r.SetID(uint(len(m.rows) + 1))
		m.rows = append(m.rows, r)
		n++
	}
	return n, nil
}
