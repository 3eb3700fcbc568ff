package repository

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/domain/catalog"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	"github.com/orris-inc/orrisdesk/internal/domain/payment"
	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	subvo "github.com/orris-inc/orrisdesk/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	ticketvo "github.com/orris-inc/orrisdesk/internal/domain/ticket/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/models"
	"github.com/orris-inc/orrisdesk/internal/shared/db"
)

var baseTime = time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(models.All()...))
	return gdb
}

func createTicket(t *testing.T, repo ticket.Repository, sid, opener, channel string) *ticket.Ticket {
	tk, err := ticket.NewTicket(sid, "g1", 1, opener, channel, baseTime)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), tk))
	return tk
}

func createSubscription(t *testing.T, repo subscription.Repository, sid string, ticketID uint, days int, start time.Time) *subscription.Subscription {
	s, err := subscription.NewSubscription(subscription.NewSubscriptionParams{
		SID:                sid,
		GuildID:            "g1",
		UserID:             "u1",
		TicketID:           ticketID,
		PlanID:             1,
		Email:              "u1@example.com",
		PlanName:           "Monthly",
		DurationDays:       days,
		Price:              money.MustMoney("499.00", "INR"),
		PaymentMethodLabel: "UPI",
		Start:              start,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestTicketRepository_CreateAndGet(t *testing.T) {
	repo := NewTicketRepository(setupTestDB(t))
	ctx := context.Background()

	tk := createTicket(t, repo, "tkt_1", "u1", "chan-1")
	assert.NotZero(t, tk.ID())

	found, err := repo.GetByChannel(ctx, "chan-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, tk.ID(), found.ID())
	assert.Equal(t, ticketvo.StatusOpen, found.Status())
	assert.Nil(t, found.PlanID())

	missing, err := repo.GetByID(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, missing)

	t.Run("duplicate channel fails", func(t *testing.T) {
		dup, err := ticket.NewTicket("tkt_2", "g1", 1, "u2", "chan-1", baseTime)
		require.NoError(t, err)
		assert.Error(t, repo.Create(ctx, dup))
	})
}

func TestTicketRepository_WorkflowUpdates(t *testing.T) {
	repo := NewTicketRepository(setupTestDB(t))
	ctx := context.Background()
	tk := createTicket(t, repo, "tkt_1", "u1", "chan-1")

	ok, err := repo.SetPaymentMethod(ctx, tk.ID(), 3)
	require.NoError(t, err)
	assert.False(t, ok, "method needs a plan first")

	ok, err = repo.SetPlan(ctx, tk.ID(), 2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.SetPaymentMethod(ctx, tk.ID(), 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SetPlan(ctx, tk.ID(), 4)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err := repo.GetByID(ctx, tk.ID())
	require.NoError(t, err)
	require.NotNil(t, got.PlanID())
	assert.Equal(t, uint(4), *got.PlanID())
	assert.Nil(t, got.PaymentMethodID(), "changing the plan clears the method")

	_, err = repo.SetPaymentMethod(ctx, tk.ID(), 3)
	require.NoError(t, err)

	ok, err = repo.ConfirmPayment(ctx, tk.ID(), "staff-1", baseTime)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.ConfirmPayment(ctx, tk.ID(), "staff-2", baseTime)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.SetPlan(ctx, tk.ID(), 2)
	require.NoError(t, err)
	assert.False(t, ok, "plan is locked after confirmation")

	require.NoError(t, repo.SetEmail(ctx, tk.ID(), "first@example.com"))
	require.NoError(t, repo.SetEmail(ctx, tk.ID(), "second@example.com"))
	got, err = repo.GetByID(ctx, tk.ID())
	require.NoError(t, err)
	assert.True(t, got.IsPaymentConfirmed())
	assert.Equal(t, "staff-1", *got.PaymentConfirmedBy())
	assert.Equal(t, "first@example.com", *got.Email())

	ok, err = repo.Claim(ctx, tk.ID(), "staff-1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Claim(ctx, tk.ID(), "staff-2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Close(ctx, tk.ID(), "u1", baseTime)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Close(ctx, tk.ID(), "u1", baseTime)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Delete(ctx, tk.ID()))
	require.NoError(t, repo.Delete(ctx, tk.ID()))
	got, err = repo.GetByID(ctx, tk.ID())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTicketRepository_ConcurrentConfirm(t *testing.T) {
	repo := NewTicketRepository(setupTestDB(t))
	ctx := context.Background()
	tk := createTicket(t, repo, "tkt_1", "u1", "chan-1")
	_, err := repo.SetPlan(ctx, tk.ID(), 2)
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ConfirmPayment(ctx, tk.ID(), "staff", baseTime)
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestTicketRepository_CountsAndLists(t *testing.T) {
	repo := NewTicketRepository(setupTestDB(t))
	ctx := context.Background()
	a := createTicket(t, repo, "tkt_1", "u1", "chan-1")
	createTicket(t, repo, "tkt_2", "u1", "chan-2")
	createTicket(t, repo, "tkt_3", "u2", "chan-3")
	_, err := repo.Close(ctx, a.ID(), "u1", baseTime)
	require.NoError(t, err)

	n, err := repo.CountOpenByUserPanel(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	open, err := repo.ListOpenByUser(ctx, "g1", "u1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "chan-2", open[0].ChannelID())

	counts, err := repo.StatusCounts(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[ticketvo.StatusOpen])
	assert.Equal(t, int64(1), counts[ticketvo.StatusClosed])

	closed, err := repo.ListClosed(ctx)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, "chan-1", closed[0].ChannelID())
	require.NotNil(t, closed[0].ClosedAt())
}

func TestTransactionManager_RollsBackTicketAndAudit(t *testing.T) {
	gdb := setupTestDB(t)
	tickets := NewTicketRepository(gdb)
	audits := NewAuditRepository(gdb)
	tm := db.NewTransactionManager(gdb)
	ctx := context.Background()
	tk := createTicket(t, tickets, "tkt_1", "u1", "chan-1")

	err := tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		if _, err := tickets.SetPlan(txCtx, tk.ID(), 2); err != nil {
			return err
		}
		if err := audits.Record(txCtx, &audit.Entry{GuildID: "g1", Action: audit.ActionPlanSelected, EntityType: "ticket", EntityID: tk.ID()}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := tickets.GetByID(ctx, tk.ID())
	require.NoError(t, err)
	assert.Nil(t, got.PlanID())
	entries, err := audits.List(ctx, AuditQuery{GuildID: "g1"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPaymentRepository(t *testing.T) {
	repo := NewPaymentRepository(setupTestDB(t))
	ctx := context.Background()

	none, err := repo.GetLatestPendingByTicket(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, none)

	newPayment := func(sid string, plan uint) *payment.Payment {
		p, err := payment.NewPayment(payment.NewPaymentParams{
			SID: sid, TicketID: 1, GuildID: "g1", UserID: "u1", PlanID: plan, MethodID: 3,
			Amount: money.MustMoney("449.10", "INR"), Now: baseTime,
		})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, p))
		return p
	}
	newPayment("pay_1", 2)
	second := newPayment("pay_2", 4)

	latest, err := repo.GetLatestPendingByTicket(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID(), latest.ID())
	assert.True(t, latest.Amount().Amount().Equal(decimal.RequireFromString("449.10")))

	ok, err := repo.Confirm(ctx, second.ID(), "staff", baseTime)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Confirm(ctx, second.ID(), "staff", baseTime)
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := repo.ListByTicket(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSubscriptionRepository_Lifecycle(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t))
	ctx := context.Background()

	s := createSubscription(t, repo, "sub_1", 10, 30, baseTime)
	t.Run("one subscription per ticket", func(t *testing.T) {
		dup, err := subscription.NewSubscription(subscription.NewSubscriptionParams{
			SID: "sub_dup", GuildID: "g1", UserID: "u1", TicketID: 10, PlanID: 1,
			Email: "x@example.com", PlanName: "Monthly", DurationDays: 30,
			Price: money.MustMoney("1", "INR"), Start: baseTime,
		})
		require.NoError(t, err)
		assert.Error(t, repo.Create(ctx, dup))
	})

	byTicket, err := repo.GetByTicketID(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, byTicket)
	assert.Equal(t, s.ID(), byTicket.ID())
	assert.True(t, byTicket.EndDate().Equal(baseTime.AddDate(0, 0, 30)))

	lapsed, err := repo.FindLapsed(ctx, baseTime.AddDate(0, 0, 29))
	require.NoError(t, err)
	assert.Empty(t, lapsed)

	expireAt := baseTime.AddDate(0, 0, 31)
	lapsed, err = repo.FindLapsed(ctx, expireAt)
	require.NoError(t, err)
	require.Len(t, lapsed, 1)

	ok, err := repo.MarkExpired(ctx, s.ID(), expireAt)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkExpired(ctx, s.ID(), expireAt)
	require.NoError(t, err)
	assert.False(t, ok)

	newEnd := s.EndDate().AddDate(0, 0, 30)
	ok, err = repo.UpdateEndDate(ctx, s.ID(), newEnd, expireAt)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err := repo.GetByID(ctx, s.ID())
	require.NoError(t, err)
	assert.Equal(t, subvo.StatusActive, got.Status())
	assert.Nil(t, got.ExpiredAt())
	assert.True(t, got.EndDate().Equal(newEnd))

	ok, err = repo.Cancel(ctx, s.ID(), expireAt)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.UpdateEndDate(ctx, s.ID(), newEnd.AddDate(0, 0, 1), expireAt)
	require.NoError(t, err)
	assert.False(t, ok, "cancelled subscriptions cannot be extended")
}

func TestSubscriptionRepository_ListAndStats(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t))
	ctx := context.Background()

	soon := createSubscription(t, repo, "sub_1", 1, 3, baseTime)
	createSubscription(t, repo, "sub_2", 2, 30, baseTime)
	cancelled := createSubscription(t, repo, "sub_3", 3, 30, baseTime)
	_, err := repo.Cancel(ctx, cancelled.ID(), baseTime)
	require.NoError(t, err)

	expiring, err := repo.ListExpiringWithin(ctx, "g1", baseTime, 7)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, soon.ID(), expiring[0].ID())

	page, total, err := repo.List(ctx, subscription.Filter{GuildID: "g1", Status: subvo.StatusActive, Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, page, 1)

	stats, err := repo.Stats(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Active)
	assert.Equal(t, int64(1), stats.Cancelled)
	assert.Equal(t, int64(0), stats.Expired)
	assert.True(t, stats.ActiveRevenue["INR"].Equal(decimal.RequireFromString("998")))
}

func TestReminderRepository(t *testing.T) {
	gdb := setupTestDB(t)
	subs := NewSubscriptionRepository(gdb)
	repo := NewReminderRepository(gdb)
	ctx := context.Background()

	active := createSubscription(t, subs, "sub_1", 1, 30, baseTime)
	cancelled := createSubscription(t, subs, "sub_2", 2, 30, baseTime)
	_, err := subs.Cancel(ctx, cancelled.ID(), baseTime)
	require.NoError(t, err)

	planned := subscription.PlanReminders(active, []int{3, 2, 1}, baseTime)
	require.Len(t, planned, 3)
	n, err := repo.BulkCreate(ctx, planned)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	for _, r := range planned {
		assert.NotZero(t, r.ID())
	}

	n, err = repo.BulkCreate(ctx, subscription.PlanReminders(active, []int{3, 7}, baseTime))
	require.NoError(t, err)
	assert.Equal(t, 1, n, "existing dates are skipped")

	_, err = repo.BulkCreate(ctx, subscription.PlanReminders(cancelled, []int{3}, baseTime))
	require.NoError(t, err)

	list, err := repo.ListBySubscription(ctx, active.ID())
	require.NoError(t, err)
	assert.Len(t, list, 4)

	endDate := list[len(list)-1].ReminderDate()
	due, err := repo.ListDue(ctx, endDate, baseTime)
	require.NoError(t, err)
	assert.Len(t, due, 4, "reminders of cancelled subscriptions are never due")

	first := due[0]
	require.NoError(t, repo.MarkError(ctx, first.ID(), "dm closed", baseTime))
	due, err = repo.ListDue(ctx, endDate, baseTime.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, due, 3, "recently errored reminders wait")
	due, err = repo.ListDue(ctx, endDate, baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, due, 4)

	ok, err := repo.MarkSent(ctx, first.ID(), baseTime)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkSent(ctx, first.ID(), baseTime)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, first.ID())
	require.NoError(t, err)
	assert.True(t, got.IsSent())
	assert.Equal(t, "dm closed", *got.LastError())

	second := due[1]
	require.NoError(t, repo.MarkError(ctx, second.ID(), "x"+strings.Repeat("₹", 300), baseTime))
	got, err = repo.GetByID(ctx, second.ID())
	require.NoError(t, err)
	require.NotNil(t, got.LastError())
	assert.True(t, utf8.ValidString(*got.LastError()))
	assert.LessOrEqual(t, len(*got.LastError()), maxReminderErrorLen)
	assert.Equal(t, 1+166*3, len(*got.LastError()))
}

func TestCatalogRepository(t *testing.T) {
	repo := NewCatalogRepository(setupTestDB(t))
	ctx := context.Background()

	panel, err := catalog.NewPanel(catalog.PanelParams{GuildID: "g1", Name: "Buy", MaxTicketsPerUser: 1, Cooldown: 30 * time.Second, Enabled: true})
	require.NoError(t, err)
	require.NoError(t, repo.SavePanel(ctx, panel))
	got, err := repo.GetPanel(ctx, panel.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 30*time.Second, got.Cooldown())

	plan, err := catalog.NewPlan(catalog.PlanParams{GuildID: "g1", Name: "Monthly", DurationDays: 30, Price: money.MustMoney("499", "INR"), DiscountPercent: 10, Enabled: true, SortOrder: 2})
	require.NoError(t, err)
	require.NoError(t, repo.SavePlan(ctx, plan))
	yearly, err := catalog.NewPlan(catalog.PlanParams{GuildID: "g1", Name: "Yearly", DurationDays: 365, Price: money.MustMoney("4999", "INR"), Enabled: true, SortOrder: 1})
	require.NoError(t, err)
	require.NoError(t, repo.SavePlan(ctx, yearly))

	plans, err := repo.ListPlans(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "Yearly", plans[0].Name())
	assert.Equal(t, 10, plans[1].DiscountPercent())

	renamed, err := catalog.NewPlan(catalog.PlanParams{ID: plan.ID(), GuildID: "g1", Name: "Monthly+", DurationDays: 31, Price: money.MustMoney("499", "INR"), Enabled: true})
	require.NoError(t, err)
	require.NoError(t, repo.SavePlan(ctx, renamed))
	gotPlan, err := repo.GetPlan(ctx, plan.ID())
	require.NoError(t, err)
	assert.Equal(t, "Monthly+", gotPlan.Name())
	assert.Equal(t, 31, gotPlan.DurationDays())

	method, err := catalog.NewPaymentMethod(catalog.PaymentMethodParams{GuildID: "g1", Label: "UPI", Recommended: true, Enabled: true})
	require.NoError(t, err)
	require.NoError(t, repo.SavePaymentMethod(ctx, method))
	methods, err := repo.ListPaymentMethods(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.True(t, methods[0].IsRecommended())

	override, err := catalog.NewPriceOverride(plan.ID(), method.ID(), money.MustMoney("450", "INR"))
	require.NoError(t, err)
	require.NoError(t, repo.SaveOverride(ctx, override))
	override, err = catalog.NewPriceOverride(plan.ID(), method.ID(), money.MustMoney("440", "INR"))
	require.NoError(t, err)
	require.NoError(t, repo.SaveOverride(ctx, override))

	gotOverride, err := repo.GetOverride(ctx, plan.ID(), method.ID())
	require.NoError(t, err)
	require.NotNil(t, gotOverride)
	assert.True(t, gotOverride.Price().Amount().Equal(decimal.NewFromInt(440)))
	overrides, err := repo.ListOverrides(ctx, plan.ID())
	require.NoError(t, err)
	assert.Len(t, overrides, 1)

	missing, err := repo.GetOverride(ctx, yearly.ID(), method.ID())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGuildSettingsRepository(t *testing.T) {
	repo := NewGuildSettingsRepository(setupTestDB(t))
	ctx := context.Background()

	none, err := repo.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Nil(t, none)

	s, err := guild.ReconstructSettings("g1", []int{7, 1}, []string{"r1"}, "log-1", "usd", "en-US")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, s))

	s, err = guild.ReconstructSettings("g1", []int{5}, []string{"r1", "r2"}, "log-2", "INR", "en-IN")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, s))

	got, err := repo.Get(ctx, "g1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []int{5}, got.ReminderDays())
	assert.Equal(t, []string{"r1", "r2"}, got.StaffRoleIDs())
	assert.Equal(t, "log-2", got.LogChannelID())
	assert.Equal(t, "INR", got.Currency())
}

func TestAuditRepository(t *testing.T) {
	repo := NewAuditRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, &audit.Entry{
		GuildID: "g1", ActorID: "u1", Action: audit.ActionTicketOpened,
		EntityType: "ticket", EntityID: 1, Details: map[string]any{"channel_id": "chan-1"},
		CreatedAt: baseTime,
	}))
	require.NoError(t, repo.Record(ctx, &audit.Entry{GuildID: "g1", Action: audit.ActionReminderSent, EntityType: "reminder", EntityID: 7}))

	entries, err := repo.List(ctx, AuditQuery{GuildID: "g1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionReminderSent, entries[0].Action)
	assert.False(t, entries[0].CreatedAt.IsZero())

	tickets, err := repo.List(ctx, AuditQuery{EntityType: "ticket", EntityID: 1})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "chan-1", tickets[0].Details["channel_id"])
}
