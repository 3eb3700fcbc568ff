package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/orris-inc/orrisdesk/internal/domain/ticket/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
)

func uintPtr(v uint) *uint    { return &v }
func strPtr(v string) *string { return &v }

// ticketAt builds a persisted ticket with the given fields set.
func ticketAt(t *testing.T, mutate func(s *TicketState)) *Ticket {
	t.Helper()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := TicketState{
		ID:        1,
		SID:       "tkt_abc",
		GuildID:   "g1",
		PanelID:   3,
		OpenerID:  "member",
		ChannelID: "chan",
		Status:    vo.StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mutate != nil {
		mutate(&s)
	}
	tk, err := ReconstructTicket(s)
	require.NoError(t, err)
	return tk
}

func TestNewTicket(t *testing.T) {
	now := time.Now().UTC()

	tk, err := NewTicket("tkt_1", "g1", 2, "member", "chan", now)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusOpen, tk.Status())
	assert.Equal(t, vo.StageAwaitingPlan, tk.Stage())
	assert.Zero(t, tk.ID())

	require.NoError(t, tk.SetID(9))
	assert.Error(t, tk.SetID(10))

	_, err = NewTicket("tkt_1", "g1", 0, "member", "chan", now)
	assert.Error(t, err)
	_, err = NewTicket("tkt_1", "g1", 2, "member", "", now)
	assert.Error(t, err)
}

func TestReconstructTicket_InvalidStatus(t *testing.T) {
	_, err := ReconstructTicket(TicketState{ID: 1, Status: "archived"})
	assert.Error(t, err)
	_, err = ReconstructTicket(TicketState{Status: vo.StatusOpen})
	assert.Error(t, err)
}

func TestStage(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *TicketState)
		want   vo.Stage
	}{
		{"no plan", nil, vo.StageAwaitingPlan},
		{"plan only", func(s *TicketState) { s.PlanID = uintPtr(1) }, vo.StageAwaitingMethod},
		{"method chosen", func(s *TicketState) {
			s.PlanID, s.PaymentMethodID = uintPtr(1), uintPtr(2)
		}, vo.StageAwaitingPayment},
		{"confirmed", func(s *TicketState) {
			s.PlanID, s.PaymentMethodID, s.PaymentConfirmed = uintPtr(1), uintPtr(2), true
		}, vo.StageAwaitingEmail},
		{"email collected", func(s *TicketState) {
			s.PlanID, s.PaymentMethodID, s.PaymentConfirmed = uintPtr(1), uintPtr(2), true
			s.Email = strPtr("a@b.com")
		}, vo.StageCompleted},
		{"closed", func(s *TicketState) { s.Status = vo.StatusClosed }, vo.StageClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ticketAt(t, tt.mutate).Stage())
		})
	}
}

func TestGuards(t *testing.T) {
	closed := func(s *TicketState) { s.Status = vo.StatusClosed }
	withPlan := func(s *TicketState) { s.PlanID = uintPtr(1) }
	withMethod := func(s *TicketState) { s.PlanID, s.PaymentMethodID = uintPtr(1), uintPtr(2) }
	confirmed := func(s *TicketState) {
		s.PlanID, s.PaymentMethodID, s.PaymentConfirmed = uintPtr(1), uintPtr(2), true
	}
	claimed := func(s *TicketState) { s.ClaimedBy = strPtr("staff") }

	tests := []struct {
		name   string
		mutate func(s *TicketState)
		check  func(tk *Ticket) error
		reason errors.Reason
	}{
		{"select plan by opener", nil, func(tk *Ticket) error { return tk.CanSelectPlan("member") }, ""},
		{"select plan by stranger", nil, func(tk *Ticket) error { return tk.CanSelectPlan("other") }, errors.ReasonNotOwner},
		{"select plan on closed", closed, func(tk *Ticket) error { return tk.CanSelectPlan("member") }, errors.ReasonTicketClosed},
		{"select plan after confirm", confirmed, func(tk *Ticket) error { return tk.CanSelectPlan("member") }, errors.ReasonPaymentAlreadyConfirmed},

		{"method without plan", nil, func(tk *Ticket) error { return tk.CanSelectPaymentMethod("member") }, errors.ReasonPlanRequired},
		{"method with plan", withPlan, func(tk *Ticket) error { return tk.CanSelectPaymentMethod("member") }, ""},

		{"claim paid without method", withPlan, func(tk *Ticket) error { return tk.CanClaimPaid("member") }, errors.ReasonMethodRequired},
		{"claim paid with method", withMethod, func(tk *Ticket) error { return tk.CanClaimPaid("member") }, ""},
		{"claim paid by stranger", withMethod, func(tk *Ticket) error { return tk.CanClaimPaid("other") }, errors.ReasonNotOwner},

		{"review without claim", withPlan, func(tk *Ticket) error { return tk.CanReviewPayment() }, errors.ReasonPaymentNotClaimed},
		{"review pending", withMethod, func(tk *Ticket) error { return tk.CanReviewPayment() }, ""},
		{"review twice", confirmed, func(tk *Ticket) error { return tk.CanReviewPayment() }, errors.ReasonPaymentAlreadyConfirmed},

		{"email before confirm", withMethod, func(tk *Ticket) error { return tk.CanCollectEmail("member") }, errors.ReasonPaymentNotConfirmed},
		{"email after confirm", confirmed, func(tk *Ticket) error { return tk.CanCollectEmail("member") }, ""},
		{"email by stranger", confirmed, func(tk *Ticket) error { return tk.CanCollectEmail("other") }, errors.ReasonNotOwner},

		{"close by opener", nil, func(tk *Ticket) error { return tk.CanClose("member", false) }, ""},
		{"close by staff", nil, func(tk *Ticket) error { return tk.CanClose("mod", true) }, ""},
		{"close by stranger", nil, func(tk *Ticket) error { return tk.CanClose("other", false) }, errors.ReasonNotOwner},
		{"close twice", closed, func(tk *Ticket) error { return tk.CanClose("member", false) }, errors.ReasonTicketClosed},

		{"claim unclaimed", nil, func(tk *Ticket) error { return tk.CanClaim() }, ""},
		{"claim claimed", claimed, func(tk *Ticket) error { return tk.CanClaim() }, errors.ReasonAlreadyClaimed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(ticketAt(t, tt.mutate))
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsPreconditionError(err))
			assert.Equal(t, tt.reason, errors.ReasonOf(err))
		})
	}
}
