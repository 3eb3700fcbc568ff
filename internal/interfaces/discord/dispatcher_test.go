package discord

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/orrisdesk/internal/domain/catalog"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/ratelimit"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

func newTestDispatcher(wf *mockWorkflow) (*Dispatcher, *recordingObserver) {
	obs := &recordingObserver{}
	return NewDispatcher(wf, &stubPanels{}, &recordingPoster{}, obs, logger.NewNopLogger()), obs
}

func TestHandle_OpenTicket(t *testing.T) {
	var got usecases.OpenTicketCommand
	wf := &mockWorkflow{
		OpenFunc: func(ctx context.Context, cmd usecases.OpenTicketCommand) (*usecases.OpenTicketResult, error) {
			got = cmd
			return &usecases.OpenTicketResult{TicketID: 9, ChannelID: "c9", Prompt: usecases.Prompt{Posted: true}}, nil
		},
	}
	d, obs := newTestDispatcher(wf)

	reply := d.Handle(context.Background(), Interaction{
		GuildID:  "g1",
		UserID:   "u1",
		UserName: "alice",
		CustomID: messaging.CustomID(messaging.ActionOpen, 3),
	})

	assert.Equal(t, usecases.OpenTicketCommand{GuildID: "g1", PanelID: 3, UserID: "u1", UserName: "alice"}, got)
	assert.Equal(t, "Your ticket is ready: <#c9>", reply.Content)
	assert.Nil(t, reply.Message)
	require.Len(t, obs.seen, 1)
	assert.Equal(t, "open", obs.seen[0].action)
	assert.NoError(t, obs.seen[0].err)
}

func TestHandle_SelectPlanUsesSelectedValue(t *testing.T) {
	var got usecases.SelectPlanCommand
	wf := &mockWorkflow{
		SelectPlanFunc: func(ctx context.Context, cmd usecases.SelectPlanCommand) (*usecases.SelectPlanResult, error) {
			got = cmd
			return &usecases.SelectPlanResult{PlanName: "Gold", Prompt: usecases.Prompt{Posted: true}}, nil
		},
	}
	d, _ := newTestDispatcher(wf)

	reply := d.Handle(context.Background(), Interaction{
		UserID:   "u1",
		CustomID: messaging.CustomID(messaging.ActionSelectPlan, 9),
		Values:   []string{"4"},
	})

	assert.Equal(t, usecases.SelectPlanCommand{TicketID: 9, UserID: "u1", PlanID: 4}, got)
	assert.Equal(t, "Plan selected: Gold", reply.Content)
}

func TestHandle_SelectWithoutValueIsRejected(t *testing.T) {
	d, obs := newTestDispatcher(&mockWorkflow{})

	for _, values := range [][]string{nil, {"abc"}, {"0"}} {
		reply := d.Handle(context.Background(), Interaction{
			UserID:   "u1",
			CustomID: messaging.CustomID(messaging.ActionSelectMethod, 9),
			Values:   values,
		})
		assert.NotEmpty(t, reply.Content)
	}
	require.Len(t, obs.seen, 3)
	for _, o := range obs.seen {
		assert.Error(t, o.err)
	}
}

func TestHandle_UnpostedPromptIsReturnedToMember(t *testing.T) {
	prompt := messaging.Message{Title: "Gold", Body: "How would you like to pay?"}
	wf := &mockWorkflow{
		SelectPlanFunc: func(ctx context.Context, cmd usecases.SelectPlanCommand) (*usecases.SelectPlanResult, error) {
			return &usecases.SelectPlanResult{PlanName: "Gold", Prompt: usecases.Prompt{Message: prompt, Posted: false}}, nil
		},
	}
	d, _ := newTestDispatcher(wf)

	reply := d.Handle(context.Background(), Interaction{
		UserID:   "u1",
		CustomID: messaging.CustomID(messaging.ActionSelectPlan, 9),
		Values:   []string{"4"},
	})

	require.NotNil(t, reply.Message)
	assert.Equal(t, "Gold", reply.Message.Title)
}

func TestHandle_StaffActionsUseActorAsStaff(t *testing.T) {
	var confirm usecases.ConfirmPaymentCommand
	var deny usecases.DenyPaymentCommand
	var claim usecases.ClaimTicketCommand
	wf := &mockWorkflow{
		ConfirmFunc: func(ctx context.Context, cmd usecases.ConfirmPaymentCommand) (*usecases.ConfirmPaymentResult, error) {
			confirm = cmd
			return &usecases.ConfirmPaymentResult{Prompt: usecases.Prompt{Posted: true}}, nil
		},
		DenyFunc: func(ctx context.Context, cmd usecases.DenyPaymentCommand) (*usecases.DenyPaymentResult, error) {
			deny = cmd
			return &usecases.DenyPaymentResult{Prompt: usecases.Prompt{Posted: true}}, nil
		},
		ClaimFunc: func(ctx context.Context, cmd usecases.ClaimTicketCommand) (*usecases.ClaimTicketResult, error) {
			claim = cmd
			return &usecases.ClaimTicketResult{TicketID: cmd.TicketID, ClaimedBy: cmd.StaffID}, nil
		},
	}
	d, _ := newTestDispatcher(wf)
	ctx := context.Background()

	d.Handle(ctx, Interaction{UserID: "staff", CustomID: messaging.CustomID(messaging.ActionConfirm, 5)})
	d.Handle(ctx, Interaction{UserID: "staff", CustomID: messaging.CustomID(messaging.ActionDeny, 5)})
	reply := d.Handle(ctx, Interaction{UserID: "staff", CustomID: messaging.CustomID(messaging.ActionClaim, 5)})

	assert.Equal(t, usecases.ConfirmPaymentCommand{TicketID: 5, StaffID: "staff"}, confirm)
	assert.Equal(t, uint(5), deny.TicketID)
	assert.Equal(t, "staff", deny.StaffID)
	assert.Equal(t, usecases.ClaimTicketCommand{TicketID: 5, StaffID: "staff"}, claim)
	assert.Equal(t, "You have claimed this ticket.", reply.Content)
}

func TestHandle_RejectionReasonBecomesReply(t *testing.T) {
	wf := &mockWorkflow{
		ConfirmFunc: func(ctx context.Context, cmd usecases.ConfirmPaymentCommand) (*usecases.ConfirmPaymentResult, error) {
			return nil, errors.NewPreconditionError(errors.ReasonNotStaff, "only staff can confirm payments")
		},
	}
	d, obs := newTestDispatcher(wf)

	reply := d.Handle(context.Background(), Interaction{UserID: "u1", CustomID: messaging.CustomID(messaging.ActionConfirm, 5)})

	assert.Equal(t, "Only staff can do that.", reply.Content)
	require.Len(t, obs.seen, 1)
	assert.Equal(t, errors.ReasonNotStaff, errors.ReasonOf(obs.seen[0].err))
}

func TestHandle_InternalErrorDoesNotLeak(t *testing.T) {
	wf := &mockWorkflow{
		ClaimPaidFunc: func(ctx context.Context, cmd usecases.ClaimPaidCommand) (*usecases.ClaimPaidResult, error) {
			return nil, stderrors.New("dial tcp 10.0.0.5:3306: connection refused")
		},
	}
	d, _ := newTestDispatcher(wf)

	reply := d.Handle(context.Background(), Interaction{UserID: "u1", CustomID: messaging.CustomID(messaging.ActionClaimPaid, 5)})

	assert.NotContains(t, reply.Content, "10.0.0.5")
	assert.Contains(t, reply.Content, "Something went wrong")
}

func TestHandle_EmailButtonOpensModal(t *testing.T) {
	d, obs := newTestDispatcher(&mockWorkflow{})

	reply := d.Handle(context.Background(), Interaction{UserID: "u1", CustomID: messaging.CustomID(messaging.ActionRequestEmail, 5)})

	require.NotNil(t, reply.Modal)
	assert.Equal(t, "orrisdesk:emailsubmit:5", reply.Modal.CustomID)
	assert.Empty(t, obs.seen)
	assert.True(t, IsModalRequest("orrisdesk:email:5"))
	assert.False(t, IsModalRequest("orrisdesk:emailsubmit:5"))
}

func TestHandle_EmailSubmit(t *testing.T) {
	var got usecases.CollectEmailCommand
	end := time.Date(2026, 11, 18, 0, 0, 0, 0, time.UTC)
	wf := &mockWorkflow{
		CollectEmailFunc: func(ctx context.Context, cmd usecases.CollectEmailCommand) (*usecases.CollectEmailResult, error) {
			got = cmd
			return &usecases.CollectEmailResult{
				SubscriptionSID: "sub_abc",
				EndDate:         end,
				Created:         true,
				Prompt:          usecases.Prompt{Posted: true},
			}, nil
		},
	}
	d, _ := newTestDispatcher(wf)

	reply := d.Handle(context.Background(), Interaction{
		UserID:      "u1",
		CustomID:    messaging.CustomID(messaging.ActionSubmitEmail, 5),
		ModalSubmit: true,
		Fields:      map[string]string{emailFieldID: "a@example.com"},
	})

	assert.Equal(t, "a@example.com", got.Email)
	assert.Equal(t, uint(5), got.TicketID)
	assert.Contains(t, reply.Content, "sub_abc")
	assert.Contains(t, reply.Content, "18 Nov 2026")
}

func TestHandle_EmailSubmitOutsideModalIsRejected(t *testing.T) {
	called := false
	wf := &mockWorkflow{
		CollectEmailFunc: func(ctx context.Context, cmd usecases.CollectEmailCommand) (*usecases.CollectEmailResult, error) {
			called = true
			return nil, nil
		},
	}
	d, _ := newTestDispatcher(wf)

	d.Handle(context.Background(), Interaction{UserID: "u1", CustomID: messaging.CustomID(messaging.ActionSubmitEmail, 5)})

	assert.False(t, called)
}

func TestHandle_CloseReportsDelay(t *testing.T) {
	cases := map[time.Duration]string{
		10 * time.Second: "10 seconds",
		90 * time.Second: "1 minute 30 seconds",
		time.Hour:        "1 hour",
	}
	for delay, want := range cases {
		wf := &mockWorkflow{
			CloseFunc: func(ctx context.Context, cmd usecases.CloseTicketCommand) (*usecases.CloseTicketResult, error) {
				return &usecases.CloseTicketResult{TicketID: cmd.TicketID, DeleteAfter: delay}, nil
			},
		}
		d, _ := newTestDispatcher(wf)

		reply := d.Handle(context.Background(), Interaction{UserID: "u1", CustomID: messaging.CustomID(messaging.ActionClose, 5)})

		assert.Equal(t, "Ticket closed. This channel will be deleted in "+want+".", reply.Content)
	}
}

func TestHandle_UnknownCustomID(t *testing.T) {
	d, obs := newTestDispatcher(&mockWorkflow{})

	reply := d.Handle(context.Background(), Interaction{UserID: "u1", CustomID: "giveaway:join:1"})

	assert.Equal(t, "This button is no longer valid.", reply.Content)
	assert.Empty(t, obs.seen)
}

func TestPostPanel(t *testing.T) {
	panel, err := catalog.NewPanel(catalog.PanelParams{ID: 3, GuildID: "g1", Name: "Premium", Enabled: true})
	require.NoError(t, err)

	t.Run("posts open button", func(t *testing.T) {
		poster := &recordingPoster{}
		d := NewDispatcher(&mockWorkflow{}, &stubPanels{panel: panel}, poster, nil, logger.NewNopLogger())

		reply := d.PostPanel(context.Background(), "g1", "c1", 3)

		assert.Equal(t, "Panel posted.", reply.Content)
		assert.Equal(t, "c1", poster.channelID)
		require.NotNil(t, poster.msg)
		require.Len(t, poster.msg.Buttons, 1)
		assert.Equal(t, messaging.ActionOpen, poster.msg.Buttons[0].Kind)
		assert.Equal(t, uint(3), poster.msg.Buttons[0].TargetID)
	})

	t.Run("panel of another guild", func(t *testing.T) {
		poster := &recordingPoster{}
		d := NewDispatcher(&mockWorkflow{}, &stubPanels{panel: panel}, poster, nil, logger.NewNopLogger())

		reply := d.PostPanel(context.Background(), "g2", "c1", 3)

		assert.Equal(t, "This panel no longer exists.", reply.Content)
		assert.Nil(t, poster.msg)
	})

	t.Run("send fails", func(t *testing.T) {
		poster := &recordingPoster{err: messaging.ErrUnreachable}
		d := NewDispatcher(&mockWorkflow{}, &stubPanels{panel: panel}, poster, nil, logger.NewNopLogger())

		reply := d.PostPanel(context.Background(), "g1", "c1", 3)

		assert.Contains(t, reply.Content, "could not post")
	})
}

func TestRejectionText(t *testing.T) {
	assert.Equal(t, "This ticket is closed.", RejectionText(errors.NewPreconditionError(errors.ReasonTicketClosed, "closed")))
	assert.Equal(t, "email must be a valid email", RejectionText(errors.NewValidationError("email must be a valid email")))
	assert.Contains(t, RejectionText(errors.NewUnavailableError("discord down")), "try again")
}

type countingLimiter struct {
	allow int
	keys  []string
}

func (l *countingLimiter) Allow(_ context.Context, key string, _ ratelimit.Limits) (bool, error) {
	l.keys = append(l.keys, key)
	if l.allow <= 0 {
		return false, nil
	}
	l.allow--
	return true, nil
}

func TestHandle_RateLimited(t *testing.T) {
	calls := 0
	wf := &mockWorkflow{
		ClaimFunc: func(ctx context.Context, cmd usecases.ClaimTicketCommand) (*usecases.ClaimTicketResult, error) {
			calls++
			return &usecases.ClaimTicketResult{TicketID: cmd.TicketID}, nil
		},
	}
	limiter := &countingLimiter{allow: 1}
	d, obs := newTestDispatcher(wf)
	d.WithRateLimit(limiter, ratelimit.Limits{PerMinute: 1})

	in := Interaction{GuildID: "g1", UserID: "staff", CustomID: messaging.CustomID(messaging.ActionClaim, 5)}
	first := d.Handle(context.Background(), in)
	second := d.Handle(context.Background(), in)

	assert.Equal(t, "You have claimed this ticket.", first.Content)
	assert.Equal(t, "You're doing that too often. Please slow down.", second.Content)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"member:g1:staff", "member:g1:staff"}, limiter.keys)
	require.Len(t, obs.seen, 2)
	assert.Equal(t, errors.ReasonRateLimited, errors.ReasonOf(obs.seen[1].err))
}

func TestWithRateLimit_DisabledLimitsAreIgnored(t *testing.T) {
	d, _ := newTestDispatcher(&mockWorkflow{})
	d.WithRateLimit(&countingLimiter{}, ratelimit.Limits{})
	assert.Nil(t, d.limiter)
}
