// Package discord is the interaction front-end: it decodes component and
// modal interactions into ticket workflow calls and turns the outcome into
// an ephemeral reply for the member who acted.
package discord

import (
	"context"
	"fmt"
	"strconv"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/orrisdesk/internal/domain/catalog"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/ratelimit"
	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

// emailFieldID identifies the text input of the email modal.
const emailFieldID = "email"

// Workflow is the ticket workflow as seen by the front-end.
type Workflow interface {
	Open(ctx context.Context, cmd usecases.OpenTicketCommand) (*usecases.OpenTicketResult, error)
	SelectPlan(ctx context.Context, cmd usecases.SelectPlanCommand) (*usecases.SelectPlanResult, error)
	SelectPaymentMethod(ctx context.Context, cmd usecases.SelectPaymentMethodCommand) (*usecases.SelectPaymentMethodResult, error)
	ClaimPaid(ctx context.Context, cmd usecases.ClaimPaidCommand) (*usecases.ClaimPaidResult, error)
	ConfirmPayment(ctx context.Context, cmd usecases.ConfirmPaymentCommand) (*usecases.ConfirmPaymentResult, error)
	DenyPayment(ctx context.Context, cmd usecases.DenyPaymentCommand) (*usecases.DenyPaymentResult, error)
	CollectEmail(ctx context.Context, cmd usecases.CollectEmailCommand) (*usecases.CollectEmailResult, error)
	Close(ctx context.Context, cmd usecases.CloseTicketCommand) (*usecases.CloseTicketResult, error)
	Claim(ctx context.Context, cmd usecases.ClaimTicketCommand) (*usecases.ClaimTicketResult, error)
}

// PanelReader resolves the panel behind a /panel command.
type PanelReader interface {
	Panel(ctx context.Context, id uint) (*catalog.Panel, error)
}

// Observer records the outcome of each workflow action.
type Observer interface {
	ObserveInteraction(action string, err error)
}

// Interaction is a platform-neutral component press, select or modal submit.
type Interaction struct {
	GuildID   string
	ChannelID string
	UserID    string
	UserName  string
	CustomID  string
	// Values holds the chosen option values of a select menu.
	Values []string
	// Fields holds modal text inputs by their custom ID.
	Fields map[string]string
	// ModalSubmit is true when the interaction is a modal submission.
	ModalSubmit bool
}

// Reply is sent back to the acting member only.
type Reply struct {
	Content string
	// Message carries a workflow prompt that could not be posted in the
	// ticket channel, so the member still sees it.
	Message *messaging.Message
	// Modal asks the platform to open the email form instead of replying.
	Modal *EmailModal
}

type EmailModal struct {
	CustomID string
	Title    string
	Label    string
}

// RateLimiter throttles actions per member.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limits ratelimit.Limits) (bool, error)
}

type Dispatcher struct {
	workflow Workflow
	panels   PanelReader
	channels channelPoster
	observer Observer
	limiter  RateLimiter
	limits   ratelimit.Limits
	logger   logger.Interface
}

type channelPoster interface {
	SendToChannel(ctx context.Context, channelID string, msg messaging.Message) error
}

func NewDispatcher(workflow Workflow, panels PanelReader, channels channelPoster, observer Observer, log logger.Interface) *Dispatcher {
	return &Dispatcher{
		workflow: workflow,
		panels:   panels,
		channels: channels,
		observer: observer,
		logger:   log,
	}
}

// WithRateLimit throttles workflow actions of each member to limits.
func (d *Dispatcher) WithRateLimit(limiter RateLimiter, limits ratelimit.Limits) *Dispatcher {
	if limits.Enabled() {
		d.limiter = limiter
		d.limits = limits
	}
	return d
}

// IsModalRequest reports whether customID asks for the email form. Such an
// interaction must be answered immediately rather than deferred.
func IsModalRequest(customID string) bool {
	kind, _, err := messaging.ParseCustomID(customID)
	return err == nil && kind == messaging.ActionRequestEmail
}

// Handle runs the action encoded in the interaction's custom ID.
func (d *Dispatcher) Handle(ctx context.Context, in Interaction) Reply {
	kind, targetID, err := messaging.ParseCustomID(in.CustomID)
	if err != nil {
		d.logger.Debugw("ignoring unknown component", "custom_id", in.CustomID, "error", err)
		return Reply{Content: "This button is no longer valid."}
	}

	if kind == messaging.ActionRequestEmail {
		return Reply{Modal: &EmailModal{
			CustomID: messaging.CustomID(messaging.ActionSubmitEmail, targetID),
			Title:    "Your email",
			Label:    "Email address for your receipt",
		}}
	}

	var reply Reply
	err = d.throttle(ctx, in)
	if err == nil {
		reply, err = d.run(ctx, kind, targetID, in)
	}
	if d.observer != nil {
		d.observer.ObserveInteraction(string(kind), err)
	}
	if err != nil {
		d.logRejection(kind, targetID, in, err)
		return Reply{Content: RejectionText(err)}
	}
	return reply
}

// throttle rejects the interaction when the member exceeded the limits. A
// limiter failure lets the action through.
func (d *Dispatcher) throttle(ctx context.Context, in Interaction) error {
	if d.limiter == nil {
		return nil
	}
	allowed, err := d.limiter.Allow(ctx, "member:"+in.GuildID+":"+in.UserID, d.limits)
	if err != nil {
		d.logger.Warnw("rate limiter unavailable", "user_id", in.UserID, "error", err)
		return nil
	}
	if !allowed {
		return errors.NewPreconditionError(errors.ReasonRateLimited, "too many actions")
	}
	return nil
}

func (d *Dispatcher) run(ctx context.Context, kind messaging.ActionKind, id uint, in Interaction) (Reply, error) {
	switch kind {
	case messaging.ActionOpen:
		res, err := d.workflow.Open(ctx, usecases.OpenTicketCommand{
			GuildID:  in.GuildID,
			PanelID:  id,
			UserID:   in.UserID,
			UserName: in.UserName,
		})
		if err != nil {
			return Reply{}, err
		}
		return withPrompt(fmt.Sprintf("Your ticket is ready: <#%s>", res.ChannelID), res.Prompt), nil

	case messaging.ActionSelectPlan:
		planID, err := selectedID(in)
		if err != nil {
			return Reply{}, err
		}
		res, err := d.workflow.SelectPlan(ctx, usecases.SelectPlanCommand{TicketID: id, UserID: in.UserID, PlanID: planID})
		if err != nil {
			return Reply{}, err
		}
		return withPrompt("Plan selected: "+res.PlanName, res.Prompt), nil

	case messaging.ActionSelectMethod:
		methodID, err := selectedID(in)
		if err != nil {
			return Reply{}, err
		}
		res, err := d.workflow.SelectPaymentMethod(ctx, usecases.SelectPaymentMethodCommand{TicketID: id, UserID: in.UserID, MethodID: methodID})
		if err != nil {
			return Reply{}, err
		}
		return withPrompt("Payment method selected: "+res.MethodLabel, res.Prompt), nil

	case messaging.ActionClaimPaid:
		res, err := d.workflow.ClaimPaid(ctx, usecases.ClaimPaidCommand{TicketID: id, UserID: in.UserID})
		if err != nil {
			return Reply{}, err
		}
		return withPrompt("Thanks! Staff have been asked to verify your payment of "+res.Amount+".", res.Prompt), nil

	case messaging.ActionConfirm:
		res, err := d.workflow.ConfirmPayment(ctx, usecases.ConfirmPaymentCommand{TicketID: id, StaffID: in.UserID})
		if err != nil {
			return Reply{}, err
		}
		return withPrompt("Payment confirmed.", res.Prompt), nil

	case messaging.ActionDeny:
		res, err := d.workflow.DenyPayment(ctx, usecases.DenyPaymentCommand{TicketID: id, StaffID: in.UserID})
		if err != nil {
			return Reply{}, err
		}
		return withPrompt("The member has been told the payment was not received.", res.Prompt), nil

	case messaging.ActionSubmitEmail:
		if !in.ModalSubmit {
			return Reply{}, errors.NewBadRequestError("email must be submitted through the form")
		}
		res, err := d.workflow.CollectEmail(ctx, usecases.CollectEmailCommand{
			TicketID: id,
			UserID:   in.UserID,
			Email:    in.Fields[emailFieldID],
		})
		if err != nil {
			return Reply{}, err
		}
		if !res.Created {
			return Reply{Content: "This ticket is already complete: subscription " + res.SubscriptionSID + "."}, nil
		}
		return withPrompt(fmt.Sprintf("All set! Subscription %s is active until %s.",
			res.SubscriptionSID, res.EndDate.Format("2 Jan 2006")), res.Prompt), nil

	case messaging.ActionClose:
		res, err := d.workflow.Close(ctx, usecases.CloseTicketCommand{TicketID: id, UserID: in.UserID})
		if err != nil {
			return Reply{}, err
		}
		return Reply{Content: "Ticket closed. This channel will be deleted in " + biztime.HumanDuration(res.DeleteAfter) + "."}, nil

	case messaging.ActionClaim:
		if _, err := d.workflow.Claim(ctx, usecases.ClaimTicketCommand{TicketID: id, StaffID: in.UserID}); err != nil {
			return Reply{}, err
		}
		return Reply{Content: "You have claimed this ticket."}, nil
	}

	return Reply{}, errors.NewBadRequestError("unsupported action " + string(kind))
}

// PostPanel posts the "open ticket" button of a panel into channelID.
func (d *Dispatcher) PostPanel(ctx context.Context, guildID, channelID string, panelID uint) Reply {
	panel, err := d.panels.Panel(ctx, panelID)
	if err == nil && panel.GuildID() != guildID {
		err = errors.NewNotFoundErrorWithReason(errors.ReasonPanelNotFound, "panel not found")
	}
	if err != nil {
		d.logger.Warnw("panel post rejected", "guild_id", guildID, "panel_id", panelID, "error", err)
		return Reply{Content: RejectionText(err)}
	}

	msg := messaging.Message{
		Title: panel.Name(),
		Body:  "Press the button below to open a private ticket with our staff.",
		Tone:  messaging.ToneInfo,
		Buttons: []messaging.Button{{
			Kind:     messaging.ActionOpen,
			TargetID: panel.ID(),
			Label:    "Open ticket",
			Style:    messaging.ButtonPrimary,
		}},
	}
	if err := d.channels.SendToChannel(ctx, channelID, msg); err != nil {
		d.logger.Errorw("failed to post panel", "guild_id", guildID, "channel_id", channelID, "panel_id", panelID, "error", err)
		return Reply{Content: "I could not post in this channel. Check my permissions and try again."}
	}

	d.logger.Infow("panel posted", "guild_id", guildID, "channel_id", channelID, "panel_id", panelID)
	return Reply{Content: "Panel posted."}
}

func (d *Dispatcher) logRejection(kind messaging.ActionKind, id uint, in Interaction, err error) {
	fields := []interface{}{
		"action", kind,
		"target_id", id,
		"guild_id", in.GuildID,
		"user_id", in.UserID,
	}
	if errors.IsAppError(err) {
		d.logger.Debugw("interaction rejected", append(fields, "reason", errors.ReasonOf(err), "error", err)...)
		return
	}
	d.logger.Errorw("interaction failed", append(fields, "error", err)...)
}

func selectedID(in Interaction) (uint, error) {
	if len(in.Values) == 0 {
		return 0, errors.NewBadRequestError("nothing was selected")
	}
	n, err := strconv.ParseUint(in.Values[0], 10, 64)
	if err != nil || n == 0 {
		return 0, errors.NewBadRequestError("invalid selection")
	}
	return uint(n), nil
}

func withPrompt(content string, p usecases.Prompt) Reply {
	r := Reply{Content: content}
	if !p.Posted && (p.Message.Title != "" || p.Message.Body != "") {
		msg := p.Message
		r.Message = &msg
	}
	return r
}
