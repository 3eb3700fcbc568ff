package usecases

import (
	"fmt"
	"strings"
	"time"

	appcatalog "github.com/orris-inc/orrisdesk/internal/application/catalog"
	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/catalog"
	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
)

func closeButton(t *ticket.Ticket) messaging.Button {
	return messaging.Button{Kind: messaging.ActionClose, TargetID: t.ID(), Label: "Close ticket", Style: messaging.ButtonDanger}
}

func planPrompt(t *ticket.Ticket, plans []*catalog.Plan, locale string, staffRoles []string) messaging.Message {
	options := make([]messaging.Option, 0, len(plans))
	for _, p := range plans {
		desc := fmt.Sprintf("%d days", p.DurationDays())
		if p.DiscountPercent() > 0 {
			desc = fmt.Sprintf("%s, %d%% off %s", desc, p.DiscountPercent(), p.ListPrice().Format(locale))
		}
		options = append(options, messaging.Option{
			Value:       uintValue(p.ID()),
			Label:       fmt.Sprintf("%s (%s)", p.Name(), p.BasePrice().Format(locale)),
			Description: desc,
		})
	}
	return messaging.Message{
		Title:        "Welcome",
		Body:         fmt.Sprintf("Hi <@%s>, pick a plan to get started.", t.OpenerID()),
		Tone:         messaging.ToneInfo,
		Mentions:     []string{t.OpenerID()},
		RoleMentions: staffRoles,
		Select: &messaging.Select{
			Kind:        messaging.ActionSelectPlan,
			TargetID:    t.ID(),
			Placeholder: "Choose a plan",
			Options:     options,
		},
		Buttons: []messaging.Button{closeButton(t)},
	}
}

func methodPrompt(t *ticket.Ticket, plan *catalog.Plan, methods []appcatalog.MethodOption, locale string) messaging.Message {
	options := make([]messaging.Option, 0, len(methods))
	for _, m := range methods {
		label := fmt.Sprintf("%s (%s)", m.Method.Label(), m.Price.Format(locale))
		if m.Method.IsRecommended() {
			label += " *recommended*"
		}
		options = append(options, messaging.Option{Value: uintValue(m.Method.ID()), Label: label})
	}
	msg := messaging.Message{
		Title: plan.Name(),
		Body:  "How would you like to pay?",
		Tone:  messaging.ToneInfo,
		Fields: []messaging.Field{
			{Name: "Duration", Value: fmt.Sprintf("%d days", plan.DurationDays()), Inline: true},
		},
	}
	if len(options) == 0 {
		msg.Body = "No payment methods are available right now. Staff will assist you."
		msg.Tone = messaging.ToneWarning
		return msg
	}
	msg.Select = &messaging.Select{
		Kind:        messaging.ActionSelectMethod,
		TargetID:    t.ID(),
		Placeholder: "Choose a payment method",
		Options:     options,
	}
	return msg
}

func instructionsPrompt(t *ticket.Ticket, plan *catalog.Plan, method *catalog.PaymentMethod, price money.Money, locale string) messaging.Message {
	body := method.Instructions()
	if strings.TrimSpace(body) == "" {
		body = "Staff will share payment details with you here."
	}
	return messaging.Message{
		Title: "Pay with " + method.Label(),
		Body:  body,
		Tone:  messaging.ToneInfo,
		Fields: []messaging.Field{
			{Name: "Plan", Value: plan.Name(), Inline: true},
			{Name: "Amount", Value: price.Format(locale), Inline: true},
		},
		Buttons: []messaging.Button{
			{Kind: messaging.ActionClaimPaid, TargetID: t.ID(), Label: "I have paid", Style: messaging.ButtonSuccess},
			closeButton(t),
		},
	}
}

func reviewPrompt(t *ticket.Ticket, planName, methodLabel string, amount money.Money, locale string, staffRoles []string) messaging.Message {
	return messaging.Message{
		Title:        "Payment claimed",
		Body:         fmt.Sprintf("<@%s> says they have paid. Please verify and confirm.", t.OpenerID()),
		Tone:         messaging.ToneWarning,
		RoleMentions: staffRoles,
		Fields: []messaging.Field{
			{Name: "Plan", Value: planName, Inline: true},
			{Name: "Method", Value: methodLabel, Inline: true},
			{Name: "Amount", Value: amount.Format(locale), Inline: true},
		},
		Buttons: []messaging.Button{
			{Kind: messaging.ActionConfirm, TargetID: t.ID(), Label: "Confirm", Style: messaging.ButtonSuccess},
			{Kind: messaging.ActionDeny, TargetID: t.ID(), Label: "Deny", Style: messaging.ButtonDanger},
		},
	}
}

func emailPrompt(t *ticket.Ticket, staffID string) messaging.Message {
	return messaging.Message{
		Title:    "Payment confirmed",
		Body:     fmt.Sprintf("<@%s>, your payment was confirmed by <@%s>. Enter the email address for your subscription.", t.OpenerID(), staffID),
		Tone:     messaging.ToneSuccess,
		Mentions: []string{t.OpenerID()},
		Buttons: []messaging.Button{
			{Kind: messaging.ActionRequestEmail, TargetID: t.ID(), Label: "Enter email", Style: messaging.ButtonPrimary},
		},
	}
}

func deniedNotice(t *ticket.Ticket, staffID, reason string) messaging.Message {
	body := fmt.Sprintf("<@%s>, <@%s> could not verify your payment. You can claim again once it has gone through.", t.OpenerID(), staffID)
	if reason != "" {
		body += "\nReason: " + reason
	}
	return messaging.Message{
		Title:    "Payment not verified",
		Body:     body,
		Tone:     messaging.ToneDanger,
		Mentions: []string{t.OpenerID()},
		Buttons: []messaging.Button{
			{Kind: messaging.ActionClaimPaid, TargetID: t.ID(), Label: "I have paid", Style: messaging.ButtonSuccess},
		},
	}
}

func completedNotice(t *ticket.Ticket, sid, planName string, price money.Money, end time.Time, locale string) messaging.Message {
	return messaging.Message{
		Title: "Subscription active",
		Body:  fmt.Sprintf("Thanks <@%s>! Your subscription is now active.", t.OpenerID()),
		Tone:  messaging.ToneSuccess,
		Fields: []messaging.Field{
			{Name: "Subscription", Value: sid, Inline: true},
			{Name: "Plan", Value: planName, Inline: true},
			{Name: "Price", Value: price.Format(locale), Inline: true},
			{Name: "Expires", Value: biztime.FormatInBizTimezone(end, "02 Jan 2006"), Inline: true},
		},
		Buttons: []messaging.Button{closeButton(t)},
	}
}

func closedNotice(actorID string, delay time.Duration) messaging.Message {
	return messaging.Message{
		Title: "Ticket closed",
		Body:  fmt.Sprintf("Closed by <@%s>. This channel will be deleted in %s.", actorID, delay),
		Tone:  messaging.ToneDanger,
	}
}

func claimedNotice(staffID string) messaging.Message {
	return messaging.Message{
		Body: fmt.Sprintf("<@%s> is handling this ticket.", staffID),
		Tone: messaging.ToneInfo,
	}
}
