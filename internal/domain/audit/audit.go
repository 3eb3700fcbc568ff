// Package audit is the append-only record of workflow transitions and
// scheduler actions.
package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionTicketOpened      Action = "ticket.opened"
	ActionPlanSelected      Action = "ticket.plan_selected"
	ActionMethodSelected    Action = "ticket.method_selected"
	ActionPaymentClaimed    Action = "ticket.payment_claimed"
	ActionPaymentConfirmed  Action = "ticket.payment_confirmed"
	ActionPaymentDenied     Action = "ticket.payment_denied"
	ActionEmailCollected    Action = "ticket.email_collected"
	ActionTicketClosed      Action = "ticket.closed"
	ActionTicketClaimed     Action = "ticket.claimed"
	ActionChannelDeleteFail Action = "ticket.channel_delete_failed"

	ActionSubscriptionCreated   Action = "subscription.created"
	ActionSubscriptionExtended  Action = "subscription.extended"
	ActionSubscriptionCancelled Action = "subscription.cancelled"
	ActionSubscriptionExpired   Action = "subscription.expired"

	ActionReminderSent   Action = "reminder.sent"
	ActionReminderFailed Action = "reminder.failed"
)

// Entry is one audit row. ActorID is empty for scheduler actions.
type Entry struct {
	GuildID    string
	ActorID    string
	Action     Action
	EntityType string
	EntityID   uint
	Details    map[string]any
	CreatedAt  time.Time
}

// Recorder appends entries. Callers log and ignore a Record failure.
type Recorder interface {
	Record(ctx context.Context, e *Entry) error
}
