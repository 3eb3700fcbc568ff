package ticket

import (
	"context"
	"time"

	vo "github.com/orris-inc/orrisdesk/internal/domain/ticket/valueobjects"
)

// Repository persists tickets. Every mutation is a field-scoped patch keyed by
// ID; the bool results report whether the conditional update matched a row.
type Repository interface {
	Create(ctx context.Context, t *Ticket) error
	// GetByID returns nil, nil when the ticket does not exist.
	GetByID(ctx context.Context, id uint) (*Ticket, error)
	GetByChannel(ctx context.Context, channelID string) (*Ticket, error)
	ListOpenByUser(ctx context.Context, guildID, userID string) ([]*Ticket, error)
	CountOpenByUserPanel(ctx context.Context, userID string, panelID uint) (int64, error)
	// ListClosed returns closed tickets still awaiting channel deletion, oldest first.
	ListClosed(ctx context.Context) ([]*Ticket, error)

	// SetPlan stores the plan and clears any payment method chosen for the previous plan.
	SetPlan(ctx context.Context, id uint, planID uint) (bool, error)
	SetPaymentMethod(ctx context.Context, id uint, methodID uint) (bool, error)
	// ConfirmPayment only matches an open ticket whose payment is not yet confirmed.
	ConfirmPayment(ctx context.Context, id uint, staffID string, at time.Time) (bool, error)
	SetEmail(ctx context.Context, id uint, email string) error
	// Close only matches an open ticket.
	Close(ctx context.Context, id uint, actorID string, at time.Time) (bool, error)
	// Claim only matches an unclaimed open ticket.
	Claim(ctx context.Context, id uint, staffID string) (bool, error)
	Delete(ctx context.Context, id uint) error

	StatusCounts(ctx context.Context, guildID string) (map[vo.TicketStatus]int64, error)
}
